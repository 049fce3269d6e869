package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/psds-microservice/helpy/paths"
	"github.com/smart-agence/crm-service/internal/apiclient"
	"github.com/smart-agence/crm-service/internal/config"
	"github.com/smart-agence/crm-service/internal/dashboard"
	"github.com/smart-agence/crm-service/internal/database"
	"github.com/smart-agence/crm-service/internal/handler"
	"github.com/smart-agence/crm-service/internal/kafka"
	"github.com/smart-agence/crm-service/internal/logger"
	"github.com/smart-agence/crm-service/internal/router"
	"github.com/smart-agence/crm-service/internal/service"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func publicBase(host, port string) string {
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return "http://" + host + ":" + port
}

// API serves the REST API (mode api).
type API struct {
	cfg      *config.Config
	db       *gorm.DB
	producer *kafka.Producer
	tickets  *handler.TicketHandler
	httpSrv  *http.Server
}

// NewAPI connects to the database, applies migrations and wires the router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := database.Connect(cfg.DatabaseURL, logger.Gorm(slog.Default(), cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicTicket)
	var events kafka.TicketEventProducer
	if producer.Enabled() {
		events = producer
	}
	tickets := handler.NewTicketHandler(service.NewTicketService(db), service.NewEvenementService(db), events)
	h := router.New(router.Deps{
		Agents:      handler.NewAgentHandler(service.NewAgentService(db)),
		Tickets:     tickets,
		Maintenance: handler.NewMaintenanceHandler(service.NewMaintenanceService(db)),
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &API{
		cfg:      cfg,
		db:       db,
		producer: producer,
		tickets:  tickets,
		httpSrv:  newServer(cfg.Addr(), h),
	}, nil
}

// Run serves until ctx is cancelled, then releases the database and the
// Kafka writer.
func (a *API) Run(ctx context.Context) error {
	base := publicBase(a.cfg.AppHost, a.cfg.HTTPPort)
	slog.Info("http server listening", "addr", a.httpSrv.Addr)
	slog.Info("endpoints",
		"swagger", base+paths.PathSwagger,
		"health", base+paths.PathHealth,
		"ready", base+paths.PathReady,
		"agents", base+"/agents/",
		"tickets", base+"/tickets/",
	)
	if a.producer.Enabled() {
		slog.Info("ticket events enabled", "brokers", a.cfg.KafkaBrokers, "topic", a.cfg.KafkaTopicTicket)
	}

	err := serve(ctx, a.httpSrv)
	a.tickets.Drain()
	if cerr := a.producer.Close(); cerr != nil {
		slog.Warn("kafka close", "err", cerr)
	}
	if cerr := database.Close(a.db); cerr != nil {
		slog.Warn("database close", "err", cerr)
	}
	return err
}

// Dashboard serves the web pages (mode dashboard).
type Dashboard struct {
	cfg     *config.Config
	httpSrv *http.Server
}

func NewDashboard(cfg *config.Config) (*Dashboard, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	h, err := dashboard.NewRouter(dashboard.New(apiclient.New(cfg.APIBaseURL), cfg.APIBaseURL))
	if err != nil {
		return nil, err
	}
	return &Dashboard{cfg: cfg, httpSrv: newServer(cfg.DashboardAddr(), h)}, nil
}

func (d *Dashboard) Run(ctx context.Context) error {
	slog.Info("dashboard listening",
		"addr", d.httpSrv.Addr,
		"url", publicBase(d.cfg.AppHost, d.cfg.DashboardPort),
		"api", d.cfg.APIBaseURL,
	)
	return serve(ctx, d.httpSrv)
}
