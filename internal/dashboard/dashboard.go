// Package dashboard serves the server-rendered Smart Agence pages. Every
// page fetches the full collections from the API and aggregates locally.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/psds-microservice/helpy/paths"
	"github.com/smart-agence/crm-service/internal/apiclient"
	"github.com/smart-agence/crm-service/internal/errs"
	"github.com/smart-agence/crm-service/internal/handler"
	"github.com/smart-agence/crm-service/internal/logger"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/router"
)

// API is the part of the API client the pages use.
type API interface {
	Health(ctx context.Context) error
	ListAgents(ctx context.Context) ([]model.Agent, error)
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	CreateAgent(ctx context.Context, in model.AgentInput) (*model.Agent, error)
	UpdateAgent(ctx context.Context, id uint64, in model.AgentInput) (*model.Agent, error)
	DeleteAgent(ctx context.Context, id uint64) error
	CreateTicket(ctx context.Context, in model.TicketInput) (*model.Ticket, error)
	UpdateTicket(ctx context.Context, id uint64, in model.TicketInput) (*model.Ticket, error)
	SetTicketStatus(ctx context.Context, id uint64, in model.EvenementInput) (*model.Evenement, error)
	Reset(ctx context.Context) (*model.ResetResult, error)
}

type Handler struct {
	api    API
	apiURL string
	now    func() time.Time
}

func New(api API, apiURL string) *Handler {
	return &Handler{api: api, apiURL: apiURL, now: time.Now}
}

// NewRouter builds the dashboard engine with its templates loaded.
func NewRouter(h *Handler) (*gin.Engine, error) {
	pages, err := newPageRender()
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(gin.Recovery(), router.RequestID(), router.RequestLogger())
	r.HTMLRender = pages

	r.GET(paths.PathHealth, handler.Health)
	r.GET(paths.PathReady, handler.Ready(h.api.Health))

	r.GET("/", h.Home)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/admin", h.Admin)
	r.GET("/admin/export", h.Export)

	a := r.Group("/actions")
	{
		a.POST("/agents", h.CreateAgent)
		a.POST("/agents/:id/update", h.UpdateAgent)
		a.POST("/agents/:id/delete", h.DeleteAgent)
		a.POST("/tickets", h.CreateTicket)
		a.POST("/tickets/:id/update", h.UpdateTicket)
		a.POST("/tickets/:id/status", h.SetTicketStatus)
		a.POST("/reset", h.Reset)
	}
	return r, nil
}

// Page is the part of every view the layout renders.
type Page struct {
	Title   string
	Active  string
	Flash   *Flash
	Warning string
	APIURL  string
	Now     time.Time
}

type Flash struct {
	Level   string
	Message string
}

func (h *Handler) page(c *gin.Context, title, active string) Page {
	p := Page{Title: title, Active: active, APIURL: h.apiURL, Now: h.now()}
	if msg := c.Query("flash"); msg != "" {
		level := c.DefaultQuery("level", "success")
		if level != "success" && level != "error" {
			level = "success"
		}
		p.Flash = &Flash{Level: level, Message: msg}
	}
	return p
}

// fetch loads both collections. On failure the page still renders, empty,
// with the returned warning.
func (h *Handler) fetch(ctx context.Context) ([]model.Agent, []model.Ticket, string) {
	agents, err := h.api.ListAgents(ctx)
	if err != nil {
		return []model.Agent{}, []model.Ticket{}, h.warning(ctx, err)
	}
	tickets, err := h.api.ListTickets(ctx)
	if err != nil {
		return agents, []model.Ticket{}, h.warning(ctx, err)
	}
	return agents, tickets, ""
}

func (h *Handler) warning(ctx context.Context, err error) string {
	logger.FromContext(ctx).Warn("dashboard: fetch failed", "err", err)
	if errors.Is(err, errs.ErrAPIUnavailable) {
		return fmt.Sprintf("Impossible de se connecter à l'API (%s). Vérifiez qu'elle est démarrée.", h.apiURL)
	}
	return "Erreur lors de la récupération des données: " + describe(err)
}

// describe renders an API failure for a flash message.
func describe(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("Erreur API %d: %s", apiErr.StatusCode, apiErr.Message)
		if len(apiErr.Details) > 0 {
			parts := make([]string, 0, len(apiErr.Details))
			for _, d := range apiErr.Details {
				parts = append(parts, d.Field+" ("+d.Message+")")
			}
			msg += " [" + strings.Join(parts, ", ") + "]"
		}
		return msg
	case errors.Is(err, errs.ErrAPIUnavailable):
		return "Erreur de connexion: API injoignable"
	}
	return err.Error()
}

func (h *Handler) render(c *gin.Context, name string, data any) {
	c.HTML(http.StatusOK, name, data)
}
