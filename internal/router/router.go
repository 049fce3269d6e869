package router

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/psds-microservice/helpy/paths"
	"github.com/smart-agence/crm-service/api"
	"github.com/smart-agence/crm-service/internal/handler"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Deps struct {
	Agents      *handler.AgentHandler
	Tickets     *handler.TicketHandler
	Maintenance *handler.MaintenanceHandler
	// Ping backs /ready; nil means always ready.
	Ping           func(ctx context.Context) error
	AllowedOrigins []string
}

func New(d Deps) http.Handler {
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery(), RequestID(), RequestLogger())

	r.GET(paths.PathHealth, handler.Health)
	r.GET(paths.PathReady, handler.Ready(d.Ping))
	r.GET(paths.PathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, paths.PathSwagger+"/") })
	r.GET(paths.PathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = paths.PathSwagger + "/index.html"
			c.Request.RequestURI = paths.PathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL(paths.PathSwagger+"/openapi.json"))(c)
	})

	collection(r, http.MethodPost, "/agents", d.Agents.Create)
	collection(r, http.MethodGet, "/agents", d.Agents.List)
	r.GET("/agents/:id", d.Agents.Get)
	r.PUT("/agents/:id", d.Agents.Update)
	r.DELETE("/agents/:id", d.Agents.Delete)

	collection(r, http.MethodPost, "/tickets", d.Tickets.Create)
	collection(r, http.MethodGet, "/tickets", d.Tickets.List)
	r.GET("/tickets/:id", d.Tickets.Get)
	r.PUT("/tickets/:id", d.Tickets.Update)
	r.DELETE("/tickets/:id", d.Tickets.Delete)
	r.POST("/tickets/:id/status", d.Tickets.SetStatus)
	r.GET("/tickets/:id/status", d.Tickets.History)

	collection(r, http.MethodPost, "/reset", d.Maintenance.Reset)

	return cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})(r)
}

// collection registers path both with and without a trailing slash so
// clients never get a redirect on POST.
func collection(r *gin.Engine, method, path string, h gin.HandlerFunc) {
	r.Handle(method, path, h)
	r.Handle(method, path+"/", h)
}
