package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smart-agence/crm-service/internal/logger"
	"github.com/smart-agence/crm-service/internal/service"
)

type MaintenanceHandler struct {
	svc service.MaintenanceServicer
}

func NewMaintenanceHandler(svc service.MaintenanceServicer) *MaintenanceHandler {
	return &MaintenanceHandler{svc: svc}
}

// Reset deletes every agent, ticket and event.
func (h *MaintenanceHandler) Reset(c *gin.Context) {
	res, err := h.svc.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	logger.FromContext(c.Request.Context()).Warn("database reset",
		"agents", res.Agents, "tickets", res.Tickets, "evenements", res.Evenements)
	c.JSON(http.StatusOK, res)
}
