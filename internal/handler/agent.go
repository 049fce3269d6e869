package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/paging"
	"github.com/smart-agence/crm-service/internal/service"
)

type AgentHandler struct {
	svc service.AgentServicer
}

func NewAgentHandler(svc service.AgentServicer) *AgentHandler {
	return &AgentHandler{svc: svc}
}

func (h *AgentHandler) Create(c *gin.Context) {
	var in model.AgentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	a, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) List(c *gin.Context) {
	offset, limit, ok := parsePage(c, paging.DefaultPageSize)
	if !ok {
		return
	}
	items, err := h.svc.List(c.Request.Context(), offset, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *AgentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AgentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in model.AgentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	a, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Delete answers with the removed agent.
func (h *AgentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}
