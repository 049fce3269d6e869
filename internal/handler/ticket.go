package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smart-agence/crm-service/internal/kafka"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/paging"
	"github.com/smart-agence/crm-service/internal/service"
)

const publishTimeout = 5 * time.Second

type TicketHandler struct {
	svc      service.TicketServicer
	events   service.EvenementServicer
	producer kafka.TicketEventProducer
	inflight sync.WaitGroup
}

// NewTicketHandler wires the ticket routes. producer may be nil.
func NewTicketHandler(svc service.TicketServicer, events service.EvenementServicer, producer kafka.TicketEventProducer) *TicketHandler {
	return &TicketHandler{svc: svc, events: events, producer: producer}
}

func (h *TicketHandler) Create(c *gin.Context) {
	var in model.TicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	t, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(kafka.TicketEventFor(kafka.EventTicketCreated, t, t.DateCreation))
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) List(c *gin.Context) {
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

func (h *TicketHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in model.TicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	t, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(kafka.TicketEventFor(kafka.EventTicketUpdated, t, time.Now().UTC()))
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	t, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.publish(kafka.TicketEventFor(kafka.EventTicketDeleted, t, time.Now().UTC()))
	c.JSON(http.StatusOK, t)
}

// SetStatus appends an event to the ticket's status log.
func (h *TicketHandler) SetStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in model.EvenementInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}
	ctx := c.Request.Context()
	e, err := h.events.Create(ctx, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.producer != nil {
		if t, err := h.svc.GetByID(ctx, id); err == nil {
			h.publish(kafka.StatusEventFor(t, e))
		}
	}
	c.JSON(http.StatusOK, e)
}

func (h *TicketHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	events, err := h.events.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// publish hands the event to Kafka without holding the response.
func (h *TicketHandler) publish(ev kafka.TicketEvent) {
	if h.producer == nil {
		return
	}
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		h.producer.ProduceTicketEvent(ctx, ev)
	}()
}

// Drain waits for every event handed to publish. Call it after the HTTP
// server has stopped and before the producer is closed.
func (h *TicketHandler) Drain() {
	h.inflight.Wait()
}
