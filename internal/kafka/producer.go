package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smart-agence/crm-service/internal/model"
)

const (
	EventTicketCreated       = "ticket.created"
	EventTicketUpdated       = "ticket.updated"
	EventTicketDeleted       = "ticket.deleted"
	EventTicketStatusChanged = "ticket.status_changed"
)

// TicketEvent is the message written to the ticket topic.
type TicketEvent struct {
	Event            string              `json:"event"`
	TicketID         uint64              `json:"ticket_id"`
	AgentID          uint64              `json:"agent_id"`
	CategorieService string              `json:"categorie_service,omitempty"`
	Statut           *model.TicketStatus `json:"statut,omitempty"`
	// RecordedBy is the agent behind a status change.
	RecordedBy uint64    `json:"recorded_by,omitempty"`
	At         time.Time `json:"at"`
}

func TicketEventFor(event string, t *model.Ticket, at time.Time) TicketEvent {
	return TicketEvent{
		Event:            event,
		TicketID:         t.ID,
		AgentID:          t.AgentID,
		CategorieService: t.CategorieService,
		Statut:           t.Statut,
		At:               at,
	}
}

func StatusEventFor(t *model.Ticket, e *model.Evenement) TicketEvent {
	st := e.Statut
	return TicketEvent{
		Event:            EventTicketStatusChanged,
		TicketID:         e.TicketID,
		AgentID:          t.AgentID,
		CategorieService: t.CategorieService,
		Statut:           &st,
		RecordedBy:       e.AgentID,
		At:               e.Date,
	}
}

// TicketEventProducer is implemented by Producer and by test doubles.
type TicketEventProducer interface {
	ProduceTicketEvent(ctx context.Context, ev TicketEvent)
}

// Producer writes ticket events to a Kafka topic (best-effort, never blocks the API).
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer returns a producer; with no brokers or no topic every call is a no-op.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{}
	}
	return &Producer{
		topic: topic,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *Producer) Enabled() bool {
	return p.writer != nil
}

// ProduceTicketEvent keys messages by ticket id so one ticket's events stay ordered.
func (p *Producer) ProduceTicketEvent(ctx context.Context, ev TicketEvent) {
	if p.writer == nil {
		return
	}
	body, err := json.Marshal(ev)
	if err != nil {
		slog.Error("kafka: marshal ticket event", "err", err)
		return
	}
	msg := kafka.Message{Key: []byte(ticketKey(ev.TicketID)), Value: body}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		slog.Warn("kafka: write ticket event", "event", ev.Event, "ticket_id", ev.TicketID, "err", err)
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func ticketKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
