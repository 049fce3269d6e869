package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smart-agence/crm-service/internal/kafka"
	"github.com/stretchr/testify/assert"
)

type slowProducer struct {
	delay time.Duration
	mu    sync.Mutex
	sent  []uint64
}

func (p *slowProducer) ProduceTicketEvent(ctx context.Context, ev kafka.TicketEvent) {
	select {
	case <-time.After(p.delay):
	case <-ctx.Done():
		return
	}
	p.mu.Lock()
	p.sent = append(p.sent, ev.TicketID)
	p.mu.Unlock()
}

func TestDrainWaitsForPendingEvents(t *testing.T) {
	prod := &slowProducer{delay: 50 * time.Millisecond}
	h := NewTicketHandler(nil, nil, prod)

	for id := uint64(1); id <= 3; id++ {
		h.publish(kafka.TicketEvent{Event: kafka.EventTicketCreated, TicketID: id})
	}
	h.Drain()

	prod.mu.Lock()
	defer prod.mu.Unlock()
	assert.ElementsMatch(t, []uint64{1, 2, 3}, prod.sent)
}

func TestDrainWithoutProducer(t *testing.T) {
	h := NewTicketHandler(nil, nil, nil)
	h.publish(kafka.TicketEvent{Event: kafka.EventTicketDeleted, TicketID: 1})

	done := make(chan struct{})
	go func() {
		h.Drain()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Drain blocked with no producer")
	}
}
