package service

import (
	"context"
	"testing"
	"time"

	"github.com/smart-agence/crm-service/internal/errs"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketService_CreateThenGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agent, err := NewAgentService(db).Create(ctx, koffi())
	require.NoError(t, err)

	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTicketService(db)
	svc.now = sequence(created)

	in := model.TicketInput{AgentID: agent.ID, CategorieService: "Réclamation", Description: ptr("carte bloquée")}
	ticket, err := svc.Create(ctx, in)
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, in.AgentID, got.AgentID)
	assert.Equal(t, in.CategorieService, got.CategorieService)
	assert.Equal(t, in.Description, got.Description)
	assertSameInstant(t, created, got.DateCreation)
	assert.Nil(t, got.Statut)
}

func TestTicketService_CreateUnknownAgent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewTicketService(db)
	_, err := svc.Create(ctx, model.TicketInput{AgentID: 77, CategorieService: "Support"})
	assert.ErrorIs(t, err, errs.ErrUnknownAgent)

	items, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTicketService_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agents := NewAgentService(db)
	a1, err := agents.Create(ctx, koffi())
	require.NoError(t, err)
	a2, err := agents.Create(ctx, model.AgentInput{Nom: "Yao", Prenoms: "Ama", Categorie: model.AgentCategoryConseil})
	require.NoError(t, err)

	svc := NewTicketService(db)
	ticket, err := svc.Create(ctx, model.TicketInput{AgentID: a1.ID, CategorieService: "Support", Description: ptr("x")})
	require.NoError(t, err)
	_, err = NewEvenementService(db).Create(ctx, ticket.ID, model.EvenementInput{Statut: model.TicketStatusDone})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ticket.ID, model.TicketInput{AgentID: a2.ID, CategorieService: "Information"})
	require.NoError(t, err)
	assert.Equal(t, a2.ID, updated.AgentID)
	assert.Equal(t, "Information", updated.CategorieService)
	assert.Nil(t, updated.Description)
	assertSameInstant(t, ticket.DateCreation, updated.DateCreation)
	require.NotNil(t, updated.Statut)
	assert.Equal(t, model.TicketStatusDone, *updated.Statut)

	_, err = svc.Update(ctx, ticket.ID+1, model.TicketInput{AgentID: a2.ID, CategorieService: "Information"})
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)

	_, err = svc.Update(ctx, ticket.ID, model.TicketInput{AgentID: 999, CategorieService: "Information"})
	assert.ErrorIs(t, err, errs.ErrUnknownAgent)
}

func TestTicketService_DeleteRemovesHistory(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agent, err := NewAgentService(db).Create(ctx, koffi())
	require.NoError(t, err)
	svc := NewTicketService(db)
	ticket, err := svc.Create(ctx, model.TicketInput{AgentID: agent.ID, CategorieService: "Support"})
	require.NoError(t, err)
	events := NewEvenementService(db)
	_, err = events.Create(ctx, ticket.ID, model.EvenementInput{Statut: model.TicketStatusCanceled})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted.Statut)
	assert.Equal(t, model.TicketStatusCanceled, *deleted.Statut)

	_, err = svc.Delete(ctx, ticket.ID)
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)

	var n int64
	require.NoError(t, db.Model(&model.Evenement{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestTicketService_CurrentStatusIsLatestEvent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agent, err := NewAgentService(db).Create(ctx, koffi())
	require.NoError(t, err)
	tickets := NewTicketService(db)
	ticket, err := tickets.Create(ctx, model.TicketInput{AgentID: agent.ID, CategorieService: "Support"})
	require.NoError(t, err)

	t1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(90 * time.Second)
	t3 := t2.Add(500 * time.Millisecond)

	// inserted out of chronological order: the event at t3 is not the last row
	events := NewEvenementService(db)
	events.now = sequence(t1, t3, t2)
	for _, st := range []model.TicketStatus{model.TicketStatusPending, model.TicketStatusDone, model.TicketStatusInProgress} {
		_, err := events.Create(ctx, ticket.ID, model.EvenementInput{Statut: st})
		require.NoError(t, err)
	}

	status, err := tickets.CurrentStatus(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, model.TicketStatusDone, *status)

	listed, err := tickets.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Statut)
	assert.Equal(t, model.TicketStatusDone, *listed[0].Statut)

	history, err := events.History(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.TicketStatusPending, history[0].Statut)
	assert.Equal(t, model.TicketStatusInProgress, history[1].Statut)
	assert.Equal(t, model.TicketStatusDone, history[2].Statut)
}

func TestTicketService_StatusTieBreaksOnInsertionOrder(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agent, err := NewAgentService(db).Create(ctx, koffi())
	require.NoError(t, err)
	tickets := NewTicketService(db)
	ticket, err := tickets.Create(ctx, model.TicketInput{AgentID: agent.ID, CategorieService: "Support"})
	require.NoError(t, err)

	same := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	events := NewEvenementService(db)
	events.now = sequence(same, same)
	_, err = events.Create(ctx, ticket.ID, model.EvenementInput{Statut: model.TicketStatusInProgress})
	require.NoError(t, err)
	_, err = events.Create(ctx, ticket.ID, model.EvenementInput{Statut: model.TicketStatusCanceled})
	require.NoError(t, err)

	status, err := tickets.CurrentStatus(ctx, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, model.TicketStatusCanceled, *status)
}

func TestTicketService_ListStatusPerTicket(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agent, err := NewAgentService(db).Create(ctx, koffi())
	require.NoError(t, err)
	tickets := NewTicketService(db)
	events := NewEvenementService(db)

	first, err := tickets.Create(ctx, model.TicketInput{AgentID: agent.ID, CategorieService: "Support"})
	require.NoError(t, err)
	_, err = tickets.Create(ctx, model.TicketInput{AgentID: agent.ID, CategorieService: "Transaction"})
	require.NoError(t, err)
	_, err = events.Create(ctx, first.ID, model.EvenementInput{Statut: model.TicketStatusPending})
	require.NoError(t, err)

	listed, err := tickets.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.NotNil(t, listed[0].Statut)
	assert.Equal(t, model.TicketStatusPending, *listed[0].Statut)
	assert.Nil(t, listed[1].Statut)

	empty, err := tickets.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
