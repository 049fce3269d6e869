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

func TestAgentService_CreateThenGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	registered := time.Date(2024, 2, 10, 8, 30, 0, 123000, time.UTC)
	svc := NewAgentService(db)
	svc.now = sequence(registered)

	in := koffi()
	in.Email = ptr("paul.koffi@example.com")
	in.Telephone = ptr("+225 01 02 03 04 05")

	created, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, in.Nom, got.Nom)
	assert.Equal(t, in.Prenoms, got.Prenoms)
	assert.Equal(t, in.AnneeNaissance, got.AnneeNaissance)
	assert.Equal(t, in.Categorie, got.Categorie)
	assert.Equal(t, in.Email, got.Email)
	assert.Equal(t, in.Telephone, got.Telephone)
	assertSameInstant(t, registered, got.DateEnregistrement)
}

func TestAgentService_OptionalFieldsStayNull(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewAgentService(db)
	created, err := svc.Create(ctx, model.AgentInput{Nom: "Yao", Prenoms: "Ama", Categorie: model.AgentCategoryConseil})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AnneeNaissance)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Telephone)
}

func TestAgentService_GetUnknown(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewAgentService(db).GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, errs.ErrAgentNotFound)
}

func TestAgentService_UpdateReplacesFields(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	registered := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewAgentService(db)
	svc.now = sequence(registered, registered.Add(time.Hour))

	in := koffi()
	in.Email = ptr("paul@example.com")
	created, err := svc.Create(ctx, in)
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, model.AgentInput{
		Nom:       "Koffi",
		Prenoms:   "Paul Henri",
		Categorie: model.AgentCategoryConseil,
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Paul Henri", updated.Prenoms)
	assert.Equal(t, model.AgentCategoryConseil, updated.Categorie)
	assert.Nil(t, updated.Email, "full replace clears omitted optional fields")
	assert.Nil(t, updated.AnneeNaissance)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paul Henri", got.Prenoms)
	assertSameInstant(t, registered, got.DateEnregistrement)
}

func TestAgentService_UpdateUnknownDoesNotMutate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewAgentService(db)
	created, err := svc.Create(ctx, koffi())
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID+100, model.AgentInput{Nom: "X", Prenoms: "Y", Categorie: model.AgentCategoryConseil})
	assert.ErrorIs(t, err, errs.ErrAgentNotFound)

	all, err := svc.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Koffi", all[0].Nom)
	assert.Equal(t, model.AgentCategoryTransaction, all[0].Categorie)
}

func TestAgentService_DeleteTwice(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewAgentService(db)
	created, err := svc.Create(ctx, koffi())
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Koffi", deleted.Nom)

	_, err = svc.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, errs.ErrAgentNotFound)
}

func TestAgentService_DeleteCascades(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	agents := NewAgentService(db)
	tickets := NewTicketService(db)
	events := NewEvenementService(db)

	owner, err := agents.Create(ctx, koffi())
	require.NoError(t, err)
	other, err := agents.Create(ctx, model.AgentInput{Nom: "Yao", Prenoms: "Ama", Categorie: model.AgentCategoryConseil})
	require.NoError(t, err)

	owned, err := tickets.Create(ctx, model.TicketInput{AgentID: owner.ID, CategorieService: "Support"})
	require.NoError(t, err)
	foreign, err := tickets.Create(ctx, model.TicketInput{AgentID: other.ID, CategorieService: "Conseil"})
	require.NoError(t, err)

	_, err = events.Create(ctx, owned.ID, model.EvenementInput{Statut: model.TicketStatusPending})
	require.NoError(t, err)
	// owner records an event on the other agent's ticket
	_, err = events.Create(ctx, foreign.ID, model.EvenementInput{Statut: model.TicketStatusInProgress, AgentID: &owner.ID})
	require.NoError(t, err)
	_, err = events.Create(ctx, foreign.ID, model.EvenementInput{Statut: model.TicketStatusDone})
	require.NoError(t, err)

	_, err = agents.Delete(ctx, owner.ID)
	require.NoError(t, err)

	_, err = tickets.GetByID(ctx, owned.ID)
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)

	history, err := events.History(ctx, foreign.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, other.ID, history[0].AgentID)

	var n int64
	require.NoError(t, db.Model(&model.Evenement{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestAgentService_EmailUnique(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewAgentService(db)
	in := koffi()
	in.Email = ptr("dup@example.com")
	first, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, in)
	assert.ErrorIs(t, err, errs.ErrEmailTaken)

	second, err := svc.Create(ctx, model.AgentInput{Nom: "Yao", Prenoms: "Ama", Categorie: model.AgentCategoryConseil})
	require.NoError(t, err)
	_, err = svc.Update(ctx, second.ID, model.AgentInput{Nom: "Yao", Prenoms: "Ama", Categorie: model.AgentCategoryConseil, Email: ptr("dup@example.com")})
	assert.ErrorIs(t, err, errs.ErrEmailTaken)

	// keeping one's own email is not a conflict
	_, err = svc.Update(ctx, first.ID, in)
	assert.NoError(t, err)

	// agents without email never conflict
	_, err = svc.Create(ctx, model.AgentInput{Nom: "Kone", Prenoms: "Issa", Categorie: model.AgentCategoryConseil})
	assert.NoError(t, err)
}

func TestAgentService_ListPaging(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	svc := NewAgentService(db)
	for _, nom := range []string{"A", "B", "C", "D"} {
		_, err := svc.Create(ctx, model.AgentInput{Nom: nom, Prenoms: "x", Categorie: model.AgentCategoryConseil})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "A", all[0].Nom)
	assert.Equal(t, "D", all[3].Nom)

	window, err := svc.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "B", window[0].Nom)
	assert.Equal(t, "C", window[1].Nom)

	for _, tc := range []struct{ offset, limit int }{{0, 0}, {4, 10}, {50, 10}, {-1, 10}, {0, -5}} {
		items, err := svc.List(ctx, tc.offset, tc.limit)
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items, "offset=%d limit=%d", tc.offset, tc.limit)
	}
}
