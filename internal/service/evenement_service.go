package service

import (
	"context"
	"slices"
	"time"

	"github.com/smart-agence/crm-service/internal/model"
	"gorm.io/gorm"
)

type EvenementServicer interface {
	Create(ctx context.Context, ticketID uint64, in model.EvenementInput) (*model.Evenement, error)
	History(ctx context.Context, ticketID uint64) ([]model.Evenement, error)
}

// EvenementService appends to and reads the per-ticket status log. Any
// status may follow any other.
type EvenementService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEvenementService(db *gorm.DB) *EvenementService {
	return &EvenementService{db: db, now: utcNow}
}

// Create appends a status event. An unknown ticket persists nothing.
func (s *EvenementService) Create(ctx context.Context, ticketID uint64, in model.EvenementInput) (*model.Evenement, error) {
	var e model.Evenement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Ticket
		if err := tx.First(&t, ticketID).Error; err != nil {
			return err
		}
		agentID := t.AgentID
		if in.AgentID != nil {
			if err := agentMustExist(tx, *in.AgentID); err != nil {
				return err
			}
			agentID = *in.AgentID
		}
		e = model.Evenement{
			TicketID: t.ID,
			AgentID:  agentID,
			Date:     s.now(),
			Statut:   in.Statut,
		}
		return tx.Create(&e).Error
	})
	if err != nil {
		return nil, ticketError(err)
	}
	return &e, nil
}

// History returns the ticket's events oldest first.
func (s *EvenementService) History(ctx context.Context, ticketID uint64) ([]model.Evenement, error) {
	db := s.db.WithContext(ctx)
	ok, err := exists(db, &model.Ticket{}, ticketID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ticketError(gorm.ErrRecordNotFound)
	}
	events := []model.Evenement{}
	if err := db.Where("ticket_id = ?", ticketID).Order("date ASC, id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	// stored date text does not always sort like the instant it encodes
	slices.SortStableFunc(events, func(a, b model.Evenement) int {
		switch {
		case b.After(a):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	})
	return events, nil
}
