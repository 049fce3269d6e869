package service

import (
	"context"
	"errors"
	"time"

	"github.com/smart-agence/crm-service/internal/errs"
	"github.com/smart-agence/crm-service/internal/model"
	"github.com/smart-agence/crm-service/internal/paging"
	"gorm.io/gorm"
)

// TicketServicer is what the HTTP handlers depend on.
type TicketServicer interface {
	Create(ctx context.Context, in model.TicketInput) (*model.Ticket, error)
	List(ctx context.Context, offset, limit int) ([]model.Ticket, error)
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	Update(ctx context.Context, id uint64, in model.TicketInput) (*model.Ticket, error)
	Delete(ctx context.Context, id uint64) (*model.Ticket, error)
}

type TicketService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db, now: utcNow}
}

// Create stores the ticket without any status event; its status stays
// undefined until the first event is appended.
func (s *TicketService) Create(ctx context.Context, in model.TicketInput) (*model.Ticket, error) {
	t := &model.Ticket{DateCreation: s.now()}
	in.Apply(t)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := agentMustExist(tx, in.AgentID); err != nil {
			return err
		}
		return tx.Create(t).Error
	})
	if err != nil {
		return nil, ticketError(err)
	}
	return t, nil
}

func (s *TicketService) List(ctx context.Context, offset, limit int) ([]model.Ticket, error) {
	items := []model.Ticket{}
	offset, limit, ok := paging.Window(offset, limit)
	if !ok {
		return items, nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	if err := attachStatus(db, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *TicketService) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	db := s.db.WithContext(ctx)
	var t model.Ticket
	if err := db.First(&t, id).Error; err != nil {
		return nil, ticketError(err)
	}
	one := []model.Ticket{t}
	if err := attachStatus(db, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// Update replaces agent_id, categorie_service and description.
func (s *TicketService) Update(ctx context.Context, id uint64, in model.TicketInput) (*model.Ticket, error) {
	var out []model.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Ticket
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		if err := agentMustExist(tx, in.AgentID); err != nil {
			return err
		}
		in.Apply(&t)
		if err := tx.Save(&t).Error; err != nil {
			return err
		}
		out = []model.Ticket{t}
		return attachStatus(tx, out)
	})
	if err != nil {
		return nil, ticketError(err)
	}
	return &out[0], nil
}

// Delete removes the ticket and its status history. The returned ticket
// carries the status it had at deletion time.
func (s *TicketService) Delete(ctx context.Context, id uint64) (*model.Ticket, error) {
	var out []model.Ticket
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t model.Ticket
		if err := tx.First(&t, id).Error; err != nil {
			return err
		}
		out = []model.Ticket{t}
		if err := attachStatus(tx, out); err != nil {
			return err
		}
		if err := tx.Where("ticket_id = ?", id).Delete(&model.Evenement{}).Error; err != nil {
			return err
		}
		return tx.Delete(&t).Error
	})
	if err != nil {
		return nil, ticketError(err)
	}
	return &out[0], nil
}

// CurrentStatus derives the ticket status from its latest event; nil
// means no event was ever recorded.
func (s *TicketService) CurrentStatus(ctx context.Context, id uint64) (*model.TicketStatus, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return t.Statut, nil
}

// attachStatus fills Statut on each ticket from the events table.
func attachStatus(db *gorm.DB, tickets []model.Ticket) error {
	if len(tickets) == 0 {
		return nil
	}
	ids := make([]uint64, len(tickets))
	for i := range tickets {
		ids[i] = tickets[i].ID
	}
	var events []model.Evenement
	if err := db.Where("ticket_id IN ?", ids).Find(&events).Error; err != nil {
		return err
	}
	byTicket := make(map[uint64][]model.Evenement, len(tickets))
	for _, e := range events {
		byTicket[e.TicketID] = append(byTicket[e.TicketID], e)
	}
	for i := range tickets {
		if latest := model.LatestEvenement(byTicket[tickets[i].ID]); latest != nil {
			st := latest.Statut
			tickets[i].Statut = &st
		}
	}
	return nil
}

func agentMustExist(tx *gorm.DB, agentID uint64) error {
	ok, err := exists(tx, &model.Agent{}, agentID)
	if err != nil {
		return err
	}
	if !ok {
		return errs.ErrUnknownAgent
	}
	return nil
}

func ticketError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrTicketNotFound
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errs.ErrUnknownAgent
	}
	return err
}
