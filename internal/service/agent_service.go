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

// AgentServicer is what the HTTP handlers depend on.
type AgentServicer interface {
	Create(ctx context.Context, in model.AgentInput) (*model.Agent, error)
	List(ctx context.Context, offset, limit int) ([]model.Agent, error)
	GetByID(ctx context.Context, id uint64) (*model.Agent, error)
	Update(ctx context.Context, id uint64, in model.AgentInput) (*model.Agent, error)
	Delete(ctx context.Context, id uint64) (*model.Agent, error)
}

type AgentService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAgentService(db *gorm.DB) *AgentService {
	return &AgentService{db: db, now: utcNow}
}

func (s *AgentService) Create(ctx context.Context, in model.AgentInput) (*model.Agent, error) {
	a := &model.Agent{DateEnregistrement: s.now()}
	in.Apply(a)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := emailAvailable(tx, a.Email, 0); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
	if err != nil {
		return nil, agentError(err)
	}
	return a, nil
}

func (s *AgentService) List(ctx context.Context, offset, limit int) ([]model.Agent, error) {
	items := []model.Agent{}
	offset, limit, ok := paging.Window(offset, limit)
	if !ok {
		return items, nil
	}
	if err := s.db.WithContext(ctx).Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *AgentService) GetByID(ctx context.Context, id uint64) (*model.Agent, error) {
	var a model.Agent
	if err := s.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, agentError(err)
	}
	return &a, nil
}

// Update replaces every editable field. id and date_enregistrement never change.
func (s *AgentService) Update(ctx context.Context, id uint64, in model.AgentInput) (*model.Agent, error) {
	var a model.Agent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		in.Apply(&a)
		if err := emailAvailable(tx, a.Email, id); err != nil {
			return err
		}
		return tx.Save(&a).Error
	})
	if err != nil {
		return nil, agentError(err)
	}
	return &a, nil
}

// Delete removes the agent together with the tickets it owns, the events
// of those tickets and the events it recorded on other tickets.
func (s *AgentService) Delete(ctx context.Context, id uint64) (*model.Agent, error) {
	var a model.Agent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&a, id).Error; err != nil {
			return err
		}
		var ticketIDs []uint64
		if err := tx.Model(&model.Ticket{}).Where("agent_id = ?", id).Pluck("id", &ticketIDs).Error; err != nil {
			return err
		}
		events := tx.Where("agent_id = ?", id)
		if len(ticketIDs) > 0 {
			events = tx.Where("agent_id = ? OR ticket_id IN ?", id, ticketIDs)
		}
		if err := events.Delete(&model.Evenement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("agent_id = ?", id).Delete(&model.Ticket{}).Error; err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
	if err != nil {
		return nil, agentError(err)
	}
	return &a, nil
}

func emailAvailable(tx *gorm.DB, email *string, selfID uint64) error {
	if email == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&model.Agent{}).Where("email = ? AND id <> ?", *email, selfID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return errs.ErrEmailTaken
	}
	return nil
}

func agentError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.ErrAgentNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.ErrEmailTaken
	}
	return err
}
