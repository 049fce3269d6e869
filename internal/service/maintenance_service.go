package service

import (
	"context"

	"github.com/smart-agence/crm-service/internal/model"
	"gorm.io/gorm"
)

type MaintenanceServicer interface {
	Reset(ctx context.Context) (*model.ResetResult, error)
}

type MaintenanceService struct {
	db *gorm.DB
}

func NewMaintenanceService(db *gorm.DB) *MaintenanceService {
	return &MaintenanceService{db: db}
}

// Reset wipes agents, tickets and events in one transaction, children first.
func (s *MaintenanceService) Reset(ctx context.Context) (*model.ResetResult, error) {
	var res model.ResetResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			count *int64
		}{
			{&model.Evenement{}, &res.Evenements},
			{&model.Ticket{}, &res.Tickets},
			{&model.Agent{}, &res.Agents},
		}
		for _, st := range steps {
			r := tx.Where("1 = 1").Delete(st.model)
			if r.Error != nil {
				return r.Error
			}
			*st.count = r.RowsAffected
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
