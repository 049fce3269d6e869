package model

import "time"

type AgentCategory string

const (
	AgentCategoryTransaction AgentCategory = "transaction"
	AgentCategoryConseil     AgentCategory = "conseil"
)

// AgentCategories lists the categories in display order.
var AgentCategories = []AgentCategory{AgentCategoryTransaction, AgentCategoryConseil}

type TicketStatus string

const (
	TicketStatusPending    TicketStatus = "pending"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusDone       TicketStatus = "done"
	TicketStatusCanceled   TicketStatus = "canceled"
)

// TicketStatuses lists the statuses in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusPending,
	TicketStatusInProgress,
	TicketStatusDone,
	TicketStatusCanceled,
}

func (s TicketStatus) Valid() bool {
	for _, v := range TicketStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Agent struct {
	ID                 uint64        `gorm:"primaryKey" json:"id"`
	Nom                string        `gorm:"not null" json:"nom"`
	Prenoms            string        `gorm:"not null" json:"prenoms"`
	AnneeNaissance     *int          `json:"annee_naissance"`
	Categorie          AgentCategory `gorm:"type:varchar(32);not null" json:"categorie"`
	Email              *string       `gorm:"uniqueIndex" json:"email"`
	Telephone          *string       `json:"telephone"`
	DateEnregistrement time.Time     `gorm:"not null" json:"date_enregistrement"`
}

func (Agent) TableName() string { return "agents" }

type Ticket struct {
	ID               uint64    `gorm:"primaryKey" json:"id"`
	AgentID          uint64    `gorm:"index;not null" json:"agent_id"`
	DateCreation     time.Time `gorm:"not null" json:"date_creation"`
	CategorieService string    `gorm:"not null" json:"categorie_service"`
	Description      *string   `json:"description"`

	// Statut is the status of the latest event; nil until one is recorded.
	Statut *TicketStatus `gorm:"-" json:"statut,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// Evenement is one entry of a ticket's append-only status log.
type Evenement struct {
	ID       uint64       `gorm:"primaryKey" json:"id"`
	TicketID uint64       `gorm:"index;not null" json:"ticket_id"`
	AgentID  uint64       `gorm:"index;not null" json:"agent_id"`
	Date     time.Time    `gorm:"not null" json:"date"`
	Statut   TicketStatus `gorm:"type:varchar(32);not null" json:"statut"`
}

func (Evenement) TableName() string { return "evenements" }

// After reports whether e was recorded after o: later date first, then
// higher id for events sharing a timestamp.
func (e Evenement) After(o Evenement) bool {
	if !e.Date.Equal(o.Date) {
		return e.Date.After(o.Date)
	}
	return e.ID > o.ID
}

// LatestEvenement returns the most recent event or nil for an empty log.
func LatestEvenement(events []Evenement) *Evenement {
	var latest *Evenement
	for i := range events {
		if latest == nil || events[i].After(*latest) {
			latest = &events[i]
		}
	}
	return latest
}
