package model

import (
	"encoding/json"
	"strings"
	"time"
)

// AgentInput is the editable part of an Agent, used for both create and
// full-replace update.
type AgentInput struct {
	Nom            string        `json:"nom" binding:"required"`
	Prenoms        string        `json:"prenoms" binding:"required"`
	AnneeNaissance *int          `json:"annee_naissance"`
	Categorie      AgentCategory `json:"categorie" binding:"required,oneof=transaction conseil"`
	Email          *string       `json:"email" binding:"omitempty,email"`
	Telephone      *string       `json:"telephone"`
}

// Apply copies the editable fields onto a; id and registration date are
// left untouched.
func (in AgentInput) Apply(a *Agent) {
	a.Nom = in.Nom
	a.Prenoms = in.Prenoms
	a.AnneeNaissance = in.AnneeNaissance
	a.Categorie = in.Categorie
	a.Email = blankToNil(in.Email)
	a.Telephone = blankToNil(in.Telephone)
}

// UnmarshalJSON drops blank contact fields before binding validates them,
// so "email": "" reads as no email rather than an invalid one.
func (in *AgentInput) UnmarshalJSON(data []byte) error {
	type plain AgentInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.Email = blankToNil(p.Email)
	p.Telephone = blankToNil(p.Telephone)
	*in = AgentInput(p)
	return nil
}

// blankToNil treats a whitespace-only contact field as absent. Anything
// else is kept as sent.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

type TicketInput struct {
	AgentID          uint64  `json:"agent_id" binding:"required,gt=0"`
	CategorieService string  `json:"categorie_service" binding:"required"`
	Description      *string `json:"description"`
}

func (in TicketInput) Apply(t *Ticket) {
	t.AgentID = in.AgentID
	t.CategorieService = in.CategorieService
	t.Description = in.Description
}

// EvenementInput records a status change. AgentID defaults to the
// ticket's owner when omitted.
type EvenementInput struct {
	Statut  TicketStatus `json:"statut" binding:"required,oneof=pending in_progress done canceled"`
	AgentID *uint64      `json:"agent_id,omitempty" binding:"omitempty,gt=0"`
}

// ResetResult counts the rows removed by a full wipe.
type ResetResult struct {
	Agents     int64 `json:"agents"`
	Tickets    int64 `json:"tickets"`
	Evenements int64 `json:"evenements"`
}

// Export is the JSON snapshot downloaded from the admin page and written
// by the export command.
type Export struct {
	Agents     []Agent   `json:"agents"`
	Tickets    []Ticket  `json:"tickets"`
	ExportDate time.Time `json:"export_date"`
}
