package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smart-agence/crm-service/internal/model"
)

// Each action issues exactly one API call and redirects back with a flash.

func (h *Handler) CreateAgent(c *gin.Context) {
	back := c.DefaultPostForm("back", "/?section=agents")
	in, err := agentForm(c)
	if err != nil {
		h.redirect(c, back, "error", err.Error())
		return
	}
	a, err := h.api.CreateAgent(c.Request.Context(), in)
	if err != nil {
		h.redirect(c, back, "error", "Erreur lors de l'enregistrement de l'agent. "+describe(err))
		return
	}
	h.redirect(c, back, "success", fmt.Sprintf("Agent %s enregistré avec succès.", FullName(*a)))
}

func (h *Handler) UpdateAgent(c *gin.Context) {
	back := c.DefaultPostForm("back", "/admin?tab=agents")
	id, ok := h.formID(c, back)
	if !ok {
		return
	}
	in, err := agentForm(c)
	if err != nil {
		h.redirect(c, back, "error", err.Error())
		return
	}
	if _, err := h.api.UpdateAgent(c.Request.Context(), id, in); err != nil {
		h.redirect(c, back, "error", "Erreur lors de la modification. "+describe(err))
		return
	}
	h.redirect(c, back, "success", "Agent modifié avec succès.")
}

func (h *Handler) DeleteAgent(c *gin.Context) {
	back := c.DefaultPostForm("back", "/admin?tab=agents")
	id, ok := h.formID(c, back)
	if !ok {
		return
	}
	if err := h.api.DeleteAgent(c.Request.Context(), id); err != nil {
		h.redirect(c, back, "error", "Erreur lors de la suppression. "+describe(err))
		return
	}
	h.redirect(c, back, "success", "Agent supprimé avec succès.")
}

func (h *Handler) CreateTicket(c *gin.Context) {
	back := c.DefaultPostForm("back", "/?section=tickets")
	in, err := ticketForm(c)
	if err != nil {
		h.redirect(c, back, "error", err.Error())
		return
	}
	t, err := h.api.CreateTicket(c.Request.Context(), in)
	if err != nil {
		h.redirect(c, back, "error", "Erreur lors de la création du ticket. "+describe(err))
		return
	}
	h.redirect(c, back, "success", fmt.Sprintf("Ticket #%d créé avec succès.", t.ID))
}

func (h *Handler) UpdateTicket(c *gin.Context) {
	back := c.DefaultPostForm("back", "/admin?tab=tickets")
	id, ok := h.formID(c, back)
	if !ok {
		return
	}
	in, err := ticketForm(c)
	if err != nil {
		h.redirect(c, back, "error", err.Error())
		return
	}
	if _, err := h.api.UpdateTicket(c.Request.Context(), id, in); err != nil {
		h.redirect(c, back, "error", "Erreur lors de la modification du ticket. "+describe(err))
		return
	}
	h.redirect(c, back, "success", fmt.Sprintf("Ticket #%d modifié.", id))
}

func (h *Handler) SetTicketStatus(c *gin.Context) {
	back := c.DefaultPostForm("back", "/?section=tickets")
	id, ok := h.formID(c, back)
	if !ok {
		return
	}
	st := model.TicketStatus(c.PostForm("statut"))
	if !st.Valid() {
		h.redirect(c, back, "error", "Statut invalide.")
		return
	}
	if _, err := h.api.SetTicketStatus(c.Request.Context(), id, model.EvenementInput{Statut: st}); err != nil {
		h.redirect(c, back, "error", "Erreur lors de la mise à jour du statut. "+describe(err))
		return
	}
	h.redirect(c, back, "success", fmt.Sprintf("Statut du ticket #%d mis à jour vers '%s'.", id, st))
}

func (h *Handler) Reset(c *gin.Context) {
	back := c.DefaultPostForm("back", "/admin?tab=maintenance")
	if c.PostForm("confirm") != "yes" {
		h.redirect(c, back, "error", "Cochez la confirmation avant de réinitialiser.")
		return
	}
	res, err := h.api.Reset(c.Request.Context())
	if err != nil {
		h.redirect(c, back, "error", "Échec de la réinitialisation. "+describe(err))
		return
	}
	h.redirect(c, back, "success", fmt.Sprintf("Base de données réinitialisée (%d agents, %d tickets, %d événements supprimés).",
		res.Agents, res.Tickets, res.Evenements))
}

func (h *Handler) formID(c *gin.Context, back string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.redirect(c, back, "error", "Identifiant invalide.")
		return 0, false
	}
	return id, true
}

func agentForm(c *gin.Context) (model.AgentInput, error) {
	in := model.AgentInput{
		Nom:       strings.TrimSpace(c.PostForm("nom")),
		Prenoms:   strings.TrimSpace(c.PostForm("prenoms")),
		Categorie: model.AgentCategory(c.PostForm("categorie")),
		Email:     optional(c.PostForm("email")),
		Telephone: optional(c.PostForm("telephone")),
	}
	if in.Nom == "" || in.Prenoms == "" || in.Categorie == "" {
		return in, errors.New("Veuillez remplir tous les champs obligatoires (*).")
	}
	if v := strings.TrimSpace(c.PostForm("annee_naissance")); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return in, fmt.Errorf("Année de naissance invalide: %q.", v)
		}
		in.AnneeNaissance = &year
	}
	return in, nil
}

func ticketForm(c *gin.Context) (model.TicketInput, error) {
	in := model.TicketInput{
		CategorieService: strings.TrimSpace(c.PostForm("categorie_service")),
		Description:      optional(c.PostForm("description")),
	}
	agentID, err := strconv.ParseUint(c.PostForm("agent_id"), 10, 64)
	if err != nil || agentID == 0 {
		return in, errors.New("Veuillez choisir un agent.")
	}
	in.AgentID = agentID
	if in.CategorieService == "" {
		return in, errors.New("Veuillez choisir une catégorie de service.")
	}
	return in, nil
}

// optional maps an empty form field to an absent value.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
