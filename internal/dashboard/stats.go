package dashboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/smart-agence/crm-service/internal/model"
)

// StatusNone buckets tickets that have no event yet.
const StatusNone = "none"

var statusLabels = map[string]string{
	string(model.TicketStatusPending):    "En attente",
	string(model.TicketStatusInProgress): "En cours",
	string(model.TicketStatusDone):       "Terminé",
	string(model.TicketStatusCanceled):   "Annulé",
	StatusNone:                           "Sans statut",
}

var statusColors = map[string]string{
	string(model.TicketStatusPending):    "#ffd700",
	string(model.TicketStatusInProgress): "#1f77b4",
	string(model.TicketStatusDone):       "#2ca02c",
	string(model.TicketStatusCanceled):   "#d62728",
	StatusNone:                           "#adb5bd",
}

// statusKeys is the display order of status buckets.
func statusKeys() []string {
	keys := make([]string, 0, len(model.TicketStatuses)+1)
	for _, s := range model.TicketStatuses {
		keys = append(keys, string(s))
	}
	return append(keys, StatusNone)
}

func StatusOf(t model.Ticket) string {
	if t.Statut == nil {
		return StatusNone
	}
	return string(*t.Statut)
}

func StatusLabel(status string) string {
	if l, ok := statusLabels[status]; ok {
		return l
	}
	return status
}

// Count is one labelled bar or slice of a chart.
type Count struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	N     int    `json:"n"`
}

type Metrics struct {
	TotalAgents       int
	AgentsTransaction int
	AgentsConseil     int
	TotalTickets      int
	Pending           int
	InProgress        int
	Done              int
	Canceled          int
	NoStatus          int
	CompletionRate    float64
	PendingRate       float64
	// Efficiency is 100 minus the pending rate; 100 with no tickets.
	Efficiency float64
}

func ComputeMetrics(agents []model.Agent, tickets []model.Ticket) Metrics {
	m := Metrics{TotalAgents: len(agents), TotalTickets: len(tickets)}
	for _, a := range agents {
		switch a.Categorie {
		case model.AgentCategoryTransaction:
			m.AgentsTransaction++
		case model.AgentCategoryConseil:
			m.AgentsConseil++
		}
	}
	for _, t := range tickets {
		switch StatusOf(t) {
		case string(model.TicketStatusPending):
			m.Pending++
		case string(model.TicketStatusInProgress):
			m.InProgress++
		case string(model.TicketStatusDone):
			m.Done++
		case string(model.TicketStatusCanceled):
			m.Canceled++
		default:
			m.NoStatus++
		}
	}
	m.Efficiency = 100
	if m.TotalTickets > 0 {
		m.CompletionRate = rate(m.Done, m.TotalTickets)
		m.PendingRate = rate(m.Pending, m.TotalTickets)
		m.Efficiency = 100 - m.PendingRate
	}
	return m
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// StatusDistribution counts tickets per status bucket, omitting empty ones.
func StatusDistribution(tickets []model.Ticket) []Count {
	counts := map[string]int{}
	for _, t := range tickets {
		counts[StatusOf(t)]++
	}
	out := []Count{}
	for _, k := range statusKeys() {
		if counts[k] > 0 {
			out = append(out, Count{Key: k, Label: StatusLabel(k), N: counts[k]})
		}
	}
	return out
}

// CategoryDistribution counts tickets per service category, largest first.
func CategoryDistribution(tickets []model.Ticket) []Count {
	counts := map[string]int{}
	for _, t := range tickets {
		c := t.CategorieService
		if c == "" {
			c = "Non définie"
		}
		counts[c]++
	}
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Label: k, N: n})
	}
	sortCounts(out)
	return out
}

func TopServices(tickets []model.Ticket, n int) []Count {
	out := CategoryDistribution(tickets)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortCounts(c []Count) {
	slices.SortFunc(c, func(a, b Count) int {
		if a.N != b.N {
			return cmp.Compare(b.N, a.N)
		}
		return cmp.Compare(a.Label, b.Label)
	})
}

const unknownAgent = "Agent inconnu"

func FullName(a model.Agent) string {
	return strings.TrimSpace(a.Nom + " " + a.Prenoms)
}

func agentNames(agents []model.Agent) map[uint64]string {
	names := make(map[uint64]string, len(agents))
	for _, a := range agents {
		names[a.ID] = FullName(a)
	}
	return names
}

// TicketsPerAgent counts tickets per owning agent in agent order. Tickets
// whose agent is not in agents are grouped under one unknown bar.
func TicketsPerAgent(agents []model.Agent, tickets []model.Ticket) []Count {
	counts := map[uint64]int{}
	for _, t := range tickets {
		counts[t.AgentID]++
	}
	out := []Count{}
	known := 0
	for _, a := range agents {
		if n := counts[a.ID]; n > 0 {
			out = append(out, Count{Key: fmt.Sprint(a.ID), Label: FullName(a), N: n})
			known += n
		}
	}
	if rest := len(tickets) - known; rest > 0 {
		out = append(out, Count{Key: "unknown", Label: unknownAgent, N: rest})
	}
	return out
}

// AgentPerformance is one stacked bar of the performance chart.
type AgentPerformance struct {
	AgentID  uint64         `json:"agent_id"`
	Name     string         `json:"name"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func Performance(agents []model.Agent, tickets []model.Ticket) []AgentPerformance {
	idx := make(map[uint64]int, len(agents))
	out := make([]AgentPerformance, len(agents))
	for i, a := range agents {
		idx[a.ID] = i
		out[i] = AgentPerformance{AgentID: a.ID, Name: shortName(a), ByStatus: map[string]int{}}
	}
	for _, t := range tickets {
		i, ok := idx[t.AgentID]
		if !ok {
			continue
		}
		out[i].Total++
		out[i].ByStatus[StatusOf(t)]++
	}
	return out
}

// shortName renders "Koffi P." with the family name capped at ten runes.
func shortName(a model.Agent) string {
	nom := []rune(a.Nom)
	if len(nom) > 10 {
		nom = nom[:10]
	}
	initial := ""
	if p := []rune(strings.TrimSpace(a.Prenoms)); len(p) > 0 {
		initial = " " + string(p[0]) + "."
	}
	return string(nom) + initial
}

// AgentStats is the per-agent summary shown on the admin page.
type AgentStats struct {
	Assigned    int
	Done        int
	SuccessRate float64
}

func StatsByAgent(tickets []model.Ticket) map[uint64]AgentStats {
	out := map[uint64]AgentStats{}
	for _, t := range tickets {
		s := out[t.AgentID]
		s.Assigned++
		if StatusOf(t) == string(model.TicketStatusDone) {
			s.Done++
		}
		out[t.AgentID] = s
	}
	for id, s := range out {
		s.SuccessRate = rate(s.Done, s.Assigned)
		out[id] = s
	}
	return out
}

// ActiveAgents counts distinct agents owning at least one ticket.
func ActiveAgents(tickets []model.Ticket) int {
	seen := map[uint64]struct{}{}
	for _, t := range tickets {
		seen[t.AgentID] = struct{}{}
	}
	return len(seen)
}

func AgentsPerCategory(agents []model.Agent) []Count {
	counts := map[model.AgentCategory]int{}
	for _, a := range agents {
		counts[a.Categorie]++
	}
	out := []Count{}
	for _, c := range model.AgentCategories {
		if counts[c] > 0 {
			out = append(out, Count{Key: string(c), Label: string(c), N: counts[c]})
		}
	}
	return out
}

const dayLayout = "2006-01-02"

// LastDays counts tickets created on each of the days calendar days ending
// with now's day, oldest first. Days are taken in now's location.
func LastDays(tickets []model.Ticket, now time.Time, days int) []Count {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	out := make([]Count, days)
	pos := make(map[string]int, days)
	for i := range out {
		d := start.AddDate(0, 0, i).Format(dayLayout)
		out[i] = Count{Key: d, Label: d}
		pos[d] = i
	}
	for _, t := range tickets {
		if i, ok := pos[t.DateCreation.In(now.Location()).Format(dayLayout)]; ok {
			out[i].N++
		}
	}
	return out
}

// DailyEvolution counts tickets per creation day over every day that has one.
func DailyEvolution(tickets []model.Ticket, loc *time.Location) []Count {
	counts := map[string]int{}
	for _, t := range tickets {
		counts[t.DateCreation.In(loc).Format(dayLayout)]++
	}
	out := make([]Count, 0, len(counts))
	for d, n := range counts {
		out = append(out, Count{Key: d, Label: d, N: n})
	}
	slices.SortFunc(out, func(a, b Count) int { return cmp.Compare(a.Key, b.Key) })
	return out
}

type AgeSummary struct {
	// Known is the number of agents with a birth year.
	Known int
	Mean  float64
	Min   int
	Max   int
}

func Ages(agents []model.Agent, year int) AgeSummary {
	var s AgeSummary
	sum := 0
	for _, a := range agents {
		if a.AnneeNaissance == nil {
			continue
		}
		age := year - *a.AnneeNaissance
		if s.Known == 0 || age < s.Min {
			s.Min = age
		}
		if s.Known == 0 || age > s.Max {
			s.Max = age
		}
		sum += age
		s.Known++
	}
	if s.Known > 0 {
		s.Mean = float64(sum) / float64(s.Known)
	}
	return s
}

// FilterAgents keeps agents of the given category (empty for all) whose
// nom or prenoms contains search, case-insensitively.
func FilterAgents(agents []model.Agent, category, search string) []model.Agent {
	search = strings.ToLower(strings.TrimSpace(search))
	out := []model.Agent{}
	for _, a := range agents {
		if category != "" && string(a.Categorie) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(a.Nom), search) &&
			!strings.Contains(strings.ToLower(a.Prenoms), search) {
			continue
		}
		out = append(out, a)
	}
	return out
}

var agentSorts = map[string]func(a, b model.Agent) int{
	"nom":                 func(a, b model.Agent) int { return cmp.Compare(strings.ToLower(a.Nom), strings.ToLower(b.Nom)) },
	"prenoms":             func(a, b model.Agent) int { return cmp.Compare(strings.ToLower(a.Prenoms), strings.ToLower(b.Prenoms)) },
	"categorie":           func(a, b model.Agent) int { return cmp.Compare(a.Categorie, b.Categorie) },
	"date_enregistrement": func(a, b model.Agent) int { return a.DateEnregistrement.Compare(b.DateEnregistrement) },
}

// SortAgents sorts in place by one of nom, prenoms, categorie or
// date_enregistrement; unknown keys keep insertion order.
func SortAgents(agents []model.Agent, by string) {
	if f, ok := agentSorts[by]; ok {
		slices.SortStableFunc(agents, f)
	}
}

// TicketRow is a ticket joined with its owner's name for display.
type TicketRow struct {
	model.Ticket
	AgentName string
	Status    string
}

func TicketRows(agents []model.Agent, tickets []model.Ticket) []TicketRow {
	names := agentNames(agents)
	rows := make([]TicketRow, len(tickets))
	for i, t := range tickets {
		name, ok := names[t.AgentID]
		if !ok {
			name = unknownAgent
		}
		rows[i] = TicketRow{Ticket: t, AgentName: name, Status: StatusOf(t)}
	}
	return rows
}

// TicketFilter selects rows; zero fields match everything.
type TicketFilter struct {
	Status   string
	Category string
	AgentID  uint64
}

func FilterTickets(rows []TicketRow, f TicketFilter) []TicketRow {
	out := []TicketRow{}
	for _, r := range rows {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.Category != "" && r.CategorieService != f.Category {
			continue
		}
		if f.AgentID != 0 && r.AgentID != f.AgentID {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Categories lists the distinct service categories in first-seen order.
func Categories(tickets []model.Ticket) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range tickets {
		if t.CategorieService != "" && !seen[t.CategorieService] {
			seen[t.CategorieService] = true
			out = append(out, t.CategorieService)
		}
	}
	return out
}
