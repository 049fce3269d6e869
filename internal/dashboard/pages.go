package dashboard

import (
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/smart-agence/crm-service/internal/model"
)

// ServiceCategories are offered by the ticket creation form.
var ServiceCategories = []string{"Consultation", "Transaction", "Support", "Réclamation", "Information"}

const adminTicketLimit = 20

type AgentFilter struct {
	Category string
	Search   string
	Sort     string
}

type HomeView struct {
	Page
	Section string

	Metrics Metrics
	Charts  map[string]Chart

	AllAgents   []model.Agent
	Agents      []model.Agent
	AgentFilter AgentFilter

	Rows         []TicketRow
	TicketFilter TicketFilter
	Categories   []string
	Selected     *TicketRow

	AgentCategories   []model.AgentCategory
	Statuses          []model.TicketStatus
	ServiceCategories []string
}

var homeSections = []string{"overview", "agents", "tickets"}

func (h *Handler) Home(c *gin.Context) {
	agents, tickets, warn := h.fetch(c.Request.Context())
	v := HomeView{
		Page:              h.page(c, "Smart Agence", "home"),
		Section:           oneOf(c.Query("section"), homeSections),
		AllAgents:         agents,
		AgentCategories:   model.AgentCategories,
		Statuses:          model.TicketStatuses,
		ServiceCategories: ServiceCategories,
	}
	v.Warning = warn

	switch v.Section {
	case "overview":
		v.Metrics = ComputeMetrics(agents, tickets)
		v.Charts = map[string]Chart{
			"status":   statusPie(StatusDistribution(tickets)),
			"agents":   bar("Tickets", TicketsPerAgent(agents, tickets)),
			"services": bar("Tickets", CategoryDistribution(tickets)),
		}
	case "agents":
		v.AgentFilter = AgentFilter{Category: c.Query("categorie"), Search: c.Query("q")}
		v.Agents = FilterAgents(agents, v.AgentFilter.Category, v.AgentFilter.Search)
	case "tickets":
		v.TicketFilter = ticketFilter(c)
		rows := TicketRows(agents, tickets)
		v.Rows = FilterTickets(rows, v.TicketFilter)
		v.Categories = Categories(tickets)
		if id, err := strconv.ParseUint(c.Query("ticket"), 10, 64); err == nil {
			for i := range rows {
				if rows[i].ID == id {
					v.Selected = &rows[i]
				}
			}
		}
		if v.Selected == nil && len(rows) > 0 {
			v.Selected = &rows[0]
		}
	}
	h.render(c, "home", v)
}

type DashboardView struct {
	Page
	Metrics         Metrics
	Charts          map[string]Chart
	AgentCategories []Count
	Ages            AgeSummary
	TopServices     []Count
}

func (h *Handler) Dashboard(c *gin.Context) {
	agents, tickets, warn := h.fetch(c.Request.Context())
	now := h.now()
	v := DashboardView{
		Page:            h.page(c, "Tableau de bord", "dashboard"),
		Metrics:         ComputeMetrics(agents, tickets),
		AgentCategories: AgentsPerCategory(agents),
		Ages:            Ages(agents, now.Year()),
		TopServices:     TopServices(tickets, 3),
		Charts: map[string]Chart{
			"status":      statusPie(StatusDistribution(tickets)),
			"performance": performanceChart(Performance(agents, tickets)),
			"categories":  bar("Tickets", CategoryDistribution(tickets)),
			"evolution":   line("Tickets créés", LastDays(tickets, now, 7)),
		},
	}
	v.Warning = warn
	h.render(c, "dashboard", v)
}

type AdminAgent struct {
	model.Agent
	Stats AgentStats
}

type AdminView struct {
	Page
	Tab string

	Agents      []AdminAgent
	AgentFilter AgentFilter
	AllAgents   []model.Agent

	Metrics      Metrics
	Rows         []TicketRow
	Matches      int
	TicketFilter TicketFilter
	Categories   []string

	ActiveAgents int
	Charts       map[string]Chart

	APIReachable bool
	TicketCount  int

	AgentCategories []model.AgentCategory
	Statuses        []model.TicketStatus
	SortKeys        []string
}

var adminTabs = []string{"agents", "tickets", "stats", "export", "maintenance"}

func (h *Handler) Admin(c *gin.Context) {
	ctx := c.Request.Context()
	agents, tickets, warn := h.fetch(ctx)
	v := AdminView{
		Page:            h.page(c, "Administration", "admin"),
		Tab:             oneOf(c.Query("tab"), adminTabs),
		AllAgents:       agents,
		AgentCategories: model.AgentCategories,
		Statuses:        model.TicketStatuses,
		SortKeys:        []string{"nom", "prenoms", "categorie", "date_enregistrement"},
	}
	v.Warning = warn

	switch v.Tab {
	case "agents":
		v.AgentFilter = AgentFilter{
			Category: c.Query("categorie"),
			Search:   c.Query("q"),
			Sort:     oneOf(c.Query("sort"), v.SortKeys),
		}
		filtered := FilterAgents(agents, v.AgentFilter.Category, v.AgentFilter.Search)
		SortAgents(filtered, v.AgentFilter.Sort)
		stats := StatsByAgent(tickets)
		for _, a := range filtered {
			v.Agents = append(v.Agents, AdminAgent{Agent: a, Stats: stats[a.ID]})
		}
	case "tickets":
		v.Metrics = ComputeMetrics(agents, tickets)
		v.TicketFilter = ticketFilter(c)
		v.Categories = Categories(tickets)
		rows := FilterTickets(TicketRows(agents, tickets), v.TicketFilter)
		v.Matches = len(rows)
		if len(rows) > adminTicketLimit {
			rows = rows[:adminTicketLimit]
		}
		v.Rows = rows
	case "stats":
		v.Metrics = ComputeMetrics(agents, tickets)
		v.ActiveAgents = ActiveAgents(tickets)
		v.Charts = map[string]Chart{
			"categories": pie(AgentsPerCategory(agents)),
			"perAgent":   bar("Tickets", TicketsPerAgent(agents, tickets)),
			"daily":      line("Tickets", DailyEvolution(tickets, h.now().Location())),
		}
	case "maintenance":
		v.APIReachable = h.api.Health(ctx) == nil
		v.TicketCount = len(tickets)
	}
	h.render(c, "admin", v)
}

// Export downloads agents and tickets as one JSON document.
func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	agents, err := h.api.ListAgents(ctx)
	if err != nil {
		h.redirect(c, "/admin?tab=export", "error", "Export impossible. "+describe(err))
		return
	}
	tickets, err := h.api.ListTickets(ctx)
	if err != nil {
		h.redirect(c, "/admin?tab=export", "error", "Export impossible. "+describe(err))
		return
	}
	now := h.now()
	body, err := json.MarshalIndent(model.Export{Agents: agents, Tickets: tickets, ExportDate: now}, "", "    ")
	if err != nil {
		h.redirect(c, "/admin?tab=export", "error", err.Error())
		return
	}
	c.Header("Content-Disposition", `attachment; filename="export_smart_agence_`+now.Format(dayLayout)+`.json"`)
	c.Data(http.StatusOK, "application/json", body)
}

func ticketFilter(c *gin.Context) TicketFilter {
	f := TicketFilter{Status: c.Query("statut"), Category: c.Query("service")}
	if id, err := strconv.ParseUint(c.Query("agent"), 10, 64); err == nil {
		f.AgentID = id
	}
	return f
}

// oneOf returns v when allowed contains it, else allowed[0].
func oneOf(v string, allowed []string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return allowed[0]
}

// redirect sends the browser back to target with a flash message.
func (h *Handler) redirect(c *gin.Context, target, level, msg string) {
	u, err := url.Parse(safeTarget(target))
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("flash", msg)
	q.Set("level", level)
	u.RawQuery = q.Encode()
	c.Redirect(http.StatusSeeOther, u.String())
}

// safeTarget only accepts local absolute paths.
func safeTarget(target string) string {
	if len(target) == 0 || target[0] != '/' || (len(target) > 1 && (target[1] == '/' || target[1] == '\\')) {
		return "/"
	}
	return target
}
