package dashboard

import "github.com/smart-agence/crm-service/internal/model"

// Chart is a Chart.js configuration reduced to what the pages draw. All
// numbers are computed server side.
type Chart struct {
	Type     string    `json:"type"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
	Stacked  bool      `json:"stacked,omitempty"`
}

type Dataset struct {
	Label           string   `json:"label"`
	Data            []int    `json:"data"`
	BackgroundColor []string `json:"backgroundColor,omitempty"`
	BorderColor     string   `json:"borderColor,omitempty"`
}

var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}

func labelsAndData(counts []Count) ([]string, []int) {
	labels := make([]string, len(counts))
	data := make([]int, len(counts))
	for i, c := range counts {
		labels[i] = c.Label
		data[i] = c.N
	}
	return labels, data
}

func statusPie(counts []Count) Chart {
	labels, data := labelsAndData(counts)
	colors := make([]string, len(counts))
	for i, c := range counts {
		colors[i] = statusColors[c.Key]
	}
	return Chart{Type: "doughnut", Labels: labels, Datasets: []Dataset{{Label: "Tickets", Data: data, BackgroundColor: colors}}}
}

func pie(counts []Count) Chart {
	labels, data := labelsAndData(counts)
	return Chart{Type: "pie", Labels: labels, Datasets: []Dataset{{Label: "Agents", Data: data, BackgroundColor: cycle(len(counts))}}}
}

func bar(label string, counts []Count) Chart {
	labels, data := labelsAndData(counts)
	return Chart{Type: "bar", Labels: labels, Datasets: []Dataset{{Label: label, Data: data, BackgroundColor: cycle(len(counts))}}}
}

func line(label string, counts []Count) Chart {
	labels, data := labelsAndData(counts)
	return Chart{Type: "line", Labels: labels, Datasets: []Dataset{{Label: label, Data: data, BorderColor: palette[0]}}}
}

// performanceChart stacks each agent's tickets by status.
func performanceChart(perf []AgentPerformance) Chart {
	ch := Chart{Type: "bar", Stacked: true, Labels: make([]string, len(perf))}
	for i, p := range perf {
		ch.Labels[i] = p.Name
	}
	for _, st := range []model.TicketStatus{model.TicketStatusDone, model.TicketStatusInProgress, model.TicketStatusPending} {
		ds := Dataset{Label: StatusLabel(string(st)), Data: make([]int, len(perf)), BackgroundColor: []string{statusColors[string(st)]}}
		for i, p := range perf {
			ds.Data[i] = p.ByStatus[string(st)]
		}
		ch.Datasets = append(ch.Datasets, ds)
	}
	return ch
}

func cycle(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}
