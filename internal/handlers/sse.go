package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sig-dashboard/internal/services"
)

const maxStateRows = 10

var kpiCardsTemplate = template.Must(template.New("kpiCards").Parse(`
<div id="kpi-cards" class="kpi-grid">
<div class="metric-card"><div class="metric-label">🛒 Orders</div><div class="metric-value">{{.TotalOrders}}</div></div>
<div class="metric-card"><div class="metric-label">💰 Revenue</div><div class="metric-value">R$ {{printf "%.2f" .TotalRevenue}}</div></div>
<div class="metric-card"><div class="metric-label">👥 Customers</div><div class="metric-value">{{.TotalCustomers}}</div></div>
<div class="metric-card"><div class="metric-label">📦 Items</div><div class="metric-value">{{.TotalItems}}</div></div>
<div class="metric-card"><div class="metric-label">🎯 Avg Ticket</div><div class="metric-value">R$ {{printf "%.2f" .AvgTicket}}</div></div>
</div>`))

var insightsTemplate = template.Must(template.New("insights").Parse(`
<div id="insights-content">
{{range .}}<div class="insight-{{.Type}}">
<div class="insight-icon">{{.Icon}}</div>
<div>
<div class="insight-title">{{.Title}}</div>
<div class="insight-text">{{.Text}}</div>
<div class="insight-action">💡 {{.Action}}</div>
</div>
</div>{{else}}<p class="empty-note">No insights for the current dataset.</p>{{end}}
</div>`))

var monthlyTemplate = template.Must(template.New("monthly").Parse(`
<div id="monthly-content">
<table class="modern-table">
<thead><tr><th>Period</th><th>Orders</th><th>Revenue</th><th>Revenue Growth</th><th>Orders Growth</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.Period}}</td>
<td>{{.Orders}}</td>
<td><strong>R$ {{printf "%.2f" .Revenue}}</strong></td>
<td>{{printf "%.1f" .RevenueGrowth}}%</td>
<td>{{printf "%.1f" .OrdersGrowth}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

var statesTemplate = template.Must(template.New("states").Parse(`
<div id="states-content">
<table class="modern-table">
<thead><tr><th>State</th><th>Orders</th><th>Revenue</th><th>Share</th></tr></thead>
<tbody>
{{range .}}<tr>
<td>{{.State}}</td>
<td>{{.Orders}}</td>
<td><strong>R$ {{printf "%.2f" .Revenue}}</strong></td>
<td>{{printf "%.1f" .Share}}%</td>
</tr>{{end}}
</tbody>
</table>
</div>`))

const noDatasetFragment = `<div id="%s"><p class="empty-note">No dataset loaded. Upload a CSV or load the sample data.</p></div>`

type SSEHandlers struct {
	data   *services.Dataset
	logger *slog.Logger
}

func NewSSEHandlers(data *services.Dataset, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		data:   data,
		logger: logger,
	}
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder
	err := tmpl.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) patch(w http.ResponseWriter, r *http.Request, elementID string, tmpl *template.Template, data any) {
	sse := datastar.NewSSE(w, r)

	if !h.data.Loaded() {
		sse.PatchElements(strings.Replace(noDatasetFragment, "%s", elementID, 1))
		flush(w)
		return
	}

	html, err := render(tmpl, data)
	if err != nil {
		h.logger.Error("render fragment", "element", elementID, "error", err)
		return
	}
	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleKPICards(w http.ResponseWriter, r *http.Request) {
	var data any
	if snap := h.data.Snapshot(); snap != nil {
		data = snap.KPIs
	}
	h.patch(w, r, "kpi-cards", kpiCardsTemplate, data)
}

func (h *SSEHandlers) HandleInsights(w http.ResponseWriter, r *http.Request) {
	var data any
	if snap := h.data.Snapshot(); snap != nil {
		data = snap.Insights
	}
	h.patch(w, r, "insights-content", insightsTemplate, data)
}

func (h *SSEHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	var data any
	if snap := h.data.Snapshot(); snap != nil {
		data = snap.KPIs.Monthly
	}
	h.patch(w, r, "monthly-content", monthlyTemplate, data)
}

func (h *SSEHandlers) HandleStates(w http.ResponseWriter, r *http.Request) {
	states := h.data.StateRevenue()
	if len(states) > maxStateRows {
		states = states[:maxStateRows]
	}
	h.patch(w, r, "states-content", statesTemplate, states)
}

// HandleRefreshAll re-renders every dashboard fragment and ships the chart
// data as signals in one SSE response.
func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	snap := h.data.Snapshot()
	if snap == nil {
		for _, id := range []string{"kpi-cards", "insights-content", "monthly-content", "states-content"} {
			sse.PatchElements(strings.Replace(noDatasetFragment, "%s", id, 1))
		}
		flush(w)
		return
	}

	fragments := []struct {
		tmpl *template.Template
		data any
	}{
		{kpiCardsTemplate, snap.KPIs},
		{insightsTemplate, snap.Insights},
		{monthlyTemplate, snap.KPIs.Monthly},
		{statesTemplate, h.data.StateRevenue()},
	}
	for _, f := range fragments {
		html, err := render(f.tmpl, f.data)
		if err != nil {
			h.logger.Error("render fragment", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	signals, err := json.Marshal(map[string]any{
		"monthlyData": snap.KPIs.Monthly,
		"statesData":  h.data.StateRevenue(),
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(signals)
	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
