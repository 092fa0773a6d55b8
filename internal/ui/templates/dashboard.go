// Package templates holds the dashboard page. The page is a hand-written
// templ component: static shell rendered once, fragments patched in over
// SSE by Datastar.
package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>SIG E-commerce — Management Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@main/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f4f6fa; color: #1f2937; }
.main-header { background: linear-gradient(135deg, #1e3c72 0%, #2a5298 100%); padding: 1.5rem 2rem; color: white; }
.main-header h1 { margin: 0; font-size: 1.6rem; }
.main-header p { margin: 0.3rem 0 0; opacity: 0.85; }
main { padding: 1.5rem 2rem; max-width: 1100px; margin: 0 auto; }
.toolbar { display: flex; gap: 0.8rem; align-items: center; margin-bottom: 1.5rem; flex-wrap: wrap; }
.toolbar button { background: #1e3c72; color: white; border: 0; border-radius: 8px; padding: 0.6rem 1rem; cursor: pointer; }
.toolbar button.secondary { background: #6b7280; }
.kpi-grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; margin-bottom: 1.5rem; }
.metric-card { background: white; padding: 1.2rem; border-radius: 10px; border-left: 4px solid #1e3c72; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.metric-label { color: #6b7280; font-size: 0.85rem; }
.metric-value { font-size: 1.4rem; font-weight: 700; margin-top: 0.3rem; }
.section-title { color: #1e3c72; font-size: 1.2rem; font-weight: 700; margin: 1.5rem 0 0.8rem; border-bottom: 3px solid #1e3c72; padding-bottom: 0.4rem; }
.modern-table { width: 100%; border-collapse: collapse; background: white; border-radius: 10px; overflow: hidden; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
.modern-table th { background: #1e3c72; color: white; text-align: left; padding: 0.6rem 0.8rem; }
.modern-table td { padding: 0.55rem 0.8rem; border-bottom: 1px solid #e5e7eb; }
.insight-success, .insight-warning, .insight-danger, .insight-info { display: flex; gap: 12px; padding: 1rem 1.2rem; border-radius: 10px; margin: 0.8rem 0; border-left: 5px solid; box-shadow: 0 2px 4px rgba(0,0,0,0.08); }
.insight-success { background: #d4edda; border-color: #28a745; }
.insight-warning { background: #fff3cd; border-color: #ffc107; }
.insight-danger { background: #f8d7da; border-color: #dc3545; }
.insight-info { background: #d1ecf1; border-color: #17a2b8; }
.insight-icon { font-size: 1.8rem; }
.insight-title { font-weight: 700; }
.insight-text { font-size: 0.9rem; margin-top: 0.2rem; }
.insight-action { font-size: 0.85rem; margin-top: 0.4rem; opacity: 0.85; }
.empty-note { color: #6b7280; }
</style>
</head>
<body data-on-load="@get('/sse/refresh-all')">
<header class="main-header">
<h1>📊 SIG E-commerce — Management Dashboard</h1>
<p>Complete e-commerce data analysis with automatic insights</p>
</header>
<main>
<div class="toolbar">
<form data-on-submit="@post('/api/upload', {contentType: 'form'}); @get('/sse/refresh-all')" enctype="multipart/form-data">
<input type="file" name="file" accept=".csv,.txt">
<input type="text" name="company" placeholder="Company name">
<button type="submit">📂 Upload CSV</button>
</form>
<button data-on-click="@post('/api/sample'); @get('/sse/refresh-all')">🎲 Load sample data</button>
<button class="secondary" data-on-click="@post('/api/reset'); @get('/sse/refresh-all')">♻️ Reset</button>
</div>
<div class="section-title">📊 Key Indicators</div>
<div id="kpi-cards"></div>
<div class="section-title">🔎 Automatic Insights</div>
<div id="insights-content"></div>
<div class="section-title">📅 Monthly Evolution</div>
<div id="monthly-content"></div>
<div class="section-title">🗺️ Revenue by State</div>
<div id="states-content"></div>
</main>
</body>
</html>`))

// Dashboard returns the page as a templ component.
func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return dashboardPage.Execute(w, nil)
	})
}
