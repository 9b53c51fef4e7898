package output

import (
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/selimozcann/StoreHunter/internal/model"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"lower":      func(s model.Status) string { return strings.ToLower(string(s)) },
	"dataURI": func(b64 string) template.URL {
		return template.URL("data:image/png;base64," + b64)
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; background:#fafafa; color:#111; }
header { margin-bottom: 24px; }
h1 { font-size: 26px; margin: 0 0 8px; }
.section { border:1px solid #e5e7eb; border-radius:16px; padding:16px 20px; margin-bottom:18px; background:#fff; box-shadow:0 1px 2px rgba(15,23,42,0.08); }
h2 { font-size:20px; margin:0 0 12px; }
dt { font-weight:600; }
dd { margin:0 0 8px 0; }
.summary-grid { display:grid; gap:12px; grid-template-columns: repeat(auto-fit,minmax(160px,1fr)); }
.summary-card { display:block; padding:12px; border-radius:12px; border:1px solid #cbd5f5; text-decoration:none; color:inherit; position:relative; background:linear-gradient(180deg,#eef2ff,#fff); }
.summary-card[data-active="true"] { border-color:#4f46e5; box-shadow:0 0 0 2px rgba(79,70,229,0.4); }
.summary-card .badge { position:absolute; top:12px; right:12px; padding:2px 10px; border-radius:999px; background:#4f46e5; color:#fff; font-size:12px; }
.meta { color:#6b7280; font-size:12px; }
.table { width:100%; border-collapse:collapse; font-size:14px; }
.table th, .table td { border-bottom:1px solid #e5e7eb; padding:6px 8px; text-align:left; }
.table th { background:#f9fafb; }
.status-pass { color:#16a34a; font-weight:600; }
.status-fail { color:#dc2626; font-weight:600; }
.status-warning { color:#ca8a04; font-weight:600; }
.status-error { color:#6b7280; font-weight:600; }
.chain-url { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:13px; word-break:break-all; }
.shots img { max-width:180px; margin-right:8px; border:1px solid #e5e7eb; border-radius:8px; }
.footer { text-align:center; font-size:12px; color:#6b7280; margin-top:24px; }
@media (prefers-color-scheme: dark) {
        body { background:#0f172a; color:#e2e8f0; }
        .section { background:#1e293b; border-color:#334155; box-shadow:none; }
        .summary-card { background:linear-gradient(180deg,#312e81,#1e293b); border-color:#4338ca; color:#e0e7ff; }
        .meta { color:#94a3b8; }
        .table th { background:#1e293b; }
}
</style>
<script>
document.addEventListener('DOMContentLoaded', function() {
  const cards = document.querySelectorAll('[data-filter]');
  const rows = document.querySelectorAll('.result-row');
  function apply(filter) {
    cards.forEach(c => c.dataset.active = (c.dataset.filter === filter ? 'true' : 'false'));
    rows.forEach(row => {
      row.style.display = (filter === 'all' || row.dataset.status === filter) ? '' : 'none';
    });
  }
  cards.forEach(card => {
    card.addEventListener('click', function (ev) {
      ev.preventDefault();
      apply(card.dataset.filter || 'all');
    });
  });
  apply('all');
});
</script>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p>Tested URL: <span class="chain-url">{{.TestedURL}}</span></p>
  <p class="meta">Generated at {{formatTime .GeneratedAt}}</p>
</header>
<section id="summary" class="section">
  <h2>Summary</h2>
  <div class="summary-grid">
    <a class="summary-card" href="#results" data-filter="all"><strong>Total Devices</strong><span class="badge">{{.Summary.Total}}</span></a>
    <a class="summary-card" href="#results" data-filter="pass"><strong>Passed</strong><span class="badge">{{.Summary.Passed}}</span></a>
    <a class="summary-card" href="#results" data-filter="fail"><strong>Failed</strong><span class="badge">{{.Summary.Failed}}</span></a>
    <a class="summary-card" href="#results" data-filter="warning"><strong>Warnings</strong><span class="badge">{{.Summary.Warnings}}</span></a>
    <a class="summary-card" href="#results" data-filter="error"><strong>Errors</strong><span class="badge">{{.Summary.Errors}}</span></a>
  </div>
  <p class="meta">Success rate {{.Summary.SuccessRate}}% • iOS {{.Summary.IOSSuccess}}/{{.Summary.IOSDevices}} ({{.Summary.IOSSuccessRate}}%) • Android {{.Summary.AndroidSuccess}}/{{.Summary.AndroidDevices}} ({{.Summary.AndroidSuccessRate}}%) • Avg {{.Summary.AverageResponseTime}}ms</p>
</section>
{{- if .OrderedParams}}
<section id="parameters" class="section">
  <h2>Parameters</h2>
  <dl>
  {{- range .OrderedParams }}
    <dt>{{.Key}}</dt>
    <dd><span class="chain-url">{{.Value}}</span></dd>
  {{- end }}
  </dl>
</section>
{{- end}}
<section id="results" class="section">
  <h2>Results</h2>
  <table class="table">
    <thead>
      <tr><th>#</th><th>Device</th><th>Platform</th><th>Status</th><th>Expected</th><th>Actual</th><th>HTTP</th><th>Time (ms)</th></tr>
    </thead>
    <tbody>
    {{range .Results}}
      <tr class="result-row" data-status="{{lower .Status}}">
        <td>{{.Index}}</td>
        <td>{{.Device}}</td>
        <td>{{.Platform}}</td>
        <td class="status-{{lower .Status}}">{{.Status}}</td>
        <td>{{.Expected}}</td>
        <td>{{.Actual}}</td>
        <td>{{if .HTTPStatus}}{{.HTTPStatus}}{{else}}—{{end}}</td>
        <td>{{.ResponseTime}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
</section>
<section id="chains" class="section">
  <h2>Redirect Chains</h2>
  {{range .Results}}
    {{if eq .Status "PASS"}}<details class="result-row" data-status="pass">{{else}}<details class="result-row" data-status="{{lower .Status}}" open>{{end}}
      <summary>{{.Device}} → <span class="chain-url">{{.FinalURL}}</span> <span class="meta">{{len .Chain}} steps</span></summary>
      {{if .Error}}<p class="meta">Error: {{.Error}}</p>{{end}}
      <ol>
      {{range .Chain}}
        <li class="chain-url">{{.}}</li>
      {{end}}
      </ol>
      {{if .Screenshots}}
      <div class="shots">
        {{range .Screenshots}}<img alt="step {{.Step}}" title="{{.URL}}" src="{{dataURI .Image}}">{{end}}
      </div>
      {{end}}
    </details>
  {{end}}
</section>
<footer class="footer">
  StoreHunter report generated at {{formatTime .GeneratedAt}}
</footer>
</body>
</html>
`))

// RenderHTML renders the HTML report using the provided data.
func RenderHTML(w io.Writer, data PageData) error {
	if data.Params != nil {
		data.OrderedParams = orderParams(data.Params)
	}
	return htmlTemplate.Execute(w, data)
}
