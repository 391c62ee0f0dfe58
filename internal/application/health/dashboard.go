package health

import (
	"bytes"
	"fmt"
	"html/template"
)

var dashboardTmpl = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Canoe · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta http-equiv="refresh" content="15">
  <style>
    body { font-family: system-ui, sans-serif; background: #f6f7f9; color: #1f2933; margin: 0; padding: 40px; }
    h1 { margin: 0 0 24px; font-size: 32px; }
    h1.issue { color: #b91c1c; }
    .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(260px, 1fr)); gap: 16px; }
    .card { background: #fff; border-radius: 12px; padding: 20px; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
    .label { text-transform: uppercase; font-size: 11px; letter-spacing: 1px; color: #7b8794; margin-bottom: 12px; }
    .row { display: flex; justify-content: space-between; padding: 4px 0; font-size: 14px; }
    .ok { color: #047857; } .err { color: #b91c1c; }
    footer { margin-top: 24px; font-size: 13px; color: #7b8794; }
  </style>
</head>
<body>
  {{if eq .Status "ok"}}<h1>All Systems Operational</h1>{{else}}<h1 class="issue">System Issues Detected</h1>{{end}}
  <div class="grid">
    <div class="card">
      <div class="label">Traffic</div>
      <div class="row"><span>Requests</span><span>{{.Traffic.TotalRequests}}</span></div>
      <div class="row"><span>Successful</span><span class="ok">{{.Traffic.SuccessCount}}</span></div>
      <div class="row"><span>Failed</span><span class="err">{{.Traffic.FailedCount}}</span></div>
      <div class="row"><span>Success Rate</span><span>{{.Traffic.SuccessRate}}%</span></div>
      <div class="row"><span>Avg Latency</span><span>{{.AvgLatency}}ms</span></div>
    </div>
    <div class="card">
      <div class="label">Runtime</div>
      <div class="row"><span>Uptime</span><span>{{.Runtime.UptimeSeconds}}s</span></div>
      <div class="row"><span>Heap Used</span><span>{{.Runtime.Memory.HeapUsed}} MB</span></div>
      <div class="row"><span>Allocated</span><span>{{.Runtime.Memory.Alloc}} MB</span></div>
      <div class="row"><span>Goroutines</span><span>{{.Runtime.Goroutines}}</span></div>
      <div class="row"><span>Platform</span><span>{{.Runtime.Platform}}</span></div>
    </div>
    <div class="card">
      <div class="label">Dependencies</div>
      {{range .Deps}}<div class="row"><span>{{.Name}}</span><span class="{{if eq .Status "error"}}err{{else}}ok{{end}}">{{.Detail}}</span></div>
      {{end}}
    </div>
  </div>
  <footer>Last request: {{.LastRequest}} · <a href="/health/json">/health/json</a> · <a href="/health/errors">/health/errors</a></footer>
</body>
</html>`))

type dashboardDep struct {
	Name   string
	Status string
	Detail string
}

type dashboardView struct {
	CollectResult
	AvgLatency  string
	LastRequest string
	Deps        []dashboardDep
}

// RenderDashboardHTML returns the status page served at GET /health.
func RenderDashboardHTML(health CollectResult) string {
	view := dashboardView{
		CollectResult: health,
		AvgLatency:    fmt.Sprint(health.Traffic.AvgResponseTime),
		LastRequest:   "-",
	}
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		view.LastRequest = fmt.Sprintf("%v %v from %v", m["method"], m["path"], m["ip"])
	}
	for _, name := range []string{"database", "redis", "queue"} {
		dep, ok := health.Dependencies[name]
		if !ok {
			continue
		}
		detail := dep.Status
		switch {
		case dep.Pending != nil:
			detail = fmt.Sprintf("%d pending", *dep.Pending)
		case dep.PingMs != nil:
			if ms, ok := dep.PingMs.(*int64); ok && ms != nil {
				detail = fmt.Sprintf("%s (%d ms)", dep.Status, *ms)
			}
		}
		view.Deps = append(view.Deps, dashboardDep{Name: name, Status: dep.Status, Detail: detail})
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, view); err != nil {
		return "<!DOCTYPE html><p>dashboard unavailable: " + template.HTMLEscapeString(err.Error()) + "</p>"
	}
	return buf.String()
}
