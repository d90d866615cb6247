package export

import (
	"html/template"
	"io"
	"time"

	"github.com/existflow/eisenhower/internal/model"
	"github.com/existflow/eisenhower/internal/tasks"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Eisenhower Matrix Tasks</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { margin-bottom: 0; }
.generated { color: #666; margin-top: .25rem; }
.stats { display: flex; gap: 2rem; margin: 1.5rem 0; }
.stats div { border: 1px solid #ddd; padding: .5rem 1rem; }
section { page-break-inside: avoid; margin-bottom: 1.5rem; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #ddd; padding: .35rem .5rem; text-align: left; vertical-align: top; }
.done td { color: #888; text-decoration: line-through; }
.empty { color: #888; font-style: italic; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>Eisenhower Matrix Tasks</h1>
<p class="generated">Generated {{.Generated}}</p>
<div class="stats">
<div>Total: {{.Stats.Total}}</div>
<div>Completed: {{.Stats.Completed}}</div>
<div>Completion: {{.Stats.CompletionRate}}%</div>
<div>Overdue: {{.Stats.Overdue}}</div>
</div>
{{range .Sections}}
<section>
<h2>{{.Label}} <small>({{len .Tasks}})</small></h2>
{{if .Tasks}}
<table>
<tr><th>Title</th><th>Description</th><th>Priority</th><th>Due</th><th>Tags</th><th>Status</th></tr>
{{range .Tasks}}
<tr{{if .Completed}} class="done"{{end}}>
<td>{{.Title}}</td>
<td>{{.Description}}</td>
<td>{{.Priority}}</td>
<td>{{if .DueDate}}{{.DueDate.Format "2006-01-02"}}{{end}}</td>
<td>{{range $i, $t := .Tags}}{{if $i}}, {{end}}{{$t}}{{end}}</td>
<td>{{if .Completed}}Done{{else}}Open{{end}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="empty">No tasks</p>
{{end}}
</section>
{{end}}
</body>
</html>
`))

type htmlSection struct {
	Label string
	Tasks []model.Task
}

type htmlReport struct {
	Generated string
	Stats     tasks.Stats
	Sections  []htmlSection
}

// HTML writes a printable report with statistics and one section per
// quadrant
func HTML(w io.Writer, list []model.Task, now time.Time) error {
	groups := tasks.GroupByQuadrant(list)
	report := htmlReport{
		Generated: now.Format("January 2, 2006 15:04"),
		Stats:     tasks.Statistics(list, now),
	}
	for _, q := range model.Quadrants {
		report.Sections = append(report.Sections, htmlSection{Label: q.Label(), Tasks: groups[q]})
	}
	return htmlTemplate.Execute(w, report)
}
