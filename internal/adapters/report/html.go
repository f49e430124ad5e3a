package report

import (
	"fmt"
	"html/template"
	"time"

	"github.com/glyphprobe/glyphprobe/internal/domain"
)

// htmlData flattens RunResults for the template
type htmlData struct {
	Results     *domain.RunResults
	GeneratedAt string
	Successful  []domain.AttackResult
	AvgSim      string
	SuccessRate string
}

func newHTMLData(results *domain.RunResults) htmlData {
	var successful []domain.AttackResult
	for _, r := range results.AttackResults {
		if r.Success {
			successful = append(successful, r)
		}
	}
	return htmlData{
		Results:     results,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Successful:  successful,
		AvgSim:      fmt.Sprintf("%.2f", results.VariantStats.AvgSimilarity),
		SuccessRate: fmt.Sprintf("%.2f%%", results.AttackStats.SuccessRate),
	}
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>glyphprobe assessment report</title>
<style>
body { font-family: 'Segoe UI', sans-serif; margin: 0; background: #f4f4f8; color: #222; }
.header { background: #2d2a55; color: #fff; padding: 30px 40px; }
.header h1 { margin: 0 0 4px 0; }
.content { padding: 30px 40px; }
.cards { display: flex; gap: 16px; flex-wrap: wrap; margin-bottom: 30px; }
.card { background: #fff; border-radius: 8px; padding: 18px 24px; box-shadow: 0 1px 4px rgba(0,0,0,.12); min-width: 160px; }
.card h3 { margin: 0; font-size: .85em; color: #777; text-transform: uppercase; }
.card .value { font-size: 1.9em; font-weight: bold; color: #2d2a55; }
table { width: 100%; border-collapse: collapse; background: #fff; margin-bottom: 30px; }
th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #e4e4ec; font-size: .9em; }
th { background: #2d2a55; color: #fff; }
.ok { color: #1a7f37; font-weight: bold; }
.fail { color: #b42318; }
h2 { color: #2d2a55; border-bottom: 2px solid #2d2a55; padding-bottom: 6px; }
</style>
</head>
<body>
<div class="header">
<h1>glyphprobe assessment report</h1>
<div>{{.Results.Target}} &middot; {{.Results.Email}} &middot; generated {{.GeneratedAt}}</div>
</div>
<div class="content">

<h2>Summary</h2>
<div class="cards">
<div class="card"><h3>Variants</h3><div class="value">{{.Results.VariantStats.Total}}</div></div>
<div class="card"><h3>Avg similarity</h3><div class="value">{{.AvgSim}}</div></div>
<div class="card"><h3>Unicode points</h3><div class="value">{{.Results.VariantStats.UniqueUnicodePoints}}</div></div>
<div class="card"><h3>Attacks</h3><div class="value">{{.Results.AttackStats.TotalAttacks}}</div></div>
<div class="card"><h3>Successful</h3><div class="value">{{.Results.AttackStats.Successful}}</div></div>
<div class="card"><h3>Success rate</h3><div class="value">{{.SuccessRate}}</div></div>
</div>

{{if .Results.Scan}}
<h2>Reconnaissance</h2>
<table>
<tr><th>Password reset endpoints</th><td>{{range .Results.Scan.ForgotPasswordEndpoints}}{{.}}<br>{{end}}</td></tr>
<tr><th>Server</th><td>{{.Results.Scan.Technology.Server}}</td></tr>
<tr><th>Framework</th><td>{{.Results.Scan.Technology.Framework}}</td></tr>
<tr><th>CMS</th><td>{{.Results.Scan.Technology.CMS}}</td></tr>
</table>

<h2>Security headers</h2>
<table>
<tr><th>Header</th><th>Present</th></tr>
{{range $name, $present := .Results.Scan.SecurityHeaders}}
<tr><td>{{$name}}</td><td>{{if $present}}<span class="ok">yes</span>{{else}}<span class="fail">no</span>{{end}}</td></tr>
{{end}}
</table>
{{end}}

{{if .Successful}}
<h2>Successful attacks</h2>
<table>
<tr><th>Endpoint</th><th>Variant</th><th>Technique</th><th>Status</th><th>Indicators</th></tr>
{{range .Successful}}
<tr><td>{{.TargetURL}}</td><td>{{.Variant}}</td><td>{{.Technique}}</td><td>{{.StatusCode}}</td><td>{{range .Indicators}}{{.}}<br>{{end}}</td></tr>
{{end}}
</table>
{{end}}

<h2>Generated variants</h2>
<table>
<tr><th>#</th><th>Variant</th><th>Technique</th><th>Code points</th><th>Similarity</th></tr>
{{range $i, $v := .Results.Variants}}
<tr><td>{{$i}}</td><td>{{$v.Variant}}</td><td>{{$v.Technique}}</td><td>{{range $v.UnicodePoints}}U+{{printf "%04X" .}} {{end}}</td><td>{{printf "%.2f" $v.VisualSimilarity}}</td></tr>
{{end}}
</table>

</div>
</body>
</html>
`))
