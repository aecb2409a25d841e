package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"chartlab/domain/cleaning"
	"chartlab/domain/table"
)

const reportPageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Cleaning Report</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
</style>
</head>
<body>
%s
</body>
</html>`

// handleReportPage renders the last cleaning report as an HTML page
func (a *App) handleReportPage(w http.ResponseWriter, r *http.Request) {
	ds, err := a.session.Dataset()
	if err != nil {
		a.writeError(w, err)
		return
	}

	md := buildReportMarkdown(ds, a.session.Report())

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.Render(doc, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, reportPageShell, body)
}

// buildReportMarkdown composes the report document. It always includes the
// dataset summary; the cleaning section appears only after a cleaning pass.
func buildReportMarkdown(ds *table.Dataset, report *cleaning.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Dataset: %s\n\n", ds.Name)
	fmt.Fprintf(&b, "%d rows, %d columns.\n\n", ds.RowCount(), len(ds.Columns))

	b.WriteString("| Column | Type | Cardinality | Nulls |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, col := range ds.Columns {
		fmt.Fprintf(&b, "| %s | %s | %d | %d |\n", col.Name, col.Type, col.Cardinality, col.NullCount)
	}
	b.WriteString("\n")

	if report == nil {
		b.WriteString("No cleaning pass has been applied.\n")
		return b.String()
	}

	b.WriteString("## Cleaning Report\n\n")
	fmt.Fprintf(&b, "- Column: `%s`\n", report.Column)
	fmt.Fprintf(&b, "- Method: `%s`\n", report.Method)
	fmt.Fprintf(&b, "- Action: `%s`\n", report.Action)
	fmt.Fprintf(&b, "- Bounds: [%g, %g]\n", report.Bounds.Lower, report.Bounds.Upper)
	fmt.Fprintf(&b, "- Rows checked: %d\n", report.RowsChecked)
	fmt.Fprintf(&b, "- Rows flagged: %d\n", report.FlaggedCount())

	if report.FlaggedCount() > 0 {
		b.WriteString("\nFlagged row indices (positions in the raw dataset):\n\n")
		for _, idx := range report.FlaggedRows {
			fmt.Fprintf(&b, "- %d\n", idx)
		}
	}
	return b.String()
}
