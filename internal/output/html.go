// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/bonial-oss/depscan/internal/types"
)

//go:embed templates/report.html.tmpl
var reportTemplate string

// htmlData wraps the report with presentation-only derived values. The
// distribution is keyed by plain strings so the template's index calls
// work without type conversion.
type htmlData struct {
	*types.Report
	Distribution map[string]int
}

var htmlFuncs = template.FuncMap{
	"severityClass": func(s types.Severity) string {
		switch s {
		case types.SeverityCritical:
			return "sev-critical"
		case types.SeverityHigh:
			return "sev-high"
		case types.SeverityMedium:
			return "sev-medium"
		case types.SeverityLow:
			return "sev-low"
		default:
			return "sev-unknown"
		}
	},
	"displayVersion": displayVersion,
}

// WriteHTML renders the report as a standalone HTML page.
func WriteHTML(w io.Writer, report *types.Report) error {
	tmpl, err := template.New("report").Funcs(htmlFuncs).Parse(reportTemplate)
	if err != nil {
		return fmt.Errorf("parsing HTML template: %w", err)
	}
	dist := make(map[string]int)
	for sev, count := range report.SeverityDistribution() {
		dist[string(sev)] = count
	}
	data := htmlData{Report: report, Distribution: dist}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering HTML report: %w", err)
	}
	return nil
}
