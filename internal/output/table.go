// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	aqtable "github.com/aquasecurity/table"
	"github.com/aquasecurity/tml"
	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/bonial-oss/depscan/internal/types"
)

const maxSummaryWords = 12

// TableConfig controls terminal rendering.
type TableConfig struct {
	SortBy     string // "severity", "package", "" (preserve scan order)
	IsTerminal bool   // enables ANSI styling
}

// IsOutputToTerminal returns true if the writer is stdout connected to a
// character device (TTY).
func IsOutputToTerminal(output io.Writer) bool {
	return output == os.Stdout && term.IsTerminal(int(os.Stdout.Fd()))
}

// tableRow pairs a finding with its package for flat rendering.
type tableRow struct {
	pkg  *types.PackageResult
	vuln *types.Vulnerability
}

// WriteTable renders the report to the terminal: a total line, per-package
// status lines, and a findings table when there is anything to show.
func WriteTable(w io.Writer, report *types.Report, cfg TableConfig) error {
	fmt.Fprintf(w, "Dependency scan complete. %s\n\n", severitySummary(report))

	var rows []tableRow
	for i := range report.Packages {
		pkg := &report.Packages[i]
		switch {
		case pkg.LookupFailed:
			writeStatusLine(w, cfg.IsTerminal, "<red>FAIL</red>", "FAIL",
				fmt.Sprintf("%s %s - lookup failed: %s", pkg.Name, displayVersion(pkg.Version), pkg.LookupError))
		case len(pkg.Vulnerabilities) == 0:
			writeStatusLine(w, cfg.IsTerminal, "<green>OK</green>", "OK",
				fmt.Sprintf("%s %s - no known vulnerabilities", pkg.Name, displayVersion(pkg.Version)))
		default:
			writeStatusLine(w, cfg.IsTerminal, "<red>!!</red>", "!!",
				fmt.Sprintf("%s %s - %d vulnerability(ies)", pkg.Name, displayVersion(pkg.Version), len(pkg.Vulnerabilities)))
			for j := range pkg.Vulnerabilities {
				rows = append(rows, tableRow{pkg: pkg, vuln: &pkg.Vulnerabilities[j]})
			}
		}
	}

	if len(rows) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	sortRows(rows, cfg.SortBy)
	writeFindingsTable(w, rows, cfg)
	return nil
}

// writeStatusLine writes one per-package status line, with or without ANSI
// markup depending on the terminal flag.
func writeStatusLine(w io.Writer, isTerminal bool, marker, plainMarker, text string) {
	if isTerminal {
		_ = tml.Fprintf(w, "  "+marker+" %s\n", text)
		return
	}
	fmt.Fprintf(w, "  %s %s\n", plainMarker, text)
}

// writeFindingsTable renders the flat findings table.
func writeFindingsTable(w io.Writer, rows []tableRow, cfg TableConfig) {
	tw := newTableWriter(w, cfg.IsTerminal)
	tw.SetHeaders("Package", "Version", "Vulnerability", "Severity", "Priority", "Fix", "Recommended Action", "Risk")
	for _, row := range rows {
		severity := string(row.vuln.Severity)
		if cfg.IsTerminal {
			severity = colorizeSeverity(severity)
		}
		tw.AddRow(
			row.pkg.Name,
			displayVersion(row.pkg.Version),
			vulnIDCell(row.vuln),
			severity,
			string(row.vuln.Priority),
			formatFix(row.vuln.FixAvailable),
			row.vuln.RecommendedAction,
			string(row.vuln.RemediationRisk),
		)
	}
	tw.Render()
}

// newTableWriter creates a table writer with borders, auto-merge, and row
// separators; header and line styles use ANSI formatting on terminals.
func newTableWriter(w io.Writer, isTerminal bool) *aqtable.Table {
	tw := aqtable.New(w)
	if isTerminal {
		tw.SetHeaderStyle(aqtable.StyleBold)
		tw.SetLineStyle(aqtable.StyleDim)
	}
	tw.SetBorders(true)
	tw.SetAutoMerge(true)
	tw.SetRowLines(true)
	return tw
}

// vulnIDCell renders the finding ID with its aliases and a truncated
// summary underneath.
func vulnIDCell(v *types.Vulnerability) string {
	cell := v.ID
	if len(v.Aliases) > 0 {
		cell += "\n" + strings.Join(v.Aliases, ", ")
	}
	if summary := truncateWords(v.Summary, maxSummaryWords); summary != "" {
		cell += "\n" + summary
	}
	return cell
}

// severitySummary returns a line like:
// Total: 5 (CRITICAL: 1, HIGH: 1, MEDIUM: 1, LOW: 2, UNKNOWN: 0)
func severitySummary(report *types.Report) string {
	dist := report.SeverityDistribution()
	return fmt.Sprintf("Total: %d (CRITICAL: %d, HIGH: %d, MEDIUM: %d, LOW: %d, UNKNOWN: %d)",
		report.TotalVulnerabilities,
		dist[types.SeverityCritical], dist[types.SeverityHigh],
		dist[types.SeverityMedium], dist[types.SeverityLow], dist[types.SeverityUnknown])
}

// severityColors maps severity names to terminal color functions.
var severityColors = map[string]func(a ...any) string{
	"UNKNOWN":  color.New(color.FgCyan).SprintFunc(),
	"LOW":      color.New(color.FgBlue).SprintFunc(),
	"MEDIUM":   color.New(color.FgYellow).SprintFunc(),
	"HIGH":     color.New(color.FgHiRed).SprintFunc(),
	"CRITICAL": color.New(color.FgRed).SprintFunc(),
}

// colorizeSeverity returns the severity string wrapped in ANSI color codes.
func colorizeSeverity(severity string) string {
	if fn, ok := severityColors[severity]; ok {
		return fn(severity)
	}
	return severity
}

// sortRows sorts the findings rows based on the given sort key.
func sortRows(rows []tableRow, sortBy string) {
	switch sortBy {
	case "severity":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].vuln.Severity.Rank() > rows[j].vuln.Severity.Rank()
		})
	case "package":
		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].pkg.Name < rows[j].pkg.Name
		})
	default:
		// preserve scan order
	}
}

// truncateWords limits text to maxWords words, appending "..." if truncated.
func truncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) <= maxWords {
		return text
	}
	return strings.Join(words[:maxWords], " ") + "..."
}

func formatFix(available bool) string {
	if available {
		return "YES"
	}
	return "NO"
}

func displayVersion(v string) string {
	if v == "" {
		return "(no version)"
	}
	return v
}
