// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/depscan/internal/types"
)

func tableReport() *types.Report {
	r := &types.Report{
		Packages: []types.PackageResult{
			{
				Name: "lodash", Version: "4.17.19", Ecosystem: types.EcosystemNPM,
				Vulnerabilities: []types.Vulnerability{
					{
						ID:                "GHSA-35jh-r3h4-6jhm",
						Aliases:           []string{"CVE-2020-8203"},
						Severity:          types.SeverityHigh,
						Summary:           "Prototype pollution in lodash",
						FixAvailable:      true,
						RecommendedAction: "Upgrade to >= 4.17.21",
						Priority:          types.PriorityImmediate,
						RemediationRisk:   types.RemediationRiskLow,
					},
				},
			},
			{
				Name: "express", Version: "4.18.0", Ecosystem: types.EcosystemNPM,
				Vulnerabilities: []types.Vulnerability{},
			},
			{
				Name: "left-pad", Version: "1.3.0", Ecosystem: types.EcosystemNPM,
				LookupFailed: true, LookupError: "HTTP 503",
				Vulnerabilities: []types.Vulnerability{},
			},
		},
	}
	r.Finalize()
	return r
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, tableReport(), TableConfig{}))
	out := buf.String()

	assert.Contains(t, out, "Dependency scan complete. Total: 1 (CRITICAL: 0, HIGH: 1, MEDIUM: 0, LOW: 0, UNKNOWN: 0)")
	assert.Contains(t, out, "!! lodash 4.17.19 - 1 vulnerability(ies)")
	assert.Contains(t, out, "OK express 4.18.0 - no known vulnerabilities")
	assert.Contains(t, out, "FAIL left-pad 1.3.0 - lookup failed: HTTP 503")
	assert.Contains(t, out, "GHSA-35jh-r3h4-6jhm")
	assert.Contains(t, out, "CVE-2020-8203")
	assert.Contains(t, out, "Upgrade to >= 4.17.21")
	assert.Contains(t, out, "IMMEDIATE")
	assert.NotContains(t, out, "\x1b[", "non-terminal output must be plain")
}

func TestWriteTable_NoFindingsOmitsTable(t *testing.T) {
	r := &types.Report{Packages: []types.PackageResult{
		{Name: "express", Version: "4.18.0", Vulnerabilities: []types.Vulnerability{}},
	}}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, r, TableConfig{}))
	out := buf.String()

	assert.Contains(t, out, "OK express")
	assert.NotContains(t, out, "Severity", "no findings table without findings")
}

func TestWriteTable_EmptyReport(t *testing.T) {
	r := &types.Report{}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, r, TableConfig{}))
	assert.Contains(t, buf.String(), "Total: 0")
}

func TestWriteTable_SortBySeverity(t *testing.T) {
	r := &types.Report{Packages: []types.PackageResult{
		{Name: "aaa", Version: "1.0.0", Vulnerabilities: []types.Vulnerability{
			{ID: "LOW-VULN", Severity: types.SeverityLow},
		}},
		{Name: "zzz", Version: "1.0.0", Vulnerabilities: []types.Vulnerability{
			{ID: "CRIT-VULN", Severity: types.SeverityCritical},
		}},
	}}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, r, TableConfig{SortBy: "severity"}))
	out := buf.String()

	assert.Less(t, strings.Index(out, "CRIT-VULN"), strings.Index(out, "LOW-VULN"),
		"critical findings render first")
}

func TestTruncateWords(t *testing.T) {
	assert.Equal(t, "short text", truncateWords("short text", 12))
	assert.Equal(t, "", truncateWords("", 12))
	assert.Equal(t, "a b c...", truncateWords("a b c d e", 3))
}

func TestSortRows_PreservesOrderByDefault(t *testing.T) {
	pkg := &types.PackageResult{Name: "pkg"}
	rows := []tableRow{
		{pkg: pkg, vuln: &types.Vulnerability{ID: "first", Severity: types.SeverityLow}},
		{pkg: pkg, vuln: &types.Vulnerability{ID: "second", Severity: types.SeverityCritical}},
	}
	sortRows(rows, "")
	assert.Equal(t, "first", rows[0].vuln.ID)
}

func TestDisplayVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", displayVersion("1.2.3"))
	assert.Equal(t, "(no version)", displayVersion(""))
}
