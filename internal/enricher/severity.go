// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"strconv"
	"strings"

	"github.com/google/osv-scanner/pkg/models"

	"github.com/bonial-oss/depscan/internal/types"
)

// NormalizeSeverity maps the heterogeneous severity shapes OSV advisories
// carry onto the canonical severity enum. A recognized textual label from
// database_specific wins over a numeric score; a numeric score is bucketed
// by CVSS thresholds; anything else is UNKNOWN. Total and deterministic:
// every input maps to exactly one severity.
func NormalizeSeverity(v models.Vulnerability) types.Severity {
	if sev, ok := severityFromLabel(v.DatabaseSpecific); ok {
		return sev
	}
	if sev, ok := severityFromScores(v.Severity); ok {
		return sev
	}
	return types.SeverityUnknown
}

// severityFromLabel reads database_specific.severity, a free-form string
// some databases populate (e.g. GHSA uses MODERATE where CVSS says MEDIUM).
func severityFromLabel(ds map[string]interface{}) (types.Severity, bool) {
	if ds == nil {
		return types.SeverityUnknown, false
	}
	raw, ok := ds["severity"].(string)
	if !ok {
		return types.SeverityUnknown, false
	}
	label := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(label, "CRITICAL"):
		return types.SeverityCritical, true
	case strings.Contains(label, "HIGH"):
		return types.SeverityHigh, true
	case strings.Contains(label, "MEDIUM"), strings.Contains(label, "MODERATE"):
		return types.SeverityMedium, true
	case strings.Contains(label, "LOW"):
		return types.SeverityLow, true
	}
	return types.SeverityUnknown, false
}

// severityFromScores buckets the first parseable numeric score from the
// top-level severity array. CVSS vector strings do not parse as floats and
// are skipped.
func severityFromScores(scores []models.Severity) (types.Severity, bool) {
	for _, s := range scores {
		score, err := strconv.ParseFloat(strings.TrimSpace(s.Score), 64)
		if err != nil {
			continue
		}
		switch {
		case score >= 9.0:
			return types.SeverityCritical, true
		case score >= 7.0:
			return types.SeverityHigh, true
		case score >= 4.0:
			return types.SeverityMedium, true
		case score > 0:
			return types.SeverityLow, true
		}
	}
	return types.SeverityUnknown, false
}

// PriorityFor maps severity to remediation priority. Pure function of
// severity, independent of fix availability. UNKNOWN maps to MONITOR, the
// same bucket as LOW.
func PriorityFor(sev types.Severity) types.Priority {
	switch sev {
	case types.SeverityCritical, types.SeverityHigh:
		return types.PriorityImmediate
	case types.SeverityMedium:
		return types.PriorityPlanned
	default:
		return types.PriorityMonitor
	}
}
