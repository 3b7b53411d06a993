// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// Severity is the normalized severity of a vulnerability.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityUnknown  Severity = "UNKNOWN"
)

// Rank returns a numeric rank for ordering and threshold checks
// (higher = more severe). UNKNOWN ranks below LOW.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Priority is the derived remediation priority of a vulnerability.
type Priority string

const (
	PriorityImmediate Priority = "IMMEDIATE"
	PriorityPlanned   Priority = "PLANNED"
	PriorityMonitor   Priority = "MONITOR"
)

// RemediationRisk estimates how disruptive the recommended upgrade is.
// It is a best-effort triage aid derived from version components, not a
// guarantee about compatibility.
type RemediationRisk string

const (
	RemediationRiskLow     RemediationRisk = "LOW"
	RemediationRiskMedium  RemediationRisk = "MEDIUM"
	RemediationRiskHigh    RemediationRisk = "HIGH"
	RemediationRiskUnknown RemediationRisk = "UNKNOWN"
)

// Vulnerability is one enriched finding as it appears in reports.
type Vulnerability struct {
	ID                string          `json:"id"`
	Aliases           []string        `json:"aliases,omitempty"`
	Severity          Severity        `json:"severity"`
	Summary           string          `json:"summary,omitempty"`
	References        []string        `json:"references,omitempty"`
	Status            string          `json:"status"`
	FixAvailable      bool            `json:"fix_available"`
	RecommendedAction string          `json:"recommended_action"`
	Priority          Priority        `json:"priority"`
	RemediationRisk   RemediationRisk `json:"remediation_risk"`
	Published         string          `json:"published,omitempty"`
	Withdrawn         string          `json:"withdrawn,omitempty"`
}

// PackageResult holds the findings for one scanned dependency.
// LookupFailed distinguishes "the query failed" from "no vulnerabilities
// found"; a failed lookup always has an empty Vulnerabilities slice.
type PackageResult struct {
	Name            string          `json:"name"`
	Version         string          `json:"version"`
	Ecosystem       Ecosystem       `json:"ecosystem"`
	PURL            string          `json:"purl"`
	LookupFailed    bool            `json:"lookup_failed,omitempty"`
	LookupError     string          `json:"lookup_error,omitempty"`
	Vulnerabilities []Vulnerability `json:"vulns"`
}

// Report is the complete scan result handed to renderers. Renderers treat
// it as read-only.
type Report struct {
	GeneratedAt            time.Time       `json:"generated_at"`
	ScannerVersion         string          `json:"scanner_version"`
	Ecosystem              Ecosystem       `json:"ecosystem,omitempty"`
	InputPath              string          `json:"input_file,omitempty"`
	PackageCount           int             `json:"package_count"`
	VulnerablePackageCount int             `json:"vulnerable_package_count"`
	TotalVulnerabilities   int             `json:"total_vulnerabilities"`
	FixableCount           int             `json:"fixable_count"`
	NonFixableCount        int             `json:"non_fixable_count"`
	// Recommendations is the optional project-level improvement checklist,
	// populated only when guidance is requested.
	Recommendations []Recommendation `json:"improvement_recommendations,omitempty"`
	Packages        []PackageResult  `json:"packages"`
}

// Finalize computes the report-level counts from the accumulated package
// results. Called once after all packages are in place.
func (r *Report) Finalize() {
	r.PackageCount = len(r.Packages)
	r.VulnerablePackageCount = 0
	r.TotalVulnerabilities = 0
	r.FixableCount = 0
	r.NonFixableCount = 0
	for _, pkg := range r.Packages {
		if len(pkg.Vulnerabilities) > 0 {
			r.VulnerablePackageCount++
		}
		r.TotalVulnerabilities += len(pkg.Vulnerabilities)
		for _, v := range pkg.Vulnerabilities {
			if v.FixAvailable {
				r.FixableCount++
			} else {
				r.NonFixableCount++
			}
		}
	}
}

// ExceedsSeverity reports whether any finding is at or above the given
// threshold. This is the fail-on signal the CLI turns into an exit code.
func (r *Report) ExceedsSeverity(threshold Severity) bool {
	for _, pkg := range r.Packages {
		for _, v := range pkg.Vulnerabilities {
			if v.Severity.Rank() >= threshold.Rank() {
				return true
			}
		}
	}
	return false
}

// SeverityDistribution returns finding counts keyed by severity.
func (r *Report) SeverityDistribution() map[Severity]int {
	dist := map[Severity]int{
		SeverityCritical: 0,
		SeverityHigh:     0,
		SeverityMedium:   0,
		SeverityLow:      0,
		SeverityUnknown:  0,
	}
	for _, pkg := range r.Packages {
		for _, v := range pkg.Vulnerabilities {
			dist[v.Severity]++
		}
	}
	return dist
}
