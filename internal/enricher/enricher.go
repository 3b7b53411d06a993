// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package enricher turns raw OSV advisories into normalized, de-duplicated
// vulnerability entries augmented with remediation metadata. Every
// derivation is a pure function of the raw record and the installed
// version: enriching the same input twice yields identical output.
package enricher

import (
	"time"

	"github.com/google/osv-scanner/pkg/models"

	"github.com/bonial-oss/depscan/internal/types"
)

// Enrich converts the advisories from one OSV query response into the
// report-facing entries for the given dependency. A nil or empty advisory
// list yields an empty slice. Advisories sharing an ID are merged into one
// entry whose alias set is the order-stable union of all occurrences.
// Malformed fields in an advisory degrade that field to its unknown value;
// they never abort enrichment of the record.
func Enrich(dep types.Dependency, advisories []models.Vulnerability) []types.Vulnerability {
	entries := make([]types.Vulnerability, 0, len(advisories))
	byID := make(map[string]int)

	for _, adv := range advisories {
		if idx, ok := byID[adv.ID]; ok && adv.ID != "" {
			entries[idx].Aliases = mergeAliases(entries[idx].Aliases, adv.Aliases)
			continue
		}
		byID[adv.ID] = len(entries)
		entries = append(entries, enrichOne(dep, adv))
	}

	return entries
}

// enrichOne builds a single enriched entry from one advisory.
func enrichOne(dep types.Dependency, adv models.Vulnerability) types.Vulnerability {
	severity := NormalizeSeverity(adv)
	fixed := fixedBoundaries(adv)
	action, target := recommendedAction(dep.Ecosystem, fixed)

	return types.Vulnerability{
		ID:                adv.ID,
		Aliases:           mergeAliases(nil, adv.Aliases),
		Severity:          severity,
		Summary:           adv.Summary,
		References:        referenceURLs(adv.References),
		Status:            statusFor(dep, adv, fixed),
		FixAvailable:      len(fixed) > 0,
		RecommendedAction: action,
		Priority:          PriorityFor(severity),
		RemediationRisk:   remediationRisk(dep.Version, target),
		Published:         formatTime(adv.Published),
		Withdrawn:         formatTime(adv.Withdrawn),
	}
}

// mergeAliases unions alias lists, preserving first-seen order and
// dropping empties and duplicates.
func mergeAliases(existing, incoming []string) []string {
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a] = true
	}
	for _, a := range incoming {
		if a == "" || seen[a] {
			continue
		}
		seen[a] = true
		existing = append(existing, a)
	}
	return existing
}

// referenceURLs extracts reference URLs in their upstream order.
func referenceURLs(refs []models.Reference) []string {
	var urls []string
	for _, r := range refs {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
	}
	return urls
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
