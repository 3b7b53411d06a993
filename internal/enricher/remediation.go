// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/osv-scanner/pkg/models"

	"github.com/bonial-oss/depscan/internal/types"
)

const (
	actionNoFix           = "Check references for upgrade or mitigation."
	actionNoSingleVersion = "No single version resolves all known ranges; review references."
	actionUpgradePrefix   = "Upgrade to >= "
)

// fixedBoundaries collects the "fixed" version boundaries of an advisory:
// every fixed event across all affected ranges, plus database_specific
// fixed_in entries (populated by some databases instead of range events).
// Order-stable and de-duplicated.
func fixedBoundaries(v models.Vulnerability) []string {
	var fixed []string
	seen := make(map[string]bool)
	add := func(ver string) {
		ver = strings.TrimSpace(ver)
		if ver == "" || seen[ver] {
			return
		}
		seen[ver] = true
		fixed = append(fixed, ver)
	}

	for _, aff := range v.Affected {
		for _, rng := range aff.Ranges {
			for _, ev := range rng.Events {
				if ev.Fixed != "" {
					add(ev.Fixed)
				}
			}
		}
	}

	if v.DatabaseSpecific != nil {
		switch fi := v.DatabaseSpecific["fixed_in"].(type) {
		case string:
			add(fi)
		case []interface{}:
			for _, item := range fi {
				if s, ok := item.(string); ok {
					add(s)
				}
			}
		}
	}

	return fixed
}

// recommendedAction derives the action text and, when a fix exists, the
// upgrade target: the smallest version at or above every fixed boundary,
// which under a total order is simply the maximum boundary. When the
// boundaries cannot be ordered under the ecosystem's version scheme the
// action degrades to a review-references message and no target is returned.
func recommendedAction(eco types.Ecosystem, fixed []string) (action, target string) {
	if len(fixed) == 0 {
		return actionNoFix, ""
	}

	target = fixed[0]
	for _, candidate := range fixed[1:] {
		cmp, err := compareVersions(eco, candidate, target)
		if err != nil {
			return actionNoSingleVersion, ""
		}
		if cmp > 0 {
			target = candidate
		}
	}
	return actionUpgradePrefix + target, target
}

// Advisory status values surfaced in reports.
const (
	StatusWithdrawn = "Withdrawn"
	StatusFixed     = "Fixed"
	StatusActive    = "Active"
	StatusUnknown   = "Unknown"
)

// statusFor derives the advisory's status for the scanned version:
// withdrawn advisories are flagged as such, an installed version at or
// above a fixed boundary means the finding is already resolved, and
// anything else identifiable is an active finding.
func statusFor(dep types.Dependency, adv models.Vulnerability, fixed []string) string {
	if !adv.Withdrawn.IsZero() {
		return StatusWithdrawn
	}
	if dep.Version != "" {
		for _, boundary := range fixed {
			if versionGTE(dep.Ecosystem, dep.Version, boundary) {
				return StatusFixed
			}
		}
	}
	if !adv.Published.IsZero() || adv.ID != "" || len(adv.Aliases) > 0 {
		return StatusActive
	}
	return StatusUnknown
}

// remediationRisk estimates upgrade disruption from the semantic-version
// component distance between the installed version and the upgrade target.
// Advisory only: non-semantic version schemes degrade to UNKNOWN.
func remediationRisk(installed, target string) types.RemediationRisk {
	if installed == "" || target == "" {
		return types.RemediationRiskUnknown
	}
	from, err := semver.NewVersion(strings.TrimPrefix(installed, "v"))
	if err != nil {
		return types.RemediationRiskUnknown
	}
	to, err := semver.NewVersion(strings.TrimPrefix(target, "v"))
	if err != nil {
		return types.RemediationRiskUnknown
	}
	switch {
	case from.Major() != to.Major():
		return types.RemediationRiskHigh
	case from.Minor() != to.Minor():
		return types.RemediationRiskMedium
	default:
		return types.RemediationRiskLow
	}
}
