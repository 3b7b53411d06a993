// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package enricher

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	npm "github.com/aquasecurity/go-npm-version/pkg"
	pep440 "github.com/aquasecurity/go-pep440-version"

	"github.com/bonial-oss/depscan/internal/types"
)

// compareVersions orders two version strings under the ecosystem's scheme:
// PEP 440 for PyPI, npm semver for npm, coerced semver otherwise. Returns
// <0, 0, >0 like strings.Compare, or an error when either version cannot be
// parsed under any applicable scheme.
func compareVersions(eco types.Ecosystem, a, b string) (int, error) {
	switch eco {
	case types.EcosystemNPM:
		av, errA := npm.NewVersion(a)
		bv, errB := npm.NewVersion(b)
		if errA == nil && errB == nil {
			return npmCompare(av, bv), nil
		}
	case types.EcosystemPyPI:
		av, errA := pep440.Parse(a)
		bv, errB := pep440.Parse(b)
		if errA == nil && errB == nil {
			return pepCompare(av, bv), nil
		}
	}

	// Fall back to semver with coercion; handles plain x.y.z in any ecosystem.
	av, err := semver.NewVersion(strings.TrimPrefix(a, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	bv, err := semver.NewVersion(strings.TrimPrefix(b, "v"))
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return av.Compare(bv), nil
}

func npmCompare(a, b npm.Version) int {
	switch {
	case a.LessThan(b):
		return -1
	case a.GreaterThan(b):
		return 1
	default:
		return 0
	}
}

func pepCompare(a, b pep440.Version) int {
	switch {
	case a.LessThan(b):
		return -1
	case a.GreaterThan(b):
		return 1
	default:
		return 0
	}
}

// versionGTE reports whether a >= b under the ecosystem's scheme. Returns
// false when the versions are not comparable.
func versionGTE(eco types.Ecosystem, a, b string) bool {
	cmp, err := compareVersions(eco, a, b)
	if err != nil {
		return false
	}
	return cmp >= 0
}
