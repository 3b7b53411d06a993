// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"regexp"
	"strings"

	"github.com/package-url/packageurl-go"
)

// Ecosystem identifies the package universe a dependency belongs to.
// Values match the ecosystem strings OSV.dev expects in queries.
type Ecosystem string

const (
	EcosystemPyPI Ecosystem = "PyPI"
	EcosystemNPM  Ecosystem = "npm"
)

// Dependency identifies one package instance to look up: name, version, and
// the ecosystem that disambiguates identically-named packages.
type Dependency struct {
	Name      string
	Version   string
	Ecosystem Ecosystem
}

// pep503Runs matches runs of the separator characters PEP 503 collapses.
var pep503Runs = regexp.MustCompile(`[-_.]+`)

// CanonicalName returns the name used for cache keys and OSV queries.
// PyPI names are normalized per PEP 503 (lowercase, runs of "-_." collapsed
// to "-"); npm names are case-sensitive and pass through unchanged.
func (d Dependency) CanonicalName() string {
	if d.Ecosystem == EcosystemPyPI {
		return pep503Runs.ReplaceAllString(strings.ToLower(d.Name), "-")
	}
	return d.Name
}

// PURL renders the dependency as a package URL, e.g. pkg:npm/lodash@4.17.19.
func (d Dependency) PURL() string {
	purlType := packageurl.TypePyPi
	if d.Ecosystem == EcosystemNPM {
		purlType = packageurl.TypeNPM
	}
	name := d.CanonicalName()
	namespace := ""
	// npm scoped packages carry the scope as the PURL namespace.
	if d.Ecosystem == EcosystemNPM && strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx > 0 {
			namespace = name[:idx]
			name = name[idx+1:]
		}
	}
	return packageurl.NewPackageURL(purlType, namespace, name, d.Version, nil, "").ToString()
}

// String returns name@version for log and error messages.
func (d Dependency) String() string {
	if d.Version == "" {
		return d.Name
	}
	return d.Name + "@" + d.Version
}
