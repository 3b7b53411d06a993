// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bonial-oss/depscan/internal/types"
)

// packageLock is the subset of package-lock.json we read: the npm v7+
// "packages" map, with the v6 "dependencies" tree as fallback.
type packageLock struct {
	Packages     map[string]lockPackage `json:"packages"`
	Dependencies map[string]lockDepV6   `json:"dependencies"`
}

type lockPackage struct {
	Version string `json:"version"`
}

type lockDepV6 struct {
	Version      string               `json:"version"`
	Dependencies map[string]lockDepV6 `json:"dependencies"`
}

// ParsePackageLockFile parses package-lock.json (npm v7+ "packages" map, or
// the v6 nested dependencies tree). Versions come resolved from the
// lockfile; (name, version) pairs are de-duplicated.
func ParsePackageLockFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var lock packageLock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	seen := make(map[string]bool)
	var deps []types.Dependency
	add := func(name, version string) {
		if name == "" || version == "" {
			return
		}
		key := name + "@" + version
		if seen[key] {
			return
		}
		seen[key] = true
		deps = append(deps, types.Dependency{Name: name, Version: version, Ecosystem: types.EcosystemNPM})
	}

	if len(lock.Packages) > 0 {
		for key, pkg := range lock.Packages {
			if key == "" {
				continue
			}
			add(lockPackageName(key), pkg.Version)
		}
		return sortDeps(deps), nil
	}

	var walk func(tree map[string]lockDepV6)
	walk = func(tree map[string]lockDepV6) {
		for name, node := range tree {
			add(name, node.Version)
			if len(node.Dependencies) > 0 {
				walk(node.Dependencies)
			}
		}
	}
	walk(lock.Dependencies)
	return sortDeps(deps), nil
}

// sortDeps orders a map-derived dependency list by name, then version. Map
// iteration order is random in Go, and the scan report preserves input
// order, so parsers that range over maps must impose their own.
func sortDeps(deps []types.Dependency) []types.Dependency {
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Version < deps[j].Version
	})
	return deps
}

// lockPackageName extracts the package name from a v7 lockfile key like
// "node_modules/@scope/pkg" or "node_modules/foo/node_modules/bar".
func lockPackageName(key string) string {
	idx := strings.LastIndex(key, "node_modules/")
	if idx >= 0 {
		key = key[idx+len("node_modules/"):]
	}
	return key
}

// packageJSON is the subset of package.json we read.
type packageJSON struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// ParsePackageJSONFile returns the direct dependencies declared in a
// package.json. Versions may be ranges (^1.2.0); they are used as declared.
// Prefer a lockfile when one exists; Detect does that automatically.
func ParsePackageJSONFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var deps []types.Dependency
	for _, section := range []map[string]string{pkg.Dependencies, pkg.DevDependencies, pkg.OptionalDependencies} {
		for name, version := range section {
			deps = append(deps, types.Dependency{
				Name:      name,
				Version:   strings.TrimSpace(version),
				Ecosystem: types.EcosystemNPM,
			})
		}
	}
	return sortDeps(deps), nil
}

// yarnBlockStart matches a classic yarn.lock block header like
// `lodash@^4.17.0:` or `"@scope/pkg@npm:1.0.0":`.
var yarnBlockStart = regexp.MustCompile(`^"?([^@\s"][^@\s"]*|@[^@\s"]+)@(?:npm:)?[^:]+"?:\s*$`)

// yarnVersionLine matches the resolved version line inside a block.
var yarnVersionLine = regexp.MustCompile(`^\s+version\s+"([^"]+)"\s*$`)

// ParseYarnLockFile parses a classic-format yarn.lock: block headers name
// the package, the indented version line names the resolved version.
func ParseYarnLockFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	seen := make(map[string]bool)
	var deps []types.Dependency
	current := ""
	for _, line := range strings.Split(string(data), "\n") {
		if m := yarnBlockStart.FindStringSubmatch(line); m != nil {
			current = strings.Trim(m[1], `"`)
			continue
		}
		m := yarnVersionLine.FindStringSubmatch(line)
		if m == nil || current == "" {
			continue
		}
		key := current + "@" + m[1]
		if !seen[key] {
			seen[key] = true
			deps = append(deps, types.Dependency{Name: current, Version: m[1], Ecosystem: types.EcosystemNPM})
		}
		current = ""
	}
	return deps, nil
}

// pnpmLock is the subset of pnpm-lock.yaml we read. Package keys look like
// "/lodash/4.17.21" (v6) or "lodash@4.17.21" (v9, under snapshots).
type pnpmLock struct {
	Packages  map[string]pnpmPackage `yaml:"packages"`
	Snapshots map[string]pnpmPackage `yaml:"snapshots"`
}

type pnpmPackage struct {
	Version string `yaml:"version"`
}

// ParsePnpmLockFile parses pnpm-lock.yaml.
func ParsePnpmLockFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var lock pnpmLock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	entries := lock.Packages
	if len(entries) == 0 {
		entries = lock.Snapshots
	}

	seen := make(map[string]bool)
	var deps []types.Dependency
	for key, pkg := range entries {
		name, version := pnpmEntry(key, pkg.Version)
		if name == "" || version == "" {
			continue
		}
		dedupe := name + "@" + version
		if seen[dedupe] {
			continue
		}
		seen[dedupe] = true
		deps = append(deps, types.Dependency{Name: name, Version: version, Ecosystem: types.EcosystemNPM})
	}
	return sortDeps(deps), nil
}

// pnpmEntry splits a pnpm package key into name and version, preferring an
// explicit version from the entry body.
func pnpmEntry(key, version string) (string, string) {
	key = strings.TrimPrefix(key, "/")
	// Strip peer-dependency suffixes like "(react@18.2.0)".
	if idx := strings.Index(key, "("); idx > 0 {
		key = key[:idx]
	}
	name := key
	if at := strings.LastIndex(key, "@"); at > 0 {
		name = key[:at]
		if version == "" {
			version = key[at+1:]
		}
	} else if slash := strings.LastIndex(key, "/"); slash > 0 {
		// v6 "/name/version" keys.
		name = key[:slash]
		if version == "" {
			version = key[slash+1:]
		}
	}
	return name, version
}

// nodeLockfiles lists the lockfiles Detect prefers, in priority order.
var nodeLockfiles = []string{"package-lock.json", "yarn.lock", "pnpm-lock.yaml"}

// parseNodeFile dispatches on the Node manifest file name. For package.json
// a sibling lockfile wins when present, since it carries resolved versions.
func parseNodeFile(path string) ([]types.Dependency, string, error) {
	switch filepath.Base(path) {
	case "package-lock.json":
		deps, err := ParsePackageLockFile(path)
		return deps, path, err
	case "yarn.lock":
		deps, err := ParseYarnLockFile(path)
		return deps, path, err
	case "pnpm-lock.yaml":
		deps, err := ParsePnpmLockFile(path)
		return deps, path, err
	case "package.json":
		for _, lock := range nodeLockfiles {
			lockPath := filepath.Join(filepath.Dir(path), lock)
			if _, err := os.Stat(lockPath); err == nil {
				return parseNodeFile(lockPath)
			}
		}
		deps, err := ParsePackageJSONFile(path)
		return deps, path, err
	}
	return nil, path, fmt.Errorf("unsupported Node manifest: %s", path)
}
