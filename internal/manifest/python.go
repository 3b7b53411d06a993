// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package manifest parses dependency manifests into the ordered dependency
// list the scanner consumes. Supported inputs: requirements.txt,
// pyproject.toml and pip-freeze output for Python; package-lock.json,
// yarn.lock, pnpm-lock.yaml and package.json for Node.
package manifest

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bonial-oss/depscan/internal/types"
)

// requirementLine matches "package<op>version" with an optional trailing
// comment, e.g. "requests>=2.28.0  # http client".
var requirementLine = regexp.MustCompile(
	`^\s*([a-zA-Z0-9][a-zA-Z0-9._-]*)\s*(?:==|>=|<=|!=|~=|<|>)\s*([a-zA-Z0-9.*+!\-]+)?\s*$`)

// requirementNameOnly matches a bare package name with no version.
var requirementNameOnly = regexp.MustCompile(`^\s*([a-zA-Z0-9][a-zA-Z0-9._-]*)\s*$`)

// freezeLine matches strictly pinned "name==version" pip-freeze output.
var freezeLine = regexp.MustCompile(
	`^\s*([a-zA-Z0-9][a-zA-Z0-9._-]*)\s*==\s*([a-zA-Z0-9.*+!\-]+)\s*$`)

// ParseRequirements parses requirements.txt content. Comments, blank lines
// and pip option lines (-e, -r, --hash, ...) are skipped; a dependency
// without a pinned version keeps an empty Version.
func ParseRequirements(content string) []types.Dependency {
	var deps []types.Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "-") {
			continue
		}
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if m := requirementLine.FindStringSubmatch(line); m != nil {
			deps = append(deps, types.Dependency{
				Name:      m[1],
				Version:   m[2],
				Ecosystem: types.EcosystemPyPI,
			})
			continue
		}
		if m := requirementNameOnly.FindStringSubmatch(line); m != nil {
			deps = append(deps, types.Dependency{
				Name:      m[1],
				Ecosystem: types.EcosystemPyPI,
			})
		}
	}
	return deps
}

// ParseFreeze parses pip-freeze style output. Only strict "name==version"
// lines are accepted; editable installs and comments are skipped.
func ParseFreeze(content string) []types.Dependency {
	var deps []types.Dependency
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-e") {
			continue
		}
		if m := freezeLine.FindStringSubmatch(line); m != nil {
			deps = append(deps, types.Dependency{
				Name:      m[1],
				Version:   m[2],
				Ecosystem: types.EcosystemPyPI,
			})
		}
	}
	return deps
}

// pyproject is the subset of pyproject.toml we read.
type pyproject struct {
	Project struct {
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
}

// ParsePyprojectFile extracts [project.dependencies] from a pyproject.toml.
// Each entry is a requirements-style specifier string.
func ParsePyprojectFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var project pyproject
	if err := toml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	var deps []types.Dependency
	for _, spec := range project.Project.Dependencies {
		deps = append(deps, ParseRequirements(spec)...)
	}
	return deps, nil
}

// ParseRequirementsFile reads and parses a requirements file from disk.
func ParseRequirementsFile(path string) ([]types.Dependency, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ParseRequirements(string(data)), nil
}
