// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bonial-oss/depscan/internal/types"
)

// Input is the resolved manifest: the ecosystem, the ordered dependency
// list, and the file the dependencies actually came from.
type Input struct {
	Ecosystem types.Ecosystem
	Deps      []types.Dependency
	Path      string
	// FromLockfile is true when versions are resolved (lockfile or pinned)
	// rather than declared ranges.
	FromLockfile bool
}

var pythonManifests = []string{"requirements.txt", "pyproject.toml"}

// DetectEcosystem determines the ecosystem for a path. Files are matched by
// name; directories are probed for Node lockfiles first, then Python
// manifests. An override of "python" or "node" wins for directories.
func DetectEcosystem(path, override string) (types.Ecosystem, error) {
	switch override {
	case "python":
		return types.EcosystemPyPI, nil
	case "node":
		return types.EcosystemNPM, nil
	case "":
	default:
		return "", fmt.Errorf("unknown ecosystem %q (want python or node)", override)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	if !info.IsDir() {
		switch filepath.Base(path) {
		case "requirements.txt", "pyproject.toml":
			return types.EcosystemPyPI, nil
		case "package.json", "package-lock.json", "yarn.lock", "pnpm-lock.yaml":
			return types.EcosystemNPM, nil
		}
		// Unrecognized file names default to Python requirements format.
		return types.EcosystemPyPI, nil
	}

	for _, name := range append(append([]string{}, nodeLockfiles...), "package.json") {
		if _, err := os.Stat(filepath.Join(path, name)); err == nil {
			return types.EcosystemNPM, nil
		}
	}
	for _, name := range pythonManifests {
		if _, err := os.Stat(filepath.Join(path, name)); err == nil {
			return types.EcosystemPyPI, nil
		}
	}
	return "", fmt.Errorf("no supported manifest found in %s", path)
}

// Load resolves path (file or directory) into a parsed Input. override
// forces the ecosystem the way DetectEcosystem documents.
func Load(path, override string) (*Input, error) {
	eco, err := DetectEcosystem(path, override)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	switch eco {
	case types.EcosystemNPM:
		target := path
		if info.IsDir() {
			target, err = findFirst(path, append(append([]string{}, nodeLockfiles...), "package.json"))
			if err != nil {
				return nil, err
			}
		}
		deps, source, err := parseNodeFile(target)
		if err != nil {
			return nil, err
		}
		return &Input{
			Ecosystem:    types.EcosystemNPM,
			Deps:         deps,
			Path:         source,
			FromLockfile: filepath.Base(source) != "package.json",
		}, nil

	default:
		target := path
		if info.IsDir() {
			target, err = findFirst(path, pythonManifests)
			if err != nil {
				return nil, err
			}
		}
		var deps []types.Dependency
		if filepath.Base(target) == "pyproject.toml" {
			deps, err = ParsePyprojectFile(target)
		} else {
			deps, err = ParseRequirementsFile(target)
		}
		if err != nil {
			return nil, err
		}
		return &Input{
			Ecosystem:    types.EcosystemPyPI,
			Deps:         deps,
			Path:         target,
			FromLockfile: true,
		}, nil
	}
}

// LoadFreeze builds an Input from pip-freeze content (stdin or file).
func LoadFreeze(content, label string) *Input {
	return &Input{
		Ecosystem:    types.EcosystemPyPI,
		Deps:         ParseFreeze(content),
		Path:         label,
		FromLockfile: true,
	}
}

// findFirst returns the first existing candidate file inside dir.
func findFirst(dir string, names []string) (string, error) {
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no supported manifest found in %s", dir)
}
