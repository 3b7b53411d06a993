// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependency_CanonicalName(t *testing.T) {
	tests := []struct {
		name string
		dep  Dependency
		want string
	}{
		{
			name: "pypi lowercases",
			dep:  Dependency{Name: "Django", Ecosystem: EcosystemPyPI},
			want: "django",
		},
		{
			name: "pypi collapses separator runs",
			dep:  Dependency{Name: "Typing_.-Extensions", Ecosystem: EcosystemPyPI},
			want: "typing-extensions",
		},
		{
			name: "pypi underscores become hyphens",
			dep:  Dependency{Name: "zope_interface", Ecosystem: EcosystemPyPI},
			want: "zope-interface",
		},
		{
			name: "pypi dots become hyphens",
			dep:  Dependency{Name: "backports.zoneinfo", Ecosystem: EcosystemPyPI},
			want: "backports-zoneinfo",
		},
		{
			name: "pypi already canonical",
			dep:  Dependency{Name: "requests", Ecosystem: EcosystemPyPI},
			want: "requests",
		},
		{
			name: "npm passes through",
			dep:  Dependency{Name: "Left_Pad.js", Ecosystem: EcosystemNPM},
			want: "Left_Pad.js",
		},
		{
			name: "npm scoped package untouched",
			dep:  Dependency{Name: "@babel/core", Ecosystem: EcosystemNPM},
			want: "@babel/core",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dep.CanonicalName())
		})
	}
}

func TestDependency_PURL(t *testing.T) {
	tests := []struct {
		name string
		dep  Dependency
		want string
	}{
		{
			name: "npm",
			dep:  Dependency{Name: "lodash", Version: "4.17.19", Ecosystem: EcosystemNPM},
			want: "pkg:npm/lodash@4.17.19",
		},
		{
			name: "npm scoped",
			dep:  Dependency{Name: "@babel/core", Version: "7.20.0", Ecosystem: EcosystemNPM},
			want: "pkg:npm/%40babel/core@7.20.0",
		},
		{
			name: "pypi normalized",
			dep:  Dependency{Name: "Typing_Extensions", Version: "4.0.0", Ecosystem: EcosystemPyPI},
			want: "pkg:pypi/typing-extensions@4.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dep.PURL())
		})
	}
}

func TestDependency_String(t *testing.T) {
	assert.Equal(t, "lodash@4.17.19",
		Dependency{Name: "lodash", Version: "4.17.19", Ecosystem: EcosystemNPM}.String())
	assert.Equal(t, "lodash",
		Dependency{Name: "lodash", Ecosystem: EcosystemNPM}.String())
}
