// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleReport() *Report {
	return &Report{
		Packages: []PackageResult{
			{
				Name: "lodash", Version: "4.17.19", Ecosystem: EcosystemNPM,
				Vulnerabilities: []Vulnerability{
					{ID: "GHSA-1", Severity: SeverityHigh, FixAvailable: true},
					{ID: "GHSA-2", Severity: SeverityLow},
				},
			},
			{
				Name: "left-pad", Version: "1.3.0", Ecosystem: EcosystemNPM,
				LookupFailed: true, LookupError: "HTTP 503",
				Vulnerabilities: []Vulnerability{},
			},
			{
				Name: "express", Version: "4.18.0", Ecosystem: EcosystemNPM,
				Vulnerabilities: []Vulnerability{},
			},
		},
	}
}

func TestReport_Finalize(t *testing.T) {
	r := sampleReport()
	r.Finalize()

	assert.Equal(t, 3, r.PackageCount)
	assert.Equal(t, 1, r.VulnerablePackageCount)
	assert.Equal(t, 2, r.TotalVulnerabilities)
	assert.Equal(t, 1, r.FixableCount)
	assert.Equal(t, 1, r.NonFixableCount)
}

func TestReport_FinalizeIsIdempotent(t *testing.T) {
	r := sampleReport()
	r.Finalize()
	r.Finalize()

	assert.Equal(t, 2, r.TotalVulnerabilities)
	assert.Equal(t, 1, r.FixableCount)
}

func TestReport_ExceedsSeverity(t *testing.T) {
	r := sampleReport()

	assert.True(t, r.ExceedsSeverity(SeverityHigh))
	assert.True(t, r.ExceedsSeverity(SeverityLow))
	assert.False(t, r.ExceedsSeverity(SeverityCritical))

	// UNKNOWN ranks lowest, so it matches any finding at all.
	assert.True(t, r.ExceedsSeverity(SeverityUnknown))

	empty := &Report{}
	assert.False(t, empty.ExceedsSeverity(SeverityUnknown))
}

func TestReport_SeverityDistribution(t *testing.T) {
	r := sampleReport()

	dist := r.SeverityDistribution()
	assert.Equal(t, 0, dist[SeverityCritical])
	assert.Equal(t, 1, dist[SeverityHigh])
	assert.Equal(t, 0, dist[SeverityMedium])
	assert.Equal(t, 1, dist[SeverityLow])
	assert.Equal(t, 0, dist[SeverityUnknown])
}

func TestSeverity_Rank(t *testing.T) {
	ordered := []Severity{SeverityUnknown, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must outrank %s", ordered[i], ordered[i-1])
	}
	assert.Equal(t, 0, Severity("bogus").Rank())
}
