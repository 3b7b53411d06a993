// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bonial-oss/depscan/internal/types"
)

func TestWriteJSON(t *testing.T) {
	report := tableReport()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))

	var decoded types.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, report.PackageCount, decoded.PackageCount)
	assert.Equal(t, report.TotalVulnerabilities, decoded.TotalVulnerabilities)
	require.Len(t, decoded.Packages, 3)
	assert.Equal(t, "lodash", decoded.Packages[0].Name)
	require.Len(t, decoded.Packages[0].Vulnerabilities, 1)
	assert.Equal(t, "GHSA-35jh-r3h4-6jhm", decoded.Packages[0].Vulnerabilities[0].ID)
}

func TestWriteJSON_NoHTMLEscaping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{
		"reference": "https://osv.dev/vulnerability?id=GHSA-1&x=1",
	}))

	assert.Contains(t, buf.String(), "id=GHSA-1&x=1", "URLs must not be HTML-escaped")
}

func TestWriteJSON_GuidanceOnlyWhenRequested(t *testing.T) {
	report := tableReport()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, report))
	assert.NotContains(t, buf.String(), "improvement_recommendations",
		"guidance stays out of the payload unless populated")

	report.Recommendations = types.ImprovementRecommendations()
	buf.Reset()
	require.NoError(t, WriteJSON(&buf, report))

	var decoded types.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.NotEmpty(t, decoded.Recommendations)
	assert.Equal(t, "lockfile-enforcement", decoded.Recommendations[0].ID)
	assert.Contains(t, buf.String(), `"policy_relevance"`)
}

func TestWriteJSON_EmptyVulnsRenderAsEmptyArray(t *testing.T) {
	r := &types.Report{Packages: []types.PackageResult{
		{Name: "express", Version: "4.18.0", Vulnerabilities: []types.Vulnerability{}},
	}}
	r.Finalize()

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, r))

	assert.Contains(t, buf.String(), `"vulns": []`, "clean packages carry an empty array, not null")
}
