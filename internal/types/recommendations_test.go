// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImprovementRecommendations(t *testing.T) {
	recs := ImprovementRecommendations()
	require.NotEmpty(t, recs)

	seen := make(map[string]bool)
	for _, r := range recs {
		assert.NotEmpty(t, r.ID)
		assert.NotEmpty(t, r.Title)
		assert.NotEmpty(t, r.Description)
		assert.NotEmpty(t, r.SecurityImpact)
		assert.NotEmpty(t, r.Effort)
		assert.False(t, seen[r.ID], "duplicate recommendation id %s", r.ID)
		seen[r.ID] = true
	}
}

func TestImprovementRecommendations_ReturnsCopy(t *testing.T) {
	first := ImprovementRecommendations()
	first[0].Title = "mutated"

	second := ImprovementRecommendations()
	assert.NotEqual(t, "mutated", second[0].Title,
		"callers must not be able to change the underlying table")
}
