// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bonial-oss/depscan/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

var testDep = types.Dependency{Name: "requests", Version: "2.28.0", Ecosystem: types.EcosystemPyPI}

func TestStore_GetMiss(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.Get(testDep)
	assert.False(t, ok, "Get must miss for a key that was never put")
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	record := []byte(`{"vulns":[{"id":"PYSEC-2022-0001"}]}`)
	s.Put(testDep, record)

	entry, ok := s.Get(testDep)
	require.True(t, ok)
	assert.Equal(t, record, entry.Response)
	assert.WithinDuration(t, time.Now().UTC(), entry.FetchedAt, time.Minute)
}

func TestStore_OverwriteWins(t *testing.T) {
	s := newTestStore(t)

	s.Put(testDep, []byte(`{"vulns":[]}`))
	updated := []byte(`{"vulns":[{"id":"PYSEC-2022-0002"}]}`)
	s.Put(testDep, updated)

	entry, ok := s.Get(testDep)
	require.True(t, ok)
	assert.Equal(t, updated, entry.Response, "a fresh put must overwrite the prior entry")
}

func TestStore_EcosystemDiscriminatesKeys(t *testing.T) {
	s := newTestStore(t)

	pypi := types.Dependency{Name: "semver", Version: "3.0.0", Ecosystem: types.EcosystemPyPI}
	npmDep := types.Dependency{Name: "semver", Version: "3.0.0", Ecosystem: types.EcosystemNPM}

	s.Put(pypi, []byte(`{"vulns":[{"id":"PYSEC-1"}]}`))
	s.Put(npmDep, []byte(`{"vulns":[{"id":"GHSA-1"}]}`))

	pypiEntry, ok := s.Get(pypi)
	require.True(t, ok)
	npmEntry, ok := s.Get(npmDep)
	require.True(t, ok)
	assert.NotEqual(t, pypiEntry.Response, npmEntry.Response,
		"identical names in different ecosystems must not collide")
}

func TestStore_PyPINameNormalization(t *testing.T) {
	s := newTestStore(t)

	s.Put(types.Dependency{Name: "Typing_Extensions", Version: "4.0.0", Ecosystem: types.EcosystemPyPI}, []byte(`{}`))

	_, ok := s.Get(types.Dependency{Name: "typing-extensions", Version: "4.0.0", Ecosystem: types.EcosystemPyPI})
	assert.True(t, ok, "PEP 503 name variants must share one cache key")
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)

	s.Put(testDep, []byte(`{}`))
	require.NoError(t, s.Clear())

	_, ok := s.Get(testDep)
	assert.False(t, ok)
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	s.Put(testDep, []byte(`{"vulns":[]}`))
	require.NoError(t, s.Close())

	reopened, err := Open(dir, zap.NewNop())
	require.NoError(t, err)
	defer reopened.Close()

	entry, ok := reopened.Get(testDep)
	require.True(t, ok, "entries must survive across process invocations")
	assert.Equal(t, []byte(`{"vulns":[]}`), entry.Response)
}
