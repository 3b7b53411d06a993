// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package scanner drives the per-dependency pipeline: cache lookup, OSV
// query, enrichment, report assembly. Dependencies are independent units of
// work; the only shared state is the cache store, which is keyed and safe
// under concurrent access.
package scanner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bonial-oss/depscan/internal/cache"
	"github.com/bonial-oss/depscan/internal/datasource/osv"
	"github.com/bonial-oss/depscan/internal/enricher"
	"github.com/bonial-oss/depscan/internal/types"
)

const defaultConcurrency = 4

// Source is the vulnerability database client the scanner drives. One call
// per dependency needing a live fetch; errors are non-fatal per package.
type Source interface {
	Query(ctx context.Context, dep types.Dependency) ([]byte, error)
}

// Cache is the keyed response store, substitutable with an in-memory fake
// in tests. A nil Cache disables caching entirely.
type Cache interface {
	Get(dep types.Dependency) (cache.Entry, bool)
	Put(dep types.Dependency, response []byte)
}

// Options configures a scan run.
type Options struct {
	// NoCache skips cache reads; every dependency is fetched live. Writes
	// still happen so the store is fresh for subsequent runs.
	NoCache bool
	// Concurrency bounds the worker pool. Values < 1 use the default.
	Concurrency int
	// ScannerVersion and input metadata stamped onto the report.
	ScannerVersion string
	Ecosystem      types.Ecosystem
	InputPath      string
}

// Scanner aggregates per-dependency results into a report.
type Scanner struct {
	source Source
	cache  Cache
	logger *zap.Logger
}

// New creates a Scanner. cache may be nil to disable caching; logger may be
// nil for silence.
func New(source Source, cache Cache, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{source: source, cache: cache, logger: logger}
}

// Run scans the dependencies in input order and returns the completed
// report. The report's package order always matches the input order
// regardless of completion order: each worker writes to its input index. An
// empty dependency list yields an empty report, not an error. A failed
// lookup yields a PackageResult with LookupFailed set and no
// vulnerabilities; the run never aborts on a single dependency.
func (s *Scanner) Run(ctx context.Context, deps []types.Dependency, opts Options) *types.Report {
	report := &types.Report{
		GeneratedAt:    time.Now().UTC(),
		ScannerVersion: opts.ScannerVersion,
		Ecosystem:      opts.Ecosystem,
		InputPath:      opts.InputPath,
		Packages:       make([]types.PackageResult, len(deps)),
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	if concurrency > len(deps) {
		concurrency = len(deps)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Packages[i] = s.scanOne(ctx, deps[i], opts)
			}
		}()
	}
	for i := range deps {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report.Finalize()
	return report
}

// scanOne runs the cache -> fetch -> enrich pipeline for one dependency.
func (s *Scanner) scanOne(ctx context.Context, dep types.Dependency, opts Options) types.PackageResult {
	result := types.PackageResult{
		Name:            dep.Name,
		Version:         dep.Version,
		Ecosystem:       dep.Ecosystem,
		PURL:            dep.PURL(),
		Vulnerabilities: []types.Vulnerability{},
	}

	raw, ok := s.lookup(dep, opts.NoCache)
	if !ok {
		fetched, err := s.source.Query(ctx, dep)
		if err != nil {
			s.logger.Warn("OSV lookup failed",
				zap.String("package", dep.String()), zap.Error(err))
			result.LookupFailed = true
			result.LookupError = err.Error()
			return result
		}
		if s.cache != nil {
			s.cache.Put(dep, fetched)
		}
		raw = fetched
	}

	resp, err := osv.Decode(raw)
	if err != nil {
		// A cached response that no longer parses is as good as a failed
		// lookup; surface it the same way.
		s.logger.Warn("decoding OSV response failed",
			zap.String("package", dep.String()), zap.Error(err))
		result.LookupFailed = true
		result.LookupError = err.Error()
		return result
	}

	result.Vulnerabilities = enricher.Enrich(dep, resp.Vulns)
	return result
}

// lookup consults the cache unless disabled or bypassed.
func (s *Scanner) lookup(dep types.Dependency, noCache bool) ([]byte, bool) {
	if s.cache == nil || noCache {
		return nil, false
	}
	entry, ok := s.cache.Get(dep)
	if !ok {
		return nil, false
	}
	s.logger.Debug("cache hit",
		zap.String("package", dep.String()), zap.Time("fetched_at", entry.FetchedAt))
	return entry.Response, true
}
