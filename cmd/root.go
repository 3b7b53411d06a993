// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bonial-oss/depscan/internal/cache"
	"github.com/bonial-oss/depscan/internal/datasource/osv"
	"github.com/bonial-oss/depscan/internal/manifest"
	"github.com/bonial-oss/depscan/internal/output"
	"github.com/bonial-oss/depscan/internal/scanner"
	"github.com/bonial-oss/depscan/internal/types"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ExitError signals a non-zero exit code with an optional message.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

// Options holds all CLI flag values.
type Options struct {
	Reports     []string
	OutputDir   string
	NoCache     bool
	CacheDir    string
	ClearCache  bool
	FromFreeze  bool
	Guidance    bool
	Ecosystem   string
	FailOn      string
	Concurrency int
	Retries     int
	Debug       bool
}

// failOnThresholds maps --fail-on values to severity thresholds. "vuln"
// means any finding at all.
var failOnThresholds = map[string]types.Severity{
	"critical": types.SeverityCritical,
	"high":     types.SeverityHigh,
	"medium":   types.SeverityMedium,
	"low":      types.SeverityLow,
	"vuln":     types.SeverityUnknown,
}

// NewRootCommand creates the root cobra command with all flags.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:     "depscan [path]",
		Short:   "Scan Python and Node.js dependencies for known vulnerabilities via OSV.dev",
		Version: Version,
		Long: `depscan reads a dependency manifest (requirements.txt, pyproject.toml,
package.json or a Node lockfile), queries the OSV.dev vulnerability database
for each dependency, and writes terminal, JSON, and HTML reports enriched
with fix availability, recommended actions, priority, and remediation risk.

Responses are cached locally so repeated scans avoid redundant network calls.

Usage:
  depscan
  depscan path/to/requirements.txt --report json
  pip freeze | depscan --from-freeze - --fail-on high`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return run(path, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&opts.Reports, "report", []string{"html", "json"}, "Report format(s): html, json, none")
	flags.StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory for report files (default: manifest directory)")
	flags.BoolVar(&opts.NoCache, "no-cache", false, "Skip cache reads; always query OSV (the cache is still refreshed)")
	flags.StringVar(&opts.CacheDir, "cache-dir", "", "Override cache directory")
	flags.BoolVar(&opts.ClearCache, "clear-cache", false, "Drop all cached OSV responses before scanning")
	flags.BoolVar(&opts.FromFreeze, "from-freeze", false, "Read pip-freeze input (name==version per line); path '-' reads stdin")
	flags.BoolVar(&opts.Guidance, "include-guidance", false, "Include the project-level improvement checklist in HTML/JSON reports")
	flags.StringVar(&opts.Ecosystem, "ecosystem", "", "Force ecosystem: python or node (default: auto-detect)")
	flags.StringVar(&opts.FailOn, "fail-on", "", "Exit code 1 if any finding has this severity or higher: critical, high, medium, low, vuln")
	flags.IntVar(&opts.Concurrency, "concurrency", 4, "Number of parallel OSV lookups")
	flags.IntVar(&opts.Retries, "retries", 1, "Additional attempts per failed OSV request")
	flags.BoolVar(&opts.Debug, "debug", false, "Enable debug logging")

	return cmd
}

// run orchestrates the full scan pipeline.
func run(path string, opts *Options) error {
	logger := newLogger(opts.Debug)
	defer func() { _ = logger.Sync() }()

	if opts.FailOn != "" {
		if _, ok := failOnThresholds[strings.ToLower(opts.FailOn)]; !ok {
			return &ExitError{Code: 2, Message: fmt.Sprintf("unknown --fail-on value: %s", opts.FailOn)}
		}
	}

	input, err := loadInput(path, opts)
	if err != nil {
		return err
	}
	if len(input.Deps) == 0 {
		fmt.Fprintf(os.Stderr, "No dependencies found in %s\n", input.Path)
	}

	store := openCache(opts, logger)
	if store != nil {
		defer store.Close()
		if opts.ClearCache {
			if err := store.Clear(); err != nil {
				logger.Warn("clearing cache failed", zap.Error(err))
			}
		}
	}

	// A nil *cache.Store must stay a nil interface value for the scanner's
	// nil check to disable caching.
	var pipelineCache scanner.Cache
	if store != nil {
		pipelineCache = store
	}

	client := osv.NewClient(opts.Retries)
	s := scanner.New(client, pipelineCache, logger)
	report := s.Run(context.Background(), input.Deps, scanner.Options{
		NoCache:        opts.NoCache,
		Concurrency:    opts.Concurrency,
		ScannerVersion: Version,
		Ecosystem:      input.Ecosystem,
		InputPath:      input.Path,
	})
	if opts.Guidance {
		report.Recommendations = types.ImprovementRecommendations()
	}

	if err := output.WriteTable(os.Stdout, report, output.TableConfig{
		IsTerminal: output.IsOutputToTerminal(os.Stdout),
	}); err != nil {
		return fmt.Errorf("writing terminal report: %w", err)
	}

	if err := writeReports(report, input, opts); err != nil {
		return err
	}

	if opts.FailOn != "" {
		threshold := failOnThresholds[strings.ToLower(opts.FailOn)]
		if report.ExceedsSeverity(threshold) {
			return &ExitError{Code: 1}
		}
	}
	return nil
}

// loadInput resolves the dependency list from the CLI path and flags.
// A missing manifest is the one fatal input error.
func loadInput(path string, opts *Options) (*manifest.Input, error) {
	if opts.FromFreeze {
		if path == "" || path == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return nil, fmt.Errorf("reading stdin: %w", err)
			}
			return manifest.LoadFreeze(string(data), "stdin"), nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &ExitError{Code: 2, Message: fmt.Sprintf("reading %s: %v", path, err)}
		}
		return manifest.LoadFreeze(string(data), path), nil
	}

	if path == "" {
		path = "."
	}
	input, err := manifest.Load(path, strings.ToLower(opts.Ecosystem))
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return input, nil
}

// openCache opens the local response cache. Failure to open degrades to
// cache-less operation; the scan still runs.
func openCache(opts *Options, logger *zap.Logger) *cache.Store {
	dir := opts.CacheDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("determining home directory failed, caching disabled", zap.Error(err))
			return nil
		}
		dir = filepath.Join(home, ".depscan")
	}
	store, err := cache.Open(dir, logger)
	if err != nil {
		logger.Warn("opening cache failed, caching disabled", zap.Error(err))
		return nil
	}
	return store
}

// writeReports writes the requested report files next to the manifest (or
// into --output-dir).
func writeReports(report *types.Report, input *manifest.Input, opts *Options) error {
	dir := opts.OutputDir
	if dir == "" {
		if input.Path != "" && input.Path != "stdin" {
			dir = filepath.Dir(input.Path)
		} else {
			dir = "."
		}
	}

	for _, format := range opts.Reports {
		switch strings.ToLower(format) {
		case "none":
		case "html":
			if err := writeReportFile(filepath.Join(dir, "scan-report.html"), func(w io.Writer) error {
				return output.WriteHTML(w, report)
			}); err != nil {
				return err
			}
		case "json":
			if err := writeReportFile(filepath.Join(dir, "scan-report.json"), func(w io.Writer) error {
				return output.WriteJSON(w, report)
			}); err != nil {
				return err
			}
		default:
			return &ExitError{Code: 2, Message: fmt.Sprintf("unsupported report format: %s", format)}
		}
	}
	return nil
}

func writeReportFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := render(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	return nil
}

// newLogger builds the stderr console logger; warnings only unless --debug.
func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
