// Package pipeline runs the spruce analysis: load, build, resolve, report.
//
// The CLI and the HTTP API both go through a [Runner] so that they share
// caching, logging and observability hooks.
//
// # Stages
//
//  1. Load: scan the repository, fingerprint it and decode every pkginfo
//     and manifest file ([pkginfo.LoadRepository])
//  2. Build: construct the package graph ([repo.Build])
//  3. Report: resolve usage and produce the requested reports ([report.Run])
//
// Report results are cached under a key derived from the repository
// fingerprint and the options, so an unchanged repository is answered
// without decoding a single file.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Run(ctx, pipeline.Options{
//	    RepoPath: "/Volumes/munki_repo",
//	    Reports:  []report.Name{report.NameOutOfDate},
//	    Keep:     2,
//	    Channels: []string{"production"},
//	})
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/pkginfo"
	"github.com/matzehuels/spruce/pkg/repo"
	"github.com/matzehuels/spruce/pkg/report"
	"github.com/matzehuels/spruce/pkg/store"
)

// Options configures a pipeline run. Keep is the per-entry-point retention
// cap; zero is [repo.Unbounded].
type Options struct {
	RepoPath string        `json:"repo_path"`
	Reports  []report.Name `json:"reports,omitempty"`
	Keep     int           `json:"keep"`
	Channels []string      `json:"channels,omitempty"`

	// Matrix is the simulated OS release list. Zero means the default sweep.
	Matrix       repo.OSMatrix `json:"-"`
	DefaultMinOS string        `json:"default_min_os,omitempty"`
	DefaultMaxOS string        `json:"default_max_os,omitempty"`
	Workers      int           `json:"-"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool        `json:"-"`
	Logger  *log.Logger `json:"-"`
}

// ValidateAndSetDefaults checks the options and fills zero values.
func (o *Options) ValidateAndSetDefaults() error {
	if o.RepoPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "repository path is required")
	}
	if o.Keep < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "keep must not be negative, got %d", o.Keep)
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative, got %d", o.Workers)
	}
	if len(o.Reports) == 0 {
		o.Reports = []report.Name{report.NameAll}
	}
	for _, n := range o.Reports {
		if _, err := report.ParseName(string(n)); err != nil {
			return err
		}
	}
	if o.Matrix.IsZero() {
		o.Matrix = repo.DefaultOSMatrix()
	}
	return nil
}

// BuildOptions returns the graph construction options.
func (o Options) BuildOptions() repo.BuildOptions {
	return repo.BuildOptions{DefaultMinOS: o.DefaultMinOS, DefaultMaxOS: o.DefaultMaxOS}.WithDefaults()
}

func (o Options) releases() []string {
	var out []string
	for _, r := range o.Matrix.Releases() {
		out = append(out, r.String())
	}
	return out
}

// Result is the outcome of [Runner.Run].
type Result struct {
	Fingerprint string            `json:"fingerprint"`
	Reports     []report.Report   `json:"reports"`
	Diagnostics []repo.Diagnostic `json:"diagnostics"`
	Stats       Stats             `json:"stats"`
	CacheHit    bool              `json:"-"`
}

// Stats describes a run. Durations of a cached result are those of the
// run that produced it.
type Stats struct {
	Files      int           `json:"files"`
	LoadErrors int           `json:"load_errors"`
	Groups     int           `json:"groups"`
	Versions   int           `json:"versions"`
	LoadTime   time.Duration `json:"load_time"`
	BuildTime  time.Duration `json:"build_time"`
	ReportTime time.Duration `json:"report_time"`
}

// State is a loaded repository and its graph.
type State struct {
	Repo  *pkginfo.Repository
	Graph *repo.PackageGraph
	Stats Stats
}

// Input returns the report input for s under opts.
func (s *State) Input(opts Options) report.Input {
	return report.Input{
		Graph:       s.Graph,
		Repo:        s.Repo,
		EntryPoints: s.Repo.EntryPoints(),
		Keep:        opts.Keep,
		Channels:    opts.Channels,
		Matrix:      opts.Matrix,
		Workers:     opts.Workers,
	}
}

// HistoryRun condenses res into a history entry for the store.
func (res *Result) HistoryRun(command string, opts Options) *store.Run {
	reports := make([]string, len(opts.Reports))
	for i, n := range opts.Reports {
		reports[i] = string(n)
	}
	run := store.NewRun(command, opts.RepoPath, res.Fingerprint, store.Options{
		Reports:  reports,
		Keep:     opts.Keep,
		Channels: opts.Channels,
	})
	for _, rep := range res.Reports {
		run.Summaries = append(run.Summaries, store.Summary{
			Report:    string(rep.Name),
			Items:     rep.Len(),
			TotalSize: rep.TotalSize,
		})
	}
	for _, d := range res.Diagnostics {
		run.Diagnostics = append(run.Diagnostics, d.Message)
	}
	return run
}
