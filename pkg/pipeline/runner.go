package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spruce/pkg/cache"
	"github.com/matzehuels/spruce/pkg/observability"
	"github.com/matzehuels/spruce/pkg/pkginfo"
	"github.com/matzehuels/spruce/pkg/repo"
	"github.com/matzehuels/spruce/pkg/report"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeResult = "result"
	keyTypePlan   = "plan"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner holds no pipeline results. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides [cache.TTLResult] when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Run loads the repository, builds the graph and produces the requested
// reports, reusing a cached result when the repository is unchanged.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	stamps, err := pkginfo.Scan(opts.RepoPath)
	if err != nil {
		return nil, err
	}
	fp := pkginfo.Fingerprint(stamps)
	key := r.Keyer.ResultKey(fp, r.resultKeyOpts(opts))

	if !opts.Refresh {
		var cached Result
		if r.lookup(ctx, key, keyTypeResult, &cached) {
			cached.CacheHit = true
			opts.Logger.Debug("using cached result", "fingerprint", fp)
			return &cached, nil
		}
	}

	st, err := r.load(ctx, opts, stamps)
	if err != nil {
		return nil, err
	}

	reportStart := time.Now()
	in := st.Input(opts)
	res := &Result{Fingerprint: fp}
	for _, name := range opts.Reports {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		reports, err := report.Run(in, name)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", name, err)
		}
		for _, rep := range reports {
			observability.Pipeline().OnReportComplete(ctx, string(rep.Name), rep.Len(), time.Since(start))
		}
		res.Reports = append(res.Reports, reports...)
	}
	st.Stats.ReportTime = time.Since(reportStart)
	res.Stats = st.Stats
	// Resolving adds entry-point diagnostics, so read them last.
	res.Diagnostics = st.Graph.Diagnostics().All()

	opts.Logger.Info("generated reports",
		"reports", len(res.Reports),
		"diagnostics", len(res.Diagnostics),
		"duration", res.Stats.ReportTime)

	ttl := cache.TTLResult
	if r.TTL > 0 {
		ttl = r.TTL
	}
	r.store(ctx, key, keyTypeResult, res, ttl)
	return res, nil
}

// Load scans, decodes and builds without touching the cache.
func (r *Runner) Load(ctx context.Context, opts Options) (*State, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.load(ctx, opts, nil)
}

func (r *Runner) load(ctx context.Context, opts Options, stamps []pkginfo.FileStamp) (*State, error) {
	hooks := observability.Pipeline()

	hooks.OnLoadStart(ctx, opts.RepoPath)
	loadStart := time.Now()
	rp, err := pkginfo.LoadRepository(ctx, opts.RepoPath, pkginfo.LoadOptions{
		Logger: opts.Logger,
		Stamps: stamps,
	})
	loadTime := time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.RepoPath, 0, 0, loadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	files := len(rp.Pkgsinfo) + len(rp.Manifests) + len(rp.Errors)
	hooks.OnLoadComplete(ctx, opts.RepoPath, files, len(rp.Errors), loadTime, nil)
	opts.Logger.Info("loaded repository",
		"pkginfo", len(rp.Pkgsinfo),
		"manifests", len(rp.Manifests),
		"errors", len(rp.Errors),
		"duration", loadTime)

	buildStart := time.Now()
	g := repo.Build(rp.Records(), opts.BuildOptions())
	buildTime := time.Since(buildStart)
	hooks.OnBuildComplete(ctx, g.GroupCount(), g.VersionCount(), g.Diagnostics().Len(), buildTime)
	opts.Logger.Info("built graph",
		"groups", g.GroupCount(),
		"versions", g.VersionCount(),
		"duration", buildTime)

	return &State{
		Repo:  rp,
		Graph: g,
		Stats: Stats{
			Files:      files,
			LoadErrors: len(rp.Errors),
			Groups:     g.GroupCount(),
			Versions:   g.VersionCount(),
			LoadTime:   loadTime,
			BuildTime:  buildTime,
		},
	}, nil
}

// Used resolves the used-set of st under opts.
func (r *Runner) Used(ctx context.Context, st *State, opts Options) (repo.Set, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()
	used := report.Used(st.Input(opts))
	observability.Pipeline().OnResolveComplete(ctx, opts.Keep, used.Len(), time.Since(start))
	return used, nil
}

// Plan computes a removal plan, reusing a cached plan when the repository
// is unchanged. A plan returned from the cache has a nil [report.Plan.Set].
func (r *Runner) Plan(ctx context.Context, opts Options, planOpts report.PlanOptions) (report.Plan, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return report.Plan{}, false, fmt.Errorf("invalid options: %w", err)
	}

	stamps, err := pkginfo.Scan(opts.RepoPath)
	if err != nil {
		return report.Plan{}, false, err
	}
	key := r.Keyer.PlanKey(pkginfo.Fingerprint(stamps), cache.PlanKeyOpts{
		Level:        planOpts.Level,
		Names:        planOpts.Names,
		Categories:   planOpts.Categories,
		Paths:        planOpts.Paths,
		Channels:     opts.Channels,
		Releases:     opts.releases(),
		DefaultMinOS: opts.DefaultMinOS,
		DefaultMaxOS: opts.DefaultMaxOS,
	})

	if !opts.Refresh {
		var cached report.Plan
		if r.lookup(ctx, key, keyTypePlan, &cached) {
			return cached, true, nil
		}
	}

	st, err := r.load(ctx, opts, stamps)
	if err != nil {
		return report.Plan{}, false, err
	}
	start := time.Now()
	plan, err := report.BuildPlan(st.Input(opts), planOpts)
	if err != nil {
		return report.Plan{}, false, err
	}
	observability.Pipeline().OnReportComplete(ctx, string(report.NameRemovalPlan), plan.Removals.Len(), time.Since(start))

	r.store(ctx, key, keyTypePlan, plan, cache.TTLPlan)
	return plan, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup decodes a cached value into v. Backend and decoding failures are
// treated as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "err", err)
	}
	if err == nil && hit && json.Unmarshal(data, v) == nil {
		observability.Cache().OnCacheHit(ctx, keyType)
		return true
	}
	observability.Cache().OnCacheMiss(ctx, keyType)
	return false
}

func (r *Runner) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "key_type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) resultKeyOpts(opts Options) cache.ResultKeyOpts {
	reports := make([]string, len(opts.Reports))
	for i, n := range opts.Reports {
		reports[i] = string(n)
	}
	b := opts.BuildOptions()
	return cache.ResultKeyOpts{
		Reports:      reports,
		Keep:         opts.Keep,
		Channels:     opts.Channels,
		Releases:     opts.releases(),
		DefaultMinOS: b.DefaultMinOS,
		DefaultMaxOS: b.DefaultMaxOS,
	}
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
