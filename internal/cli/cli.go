// Package cli implements the spruce command-line interface.
//
// The commands share one [CLI] value holding the logger and the decoded
// configuration. The configuration is loaded before any subcommand runs;
// --repo, --keep and --channel override it per invocation.
//
// # Commands
//
//   - report: out-of-date, unused and metadata reports
//   - used: the versions reachable from the manifests
//   - diagnostics: dangling and unreachable references
//   - plan: a removal plan
//   - names: package names and their versions
//   - graph: Graphviz export of the package graph
//   - serve: the HTTP API
//   - history: saved report runs
//   - cache: manage the result cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/spruce/pkg/buildinfo"
	"github.com/matzehuels/spruce/pkg/cache"
	"github.com/matzehuels/spruce/pkg/config"
	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/pipeline"
	"github.com/matzehuels/spruce/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "spruce"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	repoPath   string
	jsonOutput bool
	noCache    bool

	cfg config.Config
}

// New creates a new CLI instance with a logger writing to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Spruce finds stale and unused packages in a Munki repository",
		Long: `Spruce reads a Munki repository's pkginfo files and manifests, works out which
package versions deployments can still reach, and reports the rest as
out-of-date or unused.`,
		Version:           buildinfo.Resolved(),
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVarP(&c.repoPath, "repo", "r", "", "Munki repository root (overrides repo_path)")
	flags.BoolVar(&c.jsonOutput, "json", false, "print JSON instead of tables")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the result cache")

	root.AddCommand(c.reportCommand())
	root.AddCommand(c.usedCommand())
	root.AddCommand(c.diagnosticsCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.namesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.repoPath != "" {
		cfg.RepoPath = c.repoPath
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "repo", cfg.RepoPath, "cache", cfg.Cache.Backend, "store", cfg.Store.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if c.cfg.Cache.Backend == config.BackendRedis && c.cfg.RepoPath != "" {
		// A shared Redis may serve several repositories.
		keyer = cache.NewScopedKeyer(nil, "repo:"+cache.Hash([]byte(c.cfg.RepoPath))[:12]+":")
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, c.cfg.Cache.RedisURL, "")
	default:
		dir, err := c.cacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

// newStore opens the configured run history backend.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	switch c.cfg.Store.Backend {
	case config.BackendNone:
		return store.NullStore{}, nil
	case config.BackendMongo:
		return store.NewMongoStore(ctx, c.cfg.Store.MongoURI, c.cfg.Store.Database)
	default:
		return store.NewFileStore(c.cfg.Store.Dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/spruce/).
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return defaultCacheDir()
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// queryFlags are the resolver flags shared by the analysis commands.
type queryFlags struct {
	keep        int
	channels    []string
	allChannels bool
	refresh     bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&q.keep, "keep", "k", 0, "versions to keep per entry point, 0 keeps all (overrides keep)")
	cmd.Flags().StringSliceVarP(&q.channels, "channel", "c", nil, "catalogs eligible at entry points (overrides channels)")
	cmd.Flags().BoolVar(&q.allChannels, "all-channels", false, "do not filter entry points by catalog")
	cmd.Flags().BoolVar(&q.refresh, "refresh", false, "ignore cached results")
}

// options builds pipeline options from the config and the command's flags.
func (c *CLI) options(cmd *cobra.Command, q *queryFlags) (pipeline.Options, error) {
	if err := c.cfg.RequireRepo(); err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		RepoPath:     c.cfg.RepoPath,
		Keep:         c.cfg.Keep,
		Channels:     c.cfg.Channels,
		Matrix:       c.cfg.OSMatrix.Matrix(),
		DefaultMinOS: c.cfg.DefaultMinOS,
		DefaultMaxOS: c.cfg.DefaultMaxOS,
		Workers:      c.cfg.Workers,
		Logger:       c.Logger,
	}
	if q == nil {
		return opts, nil
	}
	if cmd.Flags().Changed("keep") {
		if err := errors.ValidateKeep(q.keep); err != nil {
			return opts, err
		}
		opts.Keep = q.keep
	}
	if cmd.Flags().Changed("channel") {
		opts.Channels = q.channels
	}
	if q.allChannels {
		opts.Channels = nil
	}
	opts.Refresh = q.refresh
	return opts, nil
}
