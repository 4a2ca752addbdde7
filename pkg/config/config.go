// Package config loads spruce's TOML configuration.
//
// The file lives at ~/.config/spruce/config.toml unless a path is given.
// Missing keys keep their defaults, a missing file yields [Default], and a
// few environment variables override the file:
//
//	SPRUCE_REPO_PATH   repo_path
//	SPRUCE_REDIS_URL   cache.redis_url (and selects the redis backend)
//	SPRUCE_MONGO_URI   store.mongo_uri (and selects the mongo backend)
//
// Example:
//
//	repo_path = "/Volumes/munki_repo"
//	keep      = 2
//	channels  = ["production"]
//
//	[os_matrix]
//	prefix     = "10"
//	major_from = 8
//	major_to   = 12
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spruce/pkg/errors"
	"github.com/matzehuels/spruce/pkg/repo"
)

// Environment variables that override the file.
const (
	EnvRepoPath = "SPRUCE_REPO_PATH"
	EnvRedisURL = "SPRUCE_REDIS_URL"
	EnvMongoURI = "SPRUCE_MONGO_URI"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the decoded configuration file.
type Config struct {
	RepoPath     string   `toml:"repo_path"`
	Keep         int      `toml:"keep"`
	Channels     []string `toml:"channels"`
	DefaultMinOS string   `toml:"default_min_os"`
	DefaultMaxOS string   `toml:"default_max_os"`
	Workers      int      `toml:"workers"`

	OSMatrix OSMatrix `toml:"os_matrix"`
	Cache    Cache    `toml:"cache"`
	Store    Store    `toml:"store"`
	Server   Server   `toml:"server"`
}

// OSMatrix describes the simulated OS releases. A non-empty Releases list
// replaces the generated range.
type OSMatrix struct {
	Prefix    string   `toml:"prefix"`
	MajorFrom int      `toml:"major_from"`
	MajorTo   int      `toml:"major_to"`
	MinorFrom int      `toml:"minor_from"`
	MinorTo   int      `toml:"minor_to"`
	Releases  []string `toml:"releases"`
}

// Matrix builds the resolver's matrix.
func (m OSMatrix) Matrix() repo.OSMatrix {
	if len(m.Releases) > 0 {
		return repo.OSMatrixOf(m.Releases...)
	}
	return repo.NewOSMatrix(m.Prefix, m.MajorFrom, m.MajorTo, m.MinorFrom, m.MinorTo)
}

// Cache selects the result cache backend.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// Store selects the run history backend.
type Store struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Server configures `spruce serve`.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Duration decodes TOML strings such as "24h" or "90s".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Keep:         1,
		Channels:     []string{"production"},
		DefaultMinOS: repo.DefaultMinOS,
		DefaultMaxOS: repo.DefaultMaxOS,
		OSMatrix: OSMatrix{
			Prefix: "10", MajorFrom: 8, MajorTo: 12, MinorFrom: 0, MinorTo: 9,
		},
		Cache: Cache{Backend: BackendFile, TTL: Duration{24 * time.Hour}},
		Store: Store{Backend: BackendFile},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{2 * time.Minute},
		},
	}
}

// DefaultPath returns ~/.config/spruce/config.toml, honouring
// XDG_CONFIG_HOME.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "spruce", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".spruce", "config.toml")
	}
	return filepath.Join(home, ".config", "spruce", "config.toml")
}

// Load reads path over [Default] and applies environment overrides. An
// empty path uses [DefaultPath]; a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
		}
	}
	cfg.applyEnv(os.Getenv)
	return cfg, cfg.Validate()
}

// Parse decodes TOML text over [Default] without touching the environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvRepoPath); v != "" {
		c.RepoPath = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Backend = BackendRedis
	}
	if v := getenv(EnvMongoURI); v != "" {
		c.Store.MongoURI = v
		c.Store.Backend = BackendMongo
	}
}

// Validate checks value ranges and backend settings. Errors carry
// [errors.ErrCodeInvalidConfig].
func (c Config) Validate() error {
	if c.Keep < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "keep must be >= 0, got %d", c.Keep)
	}
	if c.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be >= 0, got %d", c.Workers)
	}
	for _, ch := range c.Channels {
		if err := errors.ValidateChannel(ch); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "channels")
		}
	}
	m := c.OSMatrix
	if len(m.Releases) == 0 && (m.MajorFrom > m.MajorTo || m.MinorFrom > m.MinorTo || m.MajorFrom < 0 || m.MinorFrom < 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "os_matrix ranges are empty: major %d-%d, minor %d-%d",
			m.MajorFrom, m.MajorTo, m.MinorFrom, m.MinorTo)
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendRedis}, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_url")
	}
	if !slices.Contains([]string{BackendNone, BackendFile, BackendMongo}, c.Store.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendMongo && c.Store.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "store backend mongo needs mongo_uri")
	}
	return nil
}

// RequireRepo returns an error when no repository path is configured.
func (c Config) RequireRepo() error {
	if c.RepoPath == "" {
		return errors.New(errors.ErrCodeInvalidConfig,
			"no repository configured: set repo_path, %s or --repo", EnvRepoPath)
	}
	return nil
}

// BuildOptions returns the graph construction options.
func (c Config) BuildOptions() repo.BuildOptions {
	return repo.BuildOptions{DefaultMinOS: c.DefaultMinOS, DefaultMaxOS: c.DefaultMaxOS}
}
