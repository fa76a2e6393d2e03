// Package config provides configuration types, defaults and validation for
// undertags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/brezhnevtusks/Unidork-sub000/internal/flags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tql"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

// Default locations, relative to the working directory.
const (
	DefaultDir          = ".undertags"
	DefaultDBPath       = ".undertags/undertags.db"
	DefaultTaxonomyFile = ".undertags/taxonomy.yaml"
	DefaultDebounce     = 500 * time.Millisecond
)

// Config holds all configuration options for undertags.
type Config struct {
	DBPath       string          `mapstructure:"db_path"`
	TaxonomyFile string          `mapstructure:"taxonomy_file"`
	LogLevel     string          `mapstructure:"log_level"`
	Watch        WatchConfig     `mapstructure:"watch"`
	Cache        CacheConfig     `mapstructure:"cache"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	Queries      []QueryConfig   `mapstructure:"queries"`
	Flags        map[string]bool `mapstructure:"flags"`
}

// WatchConfig controls the taxonomy file watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// CacheConfig controls the entity read-through cache.
type CacheConfig struct {
	Disabled        bool          `mapstructure:"disabled"`
	Expiration      time.Duration `mapstructure:"expiration"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// TracingConfig holds OpenTelemetry configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/undertags/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Provider converts to the tracing package config.
func (t TracingConfig) Provider() tracing.Config {
	cfg := tracing.DefaultConfig()
	cfg.Enabled = t.Enabled
	if t.Exporter != "" {
		cfg.Exporter = t.Exporter
	}
	cfg.FilePath = t.FilePath
	if cfg.FilePath == "" {
		cfg.FilePath = DefaultTracesFilePath()
	}
	if t.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = t.OTLPEndpoint
	}
	if t.SampleRate > 0 {
		cfg.SampleRate = t.SampleRate
	}
	return cfg
}

// QueryConfig is a named tag query stored in text form.
type QueryConfig struct {
	Name       string `mapstructure:"name" yaml:"name"`
	Expression string `mapstructure:"expression" yaml:"expression"`
}

// Parse parses the query expression.
func (q QueryConfig) Parse() (*tql.Expression, error) {
	expr, err := tql.Parse(q.Expression)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", q.Name, err)
	}
	return expr, nil
}

// ErrQueryNotFound is returned when a named query is not configured.
var ErrQueryNotFound = errors.New("query not found")

// FindQuery returns the named query.
func (c Config) FindQuery(name string) (QueryConfig, error) {
	for _, q := range c.Queries {
		if q.Name == name {
			return q, nil
		}
	}
	return QueryConfig{}, fmt.Errorf("%w: %s", ErrQueryNotFound, name)
}

// FlagRegistry builds the feature flag registry, applying defaults.
func (c Config) FlagRegistry() *flags.Registry {
	return flags.WithDefaults(c.Flags)
}

// DefaultTracesFilePath returns ~/.config/undertags/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "undertags", "traces", "traces.jsonl")
}

// ValidateQueries checks every named query has a unique name and parses.
func ValidateQueries(queries []QueryConfig) error {
	seen := make(map[string]bool, len(queries))
	for i, q := range queries {
		if q.Name == "" {
			return fmt.Errorf("query %d: name is required", i)
		}
		if seen[q.Name] {
			return fmt.Errorf("query %d: duplicate name %q", i, q.Name)
		}
		seen[q.Name] = true
		if q.Expression == "" {
			return fmt.Errorf("query %d (%s): expression is required", i, q.Name)
		}
		if _, err := tql.Parse(q.Expression); err != nil {
			return fmt.Errorf("query %d (%s): %w", i, q.Name, err)
		}
	}
	return nil
}

// ValidateCache checks cache durations.
func ValidateCache(cache CacheConfig) error {
	if cache.Expiration < 0 {
		return fmt.Errorf("cache.expiration must not be negative, got %s", cache.Expiration)
	}
	if cache.CleanupInterval < 0 {
		return fmt.Errorf("cache.cleanup_interval must not be negative, got %s", cache.CleanupInterval)
	}
	return nil
}

// ValidateWatch checks watcher settings.
func ValidateWatch(watch WatchConfig) error {
	if watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %s", watch.Debounce)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Empty values fall back to defaults.
func ValidateTracing(t TracingConfig) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}
	return nil
}

// ValidateLogLevel accepts empty or a known level name.
func ValidateLogLevel(level string) error {
	switch level {
	case "", "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", level)
	}
}

// Validate runs every section validator and joins the failures.
func (c Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	errs = append(errs,
		ValidateLogLevel(c.LogLevel),
		ValidateWatch(c.Watch),
		ValidateCache(c.Cache),
		ValidateTracing(c.Tracing),
		ValidateQueries(c.Queries),
	)
	return errors.Join(errs...)
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		DBPath:       DefaultDBPath,
		TaxonomyFile: DefaultTaxonomyFile,
		LogLevel:     "debug",
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
		Cache: CacheConfig{
			Disabled:        false,
			Expiration:      10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     tracing.ExporterFile,
			FilePath:     "",
			OTLPEndpoint: tracing.DefaultOTLPEndpoint,
			SampleRate:   1.0,
		},
		Queries: []QueryConfig{},
		Flags:   flags.Defaults(),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# UnderTags Configuration

# SQLite database holding the taxonomy and tagged entities
db_path: .undertags/undertags.db

# Taxonomy file used by 'taxonomy:import', 'taxonomy:export' and 'watch'
taxonomy_file: .undertags/taxonomy.yaml

# Minimum level written to the debug log: debug, info, warn, error
log_level: debug

# Taxonomy file watcher
watch:
  debounce: 500ms

# Entity cache
cache:
  disabled: false
  expiration: 10m
  cleanup_interval: 30m

# Named tag queries, run with 'undertags query:run <name>'
#
# Query syntax:
#   any(A, B.C)      entity owns at least one of the tags
#   all(A, B.C)      entity owns every tag
#   none(A, B.C)     entity owns none of the tags
#   x and y, x or y  combine expressions
#   not x            negate an expression
#   anyof(x, y), allof(x, y), noneof(x, y)
#
# Matching is exact: owning Enemy.Flying does not satisfy any(Enemy).
queries: []
#  - name: flying-bosses
#    expression: all(Enemy.Flying.Boss) and not any(Player)

# Feature flags
flags:
  cascade-remove: true    # strip removed tags from stored entities
  strict-queries: false   # reject queries naming unregistered tags
  entity-cache: true      # cache entity lookups in memory

# Tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/undertags/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
