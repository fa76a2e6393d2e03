package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/cachemanager"
	"github.com/brezhnevtusks/Unidork-sub000/internal/config"
	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/flags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/infrastructure/sqlite"
	"github.com/brezhnevtusks/Unidork-sub000/internal/log"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tracing"
)

var (
	version    = "dev"
	cfgFile    string
	cfg        config.Config
	debugFlag  bool
	jsonOutput bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "undertags",
	Short: "Hierarchical gameplay tags for entities",
	Long: `undertags manages a taxonomy of dot-separated hierarchical tags
(Enemy.Flying.Boss), tags stored entities with them, and evaluates tag
queries against those entities.

The taxonomy and entities live in a SQLite database (.undertags/undertags.db
by default). The taxonomy can be imported from and exported to YAML, and
'undertags watch' keeps the database in sync with the YAML file.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .undertags/config.yaml, then ~/.config/undertags/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the SQLite database")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs to UNDERTAGS_LOG (default: debug.log)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON instead of text")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("db_path", defaults.DBPath)
	viper.SetDefault("taxonomy_file", defaults.TaxonomyFile)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("cache.disabled", defaults.Cache.Disabled)
	viper.SetDefault("cache.expiration", defaults.Cache.Expiration)
	viper.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	viper.SetDefault("flags", defaults.Flags)

	viper.SetEnvPrefix("UNDERTAGS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .undertags/config.yaml (current directory)
		// 2. ~/.config/undertags/config.yaml (user config)
		local := filepath.Join(config.DefaultDir, "config.yaml")
		if _, err := os.Stat(local); err == nil {
			viper.SetConfigFile(local)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "undertags"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .undertags/config.yaml
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			defaultPath := filepath.Join(config.DefaultDir, "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// configPath returns the config file queries are saved to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(config.DefaultDir, "config.yaml")
}

// setupLogging enables the file logger when --debug or UNDERTAGS_DEBUG is set.
func setupLogging() (func(), error) {
	if !debugFlag && os.Getenv("UNDERTAGS_DEBUG") == "" {
		return func() {}, nil
	}
	logPath := os.Getenv("UNDERTAGS_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(cfg.LogLevel))
	log.Info(log.CatConfig, "undertags starting", "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// session bundles everything a command needs: the opened database, the
// loaded taxonomy service, the tracer and the output formatter.
type session struct {
	db      *sqlite.DB
	svc     *taxonomy.Service
	tracing *tracing.Provider
	out     *presentation.Formatter
	closers []func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &session{out: newFormatter(cmd)}
	cleanupLog, err := setupLogging()
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, cleanupLog)

	s.tracing, err = tracing.NewProvider(cfg.Tracing.Provider())
	if err != nil {
		log.Warn(log.CatTrace, "Tracing disabled", "error", err)
		s.tracing = tracing.Noop()
	}

	s.db, err = sqlite.NewDB(cfg.DBPath)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("opening database %s: %w", cfg.DBPath, err)
	}

	flagValues := maps.Clone(cfg.Flags)
	if flagValues == nil {
		flagValues = make(map[string]bool)
	}
	if cfg.Cache.Disabled {
		flagValues[flags.FlagEntityCache] = false
	}

	s.svc = taxonomy.NewService(taxonomy.Options{
		Taxonomy: s.db.TaxonomyRepository(),
		Entities: s.db.EntityRepository(),
		Cache: cachemanager.NewInMemoryCacheManager[string, tags.EntityRecord](
			"entities", cfg.Cache.Expiration, cfg.Cache.CleanupInterval),
		CacheTTL: cfg.Cache.Expiration,
		Tracer:   s.tracing.Tracer(),
		Flags:    flags.WithDefaults(flagValues),
	})
	if err := s.svc.Load(cmd.Context()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases resources in reverse order of acquisition.
func (s *session) Close() {
	if s.svc != nil {
		s.svc.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.tracing != nil {
		_ = s.tracing.Shutdown(context.Background())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func newFormatter(cmd *cobra.Command) *presentation.Formatter {
	opts := []presentation.Option{presentation.WithJSON(jsonOutput)}
	if noColor || os.Getenv("NO_COLOR") != "" {
		opts = append(opts, presentation.WithoutColor())
	}
	return presentation.NewFormatter(cmd.OutOrStdout(), opts...)
}

// withSession opens a session for the duration of fn.
func withSession(fn func(cmd *cobra.Command, args []string, s *session) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, args, s)
	}
}

// Execute runs the root command. errNoMatch sets the exit status without
// printing anything.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errNoMatch) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
