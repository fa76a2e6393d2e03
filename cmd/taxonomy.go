package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/config"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
	"github.com/brezhnevtusks/Unidork-sub000/internal/templates"
)

var (
	importSaveQueries bool
	importReplace     bool
	importAllowEmpty  bool
	initStarter       string
	initForce         bool
)

var taxonomyImportCmd = &cobra.Command{
	Use:   "taxonomy:import [file]",
	Short: "Import tags from a YAML taxonomy file",
	Long: `Import the tags listed in a YAML taxonomy file (default: taxonomy_file
from config). Listed tags are merged into the stored taxonomy; entries that
already exist are skipped and invalid entries are reported with their line.

With --replace the stored taxonomy becomes exactly the file's tags, and the
file is rejected as a whole if any entry is invalid. A file listing no tags
is also rejected unless --allow-empty is given.

File format:
  tags:
    - Enemy.Flying.Boss
    - Enemy.Ground
  queries:
    - name: flyers
      expression: any(Enemy.Flying.Boss)`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		path := cfg.TaxonomyFile
		if len(args) == 1 {
			path = args[0]
		}
		file, err := taxonomy.ReadFile(path)
		if err != nil {
			return err
		}

		if importReplace {
			var opts []taxonomy.ReloadOption
			if importAllowEmpty {
				opts = append(opts, taxonomy.AllowEmpty())
			}
			result, err := s.svc.Reload(cmd.Context(), file, opts...)
			if err != nil {
				return err
			}
			return s.out.FormatReloadResult(presentation.FromReloadResult(result))
		}

		result, importErr := s.svc.Import(cmd.Context(), file)
		if importSaveQueries {
			if err := saveFileQueries(file.Queries); err != nil {
				return err
			}
		}
		if err := s.out.FormatImportResult(presentation.FromImportResult(result)); err != nil {
			return err
		}
		return importErr
	}),
}

func saveFileQueries(defs []taxonomy.QueryDef) error {
	queries := cfg.Queries
	for _, def := range defs {
		var err error
		queries, err = config.UpsertQuery(configPath(), config.QueryConfig{Name: def.Name, Expression: def.Expression}, queries)
		if err != nil {
			return err
		}
	}
	cfg.Queries = queries
	return nil
}

var taxonomyExportCmd = &cobra.Command{
	Use:   "taxonomy:export [file]",
	Short: "Export the taxonomy as YAML",
	Long: `Write every registered tag, in sorted order, and the saved queries as a
YAML taxonomy file. Use "-" to write to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		path := cfg.TaxonomyFile
		if len(args) == 1 {
			path = args[0]
		}
		queries := make([]taxonomy.QueryDef, len(cfg.Queries))
		for i, q := range cfg.Queries {
			queries[i] = taxonomy.QueryDef{Name: q.Name, Expression: q.Expression}
		}
		if path == "-" {
			return s.svc.ExportTo(cmd.Context(), cmd.OutOrStdout(), queries)
		}
		if err := s.svc.ExportFile(cmd.Context(), path, queries); err != nil {
			return err
		}
		return s.out.FormatMessage("exported " + path)
	}),
}

var taxonomyInitCmd = &cobra.Command{
	Use:   "taxonomy:init [file]",
	Short: "Write a starter taxonomy file",
	Long: `Write one of the built-in starter taxonomies to a YAML file (default:
taxonomy_file from config), ready for 'taxonomy:import' or 'watch'.

Examples:
  undertags taxonomy:init
  undertags taxonomy:init --starter minimal ./tags.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.TaxonomyFile
		if len(args) == 1 {
			path = args[0]
		}
		data, err := templates.Starter(initStarter)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return newFormatter(cmd).FormatMessage("wrote " + initStarter + " taxonomy to " + path)
	},
}

func init() {
	taxonomyInitCmd.Flags().StringVar(&initStarter, "starter", templates.DefaultStarter, "starter taxonomy to write")
	taxonomyInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	taxonomyImportCmd.Flags().BoolVar(&importSaveQueries, "save-queries", false, "also save the file's queries to the config file")
	taxonomyImportCmd.Flags().BoolVar(&importReplace, "replace", false, "replace the stored taxonomy instead of merging")
	taxonomyImportCmd.Flags().BoolVar(&importAllowEmpty, "allow-empty", false, "with --replace, accept a file that lists no tags")

	rootCmd.AddCommand(taxonomyInitCmd, taxonomyImportCmd, taxonomyExportCmd)
}
