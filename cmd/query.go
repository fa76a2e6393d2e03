package cmd

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/brezhnevtusks/Unidork-sub000/internal/config"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
	"github.com/brezhnevtusks/Unidork-sub000/internal/tql"
)

// errNoMatch makes test-style commands exit non-zero without printing an error.
var errNoMatch = errors.New("no match")

var (
	evalEntity string
	evalTags   []string
)

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}

var queryEvalCmd = &cobra.Command{
	Use:   "query:eval <expression>",
	Short: "Evaluate a tag query",
	Long: `Evaluate a TQL expression against a stored entity or an ad hoc tag list.

Queries compare tags exactly: any(Enemy) does not match an entity that only
holds Enemy.Flying.Boss. The command exits with status 1 when the query does
not match.

Grammar:
  any(T...)  all(T...)  none(T...)     tag lists
  anyof(E...) allof(E...) noneof(E...) sub-expression lists
  E and E, E or E, not E, ( E )

Examples:
  undertags query:eval 'any(Enemy.Flying.Boss)' --entity dragon
  undertags query:eval 'any(Player) or none(Enemy.Ground)' --tags Player,Status.Stunned`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		expr, err := tql.Parse(args[0])
		if err != nil {
			return err
		}

		result := presentation.QueryResultDTO{Query: tql.Format(expr)}
		if evalEntity != "" {
			result.EntityID = evalEntity
			result.Matched, err = s.svc.Evaluate(cmd.Context(), evalEntity, expr)
		} else {
			result.Tags = evalTags
			result.Matched, err = s.svc.EvaluateTags(cmd.Context(), evalTags, expr)
		}
		if err != nil {
			return err
		}
		if err := s.out.FormatQueryResult(result); err != nil {
			return err
		}
		if !result.Matched {
			return errNoMatch
		}
		return nil
	}),
}

var queryCheckCmd = &cobra.Command{
	Use:   "query:check <expression>",
	Short: "Parse and validate a query against the taxonomy",
	Long: `Parse a TQL expression, check it is well formed and that every tag it
names is registered, then print its canonical form.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(_ *cobra.Command, args []string, s *session) error {
		expr, err := tql.Parse(args[0])
		if err != nil {
			return err
		}
		if err := s.svc.Check(expr); err != nil {
			return err
		}
		return s.out.FormatMessage(tql.Format(expr))
	}),
}

var querySaveCmd = &cobra.Command{
	Use:   "query:save <name> <expression>",
	Short: "Save a named query to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr, err := tql.Parse(args[1])
		if err != nil {
			return err
		}
		q := config.QueryConfig{Name: args[0], Expression: tql.Format(expr)}
		queries, err := config.UpsertQuery(configPath(), q, cfg.Queries)
		if err != nil {
			return err
		}
		cfg.Queries = queries
		return newFormatter(cmd).FormatMessage("saved " + q.Name + ": " + q.Expression)
	},
}

var queryDeleteCmd = &cobra.Command{
	Use:   "query:delete <name>",
	Short: "Delete a named query from the config file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queries, err := config.DeleteQuery(configPath(), args[0], cfg.Queries)
		if err != nil {
			return err
		}
		cfg.Queries = queries
		return newFormatter(cmd).FormatMessage("deleted " + args[0])
	},
}

var queryListCmd = &cobra.Command{
	Use:   "query:list",
	Short: "List saved queries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := newFormatter(cmd)
		if out.JSON() {
			queries := cfg.Queries
			if queries == nil {
				queries = []config.QueryConfig{}
			}
			return out.FormatJSON(queries)
		}
		lines := make([]string, len(cfg.Queries))
		for i, q := range cfg.Queries {
			lines[i] = q.Name + ": " + q.Expression
		}
		return out.FormatTags(lines)
	},
}

var queryRunCmd = &cobra.Command{
	Use:   "query:run <name>",
	Short: "Run a saved query against every stored entity",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		q, err := cfg.FindQuery(args[0])
		if err != nil {
			return err
		}
		expr, err := q.Parse()
		if err != nil {
			return err
		}
		matches, err := s.svc.Select(cmd.Context(), expr)
		if err != nil {
			return err
		}
		return s.out.FormatSelection(presentation.SelectionDTO{
			Name:     q.Name,
			Query:    q.Expression,
			Entities: presentation.FromEntities(matches),
		})
	}),
}

var querySelectCmd = &cobra.Command{
	Use:   "query:select <expression>",
	Short: "List stored entities matching an expression",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		expr, err := tql.Parse(args[0])
		if err != nil {
			return err
		}
		matches, err := s.svc.Select(cmd.Context(), expr)
		if err != nil {
			return err
		}
		return s.out.FormatSelection(presentation.SelectionDTO{
			Query:    tql.Format(expr),
			Entities: presentation.FromEntities(matches),
		})
	}),
}

func init() {
	queryEvalCmd.Flags().StringVarP(&evalEntity, "entity", "e", "", "evaluate against this stored entity")
	queryEvalCmd.Flags().StringSliceVar(&evalTags, "tags", nil, "evaluate against these tags (comma separated)")
	queryEvalCmd.MarkFlagsMutuallyExclusive("entity", "tags")
	queryEvalCmd.MarkFlagsOneRequired("entity", "tags")

	rootCmd.AddCommand(
		queryEvalCmd,
		queryCheckCmd,
		querySaveCmd,
		queryDeleteCmd,
		queryListCmd,
		queryRunCmd,
		querySelectCmd,
	)
}
