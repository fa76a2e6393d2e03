package cmd

import (
	"github.com/spf13/cobra"

	"github.com/brezhnevtusks/Unidork-sub000/internal/application/taxonomy"
	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
)

var (
	entityTags  []string
	hasExact    bool
	hasModeName string
)

var entityCreateCmd = &cobra.Command{
	Use:   "entity:create <name>",
	Short: "Create an entity",
	Long: `Create an entity with a generated id, optionally tagged.

Examples:
  undertags entity:create Dragon --tag Enemy.Flying.Boss
  undertags entity:create Goblin -t Enemy.Ground -t Status.Stunned`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		e, err := s.svc.CreateEntity(cmd.Context(), args[0], entityTags...)
		if err != nil {
			return err
		}
		return s.out.FormatEntity(presentation.FromEntity(e))
	}),
}

var entityAddCmd = &cobra.Command{
	Use:   "entity:add <id> <tag>...",
	Short: "Add registered tags to an entity",
	Long: `Add tags to an entity. Adding a tag replaces any held tag on the same
branch: adding Enemy to an entity holding Enemy.Flying.Boss leaves Enemy.`,
	Args: cobra.MinimumNArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		e, err := s.svc.AddTags(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		return s.out.FormatEntity(presentation.FromEntity(e))
	}),
}

var entityRemoveCmd = &cobra.Command{
	Use:   "entity:remove <id> <tag>...",
	Short: "Remove tags and their descendants from an entity",
	Args:  cobra.MinimumNArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		e, err := s.svc.RemoveTags(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		return s.out.FormatEntity(presentation.FromEntity(e))
	}),
}

var entityClearCmd = &cobra.Command{
	Use:   "entity:clear <id>",
	Short: "Remove every tag from an entity",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		e, err := s.svc.ClearTags(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return s.out.FormatEntity(presentation.FromEntity(e))
	}),
}

var entityDeleteCmd = &cobra.Command{
	Use:   "entity:delete <id>",
	Short: "Delete an entity",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		if err := s.svc.DeleteEntity(cmd.Context(), args[0]); err != nil {
			return err
		}
		return s.out.FormatMessage("deleted " + args[0])
	}),
}

var entityShowCmd = &cobra.Command{
	Use:   "entity:show <id>",
	Short: "Show an entity",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		e, err := s.svc.Entity(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return s.out.FormatEntity(presentation.FromEntity(e))
	}),
}

var entityListCmd = &cobra.Command{
	Use:   "entity:list",
	Short: "List entities, optionally only those holding a tag",
	Long: `List every stored entity in creation order. With --tag, list only
entities holding that tag or one of its registered descendants.

Examples:
  undertags entity:list
  undertags entity:list --tag Enemy`,
	Args: cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		all, err := s.svc.Entities(cmd.Context())
		if err != nil {
			return err
		}
		if len(entityTags) > 0 {
			ts, err := tags.ParseAll(entityTags...)
			if err != nil {
				return err
			}
			filtered := all[:0]
			for _, e := range all {
				if tags.HasAll(e, ts) {
					filtered = append(filtered, e)
				}
			}
			all = filtered
		}
		return s.out.FormatEntities(presentation.FromEntities(all))
	}),
}

var entityHasCmd = &cobra.Command{
	Use:   "entity:has <id> <tag>...",
	Short: "Test an entity against tags",
	Long: `Test whether an entity holds the given tags.

Matching is loose by default: a held tag satisfies any of its ancestors, so
an entity holding Enemy.Flying.Boss has Enemy. Use --exact to require the
tag itself. --mode picks how several tags combine: any (default), all, none.

The command exits with status 1 when the test fails.

Examples:
  undertags entity:has dragon Enemy
  undertags entity:has dragon Enemy.Flying.Boss Player --mode all --exact`,
	Args: cobra.MinimumNArgs(2),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		mode, err := taxonomy.ParseMatchMode(hasModeName)
		if err != nil {
			return err
		}
		ok, err := s.svc.Has(cmd.Context(), args[0], mode, hasExact, args[1:]...)
		if err != nil {
			return err
		}
		if err := s.out.FormatQueryResult(presentation.QueryResultDTO{
			Query:    string(mode) + " " + joinArgs(args[1:]),
			EntityID: args[0],
			Matched:  ok,
		}); err != nil {
			return err
		}
		if !ok {
			return errNoMatch
		}
		return nil
	}),
}

func init() {
	entityCreateCmd.Flags().StringArrayVarP(&entityTags, "tag", "t", nil, "tag to add (repeatable)")
	entityListCmd.Flags().StringArrayVarP(&entityTags, "tag", "t", nil, "only entities holding this tag (repeatable, AND logic)")
	entityHasCmd.Flags().BoolVar(&hasExact, "exact", false, "require the tag itself, not a descendant")
	entityHasCmd.Flags().StringVar(&hasModeName, "mode", string(taxonomy.MatchAny), "any, all or none")

	rootCmd.AddCommand(
		entityCreateCmd,
		entityAddCmd,
		entityRemoveCmd,
		entityClearCmd,
		entityDeleteCmd,
		entityShowCmd,
		entityListCmd,
		entityHasCmd,
	)
}
