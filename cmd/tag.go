package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
	"github.com/brezhnevtusks/Unidork-sub000/internal/presentation"
)

var tagRegisterCmd = &cobra.Command{
	Use:   "tag:register <tag>...",
	Short: "Register tags and their missing ancestors",
	Long: `Register one or more tags. Every missing ancestor is created too, so
registering Enemy.Flying.Boss also registers Enemy and Enemy.Flying.

Registering an existing root tag is an error; registering an existing
non-root tag does nothing. Valid tags are saved even when others fail.

Examples:
  undertags tag:register Enemy.Flying.Boss Enemy.Ground
  undertags tag:register Status.Stunned --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		created, err := s.svc.Register(cmd.Context(), args...)
		if printErr := s.out.FormatTags(tags.Strings(created)); printErr != nil {
			return printErr
		}
		return err
	}),
}

var tagRemoveCmd = &cobra.Command{
	Use:   "tag:remove <tag>",
	Short: "Remove a tag and its descendants",
	Long: `Remove a tag and every tag below it from the taxonomy.

With the cascade-remove flag enabled (the default), stored entities lose
the removed tags too. Disable it in config to leave entities untouched:

  flags:
    cascade-remove: false`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, s *session) error {
		result, err := s.svc.Remove(cmd.Context(), args[0])
		if len(result.Removed) == 0 && err != nil {
			return err
		}
		if printErr := s.out.FormatRemoveResult(presentation.FromRemoveResult(result)); printErr != nil {
			return printErr
		}
		return err
	}),
}

var tagListCmd = &cobra.Command{
	Use:   "tag:list",
	Short: "List every registered tag",
	Long: `List every registered tag in sorted order. Use --roots to list only
root tags.

Examples:
  undertags tag:list
  undertags tag:list --roots
  undertags tag:list --json | jq '.[]'`,
	Args: cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, _ []string, s *session) error {
		list := s.svc.All()
		if roots, _ := cmd.Flags().GetBool("roots"); roots {
			list = s.svc.Roots()
		}
		return s.out.FormatTags(tags.Strings(list))
	}),
}

var tagTreeCmd = &cobra.Command{
	Use:   "tag:tree [tag]",
	Short: "Print the taxonomy as a tree",
	Long: `Print the taxonomy forest, or only the subtree under the given tag.`,
	Args: cobra.MaximumNArgs(1),
	RunE: withSession(func(_ *cobra.Command, args []string, s *session) error {
		forest := presentation.BuildForest(s.svc.Walk)
		if len(args) == 0 {
			return s.out.FormatForest(forest)
		}
		tag, err := s.svc.Lookup(args[0])
		if err != nil {
			return err
		}
		node, ok := presentation.FindNode(forest, tag.String())
		if !ok {
			return fmt.Errorf("tag %s not found in tree", tag)
		}
		return s.out.FormatForest([]presentation.TreeNodeDTO{node})
	}),
}

var tagShowCmd = &cobra.Command{
	Use:   "tag:show <tag>",
	Short: "Show a tag's parent, children, ancestors and descendants",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(_ *cobra.Command, args []string, s *session) error {
		info, err := s.svc.Info(args[0])
		if err != nil {
			return err
		}
		return s.out.FormatTagInfo(presentation.FromTagInfo(info))
	}),
}

func init() {
	tagListCmd.Flags().Bool("roots", false, "list only root tags")

	rootCmd.AddCommand(tagRegisterCmd, tagRemoveCmd, tagListCmd, tagTreeCmd, tagShowCmd)
}
