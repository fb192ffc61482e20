package cli

import (
	goerrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/notes"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print only the next version tag",
	Long: `Compute and print the next version tag (e.g. "v1.3.0") and nothing
else, for use in scripts. When there are no commits since the last release,
the current tag is printed unchanged.

Examples:
  shipnote next
  VERSION=$(shipnote next)`,
	GroupID:      GroupRelease,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, repo, _, err := buildPipeline()
		if err != nil {
			return err
		}

		plan, err := p.BuildPlan(cmd.Context())
		if goerrors.Is(err, notes.ErrNoChanges) {
			_, currentTag, tagErr := repo.LatestVersionTag()
			if tagErr != nil {
				return tagErr
			}
			fmt.Fprintln(cmd.OutOrStdout(), currentTag)
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), plan.TagName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(nextCmd)
}
