package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/output"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the next release notes without writing anything",
	Long: `Compute the next version and print the rendered release notes.
This is the read-only front half of 'shipnote release': no tag is created,
nothing is pushed, and no release is drafted.

Examples:
  shipnote preview
  shipnote preview --repo ../other-project`,
	GroupID:      GroupRelease,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, _, err := buildPipeline()
		if err != nil {
			return err
		}

		plan, err := planWithSpinner(cmd, p)
		if err != nil {
			return handleNoChanges(cmd, err)
		}

		out := cmd.OutOrStdout()
		output.PrintVersionBump(out, plan.BaseTag, plan.TagName, plan.Kind.String())
		fmt.Fprintln(out)
		fmt.Fprint(out, plan.Body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
