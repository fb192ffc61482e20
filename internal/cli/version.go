package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/version"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Print the shipnote version",
	GroupID: GroupUtility,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "shipnote %s\n", version.Version)
		if version.IsDevBuild() {
			return
		}
		fmt.Fprintf(out, "  commit: %s\n", version.Commit)
		fmt.Fprintf(out, "  built:  %s\n", version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
