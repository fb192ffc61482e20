// Package cli implements the shipnote command tree.
package cli

import (
	goerrors "errors"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/bump"
	"github.com/shipnote/shipnote/internal/errors"
	"github.com/shipnote/shipnote/internal/gitrepo"
	"github.com/shipnote/shipnote/internal/publish"
)

// Command group IDs for help output.
const (
	GroupRelease = "release"
	GroupUtility = "utility"
)

var (
	configFlag  string
	repoFlag    string
	debugFlag   bool
	noColorFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "shipnote",
	Short: "Automated release versioning and release notes",
	Long: `shipnote computes the next semantic version from the commit history
since the last release tag, renders categorized release notes, and publishes
a new tag plus a draft release. Publishing is atomic: if any step fails, the
completed steps are rolled back so no orphaned tags are left behind.`,
	Example: `  # Preview the next release without writing anything
  shipnote preview

  # Print only the next version, for scripting
  shipnote next

  # Tag, push and create the draft release
  shipnote release

  # Same, but skip the confirmation prompt
  shipnote release --yes`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			log.SetLevel(log.DebugLevel)
		}
		if noColorFlag {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (default: .shipnote/config.yml)")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Path to the git repository (default: current directory)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")
}

// Execute runs the root command. On failure it prints the formatted error to
// stderr and returns it so main can map it to an exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}

	if cliErr := errors.AsCLIError(err); cliErr != nil {
		errors.PrintError(cliErr)
	} else {
		errors.PrintError(dress(err))
	}
	return err
}

// dress attaches a category and remediation to a bare domain error before it
// is printed.
func dress(err error) *errors.CLIError {
	var stepErr *publish.StepError
	if goerrors.As(err, &stepErr) {
		return errors.Wrap(err, errors.Publish,
			"Completed steps were rolled back; fix the cause and rerun 'shipnote release'")
	}

	if goerrors.Is(err, gitrepo.ErrNoTagFound) {
		return errors.Wrap(err, errors.History,
			"Create an initial release tag first, e.g. 'git tag v0.1.0 && git push origin v0.1.0'")
	}
	if goerrors.Is(err, gitrepo.ErrHistoryUnavailable) {
		return errors.Wrap(err, errors.History,
			"Run shipnote inside a git repository, or point --repo at one")
	}

	var invalidBase *bump.ErrInvalidBaseVersion
	if goerrors.As(err, &invalidBase) {
		return errors.Wrap(err, errors.Version,
			"Release tags must look like <prefix><major>.<minor>.<patch>; check 'tag_prefix' in the config")
	}

	return errors.Wrap(err, errors.Argument)
}
