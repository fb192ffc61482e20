package cli

import (
	"bufio"
	goerrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/changelog"
	"github.com/shipnote/shipnote/internal/notes"
	"github.com/shipnote/shipnote/internal/output"
	"github.com/shipnote/shipnote/internal/pipeline"
)

var (
	releaseDryRunFlag    bool
	releaseYesFlag       bool
	releaseDraftFlag     bool
	releaseChangelogFlag string
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Compute the next version, tag it, and create a draft release",
	Long: `Compute the next semantic version from the commits since the last
release tag, render categorized release notes, create and push the version
tag, and create a draft release with the notes as its body.

If any publish step fails, the completed steps are rolled back: the local
tag, and the remote tag if it was already pushed, are deleted again. A failed
run leaves the repository and the remote exactly as they were.

Two concurrent invocations are not mutually excluded; run one release at a
time.

Examples:
  # Full publish with confirmation prompt
  shipnote release

  # Automation-friendly: no prompt
  shipnote release --yes

  # Show what would be published, write nothing
  shipnote release --dry-run

  # Publish immediately instead of drafting
  shipnote release --draft=false --yes

  # Also prepend the notes to CHANGELOG.md
  shipnote release --changelog`,
	GroupID:      GroupRelease,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRelease(cmd)
	},
}

func init() {
	rootCmd.AddCommand(releaseCmd)

	releaseCmd.Flags().BoolVar(&releaseDryRunFlag, "dry-run", false, "Render the release without writing anything")
	releaseCmd.Flags().BoolVarP(&releaseYesFlag, "yes", "y", false, "Skip the confirmation prompt")
	releaseCmd.Flags().BoolVar(&releaseDraftFlag, "draft", true, "Create the release as a draft")
	releaseCmd.Flags().StringVar(&releaseChangelogFlag, "changelog", "", "Prepend the notes to this Markdown changelog")
	releaseCmd.Flags().Lookup("changelog").NoOptDefVal = changelog.DefaultPath
}

func runRelease(cmd *cobra.Command) error {
	p, _, cfg, err := buildPipeline()
	if err != nil {
		return err
	}

	draft := releaseDraftFlag
	if !cmd.Flags().Changed("draft") {
		draft = cfg.Draft
	}
	changelogPath := releaseChangelogFlag
	if !cmd.Flags().Changed("changelog") {
		changelogPath = cfg.ChangelogPath
	}

	plan, err := planWithSpinner(cmd, p)
	if err != nil {
		return handleNoChanges(cmd, err)
	}

	out := cmd.OutOrStdout()
	output.PrintVersionBump(out, plan.BaseTag, plan.TagName, plan.Kind.String())
	output.PrintDocumentRule(out)
	fmt.Fprint(out, plan.Body)
	output.PrintDocumentRule(out)

	if releaseDryRunFlag {
		fmt.Fprintf(out, "\nDry run: no tag or release was created.\n")
		return nil
	}

	if !releaseYesFlag && !confirm(cmd, fmt.Sprintf("Publish %s?", plan.TagName)) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	rel, err := p.Publish(cmd.Context(), plan, draft)
	if err != nil {
		return err
	}

	output.PrintSuccess(out, fmt.Sprintf("Tag %s pushed", plan.TagName))
	if rel.HTMLURL != "" {
		output.PrintSuccess(out, fmt.Sprintf("Release created: %s", rel.HTMLURL))
	} else {
		output.PrintSuccess(out, fmt.Sprintf("Release %q created", rel.Name))
	}

	if changelogPath != "" {
		// The release is already published at this point, so a changelog
		// failure is reported but not treated as a failed run.
		section := changelog.Section{TagName: plan.TagName, Date: time.Now(), Body: plan.Body}
		if err := changelog.Update(changelogPath, section); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: changelog not updated: %v\n", err)
		} else {
			output.PrintSuccess(out, fmt.Sprintf("Changelog updated: %s", changelogPath))
		}
	}
	return nil
}

// planWithSpinner runs the read-only pipeline half behind a spinner when
// stdout is an interactive terminal.
func planWithSpinner(cmd *cobra.Command, p *pipeline.Pipeline) (*pipeline.Plan, error) {
	if !output.IsTTY() || debugFlag {
		return p.BuildPlan(cmd.Context())
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Resolving pull requests and contributors..."
	s.Start()
	defer s.Stop()
	return p.BuildPlan(cmd.Context())
}

// handleNoChanges turns the no-changes outcome into a clean zero exit.
func handleNoChanges(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if goerrors.Is(err, notes.ErrNoChanges) {
		fmt.Fprintln(cmd.OutOrStdout(), "No changes since the last release; nothing to publish.")
		return nil
	}
	return err
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
