package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/shipnote/shipnote/internal/config"
	"github.com/shipnote/shipnote/internal/errors"
	"github.com/shipnote/shipnote/internal/output"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Write a starter config file",
	GroupID: GroupUtility,
	Long: `Write a commented configuration template.

By default the template is written to .shipnote/config.yml in the current
directory. With --global it goes to the user config path instead
(~/.config/shipnote/config.yml).`,
	Example: `  shipnote init
  shipnote init --global
  shipnote init --force`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("global", "g", false, "Write the user config instead of the project config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")
	force, _ := cmd.Flags().GetBool("force")

	path := filepath.Join(".shipnote", "config.yml")
	if global {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return errors.WrapWithMessage(err, errors.Configuration, "cannot determine home directory")
		}
		path = userPath
	}

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", path)
		if !confirm(cmd, "Overwrite it?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Left unchanged.")
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithMessage(err, errors.Configuration, "cannot create config directory")
	}
	if err := os.WriteFile(path, []byte(config.DefaultConfigTemplate()), 0644); err != nil {
		return errors.WrapWithMessage(err, errors.Configuration, "cannot write config file")
	}

	output.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Wrote %s", path))
	return nil
}
