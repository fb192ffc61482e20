package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	errLabel    = color.New(color.FgRed, color.Bold)
	errText     = color.New(color.FgRed)
	categoryFmt = color.New(color.FgYellow)
	fixLabel    = color.New(color.FgGreen, color.Bold)
	fixBullet   = color.New(color.FgGreen)
	usageLabel  = color.New(color.FgCyan, color.Bold)
	usageText   = color.New(color.FgCyan)
)

// FormatError renders a CLIError for the terminal. Colors degrade to plain
// text automatically when stderr is not a TTY or NO_COLOR is set.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]: %s\n",
		errLabel.Sprint("Error"),
		categoryFmt.Sprint(err.Category.String()),
		errText.Sprint(err.Message))

	if err.Usage != "" {
		fmt.Fprintf(&b, "\n%s %s\n", usageLabel.Sprint("Usage:"), usageText.Sprint(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&b, "\n%s\n", fixLabel.Sprint("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&b, "  %s %s\n", fixBullet.Sprint("•"), step)
		}
	}
	return b.String()
}

// PrintError prints a formatted CLIError to stderr.
func PrintError(err *CLIError) {
	FprintError(os.Stderr, err)
}

// FprintError prints a formatted CLIError to the given writer.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
