// Package output provides terminal output formatting utilities for the
// shipnote CLI. It is kept dependency-light to avoid import cycles.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the terminal width, defaulting to 80 if unavailable.
func GetTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// PrintSuccess prints a green checkmark line.
func PrintSuccess(out io.Writer, message string) {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	fmt.Fprintf(out, "%s %s\n", green("✓"), cyan(message))
}

// PrintVersionBump prints the base-to-next version transition.
func PrintVersionBump(out io.Writer, baseTag, nextTag, kind string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	fmt.Fprintf(out, "%s %s %s %s\n", dim(baseTag), dim("→"), yellow(nextTag), dim("("+kind+" bump)"))
}

// PrintDocumentRule prints a dim separator around a rendered document so it
// stands apart from the surrounding status output.
func PrintDocumentRule(out io.Writer) {
	dim := color.New(color.FgMagenta, color.Faint).SprintFunc()

	label := " release notes "
	termWidth := GetTerminalWidth()
	lineLen := (termWidth - len(label)) / 2
	if lineLen < 3 {
		lineLen = 3
	}

	line := strings.Repeat("─", lineLen)
	fmt.Fprintf(out, "%s%s%s\n", dim(line), dim(label), dim(line))
}
