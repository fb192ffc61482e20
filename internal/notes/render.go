package notes

import (
	"fmt"
	"io"
	"strings"

	"github.com/shipnote/shipnote/internal/classify"
)

// RenderMarkdown writes the document as Markdown. Sections appear in the
// fixed order Features, Bug Fixes, For Developers, Other Changes,
// Contributors, and a section is omitted entirely when it has no entries.
//
// The function is idempotent - given the same document, it produces identical
// output.
func RenderMarkdown(d *Document, w io.Writer) error {
	if _, err := io.WriteString(w, "## What's Changed\n"); err != nil {
		return err
	}

	sections := []struct {
		name    string
		entries []classify.Entry
	}{
		{"Features", d.Features},
		{"Bug Fixes", d.Fixes},
		{"For Developers", d.Developer},
		{"Other Changes", d.Other},
	}

	for _, s := range sections {
		if len(s.entries) == 0 {
			continue
		}
		if err := renderSection(s.name, s.entries, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", s.name, err)
		}
	}

	if len(d.Contributors) > 0 {
		if err := renderContributors(d.Contributors, w); err != nil {
			return fmt.Errorf("rendering contributors: %w", err)
		}
	}

	return nil
}

// RenderMarkdownString is a convenience function that renders to a string.
func RenderMarkdownString(d *Document) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(d, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderSection(name string, entries []classify.Entry, w io.Writer) error {
	if _, err := io.WriteString(w, "\n### "+name+"\n"); err != nil {
		return err
	}
	for _, e := range entries {
		line := "- " + entryText(e) + e.Ref + "\n"
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// entryText prefixes developer entries with their subcategory label.
func entryText(e classify.Entry) string {
	if e.Category == classify.Developer && e.Subcategory != "" {
		return "[" + e.Subcategory + "] " + e.Text
	}
	return e.Text
}

func renderContributors(handles []string, w io.Writer) error {
	if _, err := io.WriteString(w, "\n### Contributors\n"); err != nil {
		return err
	}
	for _, h := range handles {
		if _, err := io.WriteString(w, "- @"+h+"\n"); err != nil {
			return err
		}
	}
	return nil
}
