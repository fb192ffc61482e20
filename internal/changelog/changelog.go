// Package changelog maintains a project CHANGELOG.md. The release command
// prepends each published release's notes as a new version section, keeping
// the newest release at the top.
package changelog

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultPath is the conventional changelog location at the repository root.
const DefaultPath = "CHANGELOG.md"

const fileHeader = `# Changelog

All notable changes to this project are documented in this file.
`

// Section is one release entry to add to the changelog.
type Section struct {
	TagName string
	Date    time.Time
	Body    string
}

// heading renders the section heading, "## v1.3.0 - 2026-08-26".
func (s Section) heading() string {
	return fmt.Sprintf("## %s - %s", s.TagName, s.Date.Format("2006-01-02"))
}

// render produces the full Markdown block for the section. The release body
// uses H2 for its own title, so its headings are demoted one level to nest
// under the version heading.
func (s Section) render() string {
	var b strings.Builder
	b.WriteString(s.heading())
	b.WriteString("\n\n")
	b.WriteString(demoteHeadings(strings.TrimRight(s.Body, "\n")))
	b.WriteString("\n")
	return b.String()
}

func demoteHeadings(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "##") {
			lines[i] = "#" + line
		}
	}
	return strings.Join(lines, "\n")
}

// Insert returns the changelog content with the section added before the
// first existing version heading. Content without any version heading gets
// the section appended after the intro text.
func Insert(content string, section Section) (string, error) {
	if strings.Contains(content, section.heading()+"\n") || strings.HasSuffix(content, section.heading()) {
		return "", fmt.Errorf("changelog already has a %s section", section.TagName)
	}

	block := section.render()
	idx := firstVersionHeading(content)
	if idx < 0 {
		out := strings.TrimRight(content, "\n")
		if out == "" {
			return fileHeader + "\n" + block, nil
		}
		return out + "\n\n" + block, nil
	}
	return content[:idx] + block + "\n" + content[idx:], nil
}

// firstVersionHeading returns the offset of the first "## " line, or -1.
func firstVersionHeading(content string) int {
	if strings.HasPrefix(content, "## ") {
		return 0
	}
	idx := strings.Index(content, "\n## ")
	if idx < 0 {
		return -1
	}
	return idx + 1
}

// Update rewrites the changelog file at path with the section inserted,
// creating the file when it does not exist yet.
func Update(path string, section Section) error {
	content := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		content = string(data)
	case !os.IsNotExist(err):
		return fmt.Errorf("reading %s: %w", path, err)
	}

	updated, err := Insert(content, section)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
