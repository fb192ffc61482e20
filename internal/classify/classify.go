// Package classify maps commit subject lines to release-notes categories.
// Classification is a pure function of the subject: the same input always
// produces the same category and display text.
package classify

import (
	"fmt"
	"regexp"
)

// Category is the release-notes section a commit belongs to.
type Category int

const (
	// Feature holds feat commits.
	Feature Category = iota
	// Fix holds fix commits.
	Fix
	// Developer holds style, refactor, test, build, ci and docs commits.
	Developer
	// Other holds everything without a recognized prefix.
	Other
)

// String returns the section name used in rendered release notes.
func (c Category) String() string {
	switch c {
	case Feature:
		return "Features"
	case Fix:
		return "Bug Fixes"
	case Developer:
		return "For Developers"
	default:
		return "Other Changes"
	}
}

// Entry is a classified commit ready for grouping into a document.
type Entry struct {
	// Category selects the release-notes section.
	Category Category
	// Subcategory is the matched prefix word for Developer entries
	// (e.g. "refactor", "docs"); empty otherwise.
	Subcategory string
	// Text is the subject with the conventional-commit prefix stripped.
	// For Other entries it is the unmodified subject.
	Text string
	// Ref is the rendered reference suffix, " (#<pr>)" or " (<short hash>)".
	Ref string
}

// Prefix matching is case-sensitive and anchored at the start of the subject.
// An optional parenthesized scope and an optional breaking-change bang are
// stripped along with the prefix word.
var (
	featPattern      = regexp.MustCompile(`^feat(\([^)]*\))?!?: `)
	fixPattern       = regexp.MustCompile(`^fix(\([^)]*\))?!?: `)
	developerPattern = regexp.MustCompile(`^(style|refactor|test|build|ci|docs)(\([^)]*\))?!?: `)
)

// Classify maps a commit subject to its category and display text. The
// returned entry has no Ref; reference resolution is a separate, network-bound
// concern.
func Classify(subject string) Entry {
	if loc := featPattern.FindStringIndex(subject); loc != nil {
		return Entry{Category: Feature, Text: subject[loc[1]:]}
	}
	if loc := fixPattern.FindStringIndex(subject); loc != nil {
		return Entry{Category: Fix, Text: subject[loc[1]:]}
	}
	if m := developerPattern.FindStringSubmatchIndex(subject); m != nil {
		return Entry{
			Category:    Developer,
			Subcategory: subject[m[2]:m[3]],
			Text:        subject[m[1]:],
		}
	}
	return Entry{Category: Other, Text: subject}
}

// FormatRef renders the reference suffix for an entry. A resolved pull
// request number takes precedence; otherwise the first seven characters of
// the commit hash identify the change.
func FormatRef(prNumber int, hash string) string {
	if prNumber > 0 {
		return fmt.Sprintf(" (#%d)", prNumber)
	}
	short := hash
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf(" (%s)", short)
}
