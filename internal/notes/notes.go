// Package notes assembles classified commit entries and resolved contributor
// handles into a release-notes document and renders it as Markdown.
package notes

import (
	"errors"
	"sort"

	"github.com/shipnote/shipnote/internal/classify"
)

// ErrNoChanges signals that the commit range produced no entries at all.
// It is a normal terminal outcome, not a failure: the caller must not publish
// a release with no content.
var ErrNoChanges = errors.New("no changes to document")

// Document is a release-notes document with its sections in rendering order.
// Within each section, entries keep the commit traversal order.
type Document struct {
	Features     []classify.Entry
	Fixes        []classify.Entry
	Developer    []classify.Entry
	Other        []classify.Entry
	Contributors []string
}

// Build groups entries into sections and attaches the deduplicated,
// lexicographically sorted contributor handles. It returns ErrNoChanges when
// every content section would be empty.
func Build(entries []classify.Entry, handles []string) (*Document, error) {
	if len(entries) == 0 {
		return nil, ErrNoChanges
	}

	doc := &Document{}
	for _, e := range entries {
		switch e.Category {
		case classify.Feature:
			doc.Features = append(doc.Features, e)
		case classify.Fix:
			doc.Fixes = append(doc.Fixes, e)
		case classify.Developer:
			doc.Developer = append(doc.Developer, e)
		default:
			doc.Other = append(doc.Other, e)
		}
	}

	doc.Contributors = dedupeSorted(handles)
	return doc, nil
}

// dedupeSorted deduplicates handles by exact string equality and sorts them
// so rendering order is deterministic regardless of resolution order.
func dedupeSorted(handles []string) []string {
	seen := make(map[string]bool, len(handles))
	var out []string
	for _, h := range handles {
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
