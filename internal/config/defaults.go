package config

import "github.com/shipnote/shipnote/internal/forge"

// Defaults returns the default configuration values.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"remote":       "origin",
		"tag_prefix":   "v",
		"draft":        true,
		"api_base_url": forge.DefaultBaseURL,
		"token":        "",
		// concurrency: worker pool size for per-commit PR and contributor
		// lookups. Each worker holds at most two API calls in flight.
		"concurrency": 4,
		// http_timeout: per-call timeout in seconds. A stalled lookup
		// degrades to the short-hash / author-name fallback.
		"http_timeout": 30,
		"changelog":    "",
		"no_color":     false,
	}
}

// DefaultConfigTemplate returns a commented config file template written by
// `shipnote init`.
func DefaultConfigTemplate() string {
	return `# shipnote configuration
# Priority: SHIPNOTE_* environment variables > this file > user config > defaults

remote: origin          # Git remote to push tags to
tag_prefix: v           # Version tag prefix (tags look like v1.2.3)
draft: true             # Create the release as a draft
api_base_url: ` + forge.DefaultBaseURL + `
concurrency: 4          # Parallel PR/contributor lookups
http_timeout: 30        # Per-call API timeout in seconds
no_color: false         # Disable colored output

# Prepend each release's notes to a Markdown changelog. Empty disables it.
# changelog: CHANGELOG.md
`
}
