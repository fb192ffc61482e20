package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the XDG-compliant user config path,
// ~/.config/shipnote/config.yml.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "shipnote", "config.yml"), nil
}

// projectConfigCandidates are checked in order; the first that exists wins.
var projectConfigCandidates = []string{
	filepath.Join(".shipnote", "config.yml"),
	filepath.Join(".shipnote", "config.yaml"),
	filepath.Join(".shipnote", "config.json"),
}

// findProjectConfig returns the first existing project config path, or ""
// when the project has none.
func findProjectConfig() string {
	for _, candidate := range projectConfigCandidates {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}
