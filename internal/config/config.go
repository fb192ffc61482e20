// Package config provides hierarchical configuration management for shipnote
// using koanf. Configuration is loaded with priority: environment variables >
// project config (.shipnote/config.yml or .json) > user config
// (~/.config/shipnote/config.yml) > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration represents the shipnote CLI configuration.
type Configuration struct {
	// Remote is the git remote tags are pushed to and whose URL identifies
	// the forge repository.
	Remote string `koanf:"remote"`

	// TagPrefix is prepended to versions to form tag names (default "v").
	TagPrefix string `koanf:"tag_prefix"`

	// Draft controls whether the created release is a draft.
	Draft bool `koanf:"draft"`

	// APIBaseURL is the forge REST endpoint. Override for enterprise hosts.
	APIBaseURL string `koanf:"api_base_url"`

	// Token authenticates forge API calls. Usually supplied via the
	// SHIPNOTE_TOKEN or GITHUB_TOKEN environment variable, not a file.
	Token string `koanf:"token"`

	// Concurrency bounds the worker pool for per-commit lookups.
	Concurrency int `koanf:"concurrency"`

	// HTTPTimeoutSeconds bounds each forge API call.
	HTTPTimeoutSeconds int `koanf:"http_timeout"`

	// ChangelogPath, when set, is the Markdown changelog the release command
	// prepends each published release to. Empty disables the update.
	ChangelogPath string `koanf:"changelog"`

	// NoColor disables colored terminal output.
	NoColor bool `koanf:"no_color"`
}

// Load loads configuration from user, project, and environment sources.
// projectConfigPath overrides the project config location (used by tests and
// the --config flag); empty means the default .shipnote/ lookup.
func Load(projectConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range Defaults() {
		_ = k.Set(key, value)
	}

	if userPath, err := UserConfigPath(); err == nil && fileExists(userPath) {
		if err := loadFileConfig(k, userPath, "user"); err != nil {
			return nil, err
		}
	}

	projectPath := projectConfigPath
	if projectPath == "" {
		projectPath = findProjectConfig()
	}
	if projectPath != "" && fileExists(projectPath) {
		if err := loadFileConfig(k, projectPath, "project"); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("loading environment config: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	// A GitHub token from the ambient environment is the usual auth path.
	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

const envPrefix = "SHIPNOTE_"

// envKeyMapper maps SHIPNOTE_TAG_PREFIX to tag_prefix.
func envKeyMapper(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, envPrefix))
}

// loadFileConfig loads a YAML or JSON config file based on its extension.
func loadFileConfig(k *koanf.Koanf, path, configType string) error {
	var parser koanf.Parser = yaml.Parser()
	if strings.HasSuffix(path, ".json") {
		parser = json.Parser()
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("loading %s config %s: %w", configType, path, err)
	}
	return nil
}

// Validate rejects configurations the pipeline cannot run with.
func Validate(cfg *Configuration) error {
	if cfg.Remote == "" {
		return fmt.Errorf("remote must not be empty")
	}
	if cfg.TagPrefix == "" {
		return fmt.Errorf("tag_prefix must not be empty")
	}
	if cfg.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency)
	}
	if cfg.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("http_timeout must be at least 1 second, got %d", cfg.HTTPTimeoutSeconds)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
