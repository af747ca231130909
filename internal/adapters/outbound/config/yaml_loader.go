package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prfix/prfix/internal/domain"
	"gopkg.in/yaml.v3"
)

const fileName = ".prfix.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .prfix.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .prfix.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	// Validate before merging, so typos in the raw input are reported.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit overrides on top of defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.ProjectConfig) domain.ProjectConfig {
	result := base

	if override.Repo != "" {
		result.Repo = override.Repo
	}
	if override.Backend != "" {
		result.Backend = override.Backend
	}
	if override.AnalysisOutput != "" {
		result.AnalysisOutput = override.AnalysisOutput
	}
	if override.Workers > 0 {
		result.Workers = override.Workers
	}

	c := override.Commit
	if c.Message != "" {
		result.Commit.Message = c.Message
	}
	if c.AuthorName != "" {
		result.Commit.AuthorName = c.AuthorName
	}
	if c.AuthorEmail != "" {
		result.Commit.AuthorEmail = c.AuthorEmail
	}
	if c.Remote != "" {
		result.Commit.Remote = c.Remote
	}
	if c.Push != nil {
		result.Commit.Push = c.Push
	}

	w := override.Watch
	if w.APIBase != "" {
		result.Watch.APIBase = w.APIBase
	}
	if w.Interval > 0 {
		result.Watch.Interval = w.Interval
	}
	if w.MaxFailures > 0 {
		result.Watch.MaxFailures = w.MaxFailures
	}

	return result
}
