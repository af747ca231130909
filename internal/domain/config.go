package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Backend selects the review platform adapter.
type Backend string

const (
	BackendGH  Backend = "gh"
	BackendAPI Backend = "api"
)

// DefaultAnalysisOutput is the analysis document written by analyze.
const DefaultAnalysisOutput = "review-analysis.json"

// DefaultCommitMessage is the templated message for the trailing commit.
const DefaultCommitMessage = "fix: Apply auto-fixes from review comments\n\nAuto-generated by prfix from {{count}} file(s) of PR review feedback"

// ProjectConfig holds settings loaded from .prfix.yaml.
type ProjectConfig struct {
	Repo           string       `yaml:"repo"            json:"repo,omitempty"`
	Backend        Backend      `yaml:"backend"         json:"backend,omitempty"`
	AnalysisOutput string       `yaml:"analysis_output" json:"analysis_output,omitempty"`
	Workers        int          `yaml:"workers"         json:"workers,omitempty"`
	Commit         CommitConfig `yaml:"commit"          json:"commit"`
	Watch          WatchConfig  `yaml:"watch"           json:"watch"`
}

// CommitConfig controls the optional commit/push step of apply.
type CommitConfig struct {
	Message     string `yaml:"message"      json:"message,omitempty"`
	AuthorName  string `yaml:"author_name"  json:"author_name,omitempty"`
	AuthorEmail string `yaml:"author_email" json:"author_email,omitempty"`
	Remote      string `yaml:"remote"       json:"remote,omitempty"`
	// Push is a pointer so "false" can be told apart from "unset".
	Push *bool `yaml:"push,omitempty" json:"push,omitempty"`
}

// WatchConfig controls the long-running session watcher.
type WatchConfig struct {
	APIBase     string        `yaml:"api_base"     json:"api_base,omitempty"`
	Interval    time.Duration `yaml:"interval"     json:"interval,omitempty"`
	MaxFailures int           `yaml:"max_failures" json:"max_failures,omitempty"`
}

// DefaultConfig returns the settings used when no .prfix.yaml exists.
func DefaultConfig() ProjectConfig {
	push := true
	return ProjectConfig{
		Backend:        BackendGH,
		AnalysisOutput: DefaultAnalysisOutput,
		Workers:        1,
		Commit: CommitConfig{
			Message:     DefaultCommitMessage,
			AuthorName:  "github-actions[bot]",
			AuthorEmail: "github-actions[bot]@users.noreply.github.com",
			Remote:      "origin",
			Push:        &push,
		},
		Watch: WatchConfig{
			APIBase:     "https://jules.googleapis.com/v1alpha",
			Interval:    10 * time.Second,
			MaxFailures: 3,
		},
	}
}

// ShouldPush reports whether a commit is followed by a push.
func (c CommitConfig) ShouldPush() bool {
	return c.Push == nil || *c.Push
}

// Author returns the commit signature.
func (c CommitConfig) Author() Signature {
	return Signature{Name: c.AuthorName, Email: c.AuthorEmail}
}

var repoRe = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.Backend != "" && c.Backend != BackendGH && c.Backend != BackendAPI {
		return fmt.Errorf("unknown backend %q (valid: gh, api)", c.Backend)
	}
	if c.Repo != "" && !repoRe.MatchString(c.Repo) {
		return fmt.Errorf("repo %q must be in owner/name form", c.Repo)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if c.Watch.Interval < 0 {
		return fmt.Errorf("watch.interval must not be negative (got %s)", c.Watch.Interval)
	}
	if c.Watch.MaxFailures < 0 {
		return fmt.Errorf("watch.max_failures must be >= 0 (got %d)", c.Watch.MaxFailures)
	}
	return nil
}
