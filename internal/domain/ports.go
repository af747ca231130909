package domain

import "context"

// ReviewPlatform is the narrow collaborator surface used by the analyze
// phase. Implementations return *TransportError on call failure.
type ReviewPlatform interface {
	PRInfo(ctx context.Context, pr int) (*PRInfo, error)
	ReviewComments(ctx context.Context, pr int) ([]RawComment, error)
	Reviews(ctx context.Context, pr int) ([]Review, error)
	// Diff returns the diff of the whole PR, or of one file when file is set.
	Diff(ctx context.Context, pr int, file string) (string, error)
	PostComment(ctx context.Context, pr int, body string) error
}

// VersionControl operates on the local checkout during the apply phase.
type VersionControl interface {
	StageAll() error
	Commit(message string, author Signature) (string, error)
	Push(ctx context.Context) error
	ChangedFiles() ([]string, error)
}

// PlanStore persists the analysis and fix-plan documents.
type PlanStore interface {
	SaveAnalysis(path string, a *Analysis) error
	SavePlan(path string, p *FixPlan) error
	LoadPlan(path string) (*FixPlan, error)
}

// ConfigLoader reads project configuration from the working tree.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// RunHistory records pipeline runs.
type RunHistory interface {
	Save(projectPath string, entry RunEntry) error
	Load(projectPath string) ([]RunEntry, error)
}

// JobTracker reports on an external long-running session.
type JobTracker interface {
	Status(ctx context.Context, sessionID string) (JobStatus, error)
	Activities(ctx context.Context, sessionID string) ([]JobActivity, error)
}

// JobStatus is the state of an external session.
type JobStatus struct {
	ID    string `json:"id"`
	State string `json:"state"`
}

// Terminal reports whether the session has stopped running.
func (s JobStatus) Terminal() bool {
	switch s.State {
	case "SUCCEEDED", "FAILED", "ENDED":
		return true
	}
	return false
}

// JobActivity is one event reported by an external session.
type JobActivity struct {
	CreateTime string `json:"createTime"`
	Type       string `json:"type"`
	Message    string `json:"message"`
}
