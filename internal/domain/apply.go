package domain

// FixResult is the per-file outcome of applying a plan.
type FixResult struct {
	File    string `json:"file"`
	Success bool   `json:"success"`
	Changed bool   `json:"changed"`
	Edits   int    `json:"edits"`
	Changes string `json:"changes"`
	Error   string `json:"error,omitempty"`
}

// ApplyOptions controls one apply run.
type ApplyOptions struct {
	DryRun  bool `json:"dry_run"`
	Commit  bool `json:"commit"`
	Workers int  `json:"workers"`
	// Repo, when set, must match the repository the plan was generated for.
	Repo string `json:"repo,omitempty"`
	// OnPlan is called once the plan is loaded, before any file is visited.
	OnPlan func(*FixPlan) `json:"-"`
	// OnProgress is called after each file finishes.
	OnProgress func(done, total int) `json:"-"`
}

// ApplyReport summarizes an apply run.
type ApplyReport struct {
	Results   []FixResult  `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	DryRun    bool         `json:"dry_run"`
	Preview   *DiffPreview `json:"preview,omitempty"`
	Commit    *CommitInfo  `json:"commit,omitempty"`
}

// DiffPreview is the post-apply view of the working tree.
type DiffPreview struct {
	Files     []string `json:"files"`
	Diff      string   `json:"diff"`
	Truncated bool     `json:"truncated,omitempty"`
}

// CommitInfo records the trailing commit/push step.
type CommitInfo struct {
	Hash   string `json:"hash"`
	Pushed bool   `json:"pushed"`
}

// Signature identifies the commit author.
type Signature struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Tally fills Succeeded and Failed from Results.
func (r *ApplyReport) Tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, res := range r.Results {
		if res.Success {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
}

// Changed reports whether any file content was modified.
func (r *ApplyReport) Changed() bool {
	for _, res := range r.Results {
		if res.Success && res.Changed {
			return true
		}
	}
	return false
}

// FailedResults returns only the failed outcomes.
func (r *ApplyReport) FailedResults() []FixResult {
	var failed []FixResult
	for _, res := range r.Results {
		if !res.Success {
			failed = append(failed, res)
		}
	}
	return failed
}
