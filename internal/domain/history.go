package domain

// Phase names a pipeline stage recorded in the run history.
type Phase string

const (
	PhaseAnalyze Phase = "analyze"
	PhaseApply   Phase = "apply"
)

// RunEntry is one line of the run history ledger.
type RunEntry struct {
	RunID      string `json:"run_id"`
	Phase      Phase  `json:"phase"`
	PRNumber   int    `json:"pr_number,omitempty"`
	Timestamp  string `json:"timestamp"`
	Items      int    `json:"items"`
	Succeeded  int    `json:"succeeded,omitempty"`
	Failed     int    `json:"failed,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
}
