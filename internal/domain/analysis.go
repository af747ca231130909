package domain

import "fmt"

// Analysis is the human-facing document written by the analyze phase.
type Analysis struct {
	PRNumber        int                            `json:"pr_number"`
	TotalComments   int                            `json:"total_comments"`
	SkippedComments int                            `json:"skipped_comments,omitempty"`
	ParsedComments  []ClassifiedComment            `json:"parsed_comments"`
	GroupedByFile   map[string][]ClassifiedComment `json:"grouped_by_file"`
	ExecutionOrder  ExecutionOrder                 `json:"execution_order"`
	Summary         Summary                        `json:"summary"`
	Recommendations []string                       `json:"recommendations"`

	// Groups keeps first-appearance order for plan compilation.
	Groups []FileGroup `json:"-"`
}

// Summary counts classified comments per dimension.
type Summary struct {
	ByTool     map[Tool]int     `json:"by_tool"`
	ByCategory map[Category]int `json:"by_category"`
	ByPriority map[Priority]int `json:"by_priority"`
}

// Summarize tallies comments by tool, category and priority.
func Summarize(comments []ClassifiedComment) Summary {
	s := Summary{
		ByTool:     make(map[Tool]int),
		ByCategory: make(map[Category]int),
		ByPriority: make(map[Priority]int),
	}
	for _, c := range comments {
		s.ByTool[c.Tool]++
		s.ByCategory[c.Category]++
		s.ByPriority[c.Priority]++
	}
	return s
}

// Recommend produces descriptive advice for a human reviewer. It does not
// influence scheduling.
func Recommend(comments []ClassifiedComment, groups []FileGroup) []string {
	recs := []string{}

	var critical, security int
	for _, c := range comments {
		if c.Priority == PriorityCritical {
			critical++
		}
		if c.Category == CategorySecurity {
			security++
		}
	}
	if critical > 0 {
		recs = append(recs, fmt.Sprintf("Found %d critical issues that need immediate attention", critical))
	}
	if security > 0 {
		recs = append(recs, fmt.Sprintf("Found %d security-related issues", security))
	}

	top := -1
	for i, g := range groups {
		if top < 0 || len(g.Comments) > len(groups[top].Comments) {
			top = i
		}
	}
	if top >= 0 {
		recs = append(recs, fmt.Sprintf("File %q has the most issues (%d)", groups[top].File, len(groups[top].Comments)))
	}

	ungated := 0
	for _, g := range groups {
		gated := false
		for _, c := range g.Comments {
			if c.Priority == PriorityCritical || c.Category == CategorySecurity {
				gated = true
				break
			}
		}
		if !gated {
			ungated++
		}
	}
	if ungated > 2 {
		recs = append(recs, fmt.Sprintf("%d files can be fixed in parallel", ungated))
	}

	return recs
}
