package domain

import (
	"fmt"
	"time"
)

// PlanSchemaVersion is the fix-plan document version written by analyze and
// accepted by apply.
const PlanSchemaVersion = 1

// maxCommentLength bounds the original comment text carried in a plan item.
const maxCommentLength = 200

// FixPlan is the persisted contract between the analyze and apply phases.
type FixPlan struct {
	SchemaVersion   int             `json:"schema_version"`
	Items           []FixPlanItem   `json:"items"`
	TotalItems      int             `json:"total_items"`
	ParallelFiles   []string        `json:"parallel_files"`
	SequentialFiles SequentialFiles `json:"sequential_files"`
	Metadata        *PlanMetadata   `json:"metadata,omitempty"`
}

type SequentialFiles struct {
	Before []string `json:"before"`
	After  []string `json:"after"`
}

// FixPlanItem is one actionable comment bound to a file.
type FixPlanItem struct {
	File            string   `json:"file"`
	Line            int      `json:"line,omitempty"`
	Category        Category `json:"category"`
	Priority        Priority `json:"priority"`
	Suggestion      string   `json:"suggestion,omitempty"`
	OriginalComment string   `json:"original_comment"`
	Tool            Tool     `json:"tool"`
}

type PlanMetadata struct {
	RunID       string           `json:"run_id"`
	PRNumber    int              `json:"pr_number"`
	Repo        string           `json:"repo,omitempty"`
	GeneratedAt time.Time        `json:"generated_at"`
	Tools       map[Tool]int     `json:"tools"`
	Categories  map[Category]int `json:"categories"`
	Priorities  map[Priority]int `json:"priorities"`
}

// CompilePlan keeps only actionable comments, in group order, and binds the
// execution order to the plan.
func CompilePlan(groups []FileGroup, order ExecutionOrder, meta *PlanMetadata) FixPlan {
	items := []FixPlanItem{}
	for _, g := range groups {
		for _, c := range g.Comments {
			if !c.Actionable() {
				continue
			}
			items = append(items, FixPlanItem{
				File:            g.File,
				Line:            c.Line,
				Category:        c.Category,
				Priority:        c.Priority,
				Suggestion:      c.Suggestion,
				OriginalComment: truncateRunes(c.OriginalComment, maxCommentLength),
				Tool:            c.Tool,
			})
		}
	}

	return FixPlan{
		SchemaVersion:   PlanSchemaVersion,
		Items:           items,
		TotalItems:      len(items),
		ParallelFiles:   nonNil(order.Parallel),
		SequentialFiles: SequentialFiles{Before: nonNil(order.Before), After: nonNil(order.After)},
		Metadata:        meta,
	}
}

// Order returns the plan's execution order.
func (p *FixPlan) Order() ExecutionOrder {
	return ExecutionOrder{
		Before:   p.SequentialFiles.Before,
		Parallel: p.ParallelFiles,
		After:    p.SequentialFiles.After,
	}
}

// FileOrder returns the files in visit order: before, parallel, after.
func (p *FixPlan) FileOrder() []string {
	return p.Order().Files()
}

// ItemsByFile groups plan items by file, preserving plan order within a file.
func (p *FixPlan) ItemsByFile() map[string][]FixPlanItem {
	byFile := make(map[string][]FixPlanItem)
	for _, item := range p.Items {
		byFile[item.File] = append(byFile[item.File], item)
	}
	return byFile
}

// Validate checks the schema contract: known version, consistent count,
// disjoint buckets, and every item file in exactly one bucket.
func (p *FixPlan) Validate() error {
	if p.SchemaVersion != PlanSchemaVersion {
		return fmt.Errorf("%w: unsupported schema_version %d (want %d)", ErrInvalidPlan, p.SchemaVersion, PlanSchemaVersion)
	}
	if p.TotalItems != len(p.Items) {
		return fmt.Errorf("%w: total_items is %d but plan has %d items", ErrInvalidPlan, p.TotalItems, len(p.Items))
	}

	bucketOf := make(map[string]string)
	buckets := []struct {
		name  string
		files []string
	}{
		{"before", p.SequentialFiles.Before},
		{"parallel", p.ParallelFiles},
		{"after", p.SequentialFiles.After},
	}
	for _, b := range buckets {
		for _, f := range b.files {
			if prev, ok := bucketOf[f]; ok {
				return fmt.Errorf("%w: file %q appears in both %s and %s", ErrInvalidPlan, f, prev, b.name)
			}
			bucketOf[f] = b.name
		}
	}

	for i, item := range p.Items {
		if item.File == "" {
			return fmt.Errorf("%w: item %d has no file", ErrInvalidPlan, i)
		}
		if _, ok := bucketOf[item.File]; !ok {
			return fmt.Errorf("%w: item %d file %q is not scheduled in any bucket", ErrInvalidPlan, i, item.File)
		}
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
