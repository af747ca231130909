package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/domain"
)

func samplePlan() domain.FixPlan {
	groups := []domain.FileGroup{
		{File: "src/a.ts", Comments: []domain.ClassifiedComment{
			{Tool: domain.ToolQodo, Category: domain.CategorySecurity, Priority: domain.PriorityCritical, Line: 3, Suggestion: "sanitize(x)", OriginalComment: "fix it", IsSuggestion: true},
			{Tool: domain.ToolUnknown, Category: domain.CategoryQuality, Priority: domain.PriorityLow, OriginalComment: "advisory only"},
		}},
		{File: "src/b.css", Comments: []domain.ClassifiedComment{
			{Tool: domain.ToolKilo, Category: domain.CategoryStyle, Priority: domain.PriorityLow, Line: 1, OriginalComment: "kilo fix: spacing", IsSuggestion: true},
		}},
		{File: "README.md", Comments: []domain.ClassifiedComment{
			{Tool: domain.ToolUnknown, Category: domain.CategoryQuality, Priority: domain.PriorityMedium, OriginalComment: "typo"},
		}},
	}
	order := domain.DetermineExecutionOrder(groups)
	meta := &domain.PlanMetadata{
		RunID:       "run-1",
		PRNumber:    42,
		GeneratedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Tools:       map[domain.Tool]int{domain.ToolQodo: 1},
	}
	return domain.CompilePlan(groups, order, meta)
}

func TestCompilePlan_KeepsOnlyActionable(t *testing.T) {
	plan := samplePlan()
	require.Len(t, plan.Items, 2)
	assert.Equal(t, 2, plan.TotalItems)
	assert.Equal(t, "src/a.ts", plan.Items[0].File)
	assert.Equal(t, "sanitize(x)", plan.Items[0].Suggestion)
	assert.Equal(t, "src/b.css", plan.Items[1].File)
	assert.Empty(t, plan.Items[1].Suggestion)
	assert.Equal(t, domain.PlanSchemaVersion, plan.SchemaVersion)
}

func TestCompilePlan_CarriesExecutionOrder(t *testing.T) {
	plan := samplePlan()
	assert.Equal(t, []string{"src/a.ts"}, plan.SequentialFiles.Before)
	assert.Equal(t, []string{"src/b.css"}, plan.SequentialFiles.After)
	assert.Equal(t, []string{"README.md"}, plan.ParallelFiles)
	require.NoError(t, plan.Validate())
}

func TestCompilePlan_TruncatesOriginalComment(t *testing.T) {
	long := strings.Repeat("é", 250)
	groups := []domain.FileGroup{{File: "x.go", Comments: []domain.ClassifiedComment{
		{Suggestion: "y", OriginalComment: long, Priority: domain.PriorityHigh},
	}}}
	plan := domain.CompilePlan(groups, domain.DetermineExecutionOrder(groups), nil)
	require.Len(t, plan.Items, 1)
	assert.Len(t, []rune(plan.Items[0].OriginalComment), 200)
}

func TestCompilePlan_EmptyListsSerializeAsArrays(t *testing.T) {
	plan := domain.CompilePlan(nil, domain.ExecutionOrder{}, nil)
	data, err := json.Marshal(plan)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"items":[]`)
	assert.Contains(t, string(data), `"parallel_files":[]`)
	assert.Contains(t, string(data), `"before":[]`)
}

func TestFixPlan_JSONRoundTrip(t *testing.T) {
	original := samplePlan()

	data, err := json.MarshalIndent(original, "", "  ")
	require.NoError(t, err)

	var decoded domain.FixPlan
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, original.Items, decoded.Items)
	assert.Equal(t, original.ParallelFiles, decoded.ParallelFiles)
	assert.Equal(t, original.SequentialFiles, decoded.SequentialFiles)
	assert.Equal(t, len(decoded.Items), decoded.TotalItems)
	require.NotNil(t, decoded.Metadata)
	assert.Equal(t, 42, decoded.Metadata.PRNumber)
	assert.True(t, original.Metadata.GeneratedAt.Equal(decoded.Metadata.GeneratedAt))
	assert.NoError(t, decoded.Validate())
}

func TestFixPlan_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *domain.FixPlan)
		msg    string
	}{
		{"unknown version", func(p *domain.FixPlan) { p.SchemaVersion = 9 }, "schema_version"},
		{"count mismatch", func(p *domain.FixPlan) { p.TotalItems = 5 }, "total_items"},
		{"overlapping buckets", func(p *domain.FixPlan) {
			p.ParallelFiles = append(p.ParallelFiles, "src/a.ts")
		}, "appears in both"},
		{"unscheduled item", func(p *domain.FixPlan) {
			p.SequentialFiles.After = nil
		}, "not scheduled"},
		{"item without file", func(p *domain.FixPlan) { p.Items[0].File = "" }, "no file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := samplePlan()
			tt.mutate(&plan)
			err := plan.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidPlan)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestFixPlan_ItemsByFile(t *testing.T) {
	plan := domain.FixPlan{Items: []domain.FixPlanItem{
		{File: "a", Suggestion: "1"}, {File: "b", Suggestion: "2"}, {File: "a", Suggestion: "3"},
	}}
	byFile := plan.ItemsByFile()
	require.Len(t, byFile["a"], 2)
	assert.Equal(t, "1", byFile["a"][0].Suggestion)
	assert.Equal(t, "3", byFile["a"][1].Suggestion)
}
