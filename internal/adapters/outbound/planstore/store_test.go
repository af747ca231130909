package planstore_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/adapters/outbound/planstore"
	"github.com/prfix/prfix/internal/domain"
)

func samplePlan() *domain.FixPlan {
	groups := []domain.FileGroup{{File: "src/a.go", Comments: []domain.ClassifiedComment{
		{Tool: domain.ToolGreptile, Category: domain.CategoryBug, Priority: domain.PriorityHigh, Line: 2, Suggestion: "return nil", OriginalComment: "greptile issue: missing return"},
	}}}
	plan := domain.CompilePlan(groups, domain.DetermineExecutionOrder(groups), nil)
	return &plan
}

func TestStore_SaveAndLoadPlan(t *testing.T) {
	store := planstore.New()
	path := filepath.Join(t.TempDir(), "out", "review-analysis-plan.json")

	original := samplePlan()
	require.NoError(t, store.SavePlan(path, original))

	loaded, err := store.LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, original.Items, loaded.Items)
	assert.Equal(t, original.ParallelFiles, loaded.ParallelFiles)
	assert.Equal(t, 1, loaded.TotalItems)
}

func TestStore_PlanIsIndentedSnakeCase(t *testing.T) {
	store := planstore.New()
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, store.SavePlan(path, samplePlan()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"schema_version\": 1"))
	assert.Contains(t, text, `"sequential_files"`)
	assert.Contains(t, text, `"original_comment"`)
	assert.True(t, strings.HasSuffix(text, "}\n"))
}

func TestStore_LoadPlanMissing(t *testing.T) {
	_, err := planstore.New().LoadPlan(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, domain.ErrMissingInput)
}

func TestStore_LoadPlanCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := planstore.New().LoadPlan(path)
	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestStore_LoadPlanRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"schema_version": 2, "items": [], "total_items": 0}`), 0644))

	_, err := planstore.New().LoadPlan(path)
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
}

func TestStore_SaveAndLoadAnalysis(t *testing.T) {
	store := planstore.New()
	path := filepath.Join(t.TempDir(), "review-analysis.json")

	a := &domain.Analysis{
		PRNumber:        7,
		TotalComments:   1,
		ParsedComments:  []domain.ClassifiedComment{{Tool: domain.ToolKilo, Category: domain.CategoryStyle, Priority: domain.PriorityLow, OriginalComment: "nit"}},
		GroupedByFile:   map[string][]domain.ClassifiedComment{},
		Recommendations: []string{},
	}
	require.NoError(t, store.SaveAnalysis(path, a))

	loaded, err := store.LoadAnalysis(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.PRNumber)
	assert.Equal(t, a.ParsedComments, loaded.ParsedComments)
}
