package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/domain"
)

func TestSummarize(t *testing.T) {
	s := domain.Summarize([]domain.ClassifiedComment{
		{Tool: domain.ToolQodo, Category: domain.CategoryBug, Priority: domain.PriorityHigh},
		{Tool: domain.ToolQodo, Category: domain.CategoryStyle, Priority: domain.PriorityLow},
		{Tool: domain.ToolKilo, Category: domain.CategoryBug, Priority: domain.PriorityLow},
	})
	assert.Equal(t, 2, s.ByTool[domain.ToolQodo])
	assert.Equal(t, 1, s.ByTool[domain.ToolKilo])
	assert.Equal(t, 2, s.ByCategory[domain.CategoryBug])
	assert.Equal(t, 2, s.ByPriority[domain.PriorityLow])
}

func TestSummarize_Empty(t *testing.T) {
	s := domain.Summarize(nil)
	assert.NotNil(t, s.ByTool)
	assert.Empty(t, s.ByCategory)
}

func TestRecommend(t *testing.T) {
	comments := []domain.ClassifiedComment{
		comment("a", domain.PriorityCritical, domain.CategorySecurity),
		comment("b", domain.PriorityLow, domain.CategoryStyle),
		comment("b", domain.PriorityMedium, domain.CategoryQuality),
		comment("c", domain.PriorityMedium, domain.CategoryBug),
		comment("d", domain.PriorityHigh, domain.CategoryPerformance),
	}
	recs := domain.Recommend(comments, domain.GroupByFile(comments))
	require.Len(t, recs, 4)
	assert.Equal(t, "Found 1 critical issues that need immediate attention", recs[0])
	assert.Equal(t, "Found 1 security-related issues", recs[1])
	assert.Equal(t, `File "b" has the most issues (2)`, recs[2])
	assert.Equal(t, "3 files can be fixed in parallel", recs[3])
}

func TestRecommend_TieKeepsFirstFile(t *testing.T) {
	comments := []domain.ClassifiedComment{
		comment("x", domain.PriorityLow, domain.CategoryStyle),
		comment("y", domain.PriorityLow, domain.CategoryStyle),
	}
	recs := domain.Recommend(comments, domain.GroupByFile(comments))
	require.Len(t, recs, 1)
	assert.Equal(t, `File "x" has the most issues (1)`, recs[0])
}

func TestRecommend_NoComments(t *testing.T) {
	recs := domain.Recommend(nil, nil)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}
