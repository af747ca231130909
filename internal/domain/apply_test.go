package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prfix/prfix/internal/domain"
)

func sampleReport() *domain.ApplyReport {
	return &domain.ApplyReport{Results: []domain.FixResult{
		{File: "src/a.ts", Success: true, Changed: true, Edits: 1},
		{File: "src/missing.ts", Error: "missing input: file not found: src/missing.ts"},
		{File: "styles/main.css", Success: true},
		{File: "package.json", Error: "validation failed"},
	}}
}

func TestApplyReport_Tally(t *testing.T) {
	r := sampleReport()
	r.Succeeded, r.Failed = 9, 9
	r.Tally()
	assert.Equal(t, 2, r.Succeeded)
	assert.Equal(t, 2, r.Failed)
}

func TestApplyReport_Changed(t *testing.T) {
	assert.True(t, sampleReport().Changed())

	unchanged := &domain.ApplyReport{Results: []domain.FixResult{{File: "a", Success: true}}}
	assert.False(t, unchanged.Changed())
}

func TestApplyReport_FailedResults(t *testing.T) {
	failed := sampleReport().FailedResults()
	assert.Len(t, failed, 2)
	assert.Equal(t, "src/missing.ts", failed[0].File)
	assert.Equal(t, "package.json", failed[1].File)

	assert.Empty(t, (&domain.ApplyReport{}).FailedResults())
}
