package planstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prfix/prfix/internal/domain"
)

// Store is a file-based implementation of domain.PlanStore. Documents are
// indented JSON so they can be reviewed in a diff between phases.
type Store struct{}

// New creates a new file-based plan store.
func New() *Store {
	return &Store{}
}

// SaveAnalysis writes the analysis document, creating directories as needed.
func (s *Store) SaveAnalysis(path string, a *domain.Analysis) error {
	return writeJSON(path, a)
}

// SavePlan writes the fix-plan document, creating directories as needed.
func (s *Store) SavePlan(path string, p *domain.FixPlan) error {
	return writeJSON(path, p)
}

// LoadPlan reads and validates a fix plan. A missing file is ErrMissingInput,
// undecodable JSON is ErrParse, and contract violations are ErrInvalidPlan.
func (s *Store) LoadPlan(path string) (*domain.FixPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: fix plan not found: %s", domain.ErrMissingInput, path)
		}
		return nil, err
	}

	var plan domain.FixPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &plan, nil
}

// LoadAnalysis reads an analysis document.
func (s *Store) LoadAnalysis(path string) (*domain.Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: analysis not found: %s", domain.ErrMissingInput, path)
		}
		return nil, err
	}

	var a domain.Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, path, err)
	}
	return &a, nil
}

func writeJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	return os.WriteFile(path, data, 0644)
}
