// Package history records analyze and apply runs under the working tree so
// repeated runs against the same PR stay visible.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prfix/prfix/internal/domain"
)

const historyFile = ".prfix/history/runs.json"

// FileHistory implements domain.RunHistory as one JSON array per checkout.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the run log.
func (h *FileHistory) Save(projectPath string, entry domain.RunEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fp, data, 0644)
}

// Load returns every recorded run, oldest first. A checkout with no runs
// yields nil.
func (h *FileHistory) Load(projectPath string) ([]domain.RunEntry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.RunEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrParse, historyFile, err)
	}
	return entries, nil
}

// ForPR returns the runs recorded for one pull request, oldest first.
func (h *FileHistory) ForPR(projectPath string, pr int) ([]domain.RunEntry, error) {
	entries, err := h.Load(projectPath)
	if err != nil {
		return nil, err
	}
	var out []domain.RunEntry
	for _, e := range entries {
		if e.PRNumber == pr {
			out = append(out, e)
		}
	}
	return out, nil
}

// Latest returns the most recent entry for a phase, or nil.
func Latest(entries []domain.RunEntry, phase domain.Phase) *domain.RunEntry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Phase == phase {
			return &entries[i]
		}
	}
	return nil
}
