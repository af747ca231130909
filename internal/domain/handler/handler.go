// Package handler implements the per-file-category edit strategies used when
// applying a fix plan. Every edit is text-level and heuristic.
package handler

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/prfix/prfix/internal/domain"
)

// Kind tags a handler variant.
type Kind string

const (
	KindCode       Kind = "code"
	KindStylesheet Kind = "stylesheet"
	KindStructured Kind = "structured"
	KindFallback   Kind = "fallback"
)

// ErrInvalidTarget is returned when an item points at an impossible line.
var ErrInvalidTarget = errors.New("invalid target line")

// Handler applies and validates edits for one file category.
type Handler interface {
	Kind() Kind
	// Apply returns content with item applied. An error aborts the file.
	Apply(content string, item domain.FixPlanItem) (string, error)
	// Validate is a best-effort integrity check of the final content.
	Validate(content string, item domain.FixPlanItem) bool
}

var extensionKinds = map[string]Kind{
	".ts": KindCode, ".tsx": KindCode, ".js": KindCode, ".jsx": KindCode,
	".mjs": KindCode, ".cjs": KindCode, ".go": KindCode, ".py": KindCode,
	".java": KindCode, ".rs": KindCode, ".c": KindCode, ".cpp": KindCode, ".h": KindCode,

	".css": KindStylesheet, ".scss": KindStylesheet, ".sass": KindStylesheet, ".less": KindStylesheet,

	".json": KindStructured,
}

var handlers = map[Kind]Handler{
	KindCode:       codeHandler{},
	KindStylesheet: stylesheetHandler{},
	KindStructured: structuredHandler{},
	KindFallback:   fallbackHandler{},
}

// KindFor maps a file path to its handler kind by extension.
func KindFor(path string) Kind {
	if k, ok := extensionKinds[strings.ToLower(filepath.Ext(path))]; ok {
		return k
	}
	return KindFallback
}

// For returns the handler for path. Unrecognized extensions get the fallback.
func For(path string) Handler {
	return handlers[KindFor(path)]
}

func checkLine(item domain.FixPlanItem) error {
	if item.Line < 0 {
		return fmt.Errorf("%w: %d in %s", ErrInvalidTarget, item.Line, item.File)
	}
	return nil
}

func balanced(content string, open, close string) bool {
	return strings.Count(content, open) == strings.Count(content, close)
}
