package handler

import (
	"regexp"
	"strings"

	"github.com/prfix/prfix/internal/domain"
)

var (
	declarationRe = regexp.MustCompile(`^(export\s+)?(async\s+)?(function|func|class|interface|type|const|let|var|def)`)
	fenceMarkerRe = regexp.MustCompile("```[\\w+.#-]*\\n?")
	leadingWSRe   = regexp.MustCompile(`^\s*`)
)

// BlockEdit inserts the suggestion before the nearest structural boundary at
// or above the target line. Items without a line or suggestion are no-ops.
func BlockEdit(content string, item domain.FixPlanItem) string {
	if item.Line <= 0 || item.Suggestion == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	at := FindInsertionPoint(lines, item.Line-1)
	cleaned := strings.TrimSpace(fenceMarkerRe.ReplaceAllString(item.Suggestion, ""))

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, cleaned)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// FindInsertionPoint scans upward from target for a declaration line or a
// closing brace whose previous line has no dangling brace or comma. When none
// is found it returns target, clamped to the end of the file.
func FindInsertionPoint(lines []string, target int) int {
	start := target
	if start > len(lines)-1 {
		start = len(lines) - 1
	}

	for i := start; i >= 0; i-- {
		line := lines[i]
		if declarationRe.MatchString(line) {
			return i
		}
		if strings.HasPrefix(line, "}") && i > 0 && !strings.ContainsAny(lines[i-1], "{},") {
			return i
		}
	}

	if target > len(lines) {
		return len(lines)
	}
	return target
}

// LineEdit replaces the target line, keeping its leading indentation and
// re-indenting embedded newlines to match.
func LineEdit(content string, item domain.FixPlanItem) string {
	lines := strings.Split(content, "\n")
	if item.Line <= 0 || item.Line > len(lines) || item.Suggestion == "" {
		return content
	}

	i := item.Line - 1
	indent := leadingWSRe.FindString(lines[i])
	lines[i] = indent + strings.ReplaceAll(item.Suggestion, "\n", "\n"+indent)
	return strings.Join(lines, "\n")
}

// ReplaceLine swaps the target line for the suggestion verbatim.
func ReplaceLine(content string, item domain.FixPlanItem) string {
	lines := strings.Split(content, "\n")
	if item.Line <= 0 || item.Line > len(lines) || item.Suggestion == "" {
		return content
	}
	lines[item.Line-1] = item.Suggestion
	return strings.Join(lines, "\n")
}
