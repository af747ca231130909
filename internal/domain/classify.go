package domain

import (
	"regexp"
	"strings"
)

// ReviewTool is one entry of the review-bot registry.
type ReviewTool struct {
	Name              Tool           `json:"name"`
	CommentPattern    *regexp.Regexp `json:"-"`
	SuggestionPattern *regexp.Regexp `json:"-"`
}

// ReviewTools is the ordered registry. The first comment-pattern match wins,
// so entries must not be reordered.
var ReviewTools = []ReviewTool{
	{ToolQodo, regexp.MustCompile(`(?i)@qodo|qodo`), regexp.MustCompile(`(?i)suggestion:|fix:|improvement:`)},
	{ToolCodeRabbit, regexp.MustCompile(`(?i)@coderabbit|coderabbit`), regexp.MustCompile(`(?i)suggestion:|request change:|comment:`)},
	{ToolGreptile, regexp.MustCompile(`(?i)@greptile|greptile`), regexp.MustCompile(`(?i)issue:|suggestion:|recommendation:`)},
	{ToolSentry, regexp.MustCompile(`(?i)@sentry|sentry`), regexp.MustCompile(`(?i)issue:|error:|warning:`)},
	{ToolGemini, regexp.MustCompile(`(?i)@gemini|gemini code assist|gemini`), regexp.MustCompile(`(?i)suggested change:|recommendation:|try:`)},
	{ToolKilo, regexp.MustCompile(`(?i)@kilo|kilo`), regexp.MustCompile(`(?i)fix:|suggestion:|improvement:`)},
}

type categoryRule struct {
	category Category
	pattern  *regexp.Regexp
}

type priorityRule struct {
	priority Priority
	pattern  *regexp.Regexp
}

// Evaluated in order against the lowercased body.
var categoryRules = []categoryRule{
	{CategorySecurity, regexp.MustCompile(`\b(security|vulnerability|threat|attack|injection|xss|csrf)\b`)},
	{CategoryBug, regexp.MustCompile(`\b(bug|fix|error|wrong|broken|crash|fail|exception)\b`)},
	{CategoryPerformance, regexp.MustCompile(`\b(performance|slow|memory|optimize|latency|benchmark)\b`)},
	{CategoryStyle, regexp.MustCompile(`\b(style|formatting|indentation|whitespace|naming|convention)\b`)},
	{CategoryBestPractice, regexp.MustCompile(`\b(best practice|recommended|should|must|avoid|consider)\b`)},
}

var priorityRules = []priorityRule{
	{PriorityCritical, regexp.MustCompile(`\b(critical|urgent|emergency|must fix|security vulnerability|blocker)\b`)},
	{PriorityHigh, regexp.MustCompile(`\b(high|important|significant|major|serious)\b`)},
	{PriorityMedium, regexp.MustCompile(`\b(medium|moderate|normal)\b`)},
}

var (
	fencedBlockRe = regexp.MustCompile("(?s)```.*?```")
	infoStringRe  = regexp.MustCompile(`^[\w+.#-]*$`)
	bulletFixRe   = regexp.MustCompile(`(?i)^\s*[-*]\s+(suggestion|try|change|fix|use|replace|update)`)
	bulletMarker  = regexp.MustCompile(`^\s*[-*]\s+`)
)

// IdentifyTool returns the first registered tool whose comment pattern
// matches body, or ToolUnknown.
func IdentifyTool(body string) Tool {
	for _, t := range ReviewTools {
		if t.CommentPattern.MatchString(body) {
			return t.Name
		}
	}
	return ToolUnknown
}

// ClassifyCategory returns the first matching category, defaulting to quality.
func ClassifyCategory(body string) Category {
	lower := strings.ToLower(body)
	for _, r := range categoryRules {
		if r.pattern.MatchString(lower) {
			return r.category
		}
	}
	return CategoryQuality
}

// DeterminePriority returns the first matching priority, defaulting to low.
func DeterminePriority(body string) Priority {
	lower := strings.ToLower(body)
	for _, r := range priorityRules {
		if r.pattern.MatchString(lower) {
			return r.priority
		}
	}
	return PriorityLow
}

// HasSuggestionSignature reports whether body matches the suggestion pattern
// of any registered tool, not only the tool the comment is attributed to.
func HasSuggestionSignature(body string) bool {
	for _, t := range ReviewTools {
		if t.SuggestionPattern.MatchString(body) {
			return true
		}
	}
	return false
}

// ExtractSuggestion pulls the proposed change out of a comment body.
// The last fenced block wins; otherwise the first imperative bullet line.
func ExtractSuggestion(body string) string {
	if blocks := fencedBlockRe.FindAllString(body, -1); len(blocks) > 0 {
		return StripFences(blocks[len(blocks)-1])
	}

	for _, line := range strings.Split(body, "\n") {
		if bulletFixRe.MatchString(line) {
			return strings.TrimSpace(bulletMarker.ReplaceAllString(line, ""))
		}
	}
	return ""
}

// StripFences removes a surrounding ``` fence and its info string, then trims.
func StripFences(block string) string {
	s := strings.TrimSpace(block)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && infoStringRe.MatchString(strings.TrimSpace(s[:i])) {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}

// Classify derives a ClassifiedComment from a raw comment. It is pure and
// deterministic; it fails only when the body is missing.
func Classify(c RawComment) (ClassifiedComment, error) {
	if c.Body == "" {
		return ClassifiedComment{}, ErrMalformedComment
	}
	return ClassifiedComment{
		ID:              c.ID,
		Tool:            IdentifyTool(c.Body),
		Category:        ClassifyCategory(c.Body),
		Priority:        DeterminePriority(c.Body),
		File:            c.Path,
		Line:            c.Line,
		Suggestion:      ExtractSuggestion(c.Body),
		OriginalComment: c.Body,
		IsSuggestion:    HasSuggestionSignature(c.Body),
	}, nil
}
