package domain

import "time"

// Tool names a review bot recognized by the classifier.
type Tool string

const (
	ToolQodo       Tool = "qodo"
	ToolCodeRabbit Tool = "coderabbit"
	ToolGreptile   Tool = "greptile"
	ToolSentry     Tool = "sentry"
	ToolGemini     Tool = "gemini"
	ToolKilo       Tool = "kilo"
	ToolUnknown    Tool = "unknown"
)

// Category is the single kind assigned to a review comment.
type Category string

const (
	CategorySecurity     Category = "security"
	CategoryBug          Category = "bug"
	CategoryPerformance  Category = "performance"
	CategoryStyle        Category = "style"
	CategoryBestPractice Category = "best-practice"
	CategoryQuality      Category = "quality"
)

// ValidCategories enumerates all categories in classification order.
var ValidCategories = []Category{
	CategorySecurity, CategoryBug, CategoryPerformance,
	CategoryStyle, CategoryBestPractice, CategoryQuality,
}

// Priority ranks how urgently a comment should be addressed.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ValidPriorities enumerates all priorities from most to least urgent.
var ValidPriorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// UnknownFile is the synthetic group key for comments not attached to a file.
const UnknownFile = "unknown"

// RawComment is a review comment as delivered by the review platform.
type RawComment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Path      string    `json:"path,omitempty"`
	Line      int       `json:"line,omitempty"`
	Side      string    `json:"side,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Review is a submitted pull request review with its inline comments.
type Review struct {
	ID       int64        `json:"id"`
	Body     string       `json:"body"`
	State    string       `json:"state"`
	Author   string       `json:"author"`
	Comments []RawComment `json:"comments"`
}

// PRInfo is the pull request metadata needed by the pipeline.
type PRInfo struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Author  string `json:"author"`
	BaseRef string `json:"base_ref"`
	HeadRef string `json:"head_ref"`
	State   string `json:"state"`
	IsDraft bool   `json:"is_draft"`
}

// ClassifiedComment is the structured record derived from one RawComment.
type ClassifiedComment struct {
	ID              int64    `json:"id,omitempty"`
	Tool            Tool     `json:"tool"`
	Category        Category `json:"category"`
	Priority        Priority `json:"priority"`
	File            string   `json:"file,omitempty"`
	Line            int      `json:"line,omitempty"`
	Suggestion      string   `json:"suggestion,omitempty"`
	OriginalComment string   `json:"original_comment"`
	IsSuggestion    bool     `json:"is_suggestion"`
}

// Actionable reports whether the comment belongs in a fix plan.
func (c ClassifiedComment) Actionable() bool {
	return c.Suggestion != "" || c.IsSuggestion
}

// GroupKey returns the file the comment is grouped under.
func (c ClassifiedComment) GroupKey() string {
	if c.File == "" {
		return UnknownFile
	}
	return c.File
}
