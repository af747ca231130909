package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prfix/prfix/internal/domain"
	"github.com/prfix/prfix/internal/domain/handler"
)

func TestKindFor(t *testing.T) {
	tests := map[string]handler.Kind{
		"src/app.TS":       handler.KindCode,
		"main.go":          handler.KindCode,
		"lib/util.py":      handler.KindCode,
		"styles/a.scss":    handler.KindStylesheet,
		"theme.less":       handler.KindStylesheet,
		"package.json":     handler.KindStructured,
		"README.md":        handler.KindFallback,
		"Makefile":         handler.KindFallback,
		domain.UnknownFile: handler.KindFallback,
	}
	for path, want := range tests {
		assert.Equal(t, want, handler.KindFor(path), path)
		assert.Equal(t, want, handler.For(path).Kind(), path)
	}
}

func TestCode_LineEditKeepsIndentation(t *testing.T) {
	h := handler.For("main.go")
	content := "func main() {\n    foo()\n}\n"
	out, err := h.Apply(content, domain.FixPlanItem{File: "main.go", Line: 2, Suggestion: "bar()"})
	require.NoError(t, err)
	assert.Equal(t, "func main() {\n    bar()\n}\n", out)
	assert.True(t, h.Validate(out, domain.FixPlanItem{Suggestion: "bar()"}))
}

func TestCode_BlockEditInsertsAboveDeclaration(t *testing.T) {
	h := handler.For("x.go")
	content := "package x\n\nfunc a() {\n\treturn\n}\n"
	item := domain.FixPlanItem{File: "x.go", Line: 4, Suggestion: "```go\nfunc b() {\n}\n```"}

	out, err := h.Apply(content, item)
	require.NoError(t, err)
	assert.Equal(t, "package x\n\nfunc b() {\n}\nfunc a() {\n\treturn\n}\n", out)
	assert.True(t, h.Validate(out, item))
}

func TestCode_NoSuggestionIsNoop(t *testing.T) {
	h := handler.For("a.ts")
	content := "const a = 1;\n"
	out, err := h.Apply(content, domain.FixPlanItem{File: "a.ts", Line: 1})
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestCode_NegativeLineIsRejected(t *testing.T) {
	_, err := handler.For("a.ts").Apply("x", domain.FixPlanItem{File: "a.ts", Line: -3, Suggestion: "y"})
	assert.ErrorIs(t, err, handler.ErrInvalidTarget)
}

func TestCode_ValidateDetectsImbalance(t *testing.T) {
	h := handler.For("a.js")
	item := domain.FixPlanItem{Suggestion: "x"}
	assert.False(t, h.Validate("function f() {\n", item))
	assert.False(t, h.Validate("call(a, b\n", item))
	assert.True(t, h.Validate("function f() {}\n", item))
}

func TestStylesheet_IgnoresNonRuleSuggestion(t *testing.T) {
	h := handler.For("a.css")
	content := ".a {\n  color: red;\n}\n"
	out, err := h.Apply(content, domain.FixPlanItem{File: "a.css", Line: 2, Suggestion: "color: blue;"})
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestStylesheet_InsertsRuleBlock(t *testing.T) {
	h := handler.For("a.css")
	content := ".a {\n  color: red;\n}\n.b {\n  margin: 0;\n}\n"
	item := domain.FixPlanItem{File: "a.css", Line: 4, Suggestion: ".c { padding: 0; }"}
	out, err := h.Apply(content, item)
	require.NoError(t, err)
	assert.Contains(t, out, ".c { padding: 0; }")
	assert.True(t, h.Validate(out, item))
}

func TestStructured_PreservesKeyOrder(t *testing.T) {
	h := handler.For("package.json")
	content := "{\n  \"name\": \"app\",\n  \"version\": \"1.0.0\",\n  \"url\": \"a<b>\"\n}\n"
	item := domain.FixPlanItem{File: "package.json", Suggestion: `Bump it: "version": "2.0.0"`}

	out, err := h.Apply(content, item)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"app\",\n  \"version\": \"2.0.0\",\n  \"url\": \"a<b>\"\n}\n", out)
	assert.True(t, h.Validate(out, item))
}

func TestStructured_AppendsNewKey(t *testing.T) {
	h := handler.For("cfg.json")
	content := `{"b": 1, "a": {"nested": true}}`
	out, err := h.Apply(content, domain.FixPlanItem{Suggestion: `"license": "MIT"`})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": {\n    \"nested\": true\n  },\n  \"license\": \"MIT\"\n}", out)
}

func TestStructured_InvalidContentIsNoop(t *testing.T) {
	h := handler.For("cfg.json")
	content := "{not json"
	out, err := h.Apply(content, domain.FixPlanItem{Suggestion: `"a": "b"`})
	require.NoError(t, err)
	assert.Equal(t, content, out)
	assert.False(t, h.Validate(content, domain.FixPlanItem{}))
}

func TestStructured_NoPairIsNoop(t *testing.T) {
	h := handler.For("cfg.json")
	content := `{"a": "b"}`
	out, err := h.Apply(content, domain.FixPlanItem{Suggestion: "rename the field"})
	require.NoError(t, err)
	assert.Equal(t, content, out)
}

func TestFallback_ReplacesLine(t *testing.T) {
	h := handler.For("notes.txt")
	out, err := h.Apply("a\nb\nc", domain.FixPlanItem{Line: 2, Suggestion: "B"})
	require.NoError(t, err)
	assert.Equal(t, "a\nB\nc", out)
	assert.True(t, h.Validate("anything {", domain.FixPlanItem{}))
}

func TestFallback_OutOfRangeIsNoop(t *testing.T) {
	out, err := handler.For("notes.txt").Apply("a\nb", domain.FixPlanItem{Line: 10, Suggestion: "B"})
	require.NoError(t, err)
	assert.Equal(t, "a\nb", out)
}
