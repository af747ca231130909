package handler

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/prfix/prfix/internal/domain"
)

// codeHandler edits textual source files.
type codeHandler struct{}

func (codeHandler) Kind() Kind { return KindCode }

func (codeHandler) Apply(content string, item domain.FixPlanItem) (string, error) {
	if err := checkLine(item); err != nil {
		return content, err
	}
	switch {
	case item.Suggestion == "":
		return content, nil
	case strings.Contains(item.Suggestion, "\n"):
		return BlockEdit(content, item), nil
	case item.Line > 0:
		return LineEdit(content, item), nil
	}
	return content, nil
}

func (codeHandler) Validate(content string, item domain.FixPlanItem) bool {
	if item.Suggestion == "" {
		return true
	}
	return balanced(content, "{", "}") && balanced(content, "(", ")")
}

// stylesheetHandler only performs block edits for rule-shaped suggestions.
type stylesheetHandler struct{}

func (stylesheetHandler) Kind() Kind { return KindStylesheet }

func (stylesheetHandler) Apply(content string, item domain.FixPlanItem) (string, error) {
	if err := checkLine(item); err != nil {
		return content, err
	}
	if strings.Contains(item.Suggestion, "{") && strings.Contains(item.Suggestion, "}") {
		return BlockEdit(content, item), nil
	}
	return content, nil
}

func (stylesheetHandler) Validate(content string, item domain.FixPlanItem) bool {
	if item.Suggestion == "" {
		return true
	}
	return balanced(content, "{", "}") && balanced(content, "(", ")")
}

// structuredHandler edits strict JSON documents one key at a time.
type structuredHandler struct{}

var keyValueRe = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]+)"`)

func (structuredHandler) Kind() Kind { return KindStructured }

// Apply sets a single "key": "value" pair found in the suggestion on the top
// level object. Unparseable content or suggestions without a pair are no-ops.
func (structuredHandler) Apply(content string, item domain.FixPlanItem) (string, error) {
	if item.Suggestion == "" {
		return content, nil
	}
	m := keyValueRe.FindStringSubmatch(item.Suggestion)
	if m == nil {
		return content, nil
	}

	obj := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal([]byte(content), obj); err != nil {
		return content, nil
	}

	value, err := encodeJSON(m[2])
	if err != nil {
		return content, nil
	}
	obj.Set(m[1], json.RawMessage(value))

	out, err := marshalOrdered(obj)
	if err != nil {
		return content, nil
	}
	if strings.HasSuffix(content, "\n") {
		out += "\n"
	}
	return out, nil
}

func (structuredHandler) Validate(content string, _ domain.FixPlanItem) bool {
	return json.Valid([]byte(content))
}

// marshalOrdered writes the object in insertion order with two-space
// indentation, leaving string escapes in existing values untouched.
func marshalOrdered(obj *orderedmap.OrderedMap[string, json.RawMessage]) (string, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for pair := obj.Oldest(); pair != nil; pair = pair.Next() {
		if compact.Len() > 1 {
			compact.WriteByte(',')
		}
		key, err := encodeJSON(pair.Key)
		if err != nil {
			return "", err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(pair.Value)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func encodeJSON(v string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// fallbackHandler replaces whole lines in files of unknown type.
type fallbackHandler struct{}

func (fallbackHandler) Kind() Kind { return KindFallback }

func (fallbackHandler) Apply(content string, item domain.FixPlanItem) (string, error) {
	if err := checkLine(item); err != nil {
		return content, err
	}
	return ReplaceLine(content, item), nil
}

func (fallbackHandler) Validate(string, domain.FixPlanItem) bool { return true }
