package template

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Render resolves the parsed template against the request payload. Request
// fields that point nowhere render as empty text in quoted positions and as
// null in bare positions; rendering never fails.
func Render(t *Template, payload map[string]any) string {
	var sb strings.Builder
	sb.Grow(len(t.Body))

	for _, n := range t.Nodes {
		switch n.Kind {
		case NodeLiteral:
			sb.WriteString(n.Text)
		case NodeRequestField:
			v, ok := lookupPath(payload, n.Path)
			writeValue(&sb, v, ok, n.Quoted)
		case NodeGenerator:
			writeValue(&sb, n.Gen.Generate(), true, n.Quoted)
		}
	}
	return sb.String()
}

// CheckResult is the authoring-time summary of a template body: the
// placeholders it references, for display alongside the saved record.
type CheckResult struct {
	RequestFields []string `json:"requestFields"`
	Generators    []string `json:"generators"`
}

// Check parses body and, for JSON content, substitutes each placeholder with
// a type-correct stand-in and requires the result to be well-formed JSON.
// A failure rejects the record before it can ever be served; the result is
// returned even then, listing the placeholders that did parse, so the
// authoring surface can show them alongside the rejection.
func Check(body string, jsonContent bool) (*CheckResult, error) {
	t, err := Parse(body)
	result := &CheckResult{
		RequestFields: t.RequestPaths(),
		Generators:    t.GeneratorTokens(),
	}
	if err != nil {
		return result, err
	}
	if jsonContent {
		var sb strings.Builder
		for _, n := range t.Nodes {
			switch n.Kind {
			case NodeLiteral:
				sb.WriteString(n.Text)
			case NodeRequestField:
				writeValue(&sb, "x", true, n.Quoted)
			case NodeGenerator:
				writeValue(&sb, n.Gen.standIn(), true, n.Quoted)
			}
		}
		if !json.Valid([]byte(sb.String())) {
			return result, &SyntaxError{Token: body, Reason: "body is not valid JSON after substitution"}
		}
	}
	return result, nil
}

// lookupPath resolves a dotted path against the payload.
func lookupPath(payload map[string]any, path string) (any, bool) {
	if payload == nil {
		return nil, false
	}
	expr, err := jp.ParseString("$." + path)
	if err != nil {
		return nil, false
	}
	results := expr.Get(payload)
	if len(results) == 0 {
		return nil, false
	}
	return results[0], true
}

// writeValue inserts one resolved value into the output. Quoted positions get
// JSON-escaped text without surrounding quotes (the skeleton supplies them);
// bare positions get a complete JSON token.
func writeValue(sb *strings.Builder, v any, ok, quoted bool) {
	if quoted {
		if !ok || v == nil {
			return
		}
		sb.WriteString(escapeJSONText(valueText(v)))
		return
	}
	if !ok || v == nil {
		sb.WriteString("null")
		return
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		sb.WriteString("null")
		return
	}
	sb.Write(encoded)
}

// valueText renders a value as plain text for quoted insertion.
func valueText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// escapeJSONText escapes text for embedding inside a JSON string literal.
func escapeJSONText(s string) string {
	encoded, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(encoded[1 : len(encoded)-1])
}
