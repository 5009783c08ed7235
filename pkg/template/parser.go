// Package template implements the ${...} placeholder language used in
// response template bodies: parsing, mock-value generation, and rendering
// against a request payload.
package template

import (
	"fmt"
	"strings"
)

// NodeKind tags the two placeholder variants.
type NodeKind int

const (
	// NodeLiteral is skeleton text between placeholders.
	NodeLiteral NodeKind = iota
	// NodeRequestField is a ${request.a.b.c} reference into the payload.
	NodeRequestField
	// NodeGenerator is a ${mock.kind[params]} invocation.
	NodeGenerator
)

// Node is one parsed segment of a template body. Literal nodes carry Text;
// request-field nodes carry Path; generator nodes carry Gen. Offset is the
// byte position of the segment in the original body, and Quoted reports
// whether a placeholder sits inside a double-quoted JSON position.
type Node struct {
	Kind   NodeKind
	Text   string
	Path   string
	Gen    *GenSpec
	Offset int
	Quoted bool
}

// Template is an immutable parsed template body.
type Template struct {
	Body  string
	Nodes []Node
}

// RequestPaths returns the dotted paths of all request-field placeholders,
// in order of appearance.
func (t *Template) RequestPaths() []string {
	var paths []string
	for _, n := range t.Nodes {
		if n.Kind == NodeRequestField {
			paths = append(paths, n.Path)
		}
	}
	return paths
}

// GeneratorTokens returns the raw generator expressions (kind plus params),
// in order of appearance.
func (t *Template) GeneratorTokens() []string {
	var tokens []string
	for _, n := range t.Nodes {
		if n.Kind == NodeGenerator {
			tokens = append(tokens, n.Gen.String())
		}
	}
	return tokens
}

// SyntaxError reports a malformed or unrecognized placeholder token.
type SyntaxError struct {
	Token  string
	Offset int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("template syntax error at offset %d: %s: %s", e.Offset, e.Token, e.Reason)
}

// ParamError reports generator parameters that can never produce a value,
// caught at parse time so a broken template is rejected before serving.
type ParamError struct {
	Token  string
	Offset int
	Reason string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid generator params at offset %d: %s: %s", e.Offset, e.Token, e.Reason)
}

// Parse scans body for ${...} tokens and produces the node sequence.
// Unknown namespaces, unknown generator kinds, and unterminated tokens fail
// with *SyntaxError; unsatisfiable generator parameters fail with *ParamError.
// On failure the returned template still carries the nodes parsed before the
// offending token, so callers can report what did parse.
func Parse(body string) (*Template, error) {
	t := &Template{Body: body}

	// inString tracks whether the scan position is inside a double-quoted
	// region of the skeleton, so the renderer knows how to insert values.
	inString := false
	litStart := 0
	i := 0
	for i < len(body) {
		c := body[i]
		if c == '\\' && inString && i+1 < len(body) {
			i += 2
			continue
		}
		if c == '"' {
			inString = !inString
			i++
			continue
		}
		if c != '$' || i+1 >= len(body) || body[i+1] != '{' {
			i++
			continue
		}

		end := strings.IndexByte(body[i+2:], '}')
		if end < 0 {
			return t, &SyntaxError{Token: body[i:], Offset: i, Reason: "unterminated placeholder"}
		}
		inner := body[i+2 : i+2+end]

		if litStart < i {
			t.Nodes = append(t.Nodes, Node{Kind: NodeLiteral, Text: body[litStart:i], Offset: litStart})
		}

		node, err := parseToken(inner, i)
		if err != nil {
			return t, err
		}
		node.Quoted = inString
		t.Nodes = append(t.Nodes, node)

		i += end + 3
		litStart = i
	}
	if litStart < len(body) {
		t.Nodes = append(t.Nodes, Node{Kind: NodeLiteral, Text: body[litStart:], Offset: litStart})
	}
	return t, nil
}

// parseToken classifies one placeholder's inner text by its namespace.
func parseToken(inner string, offset int) (Node, error) {
	token := "${" + inner + "}"

	switch {
	case strings.HasPrefix(inner, "request."):
		path := inner[len("request."):]
		if path == "" || strings.Contains(path, "[") {
			return Node{}, &SyntaxError{Token: token, Offset: offset, Reason: "malformed request path"}
		}
		for _, part := range strings.Split(path, ".") {
			if part == "" {
				return Node{}, &SyntaxError{Token: token, Offset: offset, Reason: "malformed request path"}
			}
		}
		return Node{Kind: NodeRequestField, Path: path, Offset: offset}, nil

	case strings.HasPrefix(inner, "mock."):
		gen, err := parseGenerator(inner[len("mock."):], token, offset)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeGenerator, Gen: gen, Offset: offset}, nil

	default:
		return Node{}, &SyntaxError{Token: token, Offset: offset, Reason: "unknown placeholder namespace"}
	}
}
