package template

import (
	"errors"
	"testing"
)

func TestParseLiteralOnly(t *testing.T) {
	parsed, err := Parse(`{"status":"ok"}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(parsed.Nodes) != 1 || parsed.Nodes[0].Kind != NodeLiteral {
		t.Fatalf("want single literal node, got %+v", parsed.Nodes)
	}
}

func TestParseRequestField(t *testing.T) {
	parsed, err := Parse(`{"email":"${request.user.email}"}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var field *Node
	for i := range parsed.Nodes {
		if parsed.Nodes[i].Kind == NodeRequestField {
			field = &parsed.Nodes[i]
		}
	}
	if field == nil {
		t.Fatal("no request-field node parsed")
	}
	if field.Path != "user.email" {
		t.Errorf("Path = %q, want %q", field.Path, "user.email")
	}
	if !field.Quoted {
		t.Error("placeholder inside a JSON string should be marked quoted")
	}
}

func TestParseBarePosition(t *testing.T) {
	parsed, err := Parse(`{"count":${mock.int[1-5]}}`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	for _, n := range parsed.Nodes {
		if n.Kind == NodeGenerator && n.Quoted {
			t.Error("bare placeholder marked quoted")
		}
	}
}

func TestParseGeneratorParams(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"uuid", `${mock.uuid}`, GenUUID},
		{"int range", `${mock.int[5-10]}`, GenInt},
		{"negative int range", `${mock.int[-5-10]}`, GenInt},
		{"float range", `${mock.float[0.5-9.5]}`, GenFloat},
		{"string length", `${mock.string[3-8]}`, GenString},
		{"enum", `${mock.enum[a,b,c]}`, GenEnum},
		{"date now", `${mock.date.now}`, GenDateNow},
		{"timestamp", `${mock.timestamp}`, GenTimestamp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.body)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.body, err)
			}
			if len(parsed.Nodes) != 1 || parsed.Nodes[0].Kind != NodeGenerator {
				t.Fatalf("want single generator node, got %+v", parsed.Nodes)
			}
			if got := parsed.Nodes[0].Gen.Kind; got != tt.kind {
				t.Errorf("Kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unterminated", `{"a":"${mock.uuid"}`},
		{"unknown namespace", `${bogus.thing}`},
		{"unknown generator", `${mock.sandwich}`},
		{"empty request path", `${request.}`},
		{"unclosed bracket", `${mock.int[1-5}`},
		{"non numeric range", `${mock.int[a-b]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body)
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Parse(%q) error = %v, want *SyntaxError", tt.body, err)
			}
			if syntaxErr.Token == "" {
				t.Error("SyntaxError.Token is empty")
			}
		})
	}
}

func TestParseParamErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"int min above max", `${mock.int[10-5]}`},
		{"float min above max", `${mock.float[2.5-1.5]}`},
		{"negative string length", `${mock.string[-3-5]}`},
		{"oversized string length", `${mock.string[1-100000]}`},
		{"empty enum", `${mock.enum[]}`},
		{"params on uuid", `${mock.uuid[1-2]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.body)
			var paramErr *ParamError
			if !errors.As(err, &paramErr) {
				t.Fatalf("Parse(%q) error = %v, want *ParamError", tt.body, err)
			}
		})
	}
}

func TestParsePreservesOffsets(t *testing.T) {
	body := `{"id":"${mock.uuid}"}`
	parsed, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	for _, n := range parsed.Nodes {
		if n.Kind == NodeGenerator && n.Offset != 7 {
			t.Errorf("generator Offset = %d, want 7", n.Offset)
		}
	}
}

func TestCheckReportsPlaceholders(t *testing.T) {
	body := `{"id":"${mock.uuid}","email":"${request.email}","n":${mock.int[1-3]}}`
	result, err := Check(body, true)
	if err != nil {
		t.Fatalf("Check() error: %v", err)
	}
	if len(result.RequestFields) != 1 || result.RequestFields[0] != "email" {
		t.Errorf("RequestFields = %v, want [email]", result.RequestFields)
	}
	if len(result.Generators) != 2 {
		t.Errorf("Generators = %v, want 2 entries", result.Generators)
	}
}

func TestCheckRejectsBrokenJSONSkeleton(t *testing.T) {
	result, err := Check(`{"id": ${mock.uuid},,}`, true)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("Check() error = %v, want *SyntaxError", err)
	}
	// The rejection still reports the placeholders that parsed.
	if result == nil || len(result.Generators) != 1 || result.Generators[0] != "uuid" {
		t.Errorf("result = %+v, want uuid generator listed", result)
	}
}

func TestCheckReportsPartialResultOnParseFailure(t *testing.T) {
	body := `{"id":"${mock.uuid}","email":"${request.email}","x":"${mock.sandwich}"}`
	result, err := Check(body, true)
	var syntaxErr *SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("Check() error = %v, want *SyntaxError", err)
	}
	if result == nil {
		t.Fatal("Check() result = nil, want partial result")
	}
	if len(result.RequestFields) != 1 || result.RequestFields[0] != "email" {
		t.Errorf("RequestFields = %v, want [email]", result.RequestFields)
	}
	if len(result.Generators) != 1 || result.Generators[0] != "uuid" {
		t.Errorf("Generators = %v, want [uuid]", result.Generators)
	}
}

func TestCheckSkipsNonJSON(t *testing.T) {
	if _, err := Check(`hello ${mock.name}, not json at all`, false); err != nil {
		t.Fatalf("Check() error for non-JSON content: %v", err)
	}
}
