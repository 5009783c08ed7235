package template

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func mustParse(t *testing.T, body string) *Template {
	t.Helper()
	parsed, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", body, err)
	}
	return parsed
}

func TestRenderUUIDAndEcho(t *testing.T) {
	parsed := mustParse(t, `{"id":"${mock.uuid}","email":"${request.email}"}`)
	out := Render(parsed, map[string]any{"email": "a@b.com"})

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	id, _ := doc["id"].(string)
	if len(id) != 36 || !uuidShape.MatchString(id) {
		t.Errorf("id = %q, want UUID shape", id)
	}
	if doc["email"] != "a@b.com" {
		t.Errorf("email = %v, want a@b.com", doc["email"])
	}
}

func TestRenderNestedRequestPath(t *testing.T) {
	parsed := mustParse(t, `{"city":"${request.address.city}"}`)
	payload := map[string]any{"address": map[string]any{"city": "Lisbon"}}
	out := Render(parsed, payload)
	if out != `{"city":"Lisbon"}` {
		t.Errorf("Render() = %s", out)
	}
}

func TestRenderMissingRequestField(t *testing.T) {
	// Quoted position renders empty, bare position renders null.
	quoted := Render(mustParse(t, `{"v":"${request.nope}"}`), map[string]any{})
	if quoted != `{"v":""}` {
		t.Errorf("quoted missing field: %s", quoted)
	}
	bare := Render(mustParse(t, `{"v":${request.nope}}`), map[string]any{})
	if bare != `{"v":null}` {
		t.Errorf("bare missing field: %s", bare)
	}
}

func TestRenderBareGeneratorIsUnquoted(t *testing.T) {
	out := Render(mustParse(t, `{"n":${mock.int[7-7]},"b":${mock.bool}}`), nil)
	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if doc["n"] != float64(7) {
		t.Errorf("n = %v (%T), want bare 7", doc["n"], doc["n"])
	}
	if _, ok := doc["b"].(bool); !ok {
		t.Errorf("b = %v (%T), want bare boolean", doc["b"], doc["b"])
	}
}

func TestRenderEscapesRequestValues(t *testing.T) {
	parsed := mustParse(t, `{"msg":"${request.msg}"}`)
	out := Render(parsed, map[string]any{"msg": `say "hi"` + "\n"})
	var doc map[string]string
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if doc["msg"] != "say \"hi\"\n" {
		t.Errorf("msg = %q", doc["msg"])
	}
}

func TestGeneratorPinnedRanges(t *testing.T) {
	for range 50 {
		if out := Render(mustParse(t, `${mock.int[5-5]}`), nil); out != "5" {
			t.Fatalf("int[5-5] rendered %q", out)
		}
	}
	for range 50 {
		out := Render(mustParse(t, `"${mock.string[3-3]}"`), nil)
		if len(out) != 5 { // three characters plus the literal quotes
			t.Fatalf("string[3-3] rendered %q", out)
		}
	}
	for range 50 {
		out := Render(mustParse(t, `"${mock.enum[a,b]}"`), nil)
		if out != `"a"` && out != `"b"` {
			t.Fatalf("enum[a,b] rendered %q", out)
		}
	}
}

func TestGeneratorShapes(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(string) bool
	}{
		{"email", `${mock.email}`, func(s string) bool { return strings.Count(s, "@") == 1 && strings.Contains(s, ".") }},
		{"name", `${mock.name}`, func(s string) bool { return strings.Count(s, " ") == 1 }},
		{"phone", `${mock.phone}`, func(s string) bool { return strings.HasPrefix(s, "+1-") }},
		{"url", `${mock.url}`, func(s string) bool { return strings.HasPrefix(s, "https://") }},
		{"currency", `${mock.currency}`, func(s string) bool { return len(s) == 3 && s == strings.ToUpper(s) }},
		{"id", `${mock.id}`, func(s string) bool { return len(s) == 8 }},
		{"date", `${mock.date}`, func(s string) bool { return regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`).MatchString(s) }},
		{"time", `${mock.time}`, func(s string) bool { return regexp.MustCompile(`^\d{2}:\d{2}:\d{2}$`).MatchString(s) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Render(mustParse(t, tt.body), nil)
			if !tt.check(out) {
				t.Errorf("%s rendered %q", tt.name, out)
			}
		})
	}
}

func TestGeneratorIntRangeInclusive(t *testing.T) {
	parsed := mustParse(t, `${mock.int[1-3]}`)
	seen := map[string]bool{}
	for range 200 {
		seen[Render(parsed, nil)] = true
	}
	for v := range seen {
		if v != "1" && v != "2" && v != "3" {
			t.Fatalf("int[1-3] produced %q", v)
		}
	}
}

func TestGeneratorIntWideRanges(t *testing.T) {
	tests := []struct {
		name string
		body string
		min  int64
	}{
		{"max width from zero", `${mock.int[0-9223372036854775807]}`, 0},
		{"full int64 range", `${mock.int[-9223372036854775808-9223372036854775807]}`, math.MinInt64},
		{"wide negative span", `${mock.int[-4611686018427387904-4611686018427387904]}`, -4611686018427387904},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"n": ` + tt.body + `}`
			if _, err := Check(body, true); err != nil {
				t.Fatalf("Check() error: %v", err)
			}
			parsed := mustParse(t, tt.body)
			for range 50 {
				out := Render(parsed, nil)
				n, err := strconv.ParseInt(out, 10, 64)
				if err != nil {
					t.Fatalf("int rendered %q: %v", out, err)
				}
				if n < tt.min {
					t.Fatalf("int rendered %d below minimum %d", n, tt.min)
				}
			}
		})
	}
}

func TestGeneratorFloatTwoDecimals(t *testing.T) {
	parsed := mustParse(t, `${mock.float[1-2]}`)
	for range 20 {
		out := Render(parsed, nil)
		if dot := strings.IndexByte(out, '.'); dot >= 0 && len(out)-dot-1 > 2 {
			t.Fatalf("float rendered %q with more than two decimals", out)
		}
	}
}

func TestGeneratorTimestampIsInteger(t *testing.T) {
	out := Render(mustParse(t, `${mock.timestamp}`), nil)
	if !regexp.MustCompile(`^\d+$`).MatchString(out) {
		t.Errorf("timestamp rendered %q", out)
	}
}

func TestCacheReusesParsedTemplate(t *testing.T) {
	cache := NewCache()
	first, err := cache.Get("tpl-1", `{"id":"${mock.uuid}"}`)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	second, err := cache.Get("tpl-1", `{"id":"${mock.uuid}"}`)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if first != second {
		t.Error("second Get returned a different parse")
	}

	cache.Invalidate("tpl-1")
	third, err := cache.Get("tpl-1", `{"id":"${mock.uuid}"}`)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if third == first {
		t.Error("Invalidate did not drop the entry")
	}
}

func TestCachePropagatesParseErrors(t *testing.T) {
	cache := NewCache()
	if _, err := cache.Get("bad", `${mock.sandwich}`); err == nil {
		t.Fatal("Get() accepted an unknown generator")
	}
}
