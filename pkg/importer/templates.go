package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mockwell/mockwell/pkg/endpoint"
)

// synthesizeTemplates builds one response template per declared numeric
// status code. The first 2xx code is flagged default; with no 2xx at all the
// lowest code becomes default and a warning records the oddity.
func synthesizeTemplates(method, path string, op *openapi3.Operation, requestFields []endpoint.FieldValidation) ([]*endpoint.ResponseTemplate, []string) {
	var warnings []string

	codes, skipped := statusCodes(op)
	for _, key := range skipped {
		warnings = append(warnings, fmt.Sprintf(
			"%s %s: response %q has no numeric status code, skipped", method, path, key))
	}
	if len(codes) == 0 {
		return nil, warnings
	}

	defaultCode := codes[0]
	for _, code := range codes {
		if code >= 200 && code < 300 {
			defaultCode = code
			break
		}
	}
	if defaultCode < 200 || defaultCode >= 300 {
		warnings = append(warnings, fmt.Sprintf(
			"%s %s: no 2xx response declared, %d used as default", method, path, defaultCode))
	}

	echo := make(map[string]bool, len(requestFields))
	for _, f := range requestFields {
		echo[f.FieldName] = true
	}

	responses := op.Responses.Map()
	var templates []*endpoint.ResponseTemplate
	for _, code := range codes {
		ref := responses[strconv.Itoa(code)]

		body := fallbackBody(code)
		if ref != nil && ref.Value != nil {
			if media := pickMedia(ref.Value.Content); media != nil && media.Schema != nil && media.Schema.Value != nil {
				body = buildBody(media.Schema.Value, echo, 0)
			}
		}

		templates = append(templates, &endpoint.ResponseTemplate{
			Name:        strconv.Itoa(code),
			Default:     code == defaultCode,
			StatusCode:  code,
			ContentType: "application/json",
			Body:        body,
		})
	}
	return templates, warnings
}

// buildBody renders a response schema as a JSON body whose leaves are
// placeholder expressions. Request fields sharing a name with a response
// field are echoed back instead of invented.
func buildBody(schema *openapi3.Schema, echo map[string]bool, depth int) string {
	switch {
	case schema.Type.Is("object") && depth < 3:
		names := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			names = append(names, name)
		}
		sort.Strings(names)

		var sb strings.Builder
		sb.WriteByte('{')
		first := true
		for _, name := range names {
			ref := schema.Properties[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			if !first {
				sb.WriteByte(',')
			}
			first = false
			sb.WriteByte('"')
			sb.WriteString(name)
			sb.WriteString(`":`)
			sb.WriteString(leafValue(name, ref.Value, echo, depth))
		}
		sb.WriteByte('}')
		return sb.String()

	case schema.Type.Is("array") && depth < 3:
		if schema.Items != nil && schema.Items.Value != nil {
			return "[" + leafValue("", schema.Items.Value, echo, depth) + "]"
		}
		return "[]"

	default:
		expr, bare := chooseGenerator("", schema)
		if bare {
			return "${" + expr + "}"
		}
		return `"${` + expr + `}"`
	}
}

// leafValue renders one property value, recursing into containers.
func leafValue(name string, schema *openapi3.Schema, echo map[string]bool, depth int) string {
	if schema.Type.Is("object") || schema.Type.Is("array") {
		return buildBody(schema, echo, depth+1)
	}
	if name != "" && echo[name] {
		return `"${request.` + name + `}"`
	}
	expr, bare := chooseGenerator(name, schema)
	if bare {
		return "${" + expr + "}"
	}
	return `"${` + expr + `}"`
}

// chooseGenerator picks a placeholder expression for a leaf field by its
// type, format, and name. bare reports whether the value must sit unquoted.
func chooseGenerator(name string, schema *openapi3.Schema) (expr string, bare bool) {
	lower := strings.ToLower(name)

	if len(schema.Enum) > 0 {
		choices := make([]string, 0, len(schema.Enum))
		for _, raw := range schema.Enum {
			choices = append(choices, fmt.Sprintf("%v", raw))
		}
		return "mock.enum[" + strings.Join(choices, ",") + "]", false
	}

	switch {
	case schema.Type.Is("boolean"):
		return "mock.bool", true
	case schema.Type.Is("integer"):
		if strings.Contains(lower, "timestamp") {
			return "mock.timestamp", true
		}
		return "mock.int", true
	case schema.Type.Is("number"):
		return "mock.float", true
	}

	// String-shaped field: format first, then name heuristics.
	switch schema.Format {
	case "email":
		return "mock.email", false
	case "uuid":
		return "mock.uuid", false
	case "uri", "url":
		return "mock.url", false
	case "date":
		return "mock.date", false
	case "date-time":
		return "mock.date.now", false
	}
	switch {
	case lower == "id" || strings.HasSuffix(lower, "_id"):
		return "mock.uuid", false
	case strings.Contains(lower, "email"):
		return "mock.email", false
	case strings.Contains(lower, "phone"):
		return "mock.phone", false
	case strings.Contains(lower, "url") || strings.Contains(lower, "link"):
		return "mock.url", false
	case strings.Contains(lower, "currency"):
		return "mock.currency", false
	case strings.Contains(lower, "price") || strings.Contains(lower, "amount"):
		return "mock.float", true
	case strings.Contains(lower, "name"):
		return "mock.name", false
	case strings.Contains(lower, "date") || strings.Contains(lower, "time"):
		return "mock.date.now", false
	}
	return "mock.string", false
}

// fallbackBody is used when a declared response has no schema.
func fallbackBody(code int) string {
	if code >= 400 {
		return fmt.Sprintf(`{"error":"simulated error","status":%d}`, code)
	}
	return `{"status":"ok"}`
}
