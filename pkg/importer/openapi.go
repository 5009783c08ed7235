// Package importer synthesizes endpoint configuration from OpenAPI 3.0.x
// documents. The transform is pure: Preview computes records, warnings, and
// per-operation errors without side effects, and Apply persists the computed
// records one operation at a time so a bad operation never blocks the rest.
package importer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
)

// supportedMethods lists the HTTP methods an operation may use, in the order
// operations are processed within one path.
var supportedMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

// ParseError means the document itself is unreadable or not OpenAPI 3.0.x.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "openapi import: " + e.Reason
}

// ItemError is a per-operation synthesis failure. Other operations in the
// same document still import.
type ItemError struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Reason)
}

// Item is one synthesized endpoint with its children, not yet persisted.
type Item struct {
	Endpoint  *endpoint.Endpoint
	Schemas   []*endpoint.SchemaDef
	Templates []*endpoint.ResponseTemplate
}

// Preview is the dry-run result of transforming a document.
type Preview struct {
	Items    []Item      `json:"items"`
	Warnings []string    `json:"warnings"`
	Errors   []ItemError `json:"errors"`
}

// EndpointSummary describes one created endpoint in an Outcome.
type EndpointSummary struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	SchemaFields int    `json:"schemaFields"`
	Templates    int    `json:"templates"`
}

// Outcome reports what Apply persisted.
type Outcome struct {
	Created   int               `json:"created"`
	Endpoints []EndpointSummary `json:"endpoints"`
	Warnings  []string          `json:"warnings"`
	Errors    []ItemError       `json:"errors"`
}

// versionMarker is the minimal view of a document used to reject non-3.0.x
// sources before the full parse.
type versionMarker struct {
	OpenAPI string `yaml:"openapi" json:"openapi"`
	Swagger string `yaml:"swagger" json:"swagger"`
}

// ParseDocument loads and validates an OpenAPI 3.0.x document from JSON or
// YAML bytes.
func ParseDocument(ctx context.Context, data []byte) (*openapi3.T, error) {
	var marker versionMarker
	if err := yaml.Unmarshal(data, &marker); err != nil {
		return nil, &ParseError{Reason: "document is not valid JSON or YAML: " + err.Error()}
	}
	if marker.Swagger != "" {
		return nil, &ParseError{Reason: "Swagger 2.0 documents are not supported, convert to OpenAPI 3.0 first"}
	}
	if marker.OpenAPI == "" {
		return nil, &ParseError{Reason: "missing openapi version marker"}
	}
	if !strings.HasPrefix(marker.OpenAPI, "3.") {
		return nil, &ParseError{Reason: "unsupported openapi version " + marker.OpenAPI}
	}

	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, &ParseError{Reason: "document has no paths"}
	}
	return doc, nil
}

// BuildPreview transforms a parsed document into importable records. Paths
// keep their literal {param} text; path parameters turn into schema fields.
func BuildPreview(doc *openapi3.T) *Preview {
	preview := &Preview{}

	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		item := pathMap[path]
		ops := item.Operations()
		for _, method := range supportedMethods {
			op, ok := ops[method]
			if !ok || op == nil {
				continue
			}
			synthesized, warnings, err := synthesizeOperation(method, path, item, op)
			preview.Warnings = append(preview.Warnings, warnings...)
			if err != nil {
				preview.Errors = append(preview.Errors, *err)
				continue
			}
			preview.Items = append(preview.Items, *synthesized)
		}
	}
	return preview
}

// Apply persists a preview's items one at a time. Route conflicts and other
// store failures become per-item errors; everything else lands.
func Apply(store storage.Store, preview *Preview) *Outcome {
	outcome := &Outcome{
		Warnings: preview.Warnings,
		Errors:   preview.Errors,
	}
	for _, item := range preview.Items {
		if err := store.CreateFromImport(item.Endpoint, item.Schemas, item.Templates); err != nil {
			outcome.Errors = append(outcome.Errors, ItemError{
				Method: item.Endpoint.Method,
				Path:   item.Endpoint.Path,
				Reason: err.Error(),
			})
			continue
		}
		fields := 0
		if len(item.Schemas) > 0 {
			fields = len(item.Schemas[0].Fields)
		}
		outcome.Created++
		outcome.Endpoints = append(outcome.Endpoints, EndpointSummary{
			Method:       item.Endpoint.Method,
			Path:         item.Endpoint.Path,
			Name:         item.Endpoint.Name,
			SchemaFields: fields,
			Templates:    len(item.Templates),
		})
	}
	return outcome
}

// synthesizeOperation builds the endpoint, schema, and templates for one
// method+path pair.
func synthesizeOperation(method, path string, pathItem *openapi3.PathItem, op *openapi3.Operation) (*Item, []string, *ItemError) {
	if op.Responses == nil || op.Responses.Len() == 0 {
		return nil, nil, &ItemError{Method: method, Path: path, Reason: "operation declares no responses"}
	}

	name := op.OperationID
	if name == "" {
		name = strings.ToLower(method) + " " + path
	}
	ep := &endpoint.Endpoint{
		Path:        path,
		Method:      method,
		Name:        name,
		Description: firstNonEmpty(op.Summary, op.Description),
		Active:      true,
	}

	var warnings []string
	fields, fieldWarnings := synthesizeFields(method, path, pathItem, op)
	warnings = append(warnings, fieldWarnings...)

	var schemas []*endpoint.SchemaDef
	if len(fields) > 0 {
		schemas = append(schemas, &endpoint.SchemaDef{
			Name:    name + " request",
			Default: true,
			Fields:  fields,
		})
	}

	templates, tplWarnings := synthesizeTemplates(method, path, op, fields)
	warnings = append(warnings, tplWarnings...)
	if len(templates) == 0 {
		return nil, warnings, &ItemError{Method: method, Path: path, Reason: "no usable response codes"}
	}

	return &Item{Endpoint: ep, Schemas: schemas, Templates: templates}, warnings, nil
}

// synthesizeFields builds the schema field list from the request body plus
// query and path parameters.
func synthesizeFields(method, path string, pathItem *openapi3.PathItem, op *openapi3.Operation) ([]endpoint.FieldValidation, []string) {
	var fields []endpoint.FieldValidation
	var warnings []string
	seen := make(map[string]bool)

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		if media := pickMedia(op.RequestBody.Value.Content); media != nil && media.Schema != nil && media.Schema.Value != nil {
			bodyFields, bodyWarnings := flattenSchema(method, path, media.Schema.Value, "", 0)
			warnings = append(warnings, bodyWarnings...)
			for _, f := range bodyFields {
				if !seen[f.FieldName] {
					seen[f.FieldName] = true
					fields = append(fields, f)
				}
			}
		}
	}

	params := append(append([]*openapi3.ParameterRef{}, pathItem.Parameters...), op.Parameters...)
	for _, ref := range params {
		param := ref.Value
		if param == nil || (param.In != openapi3.ParameterInQuery && param.In != openapi3.ParameterInPath) {
			continue
		}
		if seen[param.Name] {
			continue
		}
		seen[param.Name] = true

		field := endpoint.FieldValidation{
			FieldName: param.Name,
			FieldType: endpoint.TypeString,
			// Path parameters are always required by the document's contract.
			Required: param.Required || param.In == openapi3.ParameterInPath,
		}
		if param.Schema != nil && param.Schema.Value != nil {
			applySchemaConstraints(&field, param.Schema.Value)
		}
		fields = append(fields, field)
	}
	return fields, warnings
}

// flattenSchema turns an object schema into fields. Nested objects flatten
// one level using dotted names; anything deeper, and arrays, degrade to a
// plain string field with a warning.
func flattenSchema(method, path string, schema *openapi3.Schema, prefix string, depth int) ([]endpoint.FieldValidation, []string) {
	var fields []endpoint.FieldValidation
	var warnings []string

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	propNames := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		propNames = append(propNames, name)
	}
	sort.Strings(propNames)

	for _, name := range propNames {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		prop := ref.Value
		fieldName := name
		if prefix != "" {
			fieldName = prefix + "." + name
		}

		switch {
		case prop.Type.Is("object") && depth == 0:
			nested, nestedWarnings := flattenSchema(method, path, prop, fieldName, depth+1)
			fields = append(fields, nested...)
			warnings = append(warnings, nestedWarnings...)

		case prop.Type.Is("object") || prop.Type.Is("array"):
			warnings = append(warnings, fmt.Sprintf(
				"%s %s: field %q has unsupported nesting, imported as string", method, path, fieldName))
			fields = append(fields, endpoint.FieldValidation{
				FieldName: fieldName,
				FieldType: endpoint.TypeString,
				Required:  required[name] && prefix == "",
			})

		default:
			field := endpoint.FieldValidation{
				FieldName: fieldName,
				Required:  required[name] && prefix == "",
			}
			applySchemaConstraints(&field, prop)
			fields = append(fields, field)
		}
	}
	return fields, warnings
}

// applySchemaConstraints fills the field's type and constraints from a leaf
// JSON schema.
func applySchemaConstraints(field *endpoint.FieldValidation, schema *openapi3.Schema) {
	field.FieldType = mapFieldType(schema)

	if schema.MinLength > 0 {
		v := int(schema.MinLength)
		field.MinLength = &v
	}
	if schema.MaxLength != nil {
		v := int(*schema.MaxLength)
		field.MaxLength = &v
	}
	if schema.Min != nil {
		v := *schema.Min
		field.MinValue = &v
	}
	if schema.Max != nil {
		v := *schema.Max
		field.MaxValue = &v
	}
	if schema.Pattern != "" {
		field.Pattern = schema.Pattern
	}
	for _, raw := range schema.Enum {
		field.Choices = append(field.Choices, fmt.Sprintf("%v", raw))
	}
}

// mapFieldType maps a JSON-Schema type/format pair onto the data model's
// field types. Unknown or structured types degrade to string.
func mapFieldType(schema *openapi3.Schema) endpoint.FieldType {
	switch {
	case schema.Type.Is("string") && schema.Format == "email":
		return endpoint.TypeEmail
	case schema.Type.Is("integer"):
		return endpoint.TypeInt
	case schema.Type.Is("number"):
		return endpoint.TypeFloat
	case schema.Type.Is("boolean"):
		return endpoint.TypeBool
	default:
		return endpoint.TypeString
	}
}

// pickMedia prefers JSON request bodies, falling back to form encoding.
// Among several JSON-ish media types the exact application/json entry wins,
// then the lexicographically first, keeping the pick stable across imports.
func pickMedia(content openapi3.Content) *openapi3.MediaType {
	if media := content.Get("application/json"); media != nil {
		return media
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, "json") {
			return content[name]
		}
	}
	return content.Get("application/x-www-form-urlencoded")
}

// statusCodes returns the numeric response codes of an operation, sorted.
// Non-numeric keys such as "default" are skipped.
func statusCodes(op *openapi3.Operation) ([]int, []string) {
	var codes []int
	var skipped []string
	for key := range op.Responses.Map() {
		code, err := strconv.Atoi(key)
		if err != nil {
			skipped = append(skipped, key)
			continue
		}
		codes = append(codes, code)
	}
	sort.Ints(codes)
	sort.Strings(skipped)
	return codes, skipped
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
