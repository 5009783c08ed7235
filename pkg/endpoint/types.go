// Package endpoint defines the configuration records served by the mock
// engine: endpoints, request schemas, and response templates.
package endpoint

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// FieldType enumerates the value types a field validation rule can require.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeEmail  FieldType = "email"
)

// allowedMethods are the HTTP methods an endpoint may be registered under.
var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

// IsValidMethod reports whether method is one the engine will route.
func IsValidMethod(method string) bool {
	return allowedMethods[method]
}

// Endpoint is a configured (method, path) mock target. It owns its schemas
// and templates: deleting an endpoint deletes its children.
type Endpoint struct {
	// ID is a unique identifier for the endpoint.
	ID string `json:"id" yaml:"id"`

	// Path is the literal request path, matched by exact string equality.
	// No path parameters, no trailing-slash normalization.
	Path string `json:"path" yaml:"path"`

	// Method is the HTTP method: GET, POST, PUT, DELETE, or PATCH.
	Method string `json:"method" yaml:"method"`

	// Name is a human-readable endpoint name.
	Name string `json:"name" yaml:"name"`

	// Description is an optional longer description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Active indicates whether the endpoint is served. Inactive endpoints
	// are treated as absent during matching.
	Active bool `json:"active" yaml:"active"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Validate checks the endpoint record for structural problems.
func (e *Endpoint) Validate() error {
	if e.Path == "" || !strings.HasPrefix(e.Path, "/") {
		return fmt.Errorf("endpoint path must start with '/': %q", e.Path)
	}
	if !IsValidMethod(e.Method) {
		return fmt.Errorf("unsupported method %q (want GET, POST, PUT, DELETE, or PATCH)", e.Method)
	}
	if e.Name == "" {
		return fmt.Errorf("endpoint name is required")
	}
	return nil
}

// FieldValidation is a single field rule inside a SchemaDef. Nil pointer
// constraints mean "unconstrained", not zero.
type FieldValidation struct {
	// FieldName is the payload key the rule applies to. Unique within a schema.
	FieldName string `json:"fieldName" yaml:"fieldName"`

	// FieldType is the expected value type: string, int, float, bool, email.
	FieldType FieldType `json:"fieldType" yaml:"fieldType"`

	// Required indicates the field must be present in the payload.
	Required bool `json:"required" yaml:"required"`

	// String constraints.
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Numeric constraints (int and float).
	MinValue *float64 `json:"minValue,omitempty" yaml:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty" yaml:"maxValue,omitempty"`

	// Choices is an exact-match allow-list, valid for any type.
	Choices []string `json:"choices,omitempty" yaml:"choices,omitempty"`
}

// Validate checks the rule's own consistency (not a payload).
func (f *FieldValidation) Validate() error {
	if f.FieldName == "" {
		return fmt.Errorf("field name is required")
	}
	switch f.FieldType {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeEmail:
	default:
		return fmt.Errorf("field %q: unknown field type %q", f.FieldName, f.FieldType)
	}
	if f.MinLength != nil && *f.MinLength < 0 {
		return fmt.Errorf("field %q: minLength must be >= 0", f.FieldName)
	}
	if f.MinLength != nil && f.MaxLength != nil && *f.MinLength > *f.MaxLength {
		return fmt.Errorf("field %q: minLength %d exceeds maxLength %d", f.FieldName, *f.MinLength, *f.MaxLength)
	}
	if f.MinValue != nil && f.MaxValue != nil && *f.MinValue > *f.MaxValue {
		return fmt.Errorf("field %q: minValue %g exceeds maxValue %g", f.FieldName, *f.MinValue, *f.MaxValue)
	}
	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("field %q: invalid pattern: %w", f.FieldName, err)
		}
	}
	return nil
}

// SchemaDef is a named, ordered set of field validation rules for an endpoint.
type SchemaDef struct {
	ID         string `json:"id" yaml:"id"`
	EndpointID string `json:"endpointId" yaml:"endpointId"`

	// Name identifies the schema within its endpoint.
	Name string `json:"name" yaml:"name"`

	// Default marks the schema used when an endpoint has several.
	// At most one schema per endpoint carries the flag.
	Default bool `json:"default" yaml:"default"`

	// Fields are evaluated in declared order.
	Fields []FieldValidation `json:"fields" yaml:"fields"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Validate checks the schema record: every rule valid, field names unique.
func (s *SchemaDef) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	seen := make(map[string]bool, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if err := f.Validate(); err != nil {
			return err
		}
		if seen[f.FieldName] {
			return fmt.Errorf("duplicate field %q in schema %q", f.FieldName, s.Name)
		}
		seen[f.FieldName] = true
	}
	return nil
}

// ResponseTemplate is a named response blueprint: status code, content type,
// and a body carrying ${...} placeholders. Templates are immutable once
// created; changing one means replacing it.
type ResponseTemplate struct {
	ID         string `json:"id" yaml:"id"`
	EndpointID string `json:"endpointId" yaml:"endpointId"`

	// Name identifies the template within its endpoint; the force-response
	// directive selects by it.
	Name string `json:"name" yaml:"name"`

	// Default marks the template served when no directive applies.
	// At most one template per endpoint carries the flag.
	Default bool `json:"default" yaml:"default"`

	// StatusCode is returned verbatim on render.
	StatusCode int `json:"statusCode" yaml:"statusCode"`

	// ContentType is returned verbatim on render.
	ContentType string `json:"contentType" yaml:"contentType"`

	// Body is the raw template text.
	Body string `json:"body" yaml:"body"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Validate checks the template record's metadata. Body syntax is checked
// separately by the template parser before the record is accepted.
func (t *ResponseTemplate) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.StatusCode < 100 || t.StatusCode > 599 {
		return fmt.Errorf("template %q: status code %d out of range", t.Name, t.StatusCode)
	}
	if t.ContentType == "" {
		return fmt.Errorf("template %q: content type is required", t.Name)
	}
	return nil
}

// IsJSON reports whether the template declares a JSON content type.
// JSON templates get structural well-formedness checks at creation time.
func (t *ResponseTemplate) IsJSON() bool {
	ct := strings.ToLower(t.ContentType)
	return strings.Contains(ct, "application/json") || strings.HasSuffix(ct, "+json")
}
