package endpoint

import (
	"strings"
	"testing"
)

func intPtr(n int) *int          { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestEndpointValidate(t *testing.T) {
	tests := []struct {
		name    string
		ep      Endpoint
		wantErr string
	}{
		{
			name: "valid",
			ep:   Endpoint{Path: "/webhook/candidate", Method: "POST", Name: "candidate webhook"},
		},
		{
			name:    "missing leading slash",
			ep:      Endpoint{Path: "webhook", Method: "POST", Name: "x"},
			wantErr: "must start with '/'",
		},
		{
			name:    "empty path",
			ep:      Endpoint{Path: "", Method: "GET", Name: "x"},
			wantErr: "must start with '/'",
		},
		{
			name:    "bad method",
			ep:      Endpoint{Path: "/a", Method: "TRACE", Name: "x"},
			wantErr: "unsupported method",
		},
		{
			name:    "missing name",
			ep:      Endpoint{Path: "/a", Method: "GET"},
			wantErr: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ep.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestFieldValidationValidate(t *testing.T) {
	tests := []struct {
		name    string
		rule    FieldValidation
		wantErr string
	}{
		{
			name: "valid string rule",
			rule: FieldValidation{FieldName: "name", FieldType: TypeString, MinLength: intPtr(1), MaxLength: intPtr(50)},
		},
		{
			name: "valid numeric rule",
			rule: FieldValidation{FieldName: "age", FieldType: TypeInt, MinValue: floatPtr(0), MaxValue: floatPtr(150)},
		},
		{
			name:    "unknown type",
			rule:    FieldValidation{FieldName: "x", FieldType: "decimal"},
			wantErr: "unknown field type",
		},
		{
			name:    "min length above max",
			rule:    FieldValidation{FieldName: "x", FieldType: TypeString, MinLength: intPtr(10), MaxLength: intPtr(2)},
			wantErr: "exceeds maxLength",
		},
		{
			name:    "min value above max",
			rule:    FieldValidation{FieldName: "x", FieldType: TypeFloat, MinValue: floatPtr(5), MaxValue: floatPtr(1)},
			wantErr: "exceeds maxValue",
		},
		{
			name:    "broken pattern",
			rule:    FieldValidation{FieldName: "x", FieldType: TypeString, Pattern: "([unclosed"},
			wantErr: "invalid pattern",
		},
		{
			name:    "empty field name",
			rule:    FieldValidation{FieldType: TypeString},
			wantErr: "field name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSchemaDefValidateRejectsDuplicateFields(t *testing.T) {
	s := SchemaDef{
		Name: "candidate",
		Fields: []FieldValidation{
			{FieldName: "email", FieldType: TypeEmail, Required: true},
			{FieldName: "email", FieldType: TypeString},
		},
	}
	err := s.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate field") {
		t.Fatalf("Validate() = %v, want duplicate field error", err)
	}
}

func TestResponseTemplateValidate(t *testing.T) {
	tmpl := ResponseTemplate{Name: "ok", StatusCode: 200, ContentType: "application/json", Body: "{}"}
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tmpl.StatusCode = 99
	if err := tmpl.Validate(); err == nil {
		t.Fatal("Validate() accepted status code 99")
	}

	tmpl.StatusCode = 200
	tmpl.ContentType = ""
	if err := tmpl.Validate(); err == nil {
		t.Fatal("Validate() accepted empty content type")
	}
}

func TestResponseTemplateIsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/plain", false},
		{"application/xml", false},
	}
	for _, tt := range tests {
		tmpl := ResponseTemplate{ContentType: tt.contentType}
		if got := tmpl.IsJSON(); got != tt.want {
			t.Errorf("IsJSON(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
