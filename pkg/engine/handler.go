// Core HTTP request handler for the mock engine.

package engine

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/httputil"
	"github.com/mockwell/mockwell/pkg/logging"
	"github.com/mockwell/mockwell/pkg/template"
	"github.com/mockwell/mockwell/pkg/validation"
)

// Request and response headers for the force-response directive and the
// selected-template diagnostic.
const (
	HeaderForceResponse = "X-Mockwell-Response"
	HeaderTemplateUsed  = "X-Mockwell-Template"
)

// forceResponseField carries the directive in the body or query string when
// the caller cannot set headers.
const forceResponseField = "_force_response"

// MaxRequestBodySize is the maximum allowed request body size (10MB).
// This prevents denial-of-service via oversized request bodies.
const MaxRequestBodySize = 10 << 20

// Error codes surfaced in mock responses.
const (
	codeNotFound         = "not_found"
	codeValidationFailed = "validation_failed"
	codeSchemaAmbiguous  = "schema_ambiguous"
	codeNoTemplate       = "no_template_configured"
	codeRenderFailed     = "template_render_failed"
)

// Handler serves mock requests: it takes one configuration snapshot per
// request, validates the payload, resolves the force-response directive, and
// renders the selected template.
type Handler struct {
	store storage.Store
	cache *template.Cache
	log   *slog.Logger
}

// NewHandler creates a Handler over the given store.
func NewHandler(store storage.Store) *Handler {
	return &Handler{
		store: store,
		cache: template.NewCache(),
		log:   logging.Nop(),
	}
}

// SetLogger sets the operational logger for error/warning messages.
func (h *Handler) SetLogger(log *slog.Logger) {
	if log != nil {
		h.log = log
	}
}

// InvalidateTemplate drops a template's cached parse. Called by the admin
// surface when a template is deleted or replaced.
func (h *Handler) InvalidateTemplate(templateID string) {
	h.cache.Invalidate(templateID)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Snapshot(r.Method, r.URL.Path)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFound(w, codeNotFound, "no active endpoint for "+r.Method+" "+r.URL.Path)
		return
	}
	if err != nil {
		httputil.WriteInternalError(w, "store_error", err.Error())
		return
	}

	payload := assemblePayload(r)
	directive := r.Header.Get(HeaderForceResponse)
	if v, ok := payload[forceResponseField]; ok {
		if directive == "" {
			directive, _ = v.(string)
		}
		delete(payload, forceResponseField)
	}

	schema, err := selectSchema(snap.Schemas)
	if err != nil {
		h.log.Error("ambiguous schema configuration",
			"endpoint_id", snap.Endpoint.ID, "method", r.Method, "path", r.URL.Path)
		httputil.WriteInternalError(w, codeSchemaAmbiguous,
			"multiple schemas configured with no default")
		return
	}
	if schema != nil {
		result := validation.Validate(payload, schema)
		if !result.Valid {
			httputil.WriteErrorWithDetails(w, http.StatusUnprocessableEntity,
				codeValidationFailed, "request payload failed validation", result.Errors)
			return
		}
	}

	tpl := selectTemplate(snap.Templates, directive)
	if tpl == nil {
		httputil.WriteError(w, http.StatusServiceUnavailable, codeNoTemplate,
			"no response template configured for this endpoint")
		return
	}

	parsed, err := h.cache.Get(tpl.ID, tpl.Body)
	if err != nil {
		// Creation-time validation should make this unreachable; reaching it
		// means the stored record is corrupt.
		h.log.Error("stored template failed to parse",
			"template_id", tpl.ID, "endpoint_id", snap.Endpoint.ID, "error", err)
		w.Header().Set(HeaderTemplateUsed, tpl.Name)
		httputil.WriteInternalError(w, codeRenderFailed, "response template is not renderable")
		return
	}

	body := template.Render(parsed, payload)
	w.Header().Set("Content-Type", tpl.ContentType)
	w.Header().Set(HeaderTemplateUsed, tpl.Name)
	w.WriteHeader(tpl.StatusCode)
	_, _ = io.WriteString(w, body)
}

// selectSchema applies the schema selection rule: one schema wins outright, a
// default wins among several, several with no default is a configuration
// error, and zero means validation is skipped.
func selectSchema(schemas []endpoint.SchemaDef) (*endpoint.SchemaDef, error) {
	switch len(schemas) {
	case 0:
		return nil, nil
	case 1:
		return &schemas[0], nil
	}
	for i := range schemas {
		if schemas[i].Default {
			return &schemas[i], nil
		}
	}
	return nil, errors.New("no default among multiple schemas")
}

// selectTemplate resolves the force-response directive: exact name match
// first, then status-code match (first by creation order), then the default
// template. Returns nil when nothing is configured.
func selectTemplate(templates []endpoint.ResponseTemplate, directive string) *endpoint.ResponseTemplate {
	if directive != "" {
		for i := range templates {
			if templates[i].Name == directive {
				return &templates[i]
			}
		}
		if code, err := strconv.Atoi(directive); err == nil {
			for i := range templates {
				if templates[i].StatusCode == code {
					return &templates[i]
				}
			}
		}
	}
	for i := range templates {
		if templates[i].Default {
			return &templates[i]
		}
	}
	return nil
}

// assemblePayload merges the query string with the request body into one
// payload map. Body fields win over query parameters of the same name.
func assemblePayload(r *http.Request) map[string]any {
	payload := make(map[string]any)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}

	if r.Body == nil {
		return payload
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil || len(raw) == 0 {
		return payload
	}

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/x-www-form-urlencoded"):
		if form, err := url.ParseQuery(string(raw)); err == nil {
			for key, values := range form {
				if len(values) > 0 {
					payload[key] = values[0]
				}
			}
		}
	default:
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err == nil {
			for key, value := range doc {
				payload[key] = value
			}
		}
	}
	return payload
}
