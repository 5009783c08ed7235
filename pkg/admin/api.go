// Package admin implements the configuration API: endpoint, schema, and
// template CRUD, template validation, and OpenAPI import.
package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/httputil"
	"github.com/mockwell/mockwell/pkg/logging"
)

// Error codes surfaced by the admin API.
const (
	codeInvalidPayload         = "invalid_payload"
	codeInvalidRecord          = "invalid_record"
	codeNotFound               = "not_found"
	codeRouteConflict          = "route_conflict"
	codeTemplateSyntax         = "template_syntax_error"
	codeInvalidGeneratorParams = "invalid_generator_params"
	codeImportParseError       = "import_parse_error"
)

// TemplateInvalidator drops cached template parses when records change.
// Satisfied by the serving engine's handler.
type TemplateInvalidator interface {
	InvalidateTemplate(templateID string)
}

// API is the admin surface over the configuration store.
type API struct {
	store     storage.Store
	cache     TemplateInvalidator
	log       *slog.Logger
	validate  *validator.Validate
	startTime time.Time
}

// Option is a functional option for configuring the API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithTemplateInvalidator wires the serving engine's parse cache so template
// deletion invalidates it.
func WithTemplateInvalidator(cache TemplateInvalidator) Option {
	return func(a *API) {
		a.cache = cache
	}
}

// New creates the admin API over the given store.
func New(store storage.Store, opts ...Option) *API {
	a := &API{
		store:     store,
		log:       logging.Nop(),
		validate:  validator.New(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register mounts all admin routes on mux under /admin.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/health", a.handleHealth)

	mux.HandleFunc("GET /admin/endpoints", a.handleListEndpoints)
	mux.HandleFunc("POST /admin/endpoints", a.handleCreateEndpoint)
	mux.HandleFunc("GET /admin/endpoints/{id}", a.handleGetEndpoint)
	mux.HandleFunc("PUT /admin/endpoints/{id}", a.handleUpdateEndpoint)
	mux.HandleFunc("DELETE /admin/endpoints/{id}", a.handleDeleteEndpoint)

	mux.HandleFunc("GET /admin/endpoints/{id}/schemas", a.handleListSchemas)
	mux.HandleFunc("POST /admin/endpoints/{id}/schemas", a.handleCreateSchema)
	mux.HandleFunc("GET /admin/schemas/{id}", a.handleGetSchema)
	mux.HandleFunc("DELETE /admin/schemas/{id}", a.handleDeleteSchema)

	mux.HandleFunc("GET /admin/endpoints/{id}/templates", a.handleListTemplates)
	mux.HandleFunc("POST /admin/endpoints/{id}/templates", a.handleCreateTemplate)
	mux.HandleFunc("GET /admin/templates/{id}", a.handleGetTemplate)
	mux.HandleFunc("DELETE /admin/templates/{id}", a.handleDeleteTemplate)
	mux.HandleFunc("POST /admin/templates/validate", a.handleValidateTemplate)

	mux.HandleFunc("POST /admin/import/openapi", a.handleImportOpenAPI)
	mux.HandleFunc("POST /admin/import/openapi/validate", a.handleValidateOpenAPI)
}

// handleHealth handles GET /admin/health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(a.startTime).String(),
	})
}
