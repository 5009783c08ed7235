package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/httputil"
)

// endpointPayload is the create/update body for an endpoint.
type endpointPayload struct {
	Path        string `json:"path" validate:"required,startswith=/"`
	Method      string `json:"method" validate:"required,oneof=GET POST PUT DELETE PATCH"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// decodePayload reads a JSON body into dst and runs struct validation.
// A false return means the error response was already written.
func (a *API) decodePayload(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, codeInvalidPayload, "request body is not valid JSON: "+err.Error())
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		httputil.WriteBadRequest(w, codeInvalidPayload, err.Error())
		return false
	}
	return true
}

func (p *endpointPayload) toRecord() *endpoint.Endpoint {
	active := true
	if p.Active != nil {
		active = *p.Active
	}
	return &endpoint.Endpoint{
		Path:        p.Path,
		Method:      p.Method,
		Name:        p.Name,
		Description: p.Description,
		Active:      active,
	}
}

// handleListEndpoints handles GET /admin/endpoints.
func (a *API) handleListEndpoints(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, a.store.ListEndpoints())
}

// handleCreateEndpoint handles POST /admin/endpoints.
func (a *API) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	var payload endpointPayload
	if !a.decodePayload(w, r, &payload) {
		return
	}

	ep := payload.toRecord()
	if err := ep.Validate(); err != nil {
		httputil.WriteBadRequest(w, codeInvalidRecord, err.Error())
		return
	}
	if err := a.store.CreateEndpoint(ep); err != nil {
		if errors.Is(err, storage.ErrRouteExists) {
			httputil.WriteConflict(w, codeRouteConflict, "an endpoint for this method and path already exists")
			return
		}
		httputil.WriteInternalError(w, "store_error", err.Error())
		return
	}

	a.log.Info("endpoint created", "id", ep.ID, "method", ep.Method, "path", ep.Path)
	httputil.WriteCreated(w, ep)
}

// endpointDetail is the GET-by-id response: the record plus its children.
type endpointDetail struct {
	*endpoint.Endpoint
	Schemas   []*endpoint.SchemaDef        `json:"schemas"`
	Templates []*endpoint.ResponseTemplate `json:"templates"`
	Warnings  []string                     `json:"warnings,omitempty"`
}

// handleGetEndpoint handles GET /admin/endpoints/{id}.
func (a *API) handleGetEndpoint(w http.ResponseWriter, r *http.Request) {
	ep, err := a.store.GetEndpoint(r.PathValue("id"))
	if err != nil {
		httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
		return
	}

	detail := endpointDetail{Endpoint: ep}
	detail.Schemas, _ = a.store.ListSchemas(ep.ID)
	detail.Templates, _ = a.store.ListTemplates(ep.ID)

	if len(detail.Schemas) > 1 {
		hasDefault := false
		for _, s := range detail.Schemas {
			if s.Default {
				hasDefault = true
				break
			}
		}
		if !hasDefault {
			detail.Warnings = append(detail.Warnings, "multiple schemas with no default: requests will fail with schema_ambiguous")
		}
	}
	if len(detail.Templates) == 0 {
		detail.Warnings = append(detail.Warnings, "no templates configured: requests will fail with no_template_configured")
	}

	httputil.WriteOK(w, detail)
}

// handleUpdateEndpoint handles PUT /admin/endpoints/{id}.
func (a *API) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	var payload endpointPayload
	if !a.decodePayload(w, r, &payload) {
		return
	}

	ep := payload.toRecord()
	ep.ID = r.PathValue("id")
	if err := ep.Validate(); err != nil {
		httputil.WriteBadRequest(w, codeInvalidRecord, err.Error())
		return
	}

	err := a.store.UpdateEndpoint(ep)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
	case errors.Is(err, storage.ErrRouteExists):
		httputil.WriteConflict(w, codeRouteConflict, "an endpoint for this method and path already exists")
	case err != nil:
		httputil.WriteInternalError(w, "store_error", err.Error())
	default:
		httputil.WriteOK(w, ep)
	}
}

// handleDeleteEndpoint handles DELETE /admin/endpoints/{id}. Children are
// deleted with the endpoint.
func (a *API) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	endpointID := r.PathValue("id")

	templates, _ := a.store.ListTemplates(endpointID)
	if err := a.store.DeleteEndpoint(endpointID); err != nil {
		httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
		return
	}
	if a.cache != nil {
		for _, tpl := range templates {
			a.cache.InvalidateTemplate(tpl.ID)
		}
	}

	a.log.Info("endpoint deleted", "id", endpointID)
	httputil.WriteNoContent(w)
}
