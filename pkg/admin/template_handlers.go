package admin

import (
	"errors"
	"net/http"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/httputil"
	"github.com/mockwell/mockwell/pkg/template"
)

// templatePayload is the create body for a response template.
type templatePayload struct {
	Name        string `json:"name" validate:"required"`
	Default     bool   `json:"default"`
	StatusCode  int    `json:"statusCode" validate:"required,gte=100,lte=599"`
	ContentType string `json:"contentType" validate:"required"`
	Body        string `json:"body"`
}

func (p *templatePayload) toRecord(endpointID string) *endpoint.ResponseTemplate {
	return &endpoint.ResponseTemplate{
		EndpointID:  endpointID,
		Name:        p.Name,
		Default:     p.Default,
		StatusCode:  p.StatusCode,
		ContentType: p.ContentType,
		Body:        p.Body,
	}
}

// writeTemplateError maps parse failures onto the admin error codes. The
// check result lists the placeholders that parsed before the failure, for
// display next to the rejection.
func writeTemplateError(w http.ResponseWriter, err error, result *template.CheckResult) {
	details := map[string]any{}
	if result != nil {
		details["requestFields"] = result.RequestFields
		details["generators"] = result.Generators
	}

	var paramErr *template.ParamError
	if errors.As(err, &paramErr) {
		details["token"] = paramErr.Token
		details["offset"] = paramErr.Offset
		httputil.WriteErrorWithDetails(w, http.StatusBadRequest, codeInvalidGeneratorParams, paramErr.Error(), details)
		return
	}
	var syntaxErr *template.SyntaxError
	if errors.As(err, &syntaxErr) {
		details["token"] = syntaxErr.Token
		details["offset"] = syntaxErr.Offset
		httputil.WriteErrorWithDetails(w, http.StatusBadRequest, codeTemplateSyntax, syntaxErr.Error(), details)
		return
	}
	httputil.WriteBadRequest(w, codeTemplateSyntax, err.Error())
}

// handleListTemplates handles GET /admin/endpoints/{id}/templates.
func (a *API) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.store.ListTemplates(r.PathValue("id"))
	if err != nil {
		httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
		return
	}
	httputil.WriteOK(w, templates)
}

// handleCreateTemplate handles POST /admin/endpoints/{id}/templates. The body
// must parse and, for JSON content types, stay well-formed after placeholder
// substitution; broken templates never reach the store.
func (a *API) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload templatePayload
	if !a.decodePayload(w, r, &payload) {
		return
	}

	tpl := payload.toRecord(r.PathValue("id"))
	if err := tpl.Validate(); err != nil {
		httputil.WriteBadRequest(w, codeInvalidRecord, err.Error())
		return
	}
	if result, err := template.Check(tpl.Body, tpl.IsJSON()); err != nil {
		writeTemplateError(w, err, result)
		return
	}
	if err := a.store.CreateTemplate(tpl); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
			return
		}
		httputil.WriteInternalError(w, "store_error", err.Error())
		return
	}

	a.log.Info("template created", "id", tpl.ID, "endpoint_id", tpl.EndpointID, "status", tpl.StatusCode)
	httputil.WriteCreated(w, tpl)
}

// handleGetTemplate handles GET /admin/templates/{id}.
func (a *API) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := a.store.GetTemplate(r.PathValue("id"))
	if err != nil {
		httputil.WriteNotFound(w, codeNotFound, "template not found")
		return
	}
	httputil.WriteOK(w, tpl)
}

// handleDeleteTemplate handles DELETE /admin/templates/{id}.
func (a *API) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := r.PathValue("id")
	if err := a.store.DeleteTemplate(templateID); err != nil {
		httputil.WriteNotFound(w, codeNotFound, "template not found")
		return
	}
	if a.cache != nil {
		a.cache.InvalidateTemplate(templateID)
	}
	httputil.WriteNoContent(w)
}

// validateTemplatePayload is the body for POST /admin/templates/validate.
type validateTemplatePayload struct {
	Body        string `json:"body" validate:"required"`
	ContentType string `json:"contentType"`
}

// handleValidateTemplate handles POST /admin/templates/validate: a read-only
// parse that reports the placeholders found, for the authoring surface.
func (a *API) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload validateTemplatePayload
	if !a.decodePayload(w, r, &payload) {
		return
	}

	jsonContent := payload.ContentType == "" ||
		(&endpoint.ResponseTemplate{ContentType: payload.ContentType}).IsJSON()
	result, err := template.Check(payload.Body, jsonContent)
	if err != nil {
		writeTemplateError(w, err, result)
		return
	}
	httputil.WriteOK(w, map[string]any{
		"valid":         true,
		"requestFields": result.RequestFields,
		"generators":    result.Generators,
	})
}
