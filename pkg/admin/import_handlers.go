package admin

import (
	"errors"
	"io"
	"net/http"

	"github.com/mockwell/mockwell/pkg/httputil"
	"github.com/mockwell/mockwell/pkg/importer"
)

// maxImportSize caps OpenAPI document uploads (5MB).
const maxImportSize = 5 << 20

// readPreview parses the uploaded document and computes the import preview.
// A nil return means the error response was already written.
func (a *API) readPreview(w http.ResponseWriter, r *http.Request) *importer.Preview {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil || len(data) == 0 {
		httputil.WriteBadRequest(w, codeImportParseError, "request body must contain an OpenAPI document")
		return nil
	}

	doc, err := importer.ParseDocument(r.Context(), data)
	if err != nil {
		var parseErr *importer.ParseError
		if errors.As(err, &parseErr) {
			httputil.WriteBadRequest(w, codeImportParseError, parseErr.Reason)
			return nil
		}
		httputil.WriteBadRequest(w, codeImportParseError, err.Error())
		return nil
	}
	return importer.BuildPreview(doc)
}

// handleValidateOpenAPI handles POST /admin/import/openapi/validate: the
// side-effect-free dry run.
func (a *API) handleValidateOpenAPI(w http.ResponseWriter, r *http.Request) {
	preview := a.readPreview(w, r)
	if preview == nil {
		return
	}

	summaries := make([]importer.EndpointSummary, 0, len(preview.Items))
	for _, item := range preview.Items {
		fields := 0
		if len(item.Schemas) > 0 {
			fields = len(item.Schemas[0].Fields)
		}
		summaries = append(summaries, importer.EndpointSummary{
			Method:       item.Endpoint.Method,
			Path:         item.Endpoint.Path,
			Name:         item.Endpoint.Name,
			SchemaFields: fields,
			Templates:    len(item.Templates),
		})
	}
	httputil.WriteOK(w, map[string]any{
		"endpoints": summaries,
		"warnings":  preview.Warnings,
		"errors":    preview.Errors,
	})
}

// handleImportOpenAPI handles POST /admin/import/openapi: parse, transform,
// and persist. Per-operation failures land in the outcome, not the status.
func (a *API) handleImportOpenAPI(w http.ResponseWriter, r *http.Request) {
	preview := a.readPreview(w, r)
	if preview == nil {
		return
	}

	outcome := importer.Apply(a.store, preview)
	a.log.Info("openapi import applied",
		"created", outcome.Created, "warnings", len(outcome.Warnings), "errors", len(outcome.Errors))
	httputil.WriteCreated(w, outcome)
}
