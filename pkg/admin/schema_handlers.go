package admin

import (
	"errors"
	"net/http"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/httputil"
)

// schemaPayload is the create body for a validation schema.
type schemaPayload struct {
	Name    string         `json:"name" validate:"required"`
	Default bool           `json:"default"`
	Fields  []fieldPayload `json:"fields" validate:"dive"`
}

type fieldPayload struct {
	FieldName string   `json:"fieldName" validate:"required"`
	FieldType string   `json:"fieldType" validate:"required,oneof=string int float bool email"`
	Required  bool     `json:"required"`
	MinLength *int     `json:"minLength"`
	MaxLength *int     `json:"maxLength"`
	Pattern   string   `json:"pattern"`
	MinValue  *float64 `json:"minValue"`
	MaxValue  *float64 `json:"maxValue"`
	Choices   []string `json:"choices"`
}

func (p *schemaPayload) toRecord(endpointID string) *endpoint.SchemaDef {
	schema := &endpoint.SchemaDef{
		EndpointID: endpointID,
		Name:       p.Name,
		Default:    p.Default,
	}
	for _, f := range p.Fields {
		schema.Fields = append(schema.Fields, endpoint.FieldValidation{
			FieldName: f.FieldName,
			FieldType: endpoint.FieldType(f.FieldType),
			Required:  f.Required,
			MinLength: f.MinLength,
			MaxLength: f.MaxLength,
			Pattern:   f.Pattern,
			MinValue:  f.MinValue,
			MaxValue:  f.MaxValue,
			Choices:   f.Choices,
		})
	}
	return schema
}

// handleListSchemas handles GET /admin/endpoints/{id}/schemas.
func (a *API) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := a.store.ListSchemas(r.PathValue("id"))
	if err != nil {
		httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
		return
	}
	httputil.WriteOK(w, schemas)
}

// handleCreateSchema handles POST /admin/endpoints/{id}/schemas.
func (a *API) handleCreateSchema(w http.ResponseWriter, r *http.Request) {
	var payload schemaPayload
	if !a.decodePayload(w, r, &payload) {
		return
	}

	schema := payload.toRecord(r.PathValue("id"))
	if err := schema.Validate(); err != nil {
		httputil.WriteBadRequest(w, codeInvalidRecord, err.Error())
		return
	}
	if err := a.store.CreateSchema(schema); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httputil.WriteNotFound(w, codeNotFound, "endpoint not found")
			return
		}
		httputil.WriteInternalError(w, "store_error", err.Error())
		return
	}

	a.log.Info("schema created", "id", schema.ID, "endpoint_id", schema.EndpointID, "default", schema.Default)
	httputil.WriteCreated(w, schema)
}

// handleGetSchema handles GET /admin/schemas/{id}.
func (a *API) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := a.store.GetSchema(r.PathValue("id"))
	if err != nil {
		httputil.WriteNotFound(w, codeNotFound, "schema not found")
		return
	}
	httputil.WriteOK(w, schema)
}

// handleDeleteSchema handles DELETE /admin/schemas/{id}.
func (a *API) handleDeleteSchema(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteSchema(r.PathValue("id")); err != nil {
		httputil.WriteNotFound(w, codeNotFound, "schema not found")
		return
	}
	httputil.WriteNoContent(w)
}
