// Package storage persists endpoint configuration and hands the serving
// engine consistent snapshots of it.
package storage

import (
	"errors"

	"github.com/mockwell/mockwell/pkg/endpoint"
)

var (
	// ErrNotFound is returned when a record ID does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrRouteExists is returned when creating an endpoint whose
	// method+path pair is already registered.
	ErrRouteExists = errors.New("route already registered")
)

// Snapshot is one endpoint with copies of all its children, taken under a
// single read lock so a request never observes a half-replaced set.
type Snapshot struct {
	Endpoint  endpoint.Endpoint
	Schemas   []endpoint.SchemaDef
	Templates []endpoint.ResponseTemplate
}

// Store is the configuration store consumed by the serving engine and the
// admin surface.
type Store interface {
	CreateEndpoint(ep *endpoint.Endpoint) error
	GetEndpoint(id string) (*endpoint.Endpoint, error)
	ListEndpoints() []*endpoint.Endpoint
	UpdateEndpoint(ep *endpoint.Endpoint) error
	// DeleteEndpoint removes the endpoint and all its schemas and templates.
	DeleteEndpoint(id string) error

	// CreateSchema stores the schema; when it is flagged default, any
	// existing default on the same endpoint is atomically demoted.
	CreateSchema(s *endpoint.SchemaDef) error
	GetSchema(id string) (*endpoint.SchemaDef, error)
	ListSchemas(endpointID string) ([]*endpoint.SchemaDef, error)
	DeleteSchema(id string) error

	// CreateTemplate stores the template with the same default-demotion
	// rule as CreateSchema. Templates are immutable once created.
	CreateTemplate(t *endpoint.ResponseTemplate) error
	GetTemplate(id string) (*endpoint.ResponseTemplate, error)
	ListTemplates(endpointID string) ([]*endpoint.ResponseTemplate, error)
	DeleteTemplate(id string) error

	// Snapshot resolves method+path to an active endpoint and returns the
	// endpoint with copies of its children under one read lock. Returns
	// ErrNotFound when no active endpoint matches exactly.
	Snapshot(method, path string) (*Snapshot, error)

	// CreateFromImport persists one imported endpoint with its children as
	// a unit. Used by the OpenAPI importer, one operation at a time.
	CreateFromImport(ep *endpoint.Endpoint, schemas []*endpoint.SchemaDef, templates []*endpoint.ResponseTemplate) error
}
