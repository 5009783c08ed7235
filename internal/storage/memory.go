package storage

import (
	"slices"
	"sync"
	"time"

	"github.com/mockwell/mockwell/internal/id"
	"github.com/mockwell/mockwell/pkg/endpoint"
)

// MemoryStore is a thread-safe in-memory Store. Children keep creation order
// so status-code force matching and import summaries are deterministic.
type MemoryStore struct {
	mu sync.RWMutex

	endpoints map[string]*endpoint.Endpoint
	schemas   map[string]*endpoint.SchemaDef
	templates map[string]*endpoint.ResponseTemplate

	endpointOrder []string
	schemaOrder   map[string][]string // endpoint ID -> schema IDs
	templateOrder map[string][]string // endpoint ID -> template IDs

	routes map[string]string // "METHOD /path" -> endpoint ID
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		endpoints:     make(map[string]*endpoint.Endpoint),
		schemas:       make(map[string]*endpoint.SchemaDef),
		templates:     make(map[string]*endpoint.ResponseTemplate),
		schemaOrder:   make(map[string][]string),
		templateOrder: make(map[string][]string),
		routes:        make(map[string]string),
	}
}

func routeKey(method, path string) string {
	return method + " " + path
}

// CreateEndpoint registers a new endpoint. The store assigns the ID and
// timestamps; a second endpoint on the same method+path is rejected.
func (s *MemoryStore) CreateEndpoint(ep *endpoint.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEndpointLocked(ep)
}

func (s *MemoryStore) createEndpointLocked(ep *endpoint.Endpoint) error {
	key := routeKey(ep.Method, ep.Path)
	if _, taken := s.routes[key]; taken {
		return ErrRouteExists
	}
	if ep.ID == "" {
		ep.ID = id.Prefixed(id.PrefixEndpoint)
	}
	now := time.Now().UTC()
	ep.CreatedAt = now
	ep.UpdatedAt = now

	stored := *ep
	s.endpoints[ep.ID] = &stored
	s.endpointOrder = append(s.endpointOrder, ep.ID)
	s.routes[key] = ep.ID
	return nil
}

// GetEndpoint returns a copy of the endpoint with the given ID.
func (s *MemoryStore) GetEndpoint(endpointID string) (*endpoint.Endpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ep, ok := s.endpoints[endpointID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *ep
	return &out, nil
}

// ListEndpoints returns copies of all endpoints in creation order.
func (s *MemoryStore) ListEndpoints() []*endpoint.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*endpoint.Endpoint, 0, len(s.endpointOrder))
	for _, epID := range s.endpointOrder {
		ep := *s.endpoints[epID]
		out = append(out, &ep)
	}
	return out
}

// UpdateEndpoint replaces the stored endpoint's mutable fields. The route
// index follows a method or path change.
func (s *MemoryStore) UpdateEndpoint(ep *endpoint.Endpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.endpoints[ep.ID]
	if !ok {
		return ErrNotFound
	}
	newKey := routeKey(ep.Method, ep.Path)
	oldKey := routeKey(existing.Method, existing.Path)
	if newKey != oldKey {
		if _, taken := s.routes[newKey]; taken {
			return ErrRouteExists
		}
		delete(s.routes, oldKey)
		s.routes[newKey] = ep.ID
	}

	ep.CreatedAt = existing.CreatedAt
	ep.UpdatedAt = time.Now().UTC()
	stored := *ep
	s.endpoints[ep.ID] = &stored
	return nil
}

// DeleteEndpoint removes the endpoint and all of its schemas and templates.
func (s *MemoryStore) DeleteEndpoint(endpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ep, ok := s.endpoints[endpointID]
	if !ok {
		return ErrNotFound
	}
	delete(s.routes, routeKey(ep.Method, ep.Path))
	delete(s.endpoints, endpointID)
	s.endpointOrder = slices.DeleteFunc(s.endpointOrder, func(v string) bool { return v == endpointID })

	for _, schemaID := range s.schemaOrder[endpointID] {
		delete(s.schemas, schemaID)
	}
	delete(s.schemaOrder, endpointID)
	for _, tplID := range s.templateOrder[endpointID] {
		delete(s.templates, tplID)
	}
	delete(s.templateOrder, endpointID)
	return nil
}

// CreateSchema stores the schema under its endpoint. A default flag demotes
// any previous default schema in the same critical section.
func (s *MemoryStore) CreateSchema(schema *endpoint.SchemaDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSchemaLocked(schema)
}

func (s *MemoryStore) createSchemaLocked(schema *endpoint.SchemaDef) error {
	if _, ok := s.endpoints[schema.EndpointID]; !ok {
		return ErrNotFound
	}
	if schema.ID == "" {
		schema.ID = id.Prefixed(id.PrefixSchema)
	}
	schema.CreatedAt = time.Now().UTC()

	if schema.Default {
		for _, otherID := range s.schemaOrder[schema.EndpointID] {
			s.schemas[otherID].Default = false
		}
	}

	stored := *schema
	stored.Fields = slices.Clone(schema.Fields)
	s.schemas[schema.ID] = &stored
	s.schemaOrder[schema.EndpointID] = append(s.schemaOrder[schema.EndpointID], schema.ID)
	return nil
}

// GetSchema returns a copy of the schema with the given ID.
func (s *MemoryStore) GetSchema(schemaID string) (*endpoint.SchemaDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[schemaID]
	if !ok {
		return nil, ErrNotFound
	}
	return copySchema(schema), nil
}

// ListSchemas returns the endpoint's schemas in creation order.
func (s *MemoryStore) ListSchemas(endpointID string) ([]*endpoint.SchemaDef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.endpoints[endpointID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*endpoint.SchemaDef, 0, len(s.schemaOrder[endpointID]))
	for _, schemaID := range s.schemaOrder[endpointID] {
		out = append(out, copySchema(s.schemas[schemaID]))
	}
	return out, nil
}

// DeleteSchema removes one schema.
func (s *MemoryStore) DeleteSchema(schemaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.schemas[schemaID]
	if !ok {
		return ErrNotFound
	}
	delete(s.schemas, schemaID)
	s.schemaOrder[schema.EndpointID] = slices.DeleteFunc(
		s.schemaOrder[schema.EndpointID], func(v string) bool { return v == schemaID })
	return nil
}

// CreateTemplate stores the template under its endpoint, demoting any
// previous default template in the same critical section.
func (s *MemoryStore) CreateTemplate(tpl *endpoint.ResponseTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createTemplateLocked(tpl)
}

func (s *MemoryStore) createTemplateLocked(tpl *endpoint.ResponseTemplate) error {
	if _, ok := s.endpoints[tpl.EndpointID]; !ok {
		return ErrNotFound
	}
	if tpl.ID == "" {
		tpl.ID = id.Prefixed(id.PrefixTemplate)
	}
	tpl.CreatedAt = time.Now().UTC()

	if tpl.Default {
		for _, otherID := range s.templateOrder[tpl.EndpointID] {
			s.templates[otherID].Default = false
		}
	}

	stored := *tpl
	s.templates[tpl.ID] = &stored
	s.templateOrder[tpl.EndpointID] = append(s.templateOrder[tpl.EndpointID], tpl.ID)
	return nil
}

// GetTemplate returns a copy of the template with the given ID.
func (s *MemoryStore) GetTemplate(templateID string) (*endpoint.ResponseTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *tpl
	return &out, nil
}

// ListTemplates returns the endpoint's templates in creation order.
func (s *MemoryStore) ListTemplates(endpointID string) ([]*endpoint.ResponseTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.endpoints[endpointID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*endpoint.ResponseTemplate, 0, len(s.templateOrder[endpointID]))
	for _, tplID := range s.templateOrder[endpointID] {
		tpl := *s.templates[tplID]
		out = append(out, &tpl)
	}
	return out, nil
}

// DeleteTemplate removes one template.
func (s *MemoryStore) DeleteTemplate(templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return ErrNotFound
	}
	delete(s.templates, templateID)
	s.templateOrder[tpl.EndpointID] = slices.DeleteFunc(
		s.templateOrder[tpl.EndpointID], func(v string) bool { return v == templateID })
	return nil
}

// Snapshot resolves method+path to an active endpoint and copies its children
// under one read lock, so a request sees one coherent configuration even
// while the admin surface replaces records concurrently.
func (s *MemoryStore) Snapshot(method, path string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	epID, ok := s.routes[routeKey(method, path)]
	if !ok {
		return nil, ErrNotFound
	}
	ep := s.endpoints[epID]
	if !ep.Active {
		return nil, ErrNotFound
	}

	snap := &Snapshot{Endpoint: *ep}
	for _, schemaID := range s.schemaOrder[epID] {
		snap.Schemas = append(snap.Schemas, *copySchema(s.schemas[schemaID]))
	}
	for _, tplID := range s.templateOrder[epID] {
		snap.Templates = append(snap.Templates, *s.templates[tplID])
	}
	return snap, nil
}

// CreateFromImport persists one imported endpoint with its children inside a
// single critical section. Items are independent; a route conflict fails this
// item without touching others.
func (s *MemoryStore) CreateFromImport(ep *endpoint.Endpoint, schemas []*endpoint.SchemaDef, templates []*endpoint.ResponseTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.createEndpointLocked(ep); err != nil {
		return err
	}
	for _, schema := range schemas {
		schema.EndpointID = ep.ID
		if err := s.createSchemaLocked(schema); err != nil {
			return err
		}
	}
	for _, tpl := range templates {
		tpl.EndpointID = ep.ID
		if err := s.createTemplateLocked(tpl); err != nil {
			return err
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)

func copySchema(schema *endpoint.SchemaDef) *endpoint.SchemaDef {
	out := *schema
	out.Fields = slices.Clone(schema.Fields)
	return &out
}
