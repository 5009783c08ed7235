package storage

import (
	"errors"
	"sync"
	"testing"

	"github.com/mockwell/mockwell/pkg/endpoint"
)

func newEndpoint(method, path string) *endpoint.Endpoint {
	return &endpoint.Endpoint{
		Path:   path,
		Method: method,
		Name:   method + " " + path,
		Active: true,
	}
}

func mustCreateEndpoint(t *testing.T, s *MemoryStore, method, path string) *endpoint.Endpoint {
	t.Helper()
	ep := newEndpoint(method, path)
	if err := s.CreateEndpoint(ep); err != nil {
		t.Fatalf("CreateEndpoint() error: %v", err)
	}
	return ep
}

func TestCreateEndpointAssignsIDAndTimestamps(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/users")

	if ep.ID == "" {
		t.Fatal("CreateEndpoint() did not assign an ID")
	}
	if ep.CreatedAt.IsZero() || ep.UpdatedAt.IsZero() {
		t.Error("CreateEndpoint() did not set timestamps")
	}

	got, err := s.GetEndpoint(ep.ID)
	if err != nil {
		t.Fatalf("GetEndpoint() error: %v", err)
	}
	if got.Path != "/users" || got.Method != "GET" {
		t.Errorf("stored endpoint = %+v", got)
	}
}

func TestCreateEndpointRejectsDuplicateRoute(t *testing.T) {
	s := NewMemoryStore()
	mustCreateEndpoint(t, s, "GET", "/users")

	err := s.CreateEndpoint(newEndpoint("GET", "/users"))
	if !errors.Is(err, ErrRouteExists) {
		t.Fatalf("CreateEndpoint() error = %v, want ErrRouteExists", err)
	}

	// Same path under a different method is a distinct route.
	if err := s.CreateEndpoint(newEndpoint("POST", "/users")); err != nil {
		t.Fatalf("CreateEndpoint() error for distinct method: %v", err)
	}
}

func TestUpdateEndpointMovesRoute(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/old")

	ep.Path = "/new"
	if err := s.UpdateEndpoint(ep); err != nil {
		t.Fatalf("UpdateEndpoint() error: %v", err)
	}

	if _, err := s.Snapshot("GET", "/new"); err != nil {
		t.Errorf("Snapshot(/new) error: %v", err)
	}
	if _, err := s.Snapshot("GET", "/old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Snapshot(/old) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteEndpointCascades(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "POST", "/webhook")

	schema := &endpoint.SchemaDef{EndpointID: ep.ID, Name: "s"}
	if err := s.CreateSchema(schema); err != nil {
		t.Fatalf("CreateSchema() error: %v", err)
	}
	tpl := &endpoint.ResponseTemplate{EndpointID: ep.ID, Name: "ok", StatusCode: 200, ContentType: "application/json", Body: "{}"}
	if err := s.CreateTemplate(tpl); err != nil {
		t.Fatalf("CreateTemplate() error: %v", err)
	}

	if err := s.DeleteEndpoint(ep.ID); err != nil {
		t.Fatalf("DeleteEndpoint() error: %v", err)
	}
	if _, err := s.GetSchema(schema.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("schema survived endpoint deletion: %v", err)
	}
	if _, err := s.GetTemplate(tpl.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("template survived endpoint deletion: %v", err)
	}
}

func TestDefaultSchemaDemotion(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "POST", "/webhook")

	first := &endpoint.SchemaDef{EndpointID: ep.ID, Name: "first", Default: true}
	second := &endpoint.SchemaDef{EndpointID: ep.ID, Name: "second", Default: true}
	if err := s.CreateSchema(first); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateSchema(second); err != nil {
		t.Fatal(err)
	}

	schemas, err := s.ListSchemas(ep.ID)
	if err != nil {
		t.Fatal(err)
	}
	var defaults []string
	for _, schema := range schemas {
		if schema.Default {
			defaults = append(defaults, schema.Name)
		}
	}
	if len(defaults) != 1 || defaults[0] != "second" {
		t.Fatalf("defaults = %v, want exactly [second]", defaults)
	}
}

func TestDefaultTemplateDemotionUnderConcurrency(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/thing")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tpl := &endpoint.ResponseTemplate{
				EndpointID: ep.ID, Name: "t", Default: true,
				StatusCode: 200, ContentType: "application/json", Body: "{}",
			}
			if err := s.CreateTemplate(tpl); err != nil {
				t.Errorf("CreateTemplate() error: %v", err)
			}
		}()
	}
	wg.Wait()

	templates, err := s.ListTemplates(ep.ID)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, tpl := range templates {
		if tpl.Default {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("%d templates flagged default after concurrent creation, want 1", count)
	}
}

func TestSnapshotSkipsInactiveEndpoint(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/users")

	ep.Active = false
	if err := s.UpdateEndpoint(ep); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Snapshot("GET", "/users"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Snapshot() error = %v, want ErrNotFound for inactive endpoint", err)
	}
}

func TestSnapshotCopiesChildren(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/users")
	tpl := &endpoint.ResponseTemplate{EndpointID: ep.ID, Name: "ok", StatusCode: 200, ContentType: "application/json", Body: "{}", Default: true}
	if err := s.CreateTemplate(tpl); err != nil {
		t.Fatal(err)
	}

	snap, err := s.Snapshot("GET", "/users")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Templates) != 1 || snap.Templates[0].Name != "ok" {
		t.Fatalf("snapshot templates = %+v", snap.Templates)
	}

	// Mutating the snapshot must not leak into the store.
	snap.Templates[0].Name = "mutated"
	stored, err := s.GetTemplate(tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Name != "ok" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestSnapshotPreservesCreationOrder(t *testing.T) {
	s := NewMemoryStore()
	ep := mustCreateEndpoint(t, s, "GET", "/users")
	for _, name := range []string{"a", "b", "c"} {
		tpl := &endpoint.ResponseTemplate{EndpointID: ep.ID, Name: name, StatusCode: 200, ContentType: "application/json", Body: "{}"}
		if err := s.CreateTemplate(tpl); err != nil {
			t.Fatal(err)
		}
	}

	snap, err := s.Snapshot("GET", "/users")
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap.Templates[i].Name != want {
			t.Fatalf("template order = %v", snap.Templates)
		}
	}
}

func TestCreateFromImport(t *testing.T) {
	s := NewMemoryStore()
	ep := newEndpoint("POST", "/pets")
	schemas := []*endpoint.SchemaDef{{Name: "request", Default: true}}
	templates := []*endpoint.ResponseTemplate{
		{Name: "201", StatusCode: 201, ContentType: "application/json", Body: "{}", Default: true},
	}

	if err := s.CreateFromImport(ep, schemas, templates); err != nil {
		t.Fatalf("CreateFromImport() error: %v", err)
	}

	snap, err := s.Snapshot("POST", "/pets")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Schemas) != 1 || len(snap.Templates) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Schemas[0].EndpointID != ep.ID {
		t.Error("imported schema not linked to its endpoint")
	}
}

func TestCreateFromImportRouteConflict(t *testing.T) {
	s := NewMemoryStore()
	mustCreateEndpoint(t, s, "POST", "/pets")

	err := s.CreateFromImport(newEndpoint("POST", "/pets"), nil, nil)
	if !errors.Is(err, ErrRouteExists) {
		t.Fatalf("CreateFromImport() error = %v, want ErrRouteExists", err)
	}
}

func TestSchemaForMissingEndpoint(t *testing.T) {
	s := NewMemoryStore()
	err := s.CreateSchema(&endpoint.SchemaDef{EndpointID: "ep-missing", Name: "s"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("CreateSchema() error = %v, want ErrNotFound", err)
	}
}
