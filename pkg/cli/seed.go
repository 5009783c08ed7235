package cli

import (
	"fmt"
	"os"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/mockwell/mockwell/pkg/endpoint"
	"github.com/mockwell/mockwell/pkg/template"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML document loaded at startup. IDs and timestamps are
// assigned by the store, so the seed format carries none.
type seedFile struct {
	Endpoints []seedEndpoint `yaml:"endpoints"`
}

type seedEndpoint struct {
	Path        string         `yaml:"path"`
	Method      string         `yaml:"method"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Active      *bool          `yaml:"active,omitempty"`
	Schemas     []seedSchema   `yaml:"schemas,omitempty"`
	Templates   []seedTemplate `yaml:"templates,omitempty"`
}

type seedSchema struct {
	Name    string                     `yaml:"name"`
	Default bool                       `yaml:"default,omitempty"`
	Fields  []endpoint.FieldValidation `yaml:"fields,omitempty"`
}

type seedTemplate struct {
	Name        string `yaml:"name"`
	Default     bool   `yaml:"default,omitempty"`
	StatusCode  int    `yaml:"statusCode"`
	ContentType string `yaml:"contentType"`
	Body        string `yaml:"body"`
}

// LoadSeed reads a YAML seed file and persists its endpoints into the store.
// Returns the number of endpoints created. The file is rejected as a whole on
// the first invalid record or template body.
func LoadSeed(path string, store storage.Store) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(seed.Endpoints) == 0 {
		return 0, fmt.Errorf("%s: no endpoints defined", path)
	}

	for i, se := range seed.Endpoints {
		ep, schemas, templates, err := se.records()
		if err != nil {
			return 0, fmt.Errorf("endpoint %d (%s %s): %w", i, se.Method, se.Path, err)
		}
		if err := store.CreateFromImport(ep, schemas, templates); err != nil {
			return 0, fmt.Errorf("endpoint %d (%s %s): %w", i, se.Method, se.Path, err)
		}
	}
	return len(seed.Endpoints), nil
}

// records converts one seed entry into validated store records.
func (se *seedEndpoint) records() (*endpoint.Endpoint, []*endpoint.SchemaDef, []*endpoint.ResponseTemplate, error) {
	active := true
	if se.Active != nil {
		active = *se.Active
	}
	ep := &endpoint.Endpoint{
		Path:        se.Path,
		Method:      se.Method,
		Name:        se.Name,
		Description: se.Description,
		Active:      active,
	}
	if err := ep.Validate(); err != nil {
		return nil, nil, nil, err
	}

	schemas := make([]*endpoint.SchemaDef, 0, len(se.Schemas))
	for _, ss := range se.Schemas {
		sd := &endpoint.SchemaDef{
			Name:    ss.Name,
			Default: ss.Default,
			Fields:  ss.Fields,
		}
		if err := sd.Validate(); err != nil {
			return nil, nil, nil, err
		}
		schemas = append(schemas, sd)
	}

	templates := make([]*endpoint.ResponseTemplate, 0, len(se.Templates))
	for _, st := range se.Templates {
		rt := &endpoint.ResponseTemplate{
			Name:        st.Name,
			Default:     st.Default,
			StatusCode:  st.StatusCode,
			ContentType: st.ContentType,
			Body:        st.Body,
		}
		if err := rt.Validate(); err != nil {
			return nil, nil, nil, err
		}
		if _, err := template.Check(rt.Body, rt.IsJSON()); err != nil {
			return nil, nil, nil, fmt.Errorf("template %q: %w", rt.Name, err)
		}
		templates = append(templates, rt)
	}

	return ep, schemas, templates, nil
}

// DumpSeed renders the store's current endpoints back into the seed format.
func DumpSeed(store storage.Store) ([]byte, error) {
	var seed seedFile
	for _, ep := range store.ListEndpoints() {
		se := seedEndpoint{
			Path:        ep.Path,
			Method:      ep.Method,
			Name:        ep.Name,
			Description: ep.Description,
		}
		if !ep.Active {
			inactive := false
			se.Active = &inactive
		}

		schemas, err := store.ListSchemas(ep.ID)
		if err != nil {
			return nil, err
		}
		for _, sd := range schemas {
			se.Schemas = append(se.Schemas, seedSchema{
				Name:    sd.Name,
				Default: sd.Default,
				Fields:  sd.Fields,
			})
		}

		templates, err := store.ListTemplates(ep.ID)
		if err != nil {
			return nil, err
		}
		for _, rt := range templates {
			se.Templates = append(se.Templates, seedTemplate{
				Name:        rt.Name,
				Default:     rt.Default,
				StatusCode:  rt.StatusCode,
				ContentType: rt.ContentType,
				Body:        rt.Body,
			})
		}

		seed.Endpoints = append(seed.Endpoints, se)
	}
	return yaml.Marshal(&seed)
}
