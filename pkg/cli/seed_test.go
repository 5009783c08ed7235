package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mockwell/mockwell/internal/storage"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleSeed = `endpoints:
  - path: /users
    method: POST
    name: create user
    schemas:
      - name: default
        default: true
        fields:
          - fieldName: email
            fieldType: email
            required: true
          - fieldName: age
            fieldType: int
            minValue: 0
    templates:
      - name: created
        default: true
        statusCode: 201
        contentType: application/json
        body: '{"id":"${mock.uuid}","email":"${request.email}"}'
      - name: boom
        statusCode: 500
        contentType: application/json
        body: '{"error":"simulated error"}'
  - path: /health
    method: GET
    name: health probe
    active: false
    templates:
      - name: ok
        default: true
        statusCode: 200
        contentType: application/json
        body: '{"status":"ok"}'
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeed(t *testing.T) {
	store := storage.NewMemoryStore()
	created, err := LoadSeed(writeSeed(t, sampleSeed), store)
	require.NoError(t, err)
	require.Equal(t, 2, created)

	eps := store.ListEndpoints()
	require.Len(t, eps, 2)
	require.Equal(t, "/users", eps[0].Path)
	require.True(t, eps[0].Active)
	require.False(t, eps[1].Active)

	schemas, err := store.ListSchemas(eps[0].ID)
	require.NoError(t, err)
	require.Len(t, schemas, 1)
	require.Len(t, schemas[0].Fields, 2)
	require.True(t, schemas[0].Default)

	templates, err := store.ListTemplates(eps[0].ID)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	require.Equal(t, "created", templates[0].Name)
	require.Equal(t, 201, templates[0].StatusCode)
}

func TestLoadSeedRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name string
		seed string
	}{
		{
			name: "missing method",
			seed: "endpoints:\n  - path: /a\n    name: a\n",
		},
		{
			name: "broken template body",
			seed: `endpoints:
  - path: /a
    method: GET
    name: a
    templates:
      - name: bad
        statusCode: 200
        contentType: application/json
        body: '{"x":"${mock.sandwich}"}'
`,
		},
		{
			name: "empty file",
			seed: "endpoints: []\n",
		},
		{
			name: "not yaml",
			seed: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			_, err := LoadSeed(writeSeed(t, tt.seed), store)
			require.Error(t, err)
			require.Empty(t, store.ListEndpoints())
		})
	}
}

func TestLoadSeedDuplicateRoute(t *testing.T) {
	seed := `endpoints:
  - path: /a
    method: GET
    name: first
  - path: /a
    method: GET
    name: second
`
	store := storage.NewMemoryStore()
	_, err := LoadSeed(writeSeed(t, seed), store)
	require.ErrorIs(t, err, storage.ErrRouteExists)
}

func TestDumpSeedRoundTrip(t *testing.T) {
	store := storage.NewMemoryStore()
	_, err := LoadSeed(writeSeed(t, sampleSeed), store)
	require.NoError(t, err)

	data, err := DumpSeed(store)
	require.NoError(t, err)

	var out seedFile
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.Len(t, out.Endpoints, 2)
	require.Equal(t, "/users", out.Endpoints[0].Path)
	require.Len(t, out.Endpoints[0].Templates, 2)

	// The dump must load cleanly into a fresh store.
	fresh := storage.NewMemoryStore()
	created, err := LoadSeed(writeSeed(t, string(data)), fresh)
	require.NoError(t, err)
	require.Equal(t, 2, created)
}
