package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://api.example.com/v1/users/123", ".../users/123"},
		{"https://api.example.com/users/123", "/users/123"},
		{"https://api.example.com/users", "/users"},
		{"https://api.example.com", "api.example.com"},
		{"https://api.example.com/", "api.example.com"},
		{"{{BASE_URL}}/users", "Request"},
		{"not a url", "Request"},
		{"mailto:someone@example.com", "Request"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, Endpoint(tt.url))
		})
	}
}

func TestDefaultName(t *testing.T) {
	tmpl := request.New()
	tmpl.Method = "POST"
	tmpl.URL = "https://api.example.com/v2/orders/42/items"

	assert.Equal(t, "POST .../42/items", DefaultName(tmpl))
}

func sample() *request.Template {
	tmpl := request.New()
	tmpl.Method = "PUT"
	tmpl.URL = "https://api.example.com/users/1"
	tmpl.Headers = []request.KeyValue{{Key: "Content-Type", Value: "application/json", Enabled: true}}
	tmpl.Params = []request.KeyValue{{Key: "dry", Value: "1", Enabled: false}}
	tmpl.Body = `{"name":"{{NAME}}"}`
	tmpl.Auth = request.Auth{Type: request.AuthBearer, Token: "{{TOKEN}}", APILocation: request.LocationHeader}
	return tmpl
}

func TestSaveLoad_ByExtension(t *testing.T) {
	for _, name := range []string{"req.json", "req.yaml", "req.yml", "req.hit"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Save(path, sample()))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "PUT /users/1", loaded.Name)
			assert.Equal(t, *sample(), loaded.Request)
		})
	}
}

func TestSave_YAMLIsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.yaml")
	require.NoError(t, Save(path, sample()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: PUT /users/1")
	assert.Contains(t, string(data), "method: PUT")
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{nope`), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse bad.json")
}

func TestLoad_DefaultsAuthType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","request":{"method":"GET","url":"https://a.test"}}`), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, request.AuthNone, loaded.Request.Auth.Type)
}
