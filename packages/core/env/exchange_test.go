package env

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	e := NewEnvironment("dev", EnvVar{Key: "HOST", Value: "localhost", Enabled: true})
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := Export(e, now)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0", doc.Version)
	assert.Equal(t, "2026-01-02T03:04:05Z", doc.ExportedAt)
	assert.Equal(t, []EnvVar{{Key: "HOST", Value: "localhost", Enabled: true}}, doc.Env)
}

func TestExportEmptyEnvironment(t *testing.T) {
	data, err := Export(NewEnvironment("empty"), time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"env": []`)
}

func TestImportDocument(t *testing.T) {
	e := NewEnvironment("dev")
	data := []byte(`{"version":"1.0","exportedAt":"x","env":[
		{"key":"HOST","value":"localhost","enabled":true},
		{"key":"TOKEN","value":"t","enabled":false},
		{"key":"EMPTY"}
	]}`)

	result, err := Import(data, e, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Added)

	v, _ := e.Get("TOKEN")
	assert.False(t, v.Enabled)
	v, _ = e.Get("EMPTY")
	assert.True(t, v.Enabled)
	assert.Equal(t, "", v.Value)
}

func TestImportBareArray(t *testing.T) {
	e := NewEnvironment("dev")
	result, err := Import([]byte(`[{"key":"A","value":"1"}]`), e, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
}

func TestImportConflicts(t *testing.T) {
	e := NewEnvironment("dev",
		EnvVar{Key: "A", Value: "old", Enabled: true},
		EnvVar{Key: "B", Value: "old", Enabled: true},
	)
	data := []byte(`[{"key":"A","value":"new"},{"key":"B","value":"new"},{"key":"C","value":"new"}]`)

	result, err := Import(data, e, func(existing, incoming EnvVar) bool {
		return existing.Key == "A"
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Overwritten)
	assert.Equal(t, 1, result.Skipped)

	a, _ := e.Get("A")
	b, _ := e.Get("B")
	assert.Equal(t, "new", a.Value)
	assert.Equal(t, "old", b.Value)
}

func TestImportNilConflictSkips(t *testing.T) {
	e := NewEnvironment("dev", EnvVar{Key: "A", Value: "old", Enabled: true})
	result, err := Import([]byte(`[{"key":"A","value":"new"}]`), e, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
}

func TestImportInvalid(t *testing.T) {
	e := NewEnvironment("dev")

	_, err := Import([]byte(`{not json`), e, nil)
	assert.Error(t, err)

	_, err = Import([]byte(`{"env":"nope"}`), e, nil)
	assert.Error(t, err)

	_, err = Import([]byte(`"text"`), e, nil)
	assert.Error(t, err)
}
