package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("API_URL"))
	assert.True(t, ValidKey("_private"))
	assert.True(t, ValidKey("token2"))
	assert.False(t, ValidKey(""))
	assert.False(t, ValidKey("2FA"))
	assert.False(t, ValidKey("api-key"))
	assert.False(t, ValidKey("has space"))
}

func TestEnvironmentSetReplacesDuplicateKey(t *testing.T) {
	e := NewEnvironment("dev",
		EnvVar{Key: "A", Value: "1", Enabled: true},
		EnvVar{Key: "B", Value: "2", Enabled: true},
		EnvVar{Key: "A", Value: "3", Enabled: false},
	)

	require.Equal(t, 2, e.Len())
	v, ok := e.Get("A")
	require.True(t, ok)
	assert.Equal(t, "3", v.Value)
	assert.False(t, v.Enabled)
	assert.Equal(t, "A", e.Vars()[0].Key)
}

func TestEnvironmentValuesOnlyEnabled(t *testing.T) {
	e := NewEnvironment("dev",
		EnvVar{Key: "A", Value: "1", Enabled: true},
		EnvVar{Key: "B", Value: "2", Enabled: false},
	)

	assert.Equal(t, map[string]string{"A": "1"}, e.Values())
	assert.Equal(t, []string{"A"}, e.Keys())

	require.True(t, e.SetEnabled("B", true))
	assert.Equal(t, []string{"A", "B"}, e.Keys())
	assert.False(t, e.SetEnabled("missing", true))
}

func TestEnvironmentDeleteAndRename(t *testing.T) {
	e := NewEnvironment("dev",
		EnvVar{Key: "A", Value: "1", Enabled: true},
		EnvVar{Key: "B", Value: "2", Enabled: true},
	)

	require.NoError(t, e.Rename("A", "HOST"))
	v, ok := e.Get("HOST")
	require.True(t, ok)
	assert.Equal(t, "1", v.Value)

	assert.Error(t, e.Rename("HOST", "B"))
	assert.Error(t, e.Rename("HOST", "bad-key"))
	assert.Error(t, e.Rename("missing", "C"))

	assert.True(t, e.Delete("B"))
	assert.False(t, e.Delete("B"))
	assert.Equal(t, 1, e.Len())
}
