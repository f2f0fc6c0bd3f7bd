package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected []EnvVar
	}{
		{
			name:     "simple key-value",
			content:  "API_KEY=secret123",
			expected: []EnvVar{{Key: "API_KEY", Value: "secret123", Enabled: true}},
		},
		{
			name:    "multiple keys sorted",
			content: "KEY2=value2\nKEY1=value1\nKEY3=value3",
			expected: []EnvVar{
				{Key: "KEY1", Value: "value1", Enabled: true},
				{Key: "KEY2", Value: "value2", Enabled: true},
				{Key: "KEY3", Value: "value3", Enabled: true},
			},
		},
		{
			name:     "double quoted value",
			content:  `API_KEY="secret with spaces"`,
			expected: []EnvVar{{Key: "API_KEY", Value: "secret with spaces", Enabled: true}},
		},
		{
			name:     "single quoted value",
			content:  `API_KEY='secret with spaces'`,
			expected: []EnvVar{{Key: "API_KEY", Value: "secret with spaces", Enabled: true}},
		},
		{
			name:     "comments are skipped",
			content:  "# This is a comment\nAPI_KEY=secret",
			expected: []EnvVar{{Key: "API_KEY", Value: "secret", Enabled: true}},
		},
		{
			name:    "empty lines are skipped",
			content: "KEY1=value1\n\n\nKEY2=value2",
			expected: []EnvVar{
				{Key: "KEY1", Value: "value1", Enabled: true},
				{Key: "KEY2", Value: "value2", Enabled: true},
			},
		},
		{
			name:     "export prefix",
			content:  "export TOKEN=abc",
			expected: []EnvVar{{Key: "TOKEN", Value: "abc", Enabled: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := LoadDotEnv(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	_, err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read env file")
}

func TestParseDotEnv(t *testing.T) {
	vars, err := ParseDotEnv("HOST=localhost\nPORT=8080\n")
	require.NoError(t, err)
	require.Len(t, vars, 2)
	assert.Equal(t, "HOST", vars[0].Key)
	assert.Equal(t, "8080", vars[1].Value)
}
