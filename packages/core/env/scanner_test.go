package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReferences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"empty", "", nil},
		{"plain text", "https://api.example.com/users", nil},
		{"single braces", "{a} and }b{", nil},
		{"one reference", "{{HOST}}/users", []string{"HOST"}},
		{"ordered with duplicates", "{{B}}{{A}}{{B}}", []string{"B", "A", "B"}},
		{"inner text verbatim", "{{ spaced name }}", []string{" spaced name "}},
		{"first closing terminates", "{{A{{B}}", []string{"A{{B"}},
		{"empty name ignored", "{{}}", nil},
		{"unterminated", "{{OPEN", nil},
		{"dotted name", "{{user.id}}", []string{"user.id"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, References(tt.input))
		})
	}
}

func TestUnresolved(t *testing.T) {
	known := map[string]string{"A": "1"}

	assert.Equal(t, []string{"B"}, Unresolved("{{A}}-{{B}}", known))
	assert.Nil(t, Unresolved("{{A}}", known))
	assert.Nil(t, Unresolved("", known))
	assert.Equal(t, []string{"X", "X"}, Unresolved("{{X}}{{X}}", nil))
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "1-{{B}}", Substitute("{{A}}-{{B}}", map[string]string{"A": "1"}))
	assert.Equal(t, "", Substitute("", map[string]string{"A": "1"}))
	assert.Equal(t, "a=1&b=1", Substitute("a={{A}}&b={{A}}", map[string]string{"A": "1"}))
}
