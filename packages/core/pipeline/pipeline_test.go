package pipeline

import (
	"errors"
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(tmpl *request.Template, vars ...env.EnvVar) *AppState {
	return &AppState{Request: tmpl, Env: env.NewEnvironment("test", vars...)}
}

func TestResolve_PartialSubstitution(t *testing.T) {
	r := env.NewResolver()
	r.SetVariable("A", "1")

	out := Resolve(&request.Template{Method: "GET", URL: "{{A}}-{{B}}"}, r)
	assert.Equal(t, "1-{{B}}", out.URL)
}

func TestResolve_AllFields(t *testing.T) {
	r := env.NewResolver()
	r.SetVariables(map[string]string{
		"HOST": "api.example.com", "Q": "search", "V": "go", "H": "X-Env", "ENV": "dev",
		"NAME": "John", "TOKEN": "secret",
	})

	tmpl := &request.Template{
		Method:  "POST",
		URL:     "https://{{HOST}}/users",
		Params:  []request.KeyValue{{Key: "{{Q}}", Value: "{{V}}", Enabled: true}},
		Headers: []request.KeyValue{{Key: "{{H}}", Value: "{{ENV}}", Enabled: true}},
		Body:    `{"name":"{{NAME}}"}`,
		Auth:    request.Auth{Type: request.AuthBearer, Token: "{{TOKEN}}"},
	}

	out := Resolve(tmpl, r)
	assert.Equal(t, "https://api.example.com/users", out.URL)
	assert.Equal(t, []request.KeyValue{{Key: "search", Value: "go", Enabled: true}}, out.Params)
	assert.Equal(t, []request.KeyValue{{Key: "X-Env", Value: "dev", Enabled: true}}, out.Headers)
	assert.Equal(t, `{"name":"John"}`, out.Body)
	assert.Equal(t, "secret", out.Auth.Token)

	assert.Equal(t, "{{TOKEN}}", tmpl.Auth.Token, "template must not be mutated")
}

func TestResolve_AuthVariants(t *testing.T) {
	r := env.NewResolver()
	r.SetVariables(map[string]string{"K": "X-Api-Key", "V": "abc", "U": "admin", "P": "pw"})

	apikey := Resolve(&request.Template{Auth: request.Auth{
		Type: request.AuthAPIKey, APIKey: "{{K}}", APIValue: "{{V}}", APILocation: request.LocationQuery,
	}}, r)
	assert.Equal(t, "X-Api-Key", apikey.Auth.APIKey)
	assert.Equal(t, "abc", apikey.Auth.APIValue)
	assert.Equal(t, request.LocationQuery, apikey.Auth.APILocation)

	basic := Resolve(&request.Template{Auth: request.Auth{
		Type: request.AuthBasic, Username: "{{U}}", Password: "{{P}}",
	}}, r)
	assert.Equal(t, "admin", basic.Auth.Username)
	assert.Equal(t, "pw", basic.Auth.Password)
}

func TestResolve_DropsDisabledRows(t *testing.T) {
	tmpl := &request.Template{
		Method: "GET",
		URL:    "http://x",
		Params: []request.KeyValue{
			{Key: "a", Value: "1", Enabled: false},
			{Key: "b", Value: "2", Enabled: true},
		},
		Headers: []request.KeyValue{{Key: "X-Off", Value: "1", Enabled: false}},
	}

	out := Resolve(tmpl, env.NewResolver())
	assert.Equal(t, []request.KeyValue{{Key: "b", Value: "2", Enabled: true}}, out.Params)
	assert.Empty(t, out.Headers)
}

func TestResolve_NoReferencesRoundTrip(t *testing.T) {
	tmpl := &request.Template{
		Method: "PUT",
		URL:    "https://api.example.com/users/1",
		Params: []request.KeyValue{
			{Key: "verbose", Value: "true", Enabled: true},
			{Key: "skip", Value: "x", Enabled: false},
		},
		Headers: []request.KeyValue{{Key: "Content-Type", Value: "application/json", Enabled: true}},
		Body:    `{"name":"Jane"}`,
		Auth:    request.Auth{Type: request.AuthBasic, Username: "u", Password: "p"},
	}

	expected := tmpl.Clone()
	expected.Params = expected.Params[:1]

	out := Resolve(tmpl, env.NewResolver())
	assert.Equal(t, expected, out)
}

func TestPrepare_Success(t *testing.T) {
	state := newState(&request.Template{
		Method: "GET",
		URL:    "{{A}}-{{B}}",
	}, env.EnvVar{Key: "A", Value: "1", Enabled: true})

	prepared, err := Prepare(state)
	require.NoError(t, err)
	assert.Equal(t, "1-{{B}}", prepared.Request.URL)
	require.Len(t, prepared.Warnings, 1)
	assert.Equal(t, "B", prepared.Warnings[0].Variable)
}

func TestPrepare_DisabledVarsDoNotResolve(t *testing.T) {
	state := newState(&request.Template{Method: "GET", URL: "http://{{HOST}}"},
		env.EnvVar{Key: "HOST", Value: "example.com", Enabled: false})

	prepared, err := Prepare(state)
	require.NoError(t, err)
	assert.Equal(t, "http://{{HOST}}", prepared.Request.URL)
}

func TestPrepare_ValidationBlocks(t *testing.T) {
	state := newState(&request.Template{Method: "GET", URL: "   "})

	_, err := Prepare(state)
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.EmptyURL)

	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Issues, 1)
}

func TestPrepare_StrictPolicy(t *testing.T) {
	state := newState(&request.Template{Method: "GET", URL: "http://{{HOST}}"})
	state.Policy = validate.Strict

	_, err := Prepare(state)
	assert.ErrorIs(t, err, validate.UnresolvedVariable)
}

func TestPrepare_WarnFunc(t *testing.T) {
	var warnings []string
	p := New(WithWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}))

	state := newState(&request.Template{Method: "GET", URL: "http://{{HOST}}/{{ID}}"})
	_, err := p.Prepare(state)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"unresolved variable: HOST (url)",
		"unresolved variable: ID (url)",
	}, warnings)
}

func TestPrepare_ExtraRules(t *testing.T) {
	httpsOnly := func(t *request.Template) []validate.Issue {
		if len(t.URL) < 8 || t.URL[:8] != "https://" {
			return []validate.Issue{{Code: "InsecureUrl", Message: "https required"}}
		}
		return nil
	}

	p := New(WithRules(httpsOnly))
	_, err := p.Prepare(newState(&request.Template{Method: "GET", URL: "http://x"}))
	assert.Error(t, err)

	_, err = p.Prepare(newState(&request.Template{Method: "GET", URL: "https://x"}))
	assert.NoError(t, err)
}

func TestPrepare_NoRequest(t *testing.T) {
	_, err := Prepare(&AppState{})
	assert.ErrorIs(t, err, ErrNoRequest)

	_, err = Prepare(nil)
	assert.ErrorIs(t, err, ErrNoRequest)
}

func TestNewAppState(t *testing.T) {
	state := NewAppState()
	assert.Equal(t, "GET", state.Request.Method)
	assert.Equal(t, validate.Lenient, state.Policy)
	assert.Equal(t, 0, state.Env.Len())
}
