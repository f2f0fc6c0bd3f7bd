package request

import "strings"

// HTTP methods offered by the request editor. Other methods are carried verbatim.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodHead    = "HEAD"
	MethodOptions = "OPTIONS"
)

// Methods lists the methods in the order the editor presents them.
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodHead, MethodOptions}

// AuthType identifies the Auth variant.
type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "apikey"
	AuthBasic  AuthType = "basic"
)

// APIKeyLocation says where the transport places an API key.
type APIKeyLocation string

const (
	LocationHeader APIKeyLocation = "header"
	LocationQuery  APIKeyLocation = "query"
)

// KeyValue is a param or header row.
type KeyValue struct {
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Auth is a tagged variant; only the fields of Type are meaningful.
type Auth struct {
	Type        AuthType       `json:"type" yaml:"type"`
	Token       string         `json:"token,omitempty" yaml:"token,omitempty"`
	APIKey      string         `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	APIValue    string         `json:"apiValue,omitempty" yaml:"apiValue,omitempty"`
	APILocation APIKeyLocation `json:"apiLocation,omitempty" yaml:"apiLocation,omitempty"`
	Username    string         `json:"username,omitempty" yaml:"username,omitempty"`
	Password    string         `json:"password,omitempty" yaml:"password,omitempty"`
}

// Kind returns the normalized variant. Empty and unknown types are AuthNone.
func (a Auth) Kind() AuthType {
	switch AuthType(strings.ToLower(string(a.Type))) {
	case AuthBearer:
		return AuthBearer
	case AuthAPIKey:
		return AuthAPIKey
	case AuthBasic:
		return AuthBasic
	default:
		return AuthNone
	}
}

// Location returns the API key placement, defaulting to the header.
func (a Auth) Location() APIKeyLocation {
	if a.APILocation == LocationQuery {
		return LocationQuery
	}
	return LocationHeader
}

// AuthField is one string leaf of an Auth variant.
type AuthField struct {
	Name  string
	Value *string
}

// Fields returns the string leaves belonging to the active variant, in a
// stable order. Writing through Value mutates a.
func (a *Auth) Fields() []AuthField {
	switch a.Kind() {
	case AuthBearer:
		return []AuthField{{"token", &a.Token}}
	case AuthAPIKey:
		return []AuthField{{"apiKey", &a.APIKey}, {"apiValue", &a.APIValue}}
	case AuthBasic:
		return []AuthField{{"username", &a.Username}, {"password", &a.Password}}
	default:
		return nil
	}
}

// Template is a request definition that may contain {{VAR}} placeholders.
type Template struct {
	Method  string     `json:"method" yaml:"method"`
	URL     string     `json:"url" yaml:"url"`
	Params  []KeyValue `json:"params" yaml:"params"`
	Headers []KeyValue `json:"headers" yaml:"headers"`
	Body    string     `json:"body" yaml:"body"`
	Auth    Auth       `json:"auth" yaml:"auth"`
}

// New returns an empty GET template with no auth.
func New() *Template {
	return &Template{
		Method:  MethodGet,
		Params:  []KeyValue{},
		Headers: []KeyValue{},
		Auth:    Auth{Type: AuthNone, APILocation: LocationHeader},
	}
}

// Clone returns a deep copy of t.
func (t *Template) Clone() *Template {
	c := *t
	c.Params = append([]KeyValue(nil), t.Params...)
	c.Headers = append([]KeyValue(nil), t.Headers...)
	return &c
}

// NormalizedMethod returns the upper-cased method, GET when empty.
func (t *Template) NormalizedMethod() string {
	m := strings.ToUpper(strings.TrimSpace(t.Method))
	if m == "" {
		return MethodGet
	}
	return m
}

// EnabledParams returns the params that take part in the request.
func (t *Template) EnabledParams() []KeyValue {
	return enabled(t.Params)
}

// EnabledHeaders returns the headers that take part in the request.
func (t *Template) EnabledHeaders() []KeyValue {
	return enabled(t.Headers)
}

// Header returns the value of the first enabled header whose key matches
// name case-insensitively.
func (t *Template) Header(name string) (string, bool) {
	for _, h := range t.Headers {
		if h.Enabled && strings.EqualFold(strings.TrimSpace(h.Key), name) {
			return h.Value, true
		}
	}
	return "", false
}

// MethodSendsBody reports whether the transport attaches a body for method.
// GET and DELETE bodies are ignored.
func MethodSendsBody(method string) bool {
	switch strings.ToUpper(method) {
	case MethodGet, MethodDelete:
		return false
	default:
		return true
	}
}

func enabled(rows []KeyValue) []KeyValue {
	out := make([]KeyValue, 0, len(rows))
	for _, kv := range rows {
		if kv.Enabled {
			out = append(out, kv)
		}
	}
	return out
}
