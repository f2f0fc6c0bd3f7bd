// Package insomnia converts Insomnia v4 exports into hitdesk collections.
package insomnia

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

var (
	prefixedVarPattern = regexp.MustCompile(`\{\{\s*_\.(\w+)\s*\}\}`)
	spacedVarPattern   = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
)

// Converter converts Insomnia exports to collections.
type Converter struct {
	keepDisabled bool
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithKeepDisabled configures whether disabled headers and params are kept
// as disabled rows instead of being dropped.
func WithKeepDisabled(keep bool) Option {
	return func(c *Converter) {
		c.keepDisabled = keep
	}
}

// NewConverter creates a new Insomnia converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		keepDisabled: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Export represents an Insomnia export file.
type Export struct {
	Type         string     `json:"_type"`
	ExportFormat int        `json:"__export_format"`
	Resources    []Resource `json:"resources"`
}

// Resource represents an Insomnia resource (request, folder, environment, etc).
type Resource struct {
	ID             string         `json:"_id"`
	Type           string         `json:"_type"`
	ParentID       string         `json:"parentId"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Method         string         `json:"method,omitempty"`
	URL            string         `json:"url,omitempty"`
	Headers        []Header       `json:"headers,omitempty"`
	Body           *Body          `json:"body,omitempty"`
	Parameters     []Parameter    `json:"parameters,omitempty"`
	Authentication *Auth          `json:"authentication,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// Header represents an Insomnia header.
type Header struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Body represents an Insomnia request body.
type Body struct {
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// Parameter represents an Insomnia query parameter.
type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Auth represents Insomnia authentication.
type Auth struct {
	Type     string `json:"type"`
	Disabled bool   `json:"disabled,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Token    string `json:"token,omitempty"`
	Key      string `json:"key,omitempty"`
	Value    string `json:"value,omitempty"`
	AddTo    string `json:"addTo,omitempty"` // "header" or "queryParams"
}

// Result is a converted export.
type Result struct {
	Collection *collection.Collection
	// Env holds variables from the export's environments, later ones
	// overriding earlier ones.
	Env []env.EnvVar
}

// ConvertFile converts an Insomnia export file.
func (c *Converter) ConvertFile(path, name string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return c.Convert(data, name)
}

// Convert converts Insomnia export JSON. The collection takes name, or the
// workspace name when name is empty.
func (c *Converter) Convert(data []byte, name string) (*Result, error) {
	var export Export
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to parse Insomnia export: %w", err)
	}

	// Build parent-child relationships
	children := make(map[string][]Resource)
	groups := make(map[string]bool)
	environment := env.NewEnvironment("insomnia")
	var roots []string
	seenRoot := make(map[string]bool)

	for _, res := range export.Resources {
		switch res.Type {
		case "workspace":
			if name == "" {
				name = res.Name
			}
		case "request_group":
			groups[res.ID] = true
			children[res.ParentID] = append(children[res.ParentID], res)
		case "request":
			children[res.ParentID] = append(children[res.ParentID], res)
		case "environment":
			c.addEnvironment(environment, res.Data)
		}
	}
	for _, res := range export.Resources {
		if (res.Type == "request" || res.Type == "request_group") && !groups[res.ParentID] && !seenRoot[res.ParentID] {
			seenRoot[res.ParentID] = true
			roots = append(roots, res.ParentID)
		}
	}

	if name == "" {
		name = "Insomnia Import"
	}
	col := collection.New(name)

	var add func(parentID, folderID string) error
	add = func(parentID, folderID string) error {
		for _, res := range children[parentID] {
			switch res.Type {
			case "request":
				if _, err := col.AddRequest(folderID, res.Name, c.toTemplate(res)); err != nil {
					return err
				}
			case "request_group":
				f, err := col.AddFolder(folderID, res.Name)
				if err != nil {
					return fmt.Errorf("folder %q: %w", res.Name, err)
				}
				if err := add(res.ID, f.ID); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := add(root, ""); err != nil {
			return nil, err
		}
	}

	return &Result{Collection: col, Env: environment.Vars()}, nil
}

func (c *Converter) toTemplate(res Resource) *request.Template {
	t := request.New()

	t.Method = strings.ToUpper(res.Method)
	if t.Method == "" {
		t.Method = request.MethodGet
	}
	t.URL = c.convertVariable(res.URL)

	for _, p := range res.Parameters {
		if p.Disabled && !c.keepDisabled {
			continue
		}
		t.Params = append(t.Params, request.KeyValue{
			Key:     c.convertVariable(p.Name),
			Value:   c.convertVariable(p.Value),
			Enabled: !p.Disabled,
		})
	}

	for _, h := range res.Headers {
		if h.Disabled && !c.keepDisabled {
			continue
		}
		t.Headers = append(t.Headers, request.KeyValue{
			Key:     h.Name,
			Value:   c.convertVariable(h.Value),
			Enabled: !h.Disabled,
		})
	}

	if res.Body != nil && res.Body.Text != "" {
		t.Body = c.convertVariable(res.Body.Text)
		if _, ok := t.Header("Content-Type"); !ok && res.Body.MimeType != "" {
			t.Headers = append(t.Headers, request.KeyValue{Key: "Content-Type", Value: res.Body.MimeType, Enabled: true})
		}
	}

	if res.Authentication != nil && !res.Authentication.Disabled {
		t.Auth = c.convertAuth(res.Authentication)
	}

	return t
}

func (c *Converter) convertAuth(auth *Auth) request.Auth {
	out := request.Auth{Type: request.AuthNone, APILocation: request.LocationHeader}

	switch auth.Type {
	case "basic":
		out.Type = request.AuthBasic
		out.Username = c.convertVariable(auth.Username)
		out.Password = c.convertVariable(auth.Password)
	case "bearer":
		out.Type = request.AuthBearer
		out.Token = c.convertVariable(auth.Token)
	case "apikey":
		out.Type = request.AuthAPIKey
		out.APIKey = c.convertVariable(auth.Key)
		out.APIValue = c.convertVariable(auth.Value)
		if auth.AddTo == "queryParams" {
			out.APILocation = request.LocationQuery
		}
	}
	return out
}

func (c *Converter) addEnvironment(e *env.Environment, data map[string]any) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !env.ValidKey(k) {
			continue
		}
		e.Set(k, c.convertVariable(stringify(data[k])), true)
	}
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

// convertVariable converts Insomnia variable syntax to hitdesk syntax.
// Insomnia uses {{ _.variableName }} or {{ variableName }}
func (c *Converter) convertVariable(s string) string {
	// Convert {{ _.variableName }} to {{variableName}}
	s = prefixedVarPattern.ReplaceAllString(s, "{{$1}}")
	// Convert {{ variableName }} to {{variableName}} (normalize spaces)
	s = spacedVarPattern.ReplaceAllString(s, "{{$1}}")
	return s
}
