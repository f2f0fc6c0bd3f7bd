// Package workspace saves single requests to files and loads them back.
// Files ending in .yaml or .yml are YAML; anything else is JSON.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"gopkg.in/yaml.v3"
)

// RequestFile is the on-disk shape of a saved request.
type RequestFile struct {
	Name    string           `json:"name" yaml:"name"`
	Request request.Template `json:"request" yaml:"request"`
}

// NewRequestFile wraps t with its default name.
func NewRequestFile(t *request.Template) *RequestFile {
	return &RequestFile{Name: DefaultName(t), Request: *t.Clone()}
}

// DefaultName names a request "METHOD endpoint".
func DefaultName(t *request.Template) string {
	return t.Method + " " + Endpoint(t.URL)
}

// Endpoint shortens a URL for display: ".../a/b" for the last two of three
// or more path segments, the path when shorter, the host when there is no
// path, and "Request" when the URL is not absolute.
func Endpoint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Opaque != "" {
		return "Request"
	}

	if len(u.Path) > 1 {
		var segments []string
		for _, s := range strings.Split(u.Path, "/") {
			if s != "" {
				segments = append(segments, s)
			}
		}
		if len(segments) > 2 {
			return ".../" + segments[len(segments)-2] + "/" + segments[len(segments)-1]
		}
		return u.Path
	}

	if host := u.Hostname(); host != "" {
		return host
	}
	return "Request"
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// Marshal encodes f in the format path's extension selects.
func Marshal(path string, f *RequestFile) ([]byte, error) {
	if isYAML(path) {
		return yaml.Marshal(f)
	}
	return json.MarshalIndent(f, "", "  ")
}

// Save writes t to path under its default name.
func Save(path string, t *request.Template) error {
	return SaveFile(path, NewRequestFile(t))
}

// SaveFile writes f to path.
func SaveFile(path string, f *RequestFile) error {
	data, err := Marshal(path, f)
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a request file.
func Load(path string) (*RequestFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f := &RequestFile{}
	if isYAML(path) {
		err = yaml.Unmarshal(data, f)
	} else {
		err = json.Unmarshal(data, f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if f.Request.Auth.Type == "" {
		f.Request.Auth.Type = request.AuthNone
	}
	return f, nil
}
