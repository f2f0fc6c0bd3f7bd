package env

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// DocumentVersion is written into exported environment documents.
const DocumentVersion = "1.0"

// Document is the environment export format.
type Document struct {
	Version    string   `json:"version"`
	ExportedAt string   `json:"exportedAt"`
	Env        []EnvVar `json:"env"`
}

// ConflictFunc decides whether an imported variable overwrites an existing one.
type ConflictFunc func(existing, incoming EnvVar) bool

// ImportResult summarizes an import.
type ImportResult struct {
	Added       int
	Overwritten int
	Skipped     int
}

// Export renders e as an indented export document.
func Export(e *Environment, now time.Time) ([]byte, error) {
	doc := Document{
		Version:    DocumentVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Env:        e.Vars(),
	}
	if doc.Env == nil {
		doc.Env = []EnvVar{}
	}
	return json.MarshalIndent(doc, "", "  ")
}

type importItem struct {
	Key     string  `json:"key"`
	Value   *string `json:"value"`
	Enabled *bool   `json:"enabled"`
}

// Import merges an export document, or a bare array of variables, into e.
// Missing values import as empty and a missing enabled flag means enabled.
// When a key already exists, conflict decides; a nil conflict skips.
func Import(data []byte, e *Environment, conflict ConflictFunc) (*ImportResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid environment document: malformed JSON")
	}

	parsed := gjson.ParseBytes(data)
	items := parsed
	if parsed.IsObject() {
		items = parsed.Get("env")
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("invalid environment document: expected an env array")
	}

	var rows []importItem
	if err := json.Unmarshal([]byte(items.Raw), &rows); err != nil {
		return nil, fmt.Errorf("invalid environment document: %w", err)
	}

	result := &ImportResult{}
	for _, row := range rows {
		if row.Key == "" {
			result.Skipped++
			continue
		}
		incoming := EnvVar{Key: row.Key, Enabled: true}
		if row.Value != nil {
			incoming.Value = *row.Value
		}
		if row.Enabled != nil {
			incoming.Enabled = *row.Enabled
		}

		if existing, ok := e.Get(row.Key); ok {
			if conflict == nil || !conflict(existing, incoming) {
				result.Skipped++
				continue
			}
			e.Set(incoming.Key, incoming.Value, incoming.Enabled)
			result.Overwritten++
			continue
		}
		e.Set(incoming.Key, incoming.Value, incoming.Enabled)
		result.Added++
	}
	return result, nil
}
