package collection

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// DocumentVersion is written into every export document.
const DocumentVersion = "1.0"

// Document is the export format shared between machines.
type Document struct {
	Version     string       `json:"version"`
	ExportedAt  string       `json:"exportedAt"`
	Collections []Collection `json:"collections"`
}

const documentSchema = `{
  "type": "object",
  "required": ["collections"],
  "properties": {
    "version": {"type": "string"},
    "exportedAt": {"type": "string"},
    "collections": {"type": "array", "items": {"$ref": "#/definitions/folder"}}
  },
  "definitions": {
    "folder": {
      "type": "object",
      "required": ["name"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "requests": {"type": ["array", "null"], "items": {"$ref": "#/definitions/savedRequest"}},
        "folders": {"type": ["array", "null"], "items": {"$ref": "#/definitions/folder"}}
      }
    },
    "savedRequest": {
      "type": "object",
      "required": ["name", "request"],
      "properties": {
        "id": {"type": "string"},
        "name": {"type": "string"},
        "request": {"$ref": "#/definitions/template"}
      }
    },
    "template": {
      "type": "object",
      "required": ["url"],
      "properties": {
        "method": {"type": "string"},
        "url": {"type": "string"},
        "params": {"$ref": "#/definitions/rows"},
        "headers": {"$ref": "#/definitions/rows"},
        "body": {"type": "string"},
        "auth": {
          "type": "object",
          "properties": {
            "type": {"type": "string"},
            "apiLocation": {"enum": ["header", "query", ""]}
          }
        }
      }
    },
    "rows": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["key"],
        "properties": {
          "key": {"type": "string"},
          "value": {"type": "string"},
          "enabled": {"type": "boolean"}
        }
      }
    }
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Export renders cols as an indented export document stamped with now.
func Export(cols []Collection, now time.Time) ([]byte, error) {
	if cols == nil {
		cols = []Collection{}
	}
	doc := Document{
		Version:     DocumentVersion,
		ExportedAt:  now.UTC().Format(time.RFC3339),
		Collections: cols,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import validates data against the document schema and returns its
// collections. Missing ids are assigned and nesting is bounded by MaxDepth.
func Import(data []byte) ([]Collection, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid collection document: %w", err)
	}
	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return nil, fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid collection document: %w", err)
	}
	for i := range doc.Collections {
		if err := doc.Collections[i].CheckDepth(); err != nil {
			return nil, fmt.Errorf("collection %q: %w", doc.Collections[i].Name, err)
		}
		normalize(&doc.Collections[i])
	}
	return doc.Collections, nil
}
