// Package openapi converts OpenAPI 3 specifications into hitdesk collections.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/getkin/kin-openapi/openapi3"
)

// BaseURLVar is the variable every imported URL starts with.
const BaseURLVar = "baseUrl"

// DefaultBaseURL is used when the document declares no server.
const DefaultBaseURL = "http://localhost:3000"

var pathParamPattern = regexp.MustCompile(`\{(\w+)\}`)

// Converter converts OpenAPI specs to collections
type Converter struct {
	baseURL     string
	includeTags []string
	excludeTags []string
	includeOnly []string // specific operation IDs
	warnFunc    env.WarnFunc
}

// Option is a functional option for Converter
type Option func(*Converter)

// WithBaseURL sets a custom base URL, overriding the one from spec
func WithBaseURL(url string) Option {
	return func(c *Converter) {
		c.baseURL = url
	}
}

// WithTags filters operations by tags
func WithTags(tags []string) Option {
	return func(c *Converter) {
		c.includeTags = tags
	}
}

// WithExcludeTags excludes operations with these tags
func WithExcludeTags(tags []string) Option {
	return func(c *Converter) {
		c.excludeTags = tags
	}
}

// WithOperations filters to specific operation IDs
func WithOperations(ops []string) Option {
	return func(c *Converter) {
		c.includeOnly = ops
	}
}

// WithWarnFunc receives non-fatal document validation problems.
func WithWarnFunc(fn env.WarnFunc) Option {
	return func(c *Converter) {
		c.warnFunc = fn
	}
}

// NewConverter creates a new OpenAPI converter
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is a converted document.
type Result struct {
	Collection *collection.Collection
	// Env holds the baseUrl variable every request refers to.
	Env []env.EnvVar
}

// ConvertFile loads an OpenAPI document from a file path or URL and converts it.
func (c *Converter) ConvertFile(path, name string) (*Result, error) {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true

	var doc *openapi3.T
	var err error

	// Check if it's a URL or file path
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		u, parseErr := url.Parse(path)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid spec URL: %w", parseErr)
		}
		doc, err = loader.LoadFromURI(u)
		if err != nil {
			// Try loading from URL directly
			doc, err = c.loadFromURL(path)
		}
	} else {
		doc, err = loader.LoadFromFile(path)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	return c.Convert(doc, name)
}

// ConvertData parses an OpenAPI document in JSON or YAML and converts it.
func (c *Converter) ConvertData(data []byte, name string) (*Result, error) {
	doc, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	return c.Convert(doc, name)
}

// loadFromURL loads an OpenAPI spec from a URL
func (c *Converter) loadFromURL(urlStr string) (*openapi3.T, error) {
	resp, err := http.Get(urlStr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch spec: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	loader := openapi3.NewLoader()
	return loader.LoadFromData(data)
}

// Convert converts an OpenAPI document into a collection with one folder per
// tag. Untagged operations sit at the collection root. The collection takes
// name, or the document title when name is empty.
func (c *Converter) Convert(doc *openapi3.T, name string) (*Result, error) {
	if err := doc.Validate(context.Background()); err != nil && c.warnFunc != nil {
		// Some specs have minor validation issues; convert anyway
		c.warnFunc("OpenAPI spec validation: %v", err)
	}

	if name == "" && doc.Info != nil {
		name = doc.Info.Title
	}
	if name == "" {
		name = "OpenAPI Import"
	}
	col := collection.New(name)

	baseURL := c.baseURL
	if baseURL == "" {
		baseURL = c.getBaseURL(doc)
	}

	folders := make(map[string]string) // tag -> folder id

	if doc.Paths == nil {
		return c.result(col, baseURL), nil
	}

	// Get sorted paths for consistent output
	pathMap := doc.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for path := range pathMap {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	// Convert each path/operation
	for _, path := range paths {
		pathItem := pathMap[path]
		if pathItem == nil {
			continue
		}

		operations := []struct {
			method string
			op     *openapi3.Operation
		}{
			{"GET", pathItem.Get},
			{"POST", pathItem.Post},
			{"PUT", pathItem.Put},
			{"PATCH", pathItem.Patch},
			{"DELETE", pathItem.Delete},
			{"HEAD", pathItem.Head},
			{"OPTIONS", pathItem.Options},
		}

		for _, op := range operations {
			if op.op == nil {
				continue
			}

			if !c.shouldInclude(op.op) {
				continue
			}

			folderID := ""
			if len(op.op.Tags) > 0 {
				tag := op.op.Tags[0]
				id, ok := folders[tag]
				if !ok {
					f, err := col.AddFolder("", tag)
					if err != nil {
						return nil, err
					}
					id = f.ID
					folders[tag] = id
				}
				folderID = id
			}

			tmpl := c.convertOperation(doc, path, op.method, op.op, pathItem.Parameters)
			if _, err := col.AddRequest(folderID, operationName(path, op.method, op.op), tmpl); err != nil {
				return nil, err
			}
		}
	}

	return c.result(col, baseURL), nil
}

func (c *Converter) result(col *collection.Collection, baseURL string) *Result {
	return &Result{
		Collection: col,
		Env:        []env.EnvVar{{Key: BaseURLVar, Value: baseURL, Enabled: true}},
	}
}

func (c *Converter) getBaseURL(doc *openapi3.T) string {
	if len(doc.Servers) > 0 && doc.Servers[0].URL != "" {
		return strings.TrimSuffix(doc.Servers[0].URL, "/")
	}
	return DefaultBaseURL
}

func (c *Converter) shouldInclude(op *openapi3.Operation) bool {
	// Check operation ID filter
	if len(c.includeOnly) > 0 && !contains(c.includeOnly, op.OperationID) {
		return false
	}

	// Check tag filters
	if len(c.includeTags) > 0 {
		found := false
		for _, tag := range op.Tags {
			if contains(c.includeTags, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	// Check exclude tags
	for _, tag := range op.Tags {
		if contains(c.excludeTags, tag) {
			return false
		}
	}

	return true
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func operationName(path, method string, op *openapi3.Operation) string {
	if op.Summary != "" {
		return op.Summary
	}
	if op.OperationID != "" {
		return op.OperationID
	}
	return method + " " + path
}

func (c *Converter) convertOperation(doc *openapi3.T, path, method string, op *openapi3.Operation, pathParams openapi3.Parameters) *request.Template {
	t := request.New()
	t.Method = method

	// {id} becomes {{id}}
	t.URL = "{{" + BaseURLVar + "}}" + pathParamPattern.ReplaceAllString(path, "{{$1}}")

	allParams := make(openapi3.Parameters, 0, len(pathParams)+len(op.Parameters))
	allParams = append(allParams, pathParams...)
	allParams = append(allParams, op.Parameters...)

	for _, paramRef := range allParams {
		if paramRef == nil || paramRef.Value == nil {
			continue
		}
		param := paramRef.Value
		row := request.KeyValue{Key: param.Name, Value: c.getParamExample(param), Enabled: param.Required}

		switch param.In {
		case openapi3.ParameterInQuery:
			t.Params = append(t.Params, row)
		case openapi3.ParameterInHeader:
			t.Headers = append(t.Headers, row)
		}
	}

	// Content-Type header and body
	if op.RequestBody != nil && op.RequestBody.Value != nil {
		contentType, body := c.generateRequestBody(op.RequestBody.Value)
		if contentType != "" {
			if _, ok := t.Header("Content-Type"); !ok {
				t.Headers = append(t.Headers, request.KeyValue{Key: "Content-Type", Value: contentType, Enabled: true})
			}
			t.Body = body
		}
	}

	t.Auth = c.convertSecurity(doc, op)
	return t
}

// convertSecurity maps the first supported security scheme that applies to op
// onto auth fields that reference variables.
func (c *Converter) convertSecurity(doc *openapi3.T, op *openapi3.Operation) request.Auth {
	none := request.Auth{Type: request.AuthNone, APILocation: request.LocationHeader}
	if doc.Components == nil || len(doc.Components.SecuritySchemes) == 0 {
		return none
	}

	requirements := doc.Security
	if op.Security != nil {
		requirements = *op.Security
	}

	for _, req := range requirements {
		names := make([]string, 0, len(req))
		for name := range req {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			ref := doc.Components.SecuritySchemes[name]
			if ref == nil || ref.Value == nil {
				continue
			}
			scheme := ref.Value

			switch {
			case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "bearer"):
				return request.Auth{Type: request.AuthBearer, Token: "{{token}}", APILocation: request.LocationHeader}
			case scheme.Type == "http" && strings.EqualFold(scheme.Scheme, "basic"):
				return request.Auth{Type: request.AuthBasic, Username: "{{username}}", Password: "{{password}}", APILocation: request.LocationHeader}
			case scheme.Type == "apiKey" && (scheme.In == "header" || scheme.In == "query"):
				location := request.LocationHeader
				if scheme.In == "query" {
					location = request.LocationQuery
				}
				return request.Auth{Type: request.AuthAPIKey, APIKey: scheme.Name, APIValue: "{{apiKey}}", APILocation: location}
			}
		}
	}
	return none
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	types := schema.Type.Slice()
	if len(types) == 0 {
		return ""
	}
	return types[0]
}

func (c *Converter) getParamExample(param *openapi3.Parameter) string {
	// Try to get example
	if param.Example != nil {
		return fmt.Sprintf("%v", param.Example)
	}

	// Try schema example
	if param.Schema != nil && param.Schema.Value != nil {
		schema := param.Schema.Value
		if schema.Example != nil {
			return fmt.Sprintf("%v", schema.Example)
		}

		// Generate based on type
		switch schemaType(schema) {
		case "integer":
			return "1"
		case "number":
			return "1.0"
		case "boolean":
			return "true"
		case "string":
			switch schema.Format {
			case "date":
				return "2024-01-01"
			case "date-time":
				return "2024-01-01T00:00:00Z"
			case "email":
				return "user@example.com"
			}
		}
	}

	return "{{" + param.Name + "}}"
}

// generateRequestBody returns a content type and example body, preferring JSON.
func (c *Converter) generateRequestBody(reqBody *openapi3.RequestBody) (string, string) {
	contentTypes := make([]string, 0, len(reqBody.Content))
	for ct := range reqBody.Content {
		contentTypes = append(contentTypes, ct)
	}
	sort.Strings(contentTypes)

	for _, contentType := range contentTypes {
		mediaType := reqBody.Content[contentType]
		if strings.Contains(contentType, "json") && mediaType != nil {
			if mediaType.Schema == nil {
				return "application/json", "{}"
			}
			return "application/json", c.generateJSONFromSchema(mediaType.Schema.Value, 0)
		}
	}

	// Try form data
	for _, contentType := range contentTypes {
		mediaType := reqBody.Content[contentType]
		if strings.Contains(contentType, "form") && mediaType != nil && mediaType.Schema != nil {
			return "application/x-www-form-urlencoded", c.generateFormFromSchema(mediaType.Schema.Value)
		}
	}

	return "", ""
}

func (c *Converter) generateJSONFromSchema(schema *openapi3.Schema, depth int) string {
	if schema == nil || depth > 5 {
		return "{}"
	}

	switch schemaType(schema) {
	case "":
		return "{}"

	case "object":
		var sb strings.Builder
		sb.WriteString("{\n")

		props := make([]string, 0, len(schema.Properties))
		for name := range schema.Properties {
			props = append(props, name)
		}
		sort.Strings(props)

		for i, name := range props {
			propSchema := schema.Properties[name]
			indent := strings.Repeat("  ", depth+1)
			sb.WriteString(indent)
			sb.WriteString("\"")
			sb.WriteString(name)
			sb.WriteString("\": ")

			if propSchema != nil && propSchema.Value != nil {
				sb.WriteString(c.generateJSONValue(propSchema.Value, depth+1))
			} else {
				sb.WriteString("null")
			}

			if i < len(props)-1 {
				sb.WriteString(",")
			}
			sb.WriteString("\n")
		}

		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("}")
		return sb.String()

	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			item := c.generateJSONValue(schema.Items.Value, depth+1)
			return "[" + item + "]"
		}
		return "[]"

	default:
		return c.generateJSONValue(schema, depth)
	}
}

func (c *Converter) generateJSONValue(schema *openapi3.Schema, depth int) string {
	if schema == nil {
		return "null"
	}

	// Use example if available
	if schema.Example != nil {
		data, err := json.Marshal(schema.Example)
		if err == nil {
			return string(data)
		}
	}

	switch schemaType(schema) {
	case "string":
		switch schema.Format {
		case "date":
			return "\"2024-01-01\""
		case "date-time":
			return "\"2024-01-01T00:00:00Z\""
		case "email":
			return "\"user@example.com\""
		case "uuid":
			return "\"00000000-0000-0000-0000-000000000000\""
		}
		if len(schema.Enum) > 0 {
			return fmt.Sprintf("\"%v\"", schema.Enum[0])
		}
		return "\"example\""
	case "integer":
		if schema.Min != nil {
			return fmt.Sprintf("%.0f", *schema.Min)
		}
		return "1"
	case "number":
		if schema.Min != nil {
			return fmt.Sprintf("%v", *schema.Min)
		}
		return "1.0"
	case "boolean":
		return "true"
	case "array":
		if schema.Items != nil && schema.Items.Value != nil {
			item := c.generateJSONValue(schema.Items.Value, depth+1)
			return "[" + item + "]"
		}
		return "[]"
	case "object":
		return c.generateJSONFromSchema(schema, depth)
	default:
		return "null"
	}
}

func (c *Converter) generateFormFromSchema(schema *openapi3.Schema) string {
	if schema == nil || len(schema.Properties) == 0 {
		return ""
	}

	var parts []string
	for name, propSchema := range schema.Properties {
		value := "example"
		if propSchema != nil && propSchema.Value != nil {
			if propSchema.Value.Example != nil {
				value = fmt.Sprintf("%v", propSchema.Value.Example)
			}
		}
		parts = append(parts, url.QueryEscape(name)+"="+url.QueryEscape(value))
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}
