// Package curl converts curl commands into hitdesk request templates.
package curl

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/collection"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

var (
	urlPathPattern = regexp.MustCompile(`https?://[^/]+(/[^?#]*)?`)
	nonWordPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Converter converts curl commands to request templates.
type Converter struct {
	splitQuery bool
	detectAuth bool
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithSplitQuery configures whether the URL query string becomes param rows.
func WithSplitQuery(split bool) Option {
	return func(c *Converter) {
		c.splitQuery = split
	}
}

// WithAuthDetection configures whether an "Authorization: Bearer" header
// becomes bearer auth instead of a plain header.
func WithAuthDetection(detect bool) Option {
	return func(c *Converter) {
		c.detectAuth = detect
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		splitQuery: true,
		detectAuth: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParsedCurl represents a parsed curl command.
type ParsedCurl struct {
	Method          string
	URL             string
	Headers         []request.KeyValue
	Body            string
	BasicAuth       string
	Insecure        bool
	FollowRedirects bool
	Name            string
}

// Header returns the last value set for key, case-insensitively.
func (p *ParsedCurl) Header(key string) string {
	value := ""
	for _, h := range p.Headers {
		if strings.EqualFold(h.Key, key) {
			value = h.Value
		}
	}
	return value
}

func (p *ParsedCurl) setHeader(key, value string) {
	for i, h := range p.Headers {
		if strings.EqualFold(h.Key, key) {
			p.Headers[i].Value = value
			return
		}
	}
	p.Headers = append(p.Headers, request.KeyValue{Key: key, Value: value, Enabled: true})
}

// ConvertCommand converts a single curl command to a named template.
func (c *Converter) ConvertCommand(curlCmd string) (string, *request.Template, error) {
	parsed, err := c.Parse(curlCmd)
	if err != nil {
		return "", nil, err
	}
	return parsed.Name, c.ToTemplate(parsed), nil
}

// ConvertFile converts a file of curl commands into a collection named name.
func (c *Converter) ConvertFile(path, name string) (*collection.Collection, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var commands []string
	var currentCmd strings.Builder
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Handle line continuations
		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}

		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Handle any remaining command
	if currentCmd.Len() > 0 {
		commands = append(commands, currentCmd.String())
	}

	col := collection.New(name)
	for i, cmd := range commands {
		reqName, tmpl, err := c.ConvertCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		if _, err := col.AddRequest("", reqName, tmpl); err != nil {
			return nil, err
		}
	}

	return col, nil
}

// Parse parses a curl command string into a ParsedCurl struct.
func (c *Converter) Parse(curlCmd string) (*ParsedCurl, error) {
	parsed := &ParsedCurl{
		Method: "GET",
	}

	// Normalize the command
	curlCmd = strings.TrimSpace(curlCmd)

	// Remove "curl" prefix if present
	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	for _, prefix := range []string{"curl ", "curl\t", "curl\\\n", "curl\n"} {
		if strings.HasPrefix(curlCmd, prefix) {
			curlCmd = strings.TrimPrefix(curlCmd, prefix)
			break
		}
	}

	// Tokenize the command respecting quotes
	tokens := tokenize(curlCmd)
	methodSet := false

	i := 0
	for i < len(tokens) {
		token := tokens[i]

		switch {
		case token == "-X" || token == "--request":
			if i+1 < len(tokens) {
				parsed.Method = strings.ToUpper(tokens[i+1])
				methodSet = true
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-H" || token == "--header":
			if i+1 < len(tokens) {
				header := tokens[i+1]
				parts := strings.SplitN(header, ":", 2)
				if len(parts) == 2 {
					key := strings.TrimSpace(parts[0])
					value := strings.TrimSpace(parts[1])
					parsed.setHeader(key, value)
				}
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-d" || token == "--data" || token == "--data-raw" || token == "--data-binary":
			if i+1 < len(tokens) {
				parsed.Body = tokens[i+1]
				// If body is set, default method to POST
				if !methodSet {
					parsed.Method = "POST"
				}
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-u" || token == "--user":
			if i+1 < len(tokens) {
				parsed.BasicAuth = tokens[i+1]
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-k" || token == "--insecure":
			parsed.Insecure = true
			i++

		case token == "-L" || token == "--location":
			parsed.FollowRedirects = true
			i++

		case token == "-A" || token == "--user-agent":
			if i+1 < len(tokens) {
				parsed.setHeader("User-Agent", tokens[i+1])
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-e" || token == "--referer":
			if i+1 < len(tokens) {
				parsed.setHeader("Referer", tokens[i+1])
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "-b" || token == "--cookie":
			if i+1 < len(tokens) {
				parsed.setHeader("Cookie", tokens[i+1])
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case token == "--url":
			if i+1 < len(tokens) {
				parsed.URL = tokens[i+1]
				i += 2
			} else {
				return nil, fmt.Errorf("missing value for %s", token)
			}

		case strings.HasPrefix(token, "-"):
			// Skip unknown flags with potential values
			if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
				i += 2
			} else {
				i++
			}

		default:
			// This should be the URL
			if parsed.URL == "" && isURL(token) {
				parsed.URL = token
			}
			i++
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	// Generate a name from the URL
	parsed.Name = generateName(parsed.URL, parsed.Method)

	return parsed, nil
}

// ToTemplate converts a ParsedCurl to a request template.
func (c *Converter) ToTemplate(parsed *ParsedCurl) *request.Template {
	t := request.New()
	t.Method = parsed.Method
	t.URL = parsed.URL
	t.Body = parsed.Body

	if c.splitQuery {
		t.URL, t.Params = splitQuery(parsed.URL)
	}

	for _, h := range parsed.Headers {
		if c.detectAuth && strings.EqualFold(h.Key, "Authorization") {
			if token, ok := bearerToken(h.Value); ok {
				t.Auth = request.Auth{Type: request.AuthBearer, Token: token, APILocation: request.LocationHeader}
				continue
			}
		}
		t.Headers = append(t.Headers, h)
	}

	// Auth annotation if present
	if parsed.BasicAuth != "" {
		parts := strings.SplitN(parsed.BasicAuth, ":", 2)
		auth := request.Auth{Type: request.AuthBasic, Username: parts[0], APILocation: request.LocationHeader}
		if len(parts) == 2 {
			auth.Password = parts[1]
		}
		t.Auth = auth
	}

	return t
}

func bearerToken(value string) (string, bool) {
	const prefix = "bearer "
	if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
		return strings.TrimSpace(value[len(prefix):]), true
	}
	return "", false
}

// splitQuery moves the query string of rawURL into enabled param rows.
// Placeholders survive since only the query is decoded.
func splitQuery(rawURL string) (string, []request.KeyValue) {
	params := []request.KeyValue{}
	base, query, found := strings.Cut(rawURL, "?")
	if !found {
		return rawURL, params
	}
	query, _, _ = strings.Cut(query, "#")

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		params = append(params, request.KeyValue{Key: key, Value: value, Enabled: true})
	}
	return base, params
}

// tokenize splits a curl command into tokens, respecting quotes.
// Backslashes are literal inside single quotes, and a backslash-newline
// outside quotes is a line continuation.
func tokenize(cmd string) []string {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			escaped = false
			if r == '\n' {
				continue
			}
			current.WriteRune(r)
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n', '\r':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if current.Len() > 0 {
				tokens = append(tokens, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if current.Len() > 0 {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "{{")
}

// generateName generates a request name from the URL and method.
func generateName(url, method string) string {
	// Extract the path from the URL
	matches := urlPathPattern.FindStringSubmatch(url)

	path := "/"
	if len(matches) > 1 && matches[1] != "" {
		path = matches[1]
	}

	// Clean up the path for a name
	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}

	return sanitizeName(strings.ToLower(method) + "_" + path)
}

// sanitizeName sanitizes a name for use as an identifier.
func sanitizeName(name string) string {
	// Replace non-alphanumeric characters with underscores
	result := nonWordPattern.ReplaceAllString(name, "_")

	// Remove leading/trailing underscores
	return strings.Trim(result, "_")
}
