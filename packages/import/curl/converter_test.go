package curl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
)

func TestParse_SimpleGet(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Method != "GET" {
		t.Errorf("expected method GET, got %s", parsed.Method)
	}
	if parsed.URL != "https://api.example.com/users" {
		t.Errorf("expected URL https://api.example.com/users, got %s", parsed.URL)
	}
}

func TestParse_PostWithData(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl -X POST https://api.example.com/users -d '{"name":"John"}'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Method != "POST" {
		t.Errorf("expected method POST, got %s", parsed.Method)
	}
	if parsed.Body != `{"name":"John"}` {
		t.Errorf("expected body {\"name\":\"John\"}, got %s", parsed.Body)
	}
}

func TestParse_WithHeaders(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl -H "Content-Type: application/json" -H "Authorization: Bearer token123" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Header("content-type") != "application/json" {
		t.Errorf("expected Content-Type: application/json, got %s", parsed.Header("Content-Type"))
	}
	if parsed.Header("Authorization") != "Bearer token123" {
		t.Errorf("expected Authorization: Bearer token123, got %s", parsed.Header("Authorization"))
	}
	if len(parsed.Headers) != 2 || parsed.Headers[0].Key != "Content-Type" {
		t.Errorf("expected headers in command order, got %+v", parsed.Headers)
	}
}

func TestParse_WithBasicAuth(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl -u admin:password123 https://api.example.com/admin`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.BasicAuth != "admin:password123" {
		t.Errorf("expected basicAuth admin:password123, got %s", parsed.BasicAuth)
	}
}

func TestParse_ImplicitPost(t *testing.T) {
	converter := NewConverter()

	// Without -X, -d should imply POST
	parsed, err := converter.Parse(`curl -d "name=John" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.Method != "POST" {
		t.Errorf("expected implicit POST method, got %s", parsed.Method)
	}

	// An explicit GET survives a later -d
	parsed, err = converter.Parse(`curl -X GET -d "q=1" https://api.example.com/search`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Method != "GET" {
		t.Errorf("expected explicit GET to be kept, got %s", parsed.Method)
	}
}

func TestParse_Flags(t *testing.T) {
	converter := NewConverter()

	parsed, err := converter.Parse(`curl -k -L https://api.example.com`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !parsed.Insecure {
		t.Error("expected Insecure to be true")
	}
	if !parsed.FollowRedirects {
		t.Error("expected FollowRedirects to be true")
	}
}

func TestParse_Errors(t *testing.T) {
	converter := NewConverter()

	for _, cmd := range []string{"curl", "curl -X POST", "curl -H"} {
		if _, err := converter.Parse(cmd); err == nil {
			t.Errorf("Parse(%q): expected error", cmd)
		}
	}
}

func TestParse_MultiLineExport(t *testing.T) {
	converter := NewConverter()

	cmd := "curl -X POST \\\n  'https://api.example.com/users?page=1' \\\n  -H 'Content-Type: application/json' \\\n  -d '{\"note\":\"it'\\''s here\"}'"
	parsed, err := converter.Parse(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if parsed.URL != "https://api.example.com/users?page=1" {
		t.Errorf("unexpected URL %q", parsed.URL)
	}
	if parsed.Body != `{"note":"it's here"}` {
		t.Errorf("unexpected body %q", parsed.Body)
	}
}

func TestToTemplate(t *testing.T) {
	converter := NewConverter()

	parsed := &ParsedCurl{
		Method: "POST",
		URL:    "https://api.example.com/users?team=a%20b&{{KEY}}=1",
		Headers: []request.KeyValue{
			{Key: "Content-Type", Value: "application/json", Enabled: true},
			{Key: "Authorization", Value: "Bearer abc", Enabled: true},
		},
		Body: `{"name":"John"}`,
		Name: "create_user",
	}

	tmpl := converter.ToTemplate(parsed)

	if tmpl.URL != "https://api.example.com/users" {
		t.Errorf("expected query stripped from URL, got %s", tmpl.URL)
	}
	if len(tmpl.Params) != 2 || tmpl.Params[0].Value != "a b" || tmpl.Params[1].Key != "{{KEY}}" {
		t.Errorf("unexpected params %+v", tmpl.Params)
	}
	if len(tmpl.Headers) != 1 || tmpl.Headers[0].Key != "Content-Type" {
		t.Errorf("expected only Content-Type header, got %+v", tmpl.Headers)
	}
	if tmpl.Auth.Kind() != request.AuthBearer || tmpl.Auth.Token != "abc" {
		t.Errorf("expected bearer auth, got %+v", tmpl.Auth)
	}
	if tmpl.Body != `{"name":"John"}` {
		t.Errorf("expected body to be kept, got %s", tmpl.Body)
	}
}

func TestToTemplate_OptionsOff(t *testing.T) {
	converter := NewConverter(WithSplitQuery(false), WithAuthDetection(false))

	parsed := &ParsedCurl{
		Method:  "GET",
		URL:     "https://api.example.com/users?page=2",
		Headers: []request.KeyValue{{Key: "Authorization", Value: "Bearer abc", Enabled: true}},
	}

	tmpl := converter.ToTemplate(parsed)

	if tmpl.URL != "https://api.example.com/users?page=2" {
		t.Errorf("expected URL untouched, got %s", tmpl.URL)
	}
	if len(tmpl.Headers) != 1 {
		t.Errorf("expected Authorization to stay a header, got %+v", tmpl.Headers)
	}
	if tmpl.Auth.Kind() != request.AuthNone {
		t.Errorf("expected no auth, got %s", tmpl.Auth.Kind())
	}
}

func TestToTemplate_BasicAuth(t *testing.T) {
	converter := NewConverter()

	parsed := &ParsedCurl{
		Method:    "GET",
		URL:       "https://api.example.com/admin",
		BasicAuth: "admin:se:cret",
	}

	tmpl := converter.ToTemplate(parsed)

	if tmpl.Auth.Kind() != request.AuthBasic || tmpl.Auth.Username != "admin" || tmpl.Auth.Password != "se:cret" {
		t.Errorf("unexpected auth %+v", tmpl.Auth)
	}
}

func TestConvertCommand(t *testing.T) {
	converter := NewConverter()

	name, tmpl, err := converter.ConvertCommand(`curl -X POST -H "Content-Type: application/json" -d '{"name":"John"}' https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if name != "post_users" {
		t.Errorf("expected name post_users, got %s", name)
	}
	if tmpl.Method != "POST" || tmpl.URL != "https://api.example.com/users" {
		t.Errorf("unexpected template %s %s", tmpl.Method, tmpl.URL)
	}
	if v, ok := tmpl.Header("content-type"); !ok || v != "application/json" {
		t.Error("expected converted command to contain header")
	}
}

func TestConvertFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.sh")
	content := `# users
curl https://api.example.com/users

curl -X DELETE \
  https://api.example.com/users/1
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	col, err := NewConverter().ConvertFile(path, "Imported")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if col.Name != "Imported" || len(col.Requests) != 2 {
		t.Fatalf("unexpected collection %+v", col)
	}
	if col.Requests[1].Name != "delete_users_1" || col.Requests[1].Request.Method != "DELETE" {
		t.Errorf("unexpected second request %+v", col.Requests[1])
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{
			input:    `-X POST -d "hello world"`,
			expected: []string{"-X", "POST", "-d", "hello world"},
		},
		{
			input:    `-H 'Content-Type: application/json'`,
			expected: []string{"-H", "Content-Type: application/json"},
		},
		{
			input:    `-d '{"key": "value"}'`,
			expected: []string{"-d", `{"key": "value"}`},
		},
		{
			input:    `-d 'line\n'`,
			expected: []string{"-d", `line\n`},
		},
		{
			input:    "-X PUT \\\n  -k",
			expected: []string{"-X", "PUT", "-k"},
		},
	}

	for _, tt := range tests {
		tokens := tokenize(tt.input)
		if len(tokens) != len(tt.expected) {
			t.Errorf("tokenize(%q): got %d tokens, expected %d", tt.input, len(tokens), len(tt.expected))
			continue
		}
		for i, tok := range tokens {
			if tok != tt.expected[i] {
				t.Errorf("tokenize(%q)[%d]: got %q, expected %q", tt.input, i, tok, tt.expected[i])
			}
		}
	}
}

func TestGenerateName(t *testing.T) {
	tests := []struct {
		url    string
		method string
		expect string
	}{
		{"https://api.example.com/users", "GET", "get_users"},
		{"https://api.example.com/users/123", "GET", "get_users_123"},
		{"https://api.example.com/", "POST", "post_root"},
		{"https://api.example.com/api/v1/users", "PUT", "put_api_v1_users"},
		{"https://api.example.com/user-profiles", "GET", "get_user_profiles"},
	}

	for _, tt := range tests {
		result := generateName(tt.url, tt.method)
		if result != tt.expect {
			t.Errorf("generateName(%q, %q): got %q, expected %q", tt.url, tt.method, result, tt.expect)
		}
	}
}
