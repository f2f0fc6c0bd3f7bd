package validate

import (
	"fmt"
	"strings"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/tidwall/gjson"
)

// Policy controls how references to unknown variables are treated.
type Policy int

const (
	// Lenient reports unresolved variables as warnings.
	Lenient Policy = iota
	// Strict blocks sending while any variable is unresolved.
	Strict
)

func (p Policy) String() string {
	if p == Strict {
		return "strict"
	}
	return "lenient"
}

// ParsePolicy accepts "strict" or "lenient" (case-insensitive).
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown variable policy %q", s)
	}
}

// Rule inspects a template and returns blocking issues.
type Rule func(t *request.Template) []Issue

// DefaultRules are applied in order by every Validator.
var DefaultRules = []Rule{
	RequireURL,
	RequireJSONBody,
	RequireBearerToken,
	RequireBasicCredentials,
}

// Validator applies rules and the unresolved-variable policy to templates.
type Validator struct {
	policy Policy
	rules  []Rule
}

// Option is a functional option for Validator.
type Option func(*Validator)

// WithPolicy sets the unresolved-variable policy.
func WithPolicy(p Policy) Option {
	return func(v *Validator) {
		v.policy = p
	}
}

// WithRules appends rules after the defaults.
func WithRules(rules ...Rule) Option {
	return func(v *Validator) {
		v.rules = append(v.rules, rules...)
	}
}

func New(opts ...Option) *Validator {
	v := &Validator{
		policy: Lenient,
		rules:  append([]Rule(nil), DefaultRules...),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Policy returns the configured policy.
func (v *Validator) Policy() Policy {
	return v.policy
}

// Validate checks t against every rule, then scans the fields that resolution
// touches for references missing from known.
func (v *Validator) Validate(t *request.Template, known map[string]string) *Result {
	result := &Result{}
	for _, rule := range v.rules {
		result.Issues = append(result.Issues, rule(t)...)
	}

	severity := SeverityWarning
	if v.policy == Strict {
		severity = SeverityError
	}
	for _, issue := range ScanUnresolved(t, known) {
		issue.Severity = severity
		result.Issues = append(result.Issues, issue)
	}
	return result
}

// RequireURL rejects a URL that is empty after trimming.
func RequireURL(t *request.Template) []Issue {
	if strings.TrimSpace(t.URL) == "" {
		return []Issue{{Code: EmptyURL, Field: "url", Message: "Please enter a URL"}}
	}
	return nil
}

// RequireJSONBody rejects a body that does not parse when an enabled
// Content-Type header declares JSON. Blank bodies pass, and GET and DELETE
// bodies are never checked since the transport drops them.
func RequireJSONBody(t *request.Template) []Issue {
	if !request.MethodSendsBody(t.NormalizedMethod()) {
		return nil
	}
	if !declaresJSON(t) {
		return nil
	}
	if strings.TrimSpace(t.Body) == "" || gjson.Valid(t.Body) {
		return nil
	}
	return []Issue{{Code: InvalidJSONBody, Field: "body", Message: "Body is not valid JSON"}}
}

// RequireBearerToken rejects bearer auth without a token.
func RequireBearerToken(t *request.Template) []Issue {
	if t.Auth.Kind() == request.AuthBearer && t.Auth.Token == "" {
		return []Issue{{Code: MissingBearerToken, Field: "auth.token", Message: "Bearer token is required"}}
	}
	return nil
}

// RequireBasicCredentials rejects basic auth without both username and password.
func RequireBasicCredentials(t *request.Template) []Issue {
	if t.Auth.Kind() != request.AuthBasic {
		return nil
	}
	if t.Auth.Username == "" || t.Auth.Password == "" {
		return []Issue{{Code: MissingBasicCredentials, Field: "auth", Message: "Username and password are required for basic auth"}}
	}
	return nil
}

// ScanUnresolved reports every reference to a name missing from known across
// the url, enabled params and headers, body, and the active auth fields.
// Issues are returned as warnings; a repeated reference is reported each time.
func ScanUnresolved(t *request.Template, known map[string]string) []Issue {
	var issues []Issue
	add := func(field, value string) {
		for _, name := range env.Unresolved(value, known) {
			issues = append(issues, Issue{
				Code:     UnresolvedVariable,
				Severity: SeverityWarning,
				Field:    field,
				Variable: name,
				Message:  fmt.Sprintf("Unresolved variable {{%s}} in %s", name, field),
			})
		}
	}

	add("url", t.URL)
	for i, p := range t.Params {
		if !p.Enabled {
			continue
		}
		add(fmt.Sprintf("params[%d].key", i), p.Key)
		add(fmt.Sprintf("params[%d].value", i), p.Value)
	}
	for i, h := range t.Headers {
		if !h.Enabled {
			continue
		}
		add(fmt.Sprintf("headers[%d].key", i), h.Key)
		add(fmt.Sprintf("headers[%d].value", i), h.Value)
	}
	add("body", t.Body)

	auth := t.Auth
	for _, f := range auth.Fields() {
		add("auth."+f.Name, *f.Value)
	}
	return issues
}

func declaresJSON(t *request.Template) bool {
	for _, h := range t.Headers {
		if !h.Enabled || !strings.EqualFold(strings.TrimSpace(h.Key), "content-type") {
			continue
		}
		if strings.Contains(strings.ToLower(h.Value), "application/json") {
			return true
		}
	}
	return false
}
