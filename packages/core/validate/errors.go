package validate

import (
	"fmt"
	"strings"
)

// Code identifies a validation finding. Codes double as sentinel errors, so
// callers can test a failure with errors.Is(err, validate.EmptyURL).
type Code string

const (
	EmptyURL                Code = "EmptyUrl"
	InvalidJSONBody         Code = "InvalidJsonBody"
	MissingBearerToken      Code = "MissingBearerToken"
	MissingBasicCredentials Code = "MissingBasicCredentials"
	UnresolvedVariable      Code = "UnresolvedVariable"
)

func (c Code) Error() string {
	return string(c)
}

// Severity says whether an issue blocks sending.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Issue is one finding. Field names the template location, e.g. "url",
// "headers[1].value" or "auth.token".
type Issue struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"-"`
	Field    string   `json:"field,omitempty"`
	Variable string   `json:"variable,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.Field != "" {
		return fmt.Sprintf("%s (%s): %s", i.Code, i.Field, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// Error carries the blocking issues of a failed validation.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 1 {
		return "validation failed: " + e.Issues[0].Message
	}
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.Message
	}
	return fmt.Sprintf("validation failed with %d errors: %s", len(e.Issues), strings.Join(msgs, "; "))
}

// Is matches a Code target against any carried issue.
func (e *Error) Is(target error) bool {
	code, ok := target.(Code)
	if !ok {
		return false
	}
	return e.Has(code)
}

// Has reports whether any issue carries code.
func (e *Error) Has(code Code) bool {
	for _, issue := range e.Issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

// First returns the code of the first issue.
func (e *Error) First() Code {
	if len(e.Issues) == 0 {
		return ""
	}
	return e.Issues[0].Code
}
