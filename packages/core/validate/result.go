package validate

// Result holds every issue found for one template, in rule order.
type Result struct {
	Issues []Issue
}

// Valid reports whether nothing blocks sending.
func (r *Result) Valid() bool {
	return len(r.Errors()) == 0
}

// Errors returns the blocking issues.
func (r *Result) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the non-blocking issues.
func (r *Result) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

// Err returns an *Error with the blocking issues, or nil when valid.
func (r *Result) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	return &Error{Issues: errs}
}

func (r *Result) filter(s Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == s {
			out = append(out, issue)
		}
	}
	return out
}
