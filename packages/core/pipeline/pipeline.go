package pipeline

import (
	"errors"

	"github.com/abdul-hamid-achik/hitdesk/packages/core/env"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/request"
	"github.com/abdul-hamid-achik/hitdesk/packages/core/validate"
)

// ErrNoRequest is returned when the state holds no active request.
var ErrNoRequest = errors.New("no active request")

// AppState is the editing state a send or export operates on: the active
// request, the active environment snapshot and the unresolved-variable policy.
type AppState struct {
	Request *request.Template
	Env     *env.Environment
	Policy  validate.Policy
}

// NewAppState returns a state with an empty request and environment.
func NewAppState() *AppState {
	return &AppState{
		Request: request.New(),
		Env:     env.NewEnvironment("default"),
	}
}

// Prepared is a validated and resolved request plus the non-blocking findings.
type Prepared struct {
	Request  *request.Template
	Warnings []validate.Issue
}

// Pipeline validates and resolves requests.
type Pipeline struct {
	rules    []validate.Rule
	warnFunc env.WarnFunc
}

// Option is a functional option for Pipeline.
type Option func(*Pipeline)

// WithWarnFunc receives one call per unresolved-variable warning.
func WithWarnFunc(fn env.WarnFunc) Option {
	return func(p *Pipeline) {
		p.warnFunc = fn
	}
}

// WithRules adds validation rules after the defaults.
func WithRules(rules ...validate.Rule) Option {
	return func(p *Pipeline) {
		p.rules = append(p.rules, rules...)
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare validates state.Request and, when nothing blocks, resolves it
// against the enabled variables of state.Env. A blocking failure is returned
// as a *validate.Error.
func (p *Pipeline) Prepare(state *AppState) (*Prepared, error) {
	if state == nil || state.Request == nil {
		return nil, ErrNoRequest
	}

	values := map[string]string{}
	if state.Env != nil {
		values = state.Env.Values()
	}

	v := validate.New(validate.WithPolicy(state.Policy), validate.WithRules(p.rules...))
	result := v.Validate(state.Request, values)
	if err := result.Err(); err != nil {
		return nil, err
	}

	warnings := result.Warnings()
	if p.warnFunc != nil {
		for _, w := range warnings {
			p.warnFunc("unresolved variable: %s (%s)", w.Variable, w.Field)
		}
	}

	r := env.NewResolver()
	r.SetVariables(values)

	return &Prepared{
		Request:  Resolve(state.Request, r),
		Warnings: warnings,
	}, nil
}

// Prepare runs a default pipeline over state.
func Prepare(state *AppState) (*Prepared, error) {
	return New().Prepare(state)
}
