// Package pipeline turns a request template into an outbound request.
//
// Prepare validates the template held in an AppState, reports unresolved
// variables according to the validation policy, and resolves every
// {{VAR}} reference from the active environment.
package pipeline
