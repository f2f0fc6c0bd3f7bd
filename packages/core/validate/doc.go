// Package validate decides whether a request template is well-formed enough
// to send.
//
// Blocking rules cover an empty URL, a JSON body that does not parse, and
// incomplete bearer or basic credentials. References to unknown variables are
// reported as warnings, or as blocking issues under the Strict policy.
package validate
