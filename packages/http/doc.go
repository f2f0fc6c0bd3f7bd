// Package http sends resolved hitdesk requests.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts
//   - Redirect handling
//   - Optional client-side rate limiting
//   - Auth placement (bearer, basic, API key in header or query)
//   - Response decoding into the request.Response payload
package http
