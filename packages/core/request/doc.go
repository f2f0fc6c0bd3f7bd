// Package request defines the request and response model shared by hitdesk.
//
// It provides:
//   - Template, the user-authored request with {{variable}} placeholders
//   - KeyValue rows for params and headers, each with an enabled toggle
//   - Auth, a tagged variant over none, bearer, apikey and basic
//   - Response, the payload handed back by the transport
//   - Header key normalization for display
package request
