// Package env handles environment variables and variable resolution for hitdesk.
//
// It provides functionality for:
//   - Scanning strings for {{NAME}} references
//   - Detecting references with no matching enabled variable
//   - Substituting enabled variable values into strings
//   - Holding an Environment snapshot of key/value/enabled rows
//   - Loading .env files and exchanging environments as JSON documents
package env
