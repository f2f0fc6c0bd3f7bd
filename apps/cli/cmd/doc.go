// Package cmd implements the hitdesk CLI commands using Cobra.
//
// Available commands:
//   - send: Validate, resolve and send a request, recording it in history
//   - validate: Check a request without sending it
//   - resolve: Print a request with its variables substituted
//   - curl: Print a request as a curl command
//   - import: Convert curl, Insomnia or OpenAPI sources into collections
//   - env: Manage the stored environment variables
//   - history: List, clear and summarize sent requests
//   - collection: Create, edit, search and exchange saved request collections
//   - version: Show hitdesk version information
//
// Exit codes are listed in exitcodes.go.
package cmd
