// Package output renders responses, validation findings, history and stats.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable JSON output
//
// Both formatters implement the Formatter interface.
package output
