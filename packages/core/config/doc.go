// Package config handles configuration loading and management for hitdesk.
//
// It provides functionality for:
//   - Loading configuration from .hitdesk.config.json, .hitdeskrc and friends
//   - Default configuration values
//   - HITDESK_* environment overrides
//   - Merging CLI overrides on top of file values
package config
