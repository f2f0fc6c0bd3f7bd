package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables that override file values,
// e.g. HITDESK_TIMEOUT or HITDESK_STRICTVARIABLES.
const EnvPrefix = "HITDESK"

// Config represents the hitdesk configuration
type Config struct {
	Timeout         int               `json:"timeout,omitempty"` // milliseconds
	FollowRedirects *bool             `json:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty"`
	ValidateSSL     *bool             `json:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"`      // Default headers for all requests
	DataDir         string            `json:"dataDir,omitempty"`      // Holds the history database and collections
	HistoryLimit    int               `json:"historyLimit,omitempty"` // Entries returned by history listings
	StrictVariables *bool             `json:"strictVariables,omitempty"`
	RateLimit       float64           `json:"rateLimit,omitempty"` // Requests per second, 0 disables
	Verbose         *bool             `json:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty"`
}

// keys lists every field that may be overridden from the environment.
var keys = []string{
	"timeout", "followRedirects", "maxRedirects", "validateSSL", "proxy",
	"dataDir", "historyLimit", "strictVariables", "rateLimit", "verbose", "noColor",
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// BoolPtr is exported version of boolPtr for external use
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetStrictVariables returns whether unresolved variables block sending, defaulting to false
func (c *Config) GetStrictVariables() bool {
	return getBool(c.StrictVariables, false)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the request timeout as a duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// HistoryDBPath returns the sqlite file under DataDir.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "hitdesk.db")
}

// CollectionsPath returns the collections file under DataDir.
func (c *Config) CollectionsPath() string {
	return filepath.Join(c.DataDir, "collections.json")
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hitdesk.config.json",
	"hitdesk.config.json",
	".hitdesk.config.yaml",
	".hitdeskrc",
	".hitdeskrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Defaults plus environment overrides if no config file found
	return load(newViper(), false)
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" || filepath.Ext(path) == ".hitdeskrc" {
		v.SetConfigType("json")
	}
	return load(v, true)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	for _, key := range keys {
		_ = v.BindEnv(key) // Error ignored: only fails when no key is given
	}
	return v
}

func load(v *viper.Viper, fromFile bool) (*Config, error) {
	if fromFile {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	config := DefaultConfig()
	// viper lower-cases map keys, so header names come back lower-case;
	// the transport treats them case-insensitively.
	err := v.Unmarshal(config, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.DataDir != "" {
		result.DataDir = other.DataDir
	}
	if other.HistoryLimit > 0 {
		result.HistoryLimit = other.HistoryLimit
	}
	if other.RateLimit > 0 {
		result.RateLimit = other.RateLimit
	}

	// Boolean flags - only override if explicitly set in other config
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.StrictVariables != nil {
		result.StrictVariables = other.StrictVariables
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	// Merge headers
	if len(other.Headers) > 0 {
		merged := make(map[string]string, len(result.Headers)+len(other.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range other.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
