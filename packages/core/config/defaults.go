package config

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Timeout:         30000, // 30 seconds
		FollowRedirects: boolPtr(true),
		MaxRedirects:    10,
		ValidateSSL:     boolPtr(true),
		Proxy:           "",
		Headers:         nil,
		DataDir:         ".hitdesk",
		HistoryLimit:    50,
		StrictVariables: boolPtr(false),
		RateLimit:       0,
		Verbose:         boolPtr(false),
		NoColor:         boolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Timeout == defaults.Timeout &&
		c.GetFollowRedirects() == defaults.GetFollowRedirects() &&
		c.MaxRedirects == defaults.MaxRedirects &&
		c.GetValidateSSL() == defaults.GetValidateSSL() &&
		c.Proxy == defaults.Proxy &&
		len(c.Headers) == 0 &&
		c.DataDir == defaults.DataDir &&
		c.HistoryLimit == defaults.HistoryLimit &&
		c.GetStrictVariables() == defaults.GetStrictVariables() &&
		c.RateLimit == defaults.RateLimit &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
