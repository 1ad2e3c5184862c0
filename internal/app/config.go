package app

import (
	"dispatch/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug settings
	Debug bool

	// Silent suppresses all log output (used by CLI subcommands)
	Silent bool

	// Custom configuration path (optional)
	// When set, the default ~/.config/dispatch directory is ignored
	ConfigPath string

	// Environment configuration
	DispatchConfig *config.DispatchConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug, silent bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Silent:     silent,
		ConfigPath: configPath,
	}
}
