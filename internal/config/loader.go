package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"dispatch/pkg/logging"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDir  = ".config/dispatch"
	configFileName = "config.yaml"

	envBrainAPIKey = "DISPATCH_BRAIN_API_KEY"
	envToolsAPIKey = "DISPATCH_TOOLS_API_KEY"
)

func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}

	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads configuration from the specified directory. The directory
// should contain config.yaml; a missing file yields the defaults. Environment
// variables override API keys after the file is read.
func LoadConfig(configPath string) (DispatchConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			applyEnvOverrides(&config)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return DispatchConfig{}, err
	}
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		// config malformed
		return DispatchConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	applyEnvOverrides(&config)
	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}

func applyEnvOverrides(config *DispatchConfig) {
	if key := os.Getenv(envBrainAPIKey); key != "" {
		config.Brain.APIKey = key
	}
	if key := os.Getenv(envToolsAPIKey); key != "" {
		config.Tools.APIKey = key
	}
}
