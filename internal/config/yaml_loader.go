package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// applyYAMLOverrides loads the optional operational YAML configuration and
// overlays the gate's path lists onto the envconfig-populated Config.
// Missing files are not an error: the envconfig defaults remain in effect
// so the gateway can run without a configs directory at all.
func applyYAMLOverrides(cfg *Config) error {
	settings, err := loadYAMLConfig(cfg.Environment.Environment)
	if err != nil {
		return err
	}
	if settings == nil {
		return nil
	}

	if prefixes := settings.GetStringSlice("gate.excluded_prefixes"); len(prefixes) > 0 {
		cfg.Gate.ExcludedPrefixes = prefixes
	}
	if exts := settings.GetStringSlice("gate.asset_extensions"); len(exts) > 0 {
		cfg.Gate.AssetExtensions = exts
	}

	return nil
}

// loadYAMLConfig loads operational configuration from YAML files based on
// the environment. It first loads defaults.yaml, then overlays
// environment-specific configuration (local.yaml, nonprod.yaml, or
// prod.yaml). Returns nil when no defaults file exists.
func loadYAMLConfig(env Environment) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("defaults")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	// Load defaults
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read defaults config: %w", err)
	}

	// Determine environment-specific config file
	var envConfigFile string
	switch env {
	case Local:
		envConfigFile = "local"
	case NonProd:
		envConfigFile = "nonprod"
	case Prod:
		envConfigFile = "prod"
	default:
		envConfigFile = "local"
	}

	// Load environment-specific overrides
	envViper := viper.New()
	envViper.SetConfigType("yaml")
	envViper.SetConfigName(envConfigFile)
	envViper.AddConfigPath("./configs")
	envViper.AddConfigPath("../configs")
	envViper.AddConfigPath("../../configs")

	if err := envViper.ReadInConfig(); err != nil {
		// Environment-specific config is optional, only return error if
		// it's not a "file not found" error
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s config: %w", envConfigFile, err)
		}
	}

	// Merge environment-specific config into defaults
	if err := v.MergeConfigMap(envViper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to merge environment config: %w", err)
	}

	return v, nil
}
