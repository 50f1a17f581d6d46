// Package config provides configuration loading and validation for
// guarded services.
//
// It uses Viper to load configuration from YAML files and environment
// variables, with .env file support via godotenv. Environment variables
// override file values using underscore-separated paths
// (e.g., RATE_LIMIT_MAX_PER_MINUTE).
//
// # Usage
//
//	var cfg config.Config
//	err := config.Load("my-service", &cfg)
//	cfg.ApplyDefaults()
//	err = cfg.Validate()
package config
