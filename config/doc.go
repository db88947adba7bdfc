// Package config provides configuration loading and validation for the
// monitoring daemon.
//
// It uses Viper to load configuration from config.yml, a .env file, and the
// process environment, with environment variables taking precedence
// (HEALTH_PROVIDER_TIMEOUT overrides health.provider_timeout).
package config
