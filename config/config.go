package config

import (
	"fmt"
	"time"

	"github.com/skillsenselab/healthcore/logger"
)

// ServiceConfig contains the base fields the daemon needs. Larger configs
// embed it.
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "healthcore"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	validEnvs := []string{"development", "staging", "production"}
	found := false
	for _, v := range validEnvs {
		if c.Environment == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// HealthConfig tunes the collection sweep.
type HealthConfig struct {
	CollectInterval    time.Duration `yaml:"collect_interval" mapstructure:"collect_interval"`
	ProviderTimeout    time.Duration `yaml:"provider_timeout" mapstructure:"provider_timeout"`
	BreakerMaxFailures int           `yaml:"breaker_max_failures" mapstructure:"breaker_max_failures"`
	BreakerCooldown    time.Duration `yaml:"breaker_cooldown" mapstructure:"breaker_cooldown"`
}

func (c *HealthConfig) ApplyDefaults() {
	if c.CollectInterval <= 0 {
		c.CollectInterval = 30 * time.Second
	}
	if c.ProviderTimeout <= 0 {
		c.ProviderTimeout = 5 * time.Second
	}
	if c.BreakerMaxFailures <= 0 {
		c.BreakerMaxFailures = 3
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = time.Minute
	}
}

func (c *HealthConfig) Validate() error {
	if c.ProviderTimeout >= c.CollectInterval {
		return fmt.Errorf("health.provider_timeout (%s) must be shorter than health.collect_interval (%s)", c.ProviderTimeout, c.CollectInterval)
	}
	return nil
}

// AlertsConfig tunes dashboard callback dispatch.
type AlertsConfig struct {
	QueueSize    int  `yaml:"queue_size" mapstructure:"queue_size"`
	SyncDispatch bool `yaml:"sync_dispatch" mapstructure:"sync_dispatch"`
}

func (c *AlertsConfig) ApplyDefaults() {
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
}

// PatternsConfig tunes failure pattern detection.
type PatternsConfig struct {
	Window          int `yaml:"window" mapstructure:"window"`
	RepeatThreshold int `yaml:"repeat_threshold" mapstructure:"repeat_threshold"`
}

func (c *PatternsConfig) ApplyDefaults() {
	if c.Window <= 0 {
		c.Window = 10
	}
	if c.RepeatThreshold <= 0 {
		c.RepeatThreshold = 3
	}
}

func (c *PatternsConfig) Validate() error {
	if c.RepeatThreshold > c.Window {
		return fmt.Errorf("patterns.repeat_threshold (%d) cannot exceed patterns.window (%d)", c.RepeatThreshold, c.Window)
	}
	return nil
}

// ServerConfig tunes the HTTP read surface.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	Mode string `yaml:"mode" mapstructure:"mode"`
}

func (c *ServerConfig) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8090
	}
	if c.Mode == "" {
		c.Mode = "release"
	}
}

func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535] (got: %d)", c.Port)
	}
	switch c.Mode {
	case "debug", "release", "test":
		return nil
	default:
		return fmt.Errorf("server.mode must be one of [debug, release, test] (got: %s)", c.Mode)
	}
}

// ObservabilityConfig tunes metrics and tracing.
type ObservabilityConfig struct {
	TracingEnabled bool   `yaml:"tracing_enabled" mapstructure:"tracing_enabled"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
}

func (c *ObservabilityConfig) ApplyDefaults() {
	if c.OTLPEndpoint == "" {
		c.OTLPEndpoint = "localhost:4318"
	}
}

// CoreConfig is the full daemon configuration.
type CoreConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Health        HealthConfig        `yaml:"health" mapstructure:"health"`
	Alerts        AlertsConfig        `yaml:"alerts" mapstructure:"alerts"`
	Patterns      PatternsConfig      `yaml:"patterns" mapstructure:"patterns"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section.
func (c *CoreConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Health.ApplyDefaults()
	c.Alerts.ApplyDefaults()
	c.Patterns.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *CoreConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Health.Validate(); err != nil {
		return err
	}
	if err := c.Patterns.Validate(); err != nil {
		return err
	}
	return c.Server.Validate()
}
