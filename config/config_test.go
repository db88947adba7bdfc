package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("service name propagates into logging", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name 'svc', got %q", cfg.Logging.ServiceName)
		}
	})
}

func TestCoreConfigDefaults(t *testing.T) {
	cfg := CoreConfig{}
	cfg.ApplyDefaults()

	if cfg.Health.CollectInterval != 30*time.Second {
		t.Errorf("expected collect interval 30s, got %v", cfg.Health.CollectInterval)
	}
	if cfg.Health.ProviderTimeout != 5*time.Second {
		t.Errorf("expected provider timeout 5s, got %v", cfg.Health.ProviderTimeout)
	}
	if cfg.Patterns.Window != 10 || cfg.Patterns.RepeatThreshold != 3 {
		t.Errorf("unexpected pattern defaults: %+v", cfg.Patterns)
	}
	if cfg.Alerts.QueueSize != 256 {
		t.Errorf("expected alert queue 256, got %d", cfg.Alerts.QueueSize)
	}
	if cfg.Server.Port != 8090 {
		t.Errorf("expected port 8090, got %d", cfg.Server.Port)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaulted config must validate: %v", err)
	}
}

func TestCoreConfigValidate(t *testing.T) {
	base := func() CoreConfig {
		cfg := CoreConfig{}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*CoreConfig)
		errMsg string
	}{
		{"invalid environment", func(c *CoreConfig) { c.Environment = "qa" }, "config.environment must be one of"},
		{"timeout exceeds interval", func(c *CoreConfig) { c.Health.ProviderTimeout = time.Minute }, "must be shorter than"},
		{"threshold exceeds window", func(c *CoreConfig) { c.Patterns.RepeatThreshold = 20 }, "cannot exceed"},
		{"bad port", func(c *CoreConfig) { c.Server.Port = 70000 }, "server.port must be in"},
		{"bad mode", func(c *CoreConfig) { c.Server.Mode = "verbose" }, "server.mode must be one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")

	yamlContent := `
name: monitor-test
environment: staging
health:
  provider_timeout: 2s
  collect_interval: 10s
patterns:
  window: 20
server:
  port: 9100
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load("monitor-test", WithConfigFile(configPath))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Name != "monitor-test" || cfg.Environment != "staging" {
		t.Errorf("base fields not loaded: %+v", cfg.ServiceConfig)
	}
	if cfg.Health.ProviderTimeout != 2*time.Second {
		t.Errorf("expected provider timeout 2s, got %v", cfg.Health.ProviderTimeout)
	}
	if cfg.Patterns.Window != 20 {
		t.Errorf("expected window 20, got %d", cfg.Patterns.Window)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	// Untouched sections still get defaults.
	if cfg.Health.BreakerMaxFailures != 3 {
		t.Errorf("expected defaulted breaker max failures, got %d", cfg.Health.BreakerMaxFailures)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(configPath, []byte("name: monitor-test\nserver:\n  port: 9100\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("SERVER_PORT", "9200")
	cfg, err := Load("monitor-test", WithConfigFile(configPath))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("expected env override 9200, got %d", cfg.Server.Port)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	cfg, err := Load("monitor-test", WithConfigFile(filepath.Join(t.TempDir(), "missing.yml")))
	if err != nil {
		t.Fatalf("load without files must fall back to defaults: %v", err)
	}
	if cfg.Name != "healthcore" {
		t.Errorf("expected defaulted name, got %q", cfg.Name)
	}
}

func TestKeyVariants(t *testing.T) {
	variants := keyVariants("HEALTH_PROVIDER_TIMEOUT")
	want := map[string]bool{
		"health_provider_timeout": false,
		"health.provider.timeout": false,
		"health.provider_timeout": false,
	}
	for _, v := range variants {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for k, seen := range want {
		if !seen {
			t.Errorf("missing variant %q in %v", k, variants)
		}
	}
}
