package logger

import (
	"testing"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected info, got %s", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected console, got %s", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp enabled by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid json", Config{Level: "debug", Format: "json"}, false},
		{"valid console", Config{Level: "info", Format: "console"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFields(t *testing.T) {
	m := Fields("component", "bus", "count", 3)
	if m["component"] != "bus" {
		t.Errorf("expected bus, got %v", m["component"])
	}
	if m["count"] != 3 {
		t.Errorf("expected 3, got %v", m["count"])
	}
}

func TestFieldsOddPairs(t *testing.T) {
	m := Fields("component", "bus", "dangling")
	if len(m) != 1 {
		t.Errorf("expected dangling key dropped, got %v", m)
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test").WithComponent("registry")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	// Must not mutate the parent.
	l2 := NewDefault("test")
	if l2 == l {
		t.Error("expected distinct instances")
	}
}

func TestGlobalLoggerLazyInit(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected lazily created global logger")
	}
}
