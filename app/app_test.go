package app

import (
	"testing"
	"time"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/config"
)

func testConfig() *config.CoreConfig {
	cfg := &config.CoreConfig{}
	cfg.ApplyDefaults()
	cfg.Name = "healthcore-test"
	cfg.Logging.Level = "error"
	cfg.Server.Mode = "test"
	cfg.Alerts.SyncDispatch = true
	return cfg
}

func TestNewWiresCore(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Bus.Close()
	defer a.Dashboard.Close()

	if a.Registry == nil || a.Health == nil || a.Dashboard == nil || a.Monitor == nil || a.Points == nil {
		t.Fatal("core surfaces must all be wired")
	}
	if a.server == nil || a.dispatcher == nil {
		t.Fatal("server and dispatcher must be wired")
	}
}

func TestHealthFlowReachesDashboard(t *testing.T) {
	a, err := New(testConfig())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Bus.Close()
	defer a.Dashboard.Close()

	if err := a.dispatcher.Start(); err != nil {
		t.Fatalf("start dispatcher: %v", err)
	}
	defer a.dispatcher.Stop()

	if _, err := a.Registry.Register("content-manager"); err != nil {
		t.Fatalf("register: %v", err)
	}
	a.Health.SetStatus("content-manager", component.StateFailed, "probe failed")

	// The bus delivers asynchronously; wait for the observation to land.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if state, ok := a.Dashboard.ObservedState("content-manager"); ok && state == component.StateFailed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("health update never reached the dashboard")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if len(a.Dashboard.Alerts()) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(a.Dashboard.Alerts()))
	}
}

func TestInvalidConfigRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = -1
	if _, err := New(cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}
