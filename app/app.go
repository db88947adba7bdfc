package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/skillsenselab/healthcore/api"
	"github.com/skillsenselab/healthcore/bus"
	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/config"
	"github.com/skillsenselab/healthcore/dashboard"
	"github.com/skillsenselab/healthcore/health"
	"github.com/skillsenselab/healthcore/integration"
	"github.com/skillsenselab/healthcore/logger"
	"github.com/skillsenselab/healthcore/observability"
	"github.com/skillsenselab/healthcore/orchestrator"
	"github.com/skillsenselab/healthcore/reliability"
	"github.com/skillsenselab/healthcore/version"
)

// App wires the monitoring core together: bus, registry, health manager,
// dashboard, integration monitor, orchestrator, and the HTTP read surface.
type App struct {
	Cfg *config.CoreConfig
	Log *logger.Logger

	Bus          *bus.Bus
	Registry     *component.Registry
	Health       *health.Manager
	Dashboard    *dashboard.Dashboard
	Monitor      *integration.Monitor
	Points       *integration.PointRegistry
	Orchestrator *orchestrator.Orchestrator

	dispatcher *orchestrator.Dispatcher
	server     *api.Server

	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// New builds the application from configuration. Nothing starts running
// until Run.
func New(cfg *config.CoreConfig) (*App, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("app: config validation: %w", err)
	}

	logger.Init(&cfg.Logging)
	log := logger.GetGlobalLogger()

	a := &App{Cfg: cfg, Log: log}

	mp, promRegistry, err := observability.InitMeter(observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
	})
	if err != nil {
		return nil, fmt.Errorf("app: init meter: %w", err)
	}
	a.meterProvider = mp

	metrics, err := observability.NewCoreMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("app: init metrics: %w", err)
	}

	if cfg.Observability.TracingEnabled {
		tp, err := observability.InitTracer(context.Background(), observability.TracerConfig{
			ServiceName:    cfg.Name,
			ServiceVersion: cfg.Version,
			Environment:    cfg.Environment,
			Endpoint:       cfg.Observability.OTLPEndpoint,
			Insecure:       cfg.Environment != "production",
			SampleRate:     1.0,
		})
		if err != nil {
			return nil, fmt.Errorf("app: init tracer: %w", err)
		}
		a.tracerProvider = tp
	}

	a.Bus = bus.New(
		bus.WithAsyncDispatch(cfg.Alerts.QueueSize),
		bus.WithMetrics(metrics),
		bus.WithLogger(log),
	)
	a.Registry = component.NewRegistry(
		component.WithPublisher(a.Bus),
		component.WithMetrics(metrics),
		component.WithLogger(log),
	)
	a.Health = health.NewManager(health.ManagerConfig{
		ProviderTimeout:    cfg.Health.ProviderTimeout,
		BreakerMaxFailures: cfg.Health.BreakerMaxFailures,
		BreakerCooldown:    cfg.Health.BreakerCooldown,
	},
		health.WithRegistry(a.Registry),
		health.WithPublisher(a.Bus),
		health.WithMetrics(metrics),
		health.WithLogger(log),
	)

	dashOpts := []dashboard.Option{
		dashboard.WithRegistry(a.Registry),
		dashboard.WithHealthManager(a.Health),
		dashboard.WithMetrics(metrics),
		dashboard.WithLogger(log),
	}
	if cfg.Alerts.SyncDispatch {
		dashOpts = append(dashOpts, dashboard.WithSyncDispatch())
	}
	a.Dashboard = dashboard.New(dashOpts...)

	a.Monitor = integration.NewMonitor(integration.MonitorConfig{
		PatternWindow:   cfg.Patterns.Window,
		RepeatThreshold: cfg.Patterns.RepeatThreshold,
	})
	a.Points = integration.NewPointRegistry()

	a.Orchestrator = orchestrator.New(reliability.Deps{
		Registry:  a.Registry,
		Health:    a.Health,
		Publisher: a.Bus,
		Points:    a.Points,
		Metrics:   metrics,
		Logger:    log,
	}, orchestrator.WithTracer(observability.Tracer("orchestrator")))

	a.dispatcher = orchestrator.NewDispatcher(a.Bus, a.Dashboard)
	a.server = api.New(cfg.Server, api.Deps{
		Dashboard:    a.Dashboard,
		Registry:     a.Registry,
		Monitor:      a.Monitor,
		Points:       a.Points,
		PromRegistry: promRegistry,
	}, log)

	return a, nil
}

// Run starts the dispatcher, the periodic collection loop, and the HTTP
// server, then blocks until the context ends or a termination signal
// arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.dispatcher.Start(); err != nil {
		return fmt.Errorf("app: start dispatcher: %w", err)
	}
	if err := a.server.Start(ctx); err != nil {
		return fmt.Errorf("app: start server: %w", err)
	}

	a.Log.Info("monitoring core started", logger.Fields(
		"service", a.Cfg.Name,
		"version", version.Short(),
		"environment", a.Cfg.Environment,
		"addr", a.server.Addr(),
		"collect_interval", a.Cfg.Health.CollectInterval.String(),
	))

	ticker := time.NewTicker(a.Cfg.Health.CollectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.Log.Info("shutdown signal received")
			return a.shutdown()
		case <-ticker.C:
			a.Health.Collect(ctx)
			a.Orchestrator.RunChecks(ctx, "scheduled-check")
		}
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var firstErr error
	if err := a.server.Stop(shutdownCtx); err != nil {
		firstErr = err
	}
	a.dispatcher.Stop()
	a.Dashboard.Close()
	a.Bus.Close()

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := observability.ShutdownMeter(shutdownCtx, a.meterProvider); err != nil && firstErr == nil {
		firstErr = err
	}

	a.Log.Info("monitoring core stopped")
	return firstErr
}
