package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillsenselab/healthcore/component"
	"github.com/skillsenselab/healthcore/config"
	"github.com/skillsenselab/healthcore/dashboard"
	"github.com/skillsenselab/healthcore/integration"
	"github.com/skillsenselab/healthcore/logger"
)

// Deps are the core surfaces the API reads from. Dashboard is required;
// the rest enable their routes when present.
type Deps struct {
	Dashboard    *dashboard.Dashboard
	Registry     *component.Registry
	Monitor      *integration.Monitor
	Points       *integration.PointRegistry
	PromRegistry *promclient.Registry
}

// Server serves the read-only monitoring API over Gin.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	cfg        config.ServerConfig
	log        *logger.Logger
}

// New creates a Server and registers all routes.
func New(cfg config.ServerConfig, deps Deps, log *logger.Logger) *Server {
	gin.SetMode(ginMode(cfg.Mode))

	engine := gin.New()
	engine.Use(Recovery(log))
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))

	s := &Server{
		engine: engine,
		cfg:    cfg,
		log:    log.WithComponent("api"),
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
	s.registerRoutes(deps)
	return s
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

// Engine returns the underlying Gin engine, used by tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes(deps Deps) {
	h := newHandlers(deps)

	s.engine.GET("/healthz", h.healthz)
	if deps.PromRegistry != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.PromRegistry, promhttp.HandlerOpts{})))
	}

	v1 := s.engine.Group("/api/v1")
	v1.GET("/status", h.allStatuses)
	v1.GET("/status/:id", h.statusFor)
	v1.GET("/graph", h.graph)
	v1.GET("/history/:id", h.history)
	v1.GET("/alerts", h.alerts)
	v1.GET("/points", h.points)
	v1.GET("/integrations/:id/score", h.integrationScore)
	v1.GET("/integrations/:id/transactions", h.integrationTransactions)
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("api: bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", logger.Fields("error", err.Error()))
		}
	}()

	s.log.Info("api listening", logger.Fields("addr", s.httpServer.Addr))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
