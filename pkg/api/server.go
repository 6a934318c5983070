// Package api is the Public Surface: the HTTP endpoints and SSE stream the
// Collaboration Engine exposes to external collaborators (front-end, CLI).
// Follows a route-registration order and middleware.BodyLimit usage pattern
// common to Echo v5 services, with the collaboration components wired in
// directly rather than through a database/services layer.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"

	"github.com/codeready-toolchain/orchestratord/pkg/collab"
	"github.com/codeready-toolchain/orchestratord/pkg/config"
	"github.com/codeready-toolchain/orchestratord/pkg/engine"
	"github.com/codeready-toolchain/orchestratord/pkg/sandbox"
	"github.com/codeready-toolchain/orchestratord/pkg/session"
	"github.com/codeready-toolchain/orchestratord/pkg/skill"
	"github.com/codeready-toolchain/orchestratord/pkg/version"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg      *config.Holder
	bus      *collab.Bus
	store    *collab.Store
	sessions *session.Manager
	engine   *engine.Engine
	skills   *skill.Library
	sandbox  sandbox.Runner
}

// NewServer wires every collaboration component into an Echo v5 server,
// taking its services as constructor arguments rather than package-level
// globals.
func NewServer(cfg *config.Holder, bus *collab.Bus, store *collab.Store, sessions *session.Manager, eng *engine.Engine, skills *skill.Library, sb sandbox.Runner) *Server {
	e := echo.New()

	s := &Server{
		echo:     e,
		cfg:      cfg,
		bus:      bus,
		store:    store,
		sessions: sessions,
		engine:   eng,
		skills:   skills,
		sandbox:  sb,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers every endpoint the Public Surface exposes.
func (s *Server) setupRoutes() {
	// Server-wide body size limit, ahead of any application-level size check.
	s.echo.Use(middleware.BodyLimit(2 * 1024 * 1024))
	s.echo.Use(securityHeaders())

	s.echo.GET("/health", s.healthHandler)

	s.echo.POST("/chat", s.chatHandler)
	s.echo.GET("/events", s.eventsHandler)
	s.echo.GET("/collaboration/head", s.collaborationHeadHandler)
	s.echo.POST("/collaboration/input/:slot", s.collaborationInputHandler)

	s.echo.GET("/config", s.getConfigHandler)
	s.echo.PUT("/config", s.putConfigHandler)
	s.echo.POST("/models/:slot/config", s.patchSlotConfigHandler)

	s.echo.POST("/skills/:id/test", s.skillTestHandler)
	s.echo.POST("/skills/:id/promote", s.skillPromoteHandler)
	s.echo.POST("/skills/:id/execute", s.skillExecuteHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.echo}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, as
// the orchestratord entrypoint does after opening its own listener.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server, then tears down the
// collaboration components in order: cancel every live session, drain the
// Event Bus, then close the Collaboration Store's file appenders.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}

	s.sessions.CancelAll()
	s.bus.Drain()
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	return firstErr
}

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	cfg := s.cfg.Load()
	stats := cfg.Stats()

	resp := HealthResponse{
		OK:      true,
		Version: version.Full(),
		Configuration: ConfigurationStats{
			Slots:        stats.Slots,
			EnabledSlots: stats.EnabledSlots,
		},
		ActiveSessions: len(s.sessions.List(true)),
		BusDrops:       s.bus.TotalDrops(),
		BusSubscribers: s.bus.SubscriberCount(),
	}
	return c.JSON(http.StatusOK, resp)
}

const sseKeepAliveInterval = 15 * time.Second
