// Package api provides the HTTP REST API and WebSocket server for Home
// Electronics Core.
//
// It exposes account registration, token issuance, room and device CRUD,
// and the per-room realtime channel the mobile clients connect to.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/trandq/home-electronics-core/internal/auth"
	"github.com/trandq/home-electronics-core/internal/device"
	"github.com/trandq/home-electronics-core/internal/infrastructure/config"
	"github.com/trandq/home-electronics-core/internal/infrastructure/logging"
	"github.com/trandq/home-electronics-core/internal/infrastructure/mqtt"
	"github.com/trandq/home-electronics-core/internal/realtime"
	"github.com/trandq/home-electronics-core/internal/room"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  *config.Config
	Logger  *logging.Logger
	Users   auth.UserRepository
	Rooms   room.Repository
	Devices device.Repository
	MQTT    *mqtt.Client // optional: enables cross-instance room broadcasts
	Version string
}

// Server is the HTTP API and WebSocket server.
//
// It manages the HTTP listener, routes, middleware, and the realtime hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg     *config.Config
	logger  *logging.Logger
	users   auth.UserRepository
	rooms   room.Repository
	devices device.Repository
	mqtt    *mqtt.Client
	version string

	verifier *auth.Verifier
	guard    *realtime.Guard
	store    *device.StateStore
	hub      *realtime.Hub
	gateway  *realtime.Gateway

	server *http.Server
	cancel context.CancelFunc // stops the hub on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Users == nil || deps.Rooms == nil || deps.Devices == nil {
		return nil, fmt.Errorf("user, room and device repositories are required")
	}
	// MQTT is optional — without it room broadcasts stay in-process

	s := &Server{
		cfg:     deps.Config,
		logger:  deps.Logger,
		users:   deps.Users,
		rooms:   deps.Rooms,
		devices: deps.Devices,
		mqtt:    deps.MQTT,
		version: deps.Version,
	}

	s.verifier = auth.NewVerifier(deps.Users, deps.Config.Auth.JWTSecret)
	s.guard = realtime.NewGuard(deps.Rooms, deps.Devices)
	s.store = device.NewStateStore(deps.Devices)

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It starts the realtime hub, attaches it to the MQTT bus when one is
// configured, and launches the HTTP listener in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop the hub independently of the
	// parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	var bus realtime.Bus
	if s.mqtt != nil {
		bus = s.mqtt
	}
	s.hub = realtime.NewHub(s.logger, bus)
	go s.hub.Run(srvCtx)

	if err := s.hub.SubscribeBus(); err != nil {
		// The hub keeps broadcasting locally without the subscription, so
		// this instance's sessions still sync; cross-instance fan-out is lost.
		s.logger.Warn("room state subscription failed, broadcasts stay in-process", "error", err)
	}

	s.gateway = realtime.NewGateway(s.hub, s.guard, s.store, s.verifier, s.cfg.WebSocket, s.logger)

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server started", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Stop the hub; this disconnects every realtime session
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
