package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
// Paths carry trailing slashes because that is the URL shape the mobile
// clients were built against.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Account and token endpoints (no auth required)
		r.Post("/users/register/", s.handleRegister)
		r.Post("/token/", s.handleToken)
		r.Post("/token/refresh/", s.handleTokenRefresh)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/users/me/", s.handleMe)
			r.Patch("/users/me/", s.handleUpdateMe)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)
				r.Get("/{id}/", s.handleGetRoom)
				r.Put("/{id}/", s.handleUpdateRoom)
				r.Delete("/{id}/", s.handleDeleteRoom)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)
				r.Get("/{id}/", s.handleGetDevice)
				r.Put("/{id}/", s.handleUpdateDevice)
				r.Delete("/{id}/", s.handleDeleteDevice)
			})
		})
	})

	// WebSocket (auth via token query parameter, validated in the session)
	r.Get("/ws/devices/{room_id}/", s.handleDeviceSocket)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
