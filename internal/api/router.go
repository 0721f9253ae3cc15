package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware())
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/", s.handleRegisterSensor)
			// Registered before /{id} so "near" is never parsed as an ID
			r.Get("/near", s.handleFindNear)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSensor)
				r.Delete("/", s.handleDeleteSensor)
				r.Get("/data", s.handleGetTelemetry)
				r.Post("/data", s.handleRecordTelemetry)
			})
		})

		// WebSocket telemetry feed
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// componentHealthTimeout bounds each per-store ping during a health check.
const componentHealthTimeout = 2 * time.Second

// handleHealth returns the server health status. When component health
// checks are wired, each backing store is pinged and reported; a single
// failing component degrades the overall status without hiding the rest.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	components := make(map[string]string, len(s.health))
	for name, check := range s.health {
		ctx, cancel := context.WithTimeout(r.Context(), componentHealthTimeout)
		if err := check(ctx); err != nil {
			components[name] = err.Error()
			status = "degraded"
		} else {
			components[name] = "ok"
		}
		cancel()
	}

	body := map[string]any{
		"status":  status,
		"version": s.version,
	}
	if len(components) > 0 {
		body["components"] = components
	}
	writeJSON(w, http.StatusOK, body)
}
