/*
server.go - HTTP router and middleware configuration

Chi router with the standard middleware stack (request logging, panic
recovery, request IDs), CORS for the form front end, and per-IP rate
limiting so a misbehaving kiosk cannot starve the log.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterOptions carries the server knobs that come from configuration.
type RouterOptions struct {
	CORSOrigins     []string
	RateLimitPerSec float64
	RateLimitBurst  int
}

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
		}))
	}
	if opts.RateLimitPerSec > 0 {
		r.Use(RateLimit(opts.RateLimitPerSec, opts.RateLimitBurst))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", h.SubmitTransaction)
		r.Post("/inspections", h.SubmitInspection)

		r.Route("/assets", func(r chi.Router) {
			r.Get("/", h.ListAssets)
			r.Get("/{key}/state", h.GetState)
			r.Get("/{key}/history", h.GetHistory)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/usage", h.UsageReport)
			r.Get("/transactions", h.TransactionReport)
		})

		r.Get("/health", h.Health)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, RejectedResponse{Reason: "not found"})
	})

	return r
}
