package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", promhttp.Handler())

	// Webhooks — per-source HMAC auth.
	r.Post("/webhooks/{source}", g.dispatcher.ServeHTTP)

	// Live event feed.
	r.Get("/ws/events", g.handleEvents())

	// API endpoints — auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
			r.Route("/api", func(r chi.Router) {
				r.Post("/capture", g.handleCapture())
				r.Patch("/clarify", g.handleClarify())
				r.Post("/enrich", g.handleEnrich())
				r.Get("/ideas/{id}", g.handleGetIdea())
				r.Get("/stats", g.handleStats())
				r.Get("/categories", g.handleListCategories())
				r.Post("/categories", g.handleAddCategory())
			})
		})
	}

	return r
}
