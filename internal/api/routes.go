package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes wires up the full HTTP surface: unauthenticated health,
// pixel, and webhook endpoints, and API-key-gated message/topic
// endpoints.
func (h *Handlers) Routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-KEY"},
		MaxAge:         300,
	}))

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	r.Get("/v1/events/open", h.HandleOpen)
	r.Post("/v1/events/results", h.HandleWebhook)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAPIKey)
		r.Post("/v1/messages", h.HandleCreate)
		r.Get("/v1/topics/{id}", h.HandleTopicRead)
		r.Delete("/v1/topics/{id}", h.HandleTopicStop)
		r.Get("/v1/events/counts/sent", h.HandleSentCount)
	})

	return r
}
