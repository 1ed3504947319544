package webhook

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers telephony webhook routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/webhook", func(r chi.Router) {
		r.Post("/", h.Answer)
		r.Post("/recording", h.Recording)
		r.Post("/gather", h.Gather)
	})
}
