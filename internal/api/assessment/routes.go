package assessment

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers assessment routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/initiate", h.InitiateAssessment)

	r.Route("/assessments", func(r chi.Router) {
		r.Get("/", h.ListAssessments)
		r.Post("/{id}/process", h.ProcessAssessment)
		r.Get("/{id}/results", h.GetResult)
	})
}
