package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	assessmentapi "github.com/gravywork/assessment-backend/internal/api/assessment"
	"github.com/gravywork/assessment-backend/internal/api/middleware"
	webhookapi "github.com/gravywork/assessment-backend/internal/api/webhook"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(assessmentHandler *assessmentapi.Handler, webhookHandler *webhookapi.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(chimiddleware.RequestID)                 // Add request ID
	r.Use(middleware.Logger(logger))               // Log requests
	r.Use(middleware.CORS)                         // Handle CORS
	r.Use(chimiddleware.Timeout(60 * time.Second)) // Default timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Register routes
	assessmentapi.RegisterRoutes(r, assessmentHandler)
	webhookapi.RegisterRoutes(r, webhookHandler)

	return r
}
