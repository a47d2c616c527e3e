package api

import (
	"net/http"
	"time"

	chatapi "github.com/aminanvary/Gemini-File-Search/internal/api/chat"
	"github.com/aminanvary/Gemini-File-Search/internal/api/docs"
	fileapi "github.com/aminanvary/Gemini-File-Search/internal/api/file"
	"github.com/aminanvary/Gemini-File-Search/internal/api/middleware"
	storeapi "github.com/aminanvary/Gemini-File-Search/internal/api/store"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	chatHandler *chatapi.Handler,
	storeHandler *storeapi.Handler,
	fileHandler *fileapi.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)   // Recover from panics
	r.Use(chimiddleware.RequestID)   // Add request ID
	r.Use(middleware.Logger(logger)) // Log requests
	r.Use(middleware.CORS)           // Handle CORS

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		// Proxy routes get a request timeout. The chat route is exempt:
		// chi's Timeout cancels the request context, which would cut off
		// streams that outlive the window.
		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(120 * time.Second))
			storeapi.RegisterRoutes(r, storeHandler)
			fileapi.RegisterRoutes(r, fileHandler)
		})

		chatapi.RegisterRoutes(r, chatHandler)
	})

	return r
}
