package file

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers file routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/files", func(r chi.Router) {
		r.Get("/", h.ListFiles)
		r.Post("/", h.UploadFile)

		r.Route("/{file_id}", func(r chi.Router) {
			r.Get("/", h.GetFile)
			r.Delete("/", h.DeleteFile)
		})
	})
}
