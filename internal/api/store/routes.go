package store

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers store and document routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/stores", func(r chi.Router) {
		r.Get("/", h.ListStores)
		r.Post("/", h.CreateStore)

		r.Route("/{store_id}", func(r chi.Router) {
			r.Get("/", h.GetStore)
			r.Delete("/", h.DeleteStore)

			r.Route("/documents", func(r chi.Router) {
				r.Get("/", h.ListDocuments)
				r.Post("/", h.ImportFile)
				r.Delete("/{document_id}", h.DeleteDocument)
			})
		})
	})
}
