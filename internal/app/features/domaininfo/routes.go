// internal/app/features/domaininfo/routes.go
package domaininfo

import "github.com/go-chi/chi/v5"

// Routes returns the router for the public domain-info endpoint.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Serve) // mounted under /api/domain-info
	return r
}
