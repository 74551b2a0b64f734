// internal/app/features/pages/routes.go
package pages

import (
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns the router for page endpoints, mounted under /api/pages.
// Reads are public (subject to the tenant's public-read setting); writes
// require an admin-level role.
func Routes(h *Handler, sessions *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/{slug}", h.ServeGet)

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireSignedIn)
		r.Use(sessions.RequireRole("super-admin", "admin"))
		r.Post("/", h.ServeCreate)
		r.Put("/{id}", h.ServeUpdate)
	})

	return r
}
