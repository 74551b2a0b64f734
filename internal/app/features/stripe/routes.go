// internal/app/features/stripe/routes.go
package stripe

import "github.com/go-chi/chi/v5"

// Routes returns the router for payment endpoints, mounted under /api/stripe.
// The webhook endpoint must stay outside any session middleware: Stripe
// authenticates with a signature header, not a cookie.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/create-tenant-payment-intent", h.ServeCreatePaymentIntent)
	r.Post("/create-tenant-checkout-session", h.ServeCreateCheckoutSession)
	r.Get("/tenant-publishable-key", h.ServePublishableKey)
	r.Post("/tenant-webhooks", h.ServeWebhook)

	return r
}
