package domaininfo

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Handler serves the public domain-info endpoint the frontend calls on load
// to learn which tenant a hostname belongs to.
type Handler struct {
	Resolver *tenancy.Resolver
	Log      *zap.Logger
}

// NewHandler creates the handler. Resolver may be nil, in which case only
// the tenant already resolved from the request host is served.
func NewHandler(resolver *tenancy.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Resolver: resolver, Log: logger}
}

// tenantInfo is the public-safe view of a tenant: no Stripe keys, no limits.
type tenantInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Status          string `json:"status"`
	Domain          string `json:"domain,omitempty"`
	AllowPublicRead bool   `json:"allowPublicRead"`
	StripeEnabled   bool   `json:"stripeEnabled"`
}

type domainInfoResponse struct {
	Tenant            *tenantInfo `json:"tenant"`
	EnableCustomPages bool        `json:"enableCustomPages"`
}

// Serve handles GET /api/domain-info.
//
// By default it reports the tenant resolved from the request host. A
// ?domain=<hostname> query asks about another hostname instead, which the
// admin dashboard uses to preview domain mappings. An unresolved hostname is
// not an error: the response is 200 with a null tenant, so callers can tell
// "no tenant here" apart from a lookup failure.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)

	if q := r.URL.Query().Get("domain"); q != "" && h.Resolver != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		info, err := h.Resolver.Resolve(ctx, q)
		if err != nil {
			h.Log.Warn("domain-info: resolution failed", zap.String("domain", q), zap.Error(err))
		}
		t = info
	}

	resp := domainInfoResponse{}
	if t != nil {
		resp.Tenant = &tenantInfo{
			ID:              t.ID.Hex(),
			Name:            t.Name,
			Slug:            t.Slug,
			Status:          t.Status,
			Domain:          t.Domain,
			AllowPublicRead: t.AllowPublicRead,
			StripeEnabled:   t.Stripe.Enabled,
		}
		resp.EnableCustomPages = t.Settings.EnableCustomPages
	} else {
		h.Log.Debug("domain-info: no tenant for host", zap.String("host", r.Host))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
