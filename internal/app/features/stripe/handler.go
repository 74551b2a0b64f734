// Package stripe serves the tenant-scoped payment endpoints. Every request
// resolves the tenant's own Stripe configuration; no Stripe key is ever
// shared process-wide, so two tenants on different Stripe accounts can be
// served by the same process.
package stripe

import (
	"encoding/json"
	"net/http"
	"strings"

	customerstore "github.com/courseloft/courseloft/internal/app/store/customers"
	productstore "github.com/courseloft/courseloft/internal/app/store/products"
	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	transactionstore "github.com/courseloft/courseloft/internal/app/store/transactions"
	"github.com/courseloft/courseloft/internal/app/system/billing"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/google/uuid"
	stripeapi "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

// Handler holds the stores and billing provider for payment endpoints.
type Handler struct {
	Billing       *billing.Provider
	Transactions  *transactionstore.Store
	Subscriptions *subscriptionstore.Store
	Customers     *customerstore.Store
	Products      *productstore.Store
	Log           *zap.Logger
}

func NewHandler(
	provider *billing.Provider,
	transactions *transactionstore.Store,
	subscriptions *subscriptionstore.Store,
	customers *customerstore.Store,
	products *productstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Billing:       provider,
		Transactions:  transactions,
		Subscriptions: subscriptions,
		Customers:     customers,
		Products:      products,
		Log:           logger,
	}
}

// resolveConfig returns the tenant's billing config, or writes the error
// response and returns false.
func (h *Handler) resolveConfig(w http.ResponseWriter, r *http.Request) (billing.Config, *tenancy.Info, bool) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return billing.Config{}, nil, false
	}
	cfg := h.Billing.Resolve(t.Stripe)
	if cfg.SecretKey == "" {
		http.Error(w, "payments are not configured for this site", http.StatusBadRequest)
		return billing.Config{}, nil, false
	}
	return cfg, t, true
}

type paymentIntentRequest struct {
	Amount   int64  `json:"amount"` // smallest currency unit
	Currency string `json:"currency"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
	TestMode     bool   `json:"testMode"`
}

// ServeCreatePaymentIntent handles POST /api/stripe/create-tenant-payment-intent.
//
// The payment intent is created on the tenant's Stripe account with a fresh
// idempotency key, and the intent's metadata records which tenant it belongs
// to so webhook deliveries can be attributed.
func (h *Handler) ServeCreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	cfg, t, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	var req paymentIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Amount <= 0 {
		http.Error(w, "amount must be positive", http.StatusBadRequest)
		return
	}
	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	sc, err := cfg.Client()
	if err != nil {
		http.Error(w, "payments are not configured for this site", http.StatusBadRequest)
		return
	}

	params := &stripeapi.PaymentIntentParams{
		Amount:   stripeapi.Int64(req.Amount),
		Currency: stripeapi.String(currency),
		AutomaticPaymentMethods: &stripeapi.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripeapi.Bool(true),
		},
	}
	params.Context = r.Context()
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("tenant_id", t.ID.Hex())
	params.AddMetadata("tenant_slug", t.Slug)

	intent, err := sc.PaymentIntents.New(params)
	if err != nil {
		h.Log.Error("payment intent create failed",
			zap.String("tenant", t.Slug), zap.Error(err))
		http.Error(w, "payment setup failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(paymentIntentResponse{
		ClientSecret: intent.ClientSecret,
		TestMode:     cfg.TestMode,
	})
}

type checkoutRequest struct {
	PriceID    string `json:"priceId"`
	Mode       string `json:"mode"` // payment | subscription
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

type checkoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	TestMode  bool   `json:"testMode"`
}

// ServeCreateCheckoutSession handles POST /api/stripe/create-tenant-checkout-session.
func (h *Handler) ServeCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	cfg, t, ok := h.resolveConfig(w, r)
	if !ok {
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.PriceID == "" || req.SuccessURL == "" || req.CancelURL == "" {
		http.Error(w, "priceId, successUrl and cancelUrl are required", http.StatusBadRequest)
		return
	}
	mode := req.Mode
	if mode != "payment" && mode != "subscription" {
		mode = "subscription"
	}

	sc, err := cfg.Client()
	if err != nil {
		http.Error(w, "payments are not configured for this site", http.StatusBadRequest)
		return
	}

	params := &stripeapi.CheckoutSessionParams{
		Mode:       stripeapi.String(mode),
		SuccessURL: stripeapi.String(req.SuccessURL),
		CancelURL:  stripeapi.String(req.CancelURL),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{
				Price:    stripeapi.String(req.PriceID),
				Quantity: stripeapi.Int64(1),
			},
		},
	}
	params.Context = r.Context()
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("tenant_id", t.ID.Hex())

	sess, err := sc.CheckoutSessions.New(params)
	if err != nil {
		h.Log.Error("checkout session create failed",
			zap.String("tenant", t.Slug), zap.Error(err))
		http.Error(w, "checkout setup failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(checkoutResponse{
		SessionID: sess.ID,
		URL:       sess.URL,
		TestMode:  cfg.TestMode,
	})
}

type publishableKeyResponse struct {
	PublishableKey string `json:"publishableKey"`
	TestMode       bool   `json:"testMode"`
}

// ServePublishableKey handles GET /api/stripe/tenant-publishable-key.
//
// Publishable keys are safe to expose; the secret key never leaves the
// server. 400 when neither the tenant nor the platform has one configured.
func (h *Handler) ServePublishableKey(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	}

	cfg := h.Billing.Resolve(t.Stripe)
	if cfg.PublishableKey == "" {
		http.Error(w, "payments are not configured for this site", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(publishableKeyResponse{
		PublishableKey: cfg.PublishableKey,
		TestMode:       cfg.TestMode,
	})
}
