package stripe_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	stripefeature "github.com/courseloft/courseloft/internal/app/features/stripe"
	"github.com/courseloft/courseloft/internal/app/system/billing"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newHandler(defaults billing.Defaults) *stripefeature.Handler {
	// Store-less handler: these tests only exercise paths that reject before
	// touching Mongo or the Stripe API.
	return stripefeature.NewHandler(billing.NewProvider(defaults), nil, nil, nil, nil, zap.NewNop())
}

func tenantWithStripe(ts models.TenantStripe) models.Tenant {
	return models.Tenant{
		ID:     primitive.NewObjectID(),
		Name:   "Acme Fitness",
		Slug:   "acme",
		Status: "active",
		Stripe: ts,
	}
}

func TestPublishableKey_Unconfigured(t *testing.T) {
	h := newHandler(billing.Defaults{})

	req := httptest.NewRequest("GET", "/api/stripe/tenant-publishable-key", nil)
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServePublishableKey(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 when no key configured anywhere, got %d", rr.Code)
	}
}

func TestPublishableKey_TenantKey(t *testing.T) {
	h := newHandler(billing.Defaults{PublishableKey: "pk_test_platform", SecretKey: "sk_test_platform"})

	req := httptest.NewRequest("GET", "/api/stripe/tenant-publishable-key", nil)
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{
		Enabled:        true,
		SecretKey:      "sk_live_tenant",
		PublishableKey: "pk_live_tenant",
	}))
	rr := httptest.NewRecorder()
	h.ServePublishableKey(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp map[string]any
	testutil.DecodeJSON(t, rr, &resp)
	if resp["publishableKey"] != "pk_live_tenant" {
		t.Errorf("expected tenant publishable key, got %v", resp["publishableKey"])
	}
	if resp["testMode"] != false {
		t.Errorf("live tenant key should not report test mode, got %v", resp["testMode"])
	}
}

func TestPublishableKey_UnknownHost(t *testing.T) {
	h := newHandler(billing.Defaults{PublishableKey: "pk_test_platform"})

	rr := httptest.NewRecorder()
	h.ServePublishableKey(rr, httptest.NewRequest("GET", "/api/stripe/tenant-publishable-key", nil))

	if rr.Code != 404 {
		t.Fatalf("expected 404 without tenant context, got %d", rr.Code)
	}
}

func TestCreatePaymentIntent_Unconfigured(t *testing.T) {
	h := newHandler(billing.Defaults{})

	req := testutil.NewJSONRequest("POST", "/api/stripe/create-tenant-payment-intent",
		map[string]any{"amount": 1999, "currency": "usd"})
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeCreatePaymentIntent(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 when stripe unconfigured, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not configured") {
		t.Errorf("expected not-configured message, got %q", rr.Body.String())
	}
}

func TestCreatePaymentIntent_InvalidAmount(t *testing.T) {
	h := newHandler(billing.Defaults{SecretKey: "sk_test_platform"})

	req := testutil.NewJSONRequest("POST", "/api/stripe/create-tenant-payment-intent",
		map[string]any{"amount": 0})
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeCreatePaymentIntent(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 for non-positive amount, got %d", rr.Code)
	}
}

func TestCreateCheckoutSession_MissingFields(t *testing.T) {
	h := newHandler(billing.Defaults{SecretKey: "sk_test_platform"})

	req := testutil.NewJSONRequest("POST", "/api/stripe/create-tenant-checkout-session",
		map[string]any{"priceId": "price_123"}) // no success/cancel URLs
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeCreateCheckoutSession(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 for missing URLs, got %d", rr.Code)
	}
}

func TestWebhook_Unconfigured(t *testing.T) {
	h := newHandler(billing.Defaults{SecretKey: "sk_test_platform"}) // no webhook secret

	req := testutil.NewJSONRequest("POST", "/api/stripe/tenant-webhooks", map[string]any{})
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeWebhook(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 without webhook secret, got %d", rr.Code)
	}
}

func TestWebhook_BadSignature(t *testing.T) {
	h := newHandler(billing.Defaults{SecretKey: "sk_test_platform", WebhookSecret: "whsec_test"})

	req := testutil.NewJSONRequest("POST", "/api/stripe/tenant-webhooks",
		map[string]any{"id": "evt_123", "type": "payment_intent.succeeded"})
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeWebhook(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 for bad signature, got %d", rr.Code)
	}
}

func TestWebhook_BodyTooLarge(t *testing.T) {
	h := newHandler(billing.Defaults{SecretKey: "sk_test_platform", WebhookSecret: "whsec_test"})

	body := strings.NewReader(strings.Repeat("a", 1<<16+1))
	req := httptest.NewRequest("POST", "/api/stripe/tenant-webhooks", body)
	req.Header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	req = testutil.WithTenant(req, tenantWithStripe(models.TenantStripe{}))
	rr := httptest.NewRecorder()
	h.ServeWebhook(rr, req)

	if rr.Code != 413 {
		t.Fatalf("expected 413 for oversized body, got %d", rr.Code)
	}
}
