package domaininfo_test

import (
	"net/http/httptest"
	"testing"

	"github.com/courseloft/courseloft/internal/app/features/domaininfo"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestServe_ResolvedTenant(t *testing.T) {
	h := domaininfo.NewHandler(nil, zap.NewNop())

	tenant := models.Tenant{
		ID:              primitive.NewObjectID(),
		Name:            "Acme Fitness",
		Slug:            "acme",
		Status:          "active",
		AllowPublicRead: true,
		Settings:        models.TenantSettings{EnableCustomPages: true},
		Stripe:          models.TenantStripe{Enabled: true, SecretKey: "sk_test_x"},
	}

	req := httptest.NewRequest("GET", "/api/domain-info", nil)
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp map[string]any
	testutil.DecodeJSON(t, rr, &resp)

	sub, ok := resp["tenant"].(map[string]any)
	if !ok {
		t.Fatalf("expected tenant object in response, got %v", resp["tenant"])
	}
	if sub["id"] != tenant.ID.Hex() {
		t.Errorf("expected tenant id %s, got %v", tenant.ID.Hex(), sub["id"])
	}
	if sub["slug"] != "acme" {
		t.Errorf("expected slug acme, got %v", sub["slug"])
	}
	if sub["stripeEnabled"] != true {
		t.Error("expected stripeEnabled true")
	}
	if resp["enableCustomPages"] != true {
		t.Error("expected enableCustomPages true")
	}
	// Credentials must never leak through this endpoint.
	for _, k := range []string{"secretKey", "publishableKey", "webhookSecret", "stripe"} {
		if _, leaked := sub[k]; leaked {
			t.Errorf("response leaked field %q", k)
		}
	}
}

func TestServe_UnknownHost(t *testing.T) {
	h := domaininfo.NewHandler(nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/domain-info", nil)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200 for unresolved host, got %d", rr.Code)
	}

	var resp map[string]any
	testutil.DecodeJSON(t, rr, &resp)
	if resp["tenant"] != nil {
		t.Errorf("expected null tenant for unresolved host, got %v", resp["tenant"])
	}
	if resp["enableCustomPages"] != false {
		t.Errorf("expected enableCustomPages false without a tenant, got %v", resp["enableCustomPages"])
	}
}

func TestServe_DomainEchoedWhenMatched(t *testing.T) {
	h := domaininfo.NewHandler(nil, zap.NewNop())

	req := httptest.NewRequest("GET", "/api/domain-info", nil)
	req = tenancy.WithTestTenantInfo(req, &tenancy.Info{
		ID:     primitive.NewObjectID(),
		Slug:   "acme",
		Name:   "Acme Fitness",
		Status: "active",
		Domain: "learn.acmefitness.com",
	})
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	var resp map[string]any
	testutil.DecodeJSON(t, rr, &resp)
	sub, ok := resp["tenant"].(map[string]any)
	if !ok {
		t.Fatalf("expected tenant object in response, got %v", resp["tenant"])
	}
	if sub["domain"] != "learn.acmefitness.com" {
		t.Errorf("expected matched domain in response, got %v", sub["domain"])
	}
}
