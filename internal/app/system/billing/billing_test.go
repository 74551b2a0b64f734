package billing_test

import (
	"errors"
	"testing"

	"github.com/courseloft/courseloft/internal/app/system/billing"
	"github.com/courseloft/courseloft/internal/domain/models"
)

var defaults = billing.Defaults{
	SecretKey:      "sk_test_platform",
	PublishableKey: "pk_test_platform",
	WebhookSecret:  "whsec_platform",
}

func TestResolve_TenantKeysWin(t *testing.T) {
	p := billing.NewProvider(defaults)

	cfg := p.Resolve(models.TenantStripe{
		Enabled:        true,
		SecretKey:      "sk_live_tenant",
		PublishableKey: "pk_live_tenant",
		WebhookSecret:  "whsec_tenant",
	})

	if cfg.SecretKey != "sk_live_tenant" {
		t.Errorf("expected tenant secret key, got %q", cfg.SecretKey)
	}
	if cfg.PublishableKey != "pk_live_tenant" {
		t.Errorf("expected tenant publishable key, got %q", cfg.PublishableKey)
	}
	if cfg.WebhookSecret != "whsec_tenant" {
		t.Errorf("expected tenant webhook secret, got %q", cfg.WebhookSecret)
	}
	if cfg.TestMode {
		t.Error("live key should not resolve to test mode")
	}
}

func TestResolve_PerFieldFallback(t *testing.T) {
	p := billing.NewProvider(defaults)

	// Tenant has its own secret key but no publishable key or webhook secret.
	cfg := p.Resolve(models.TenantStripe{
		Enabled:   true,
		SecretKey: "sk_test_tenant",
	})

	if cfg.SecretKey != "sk_test_tenant" {
		t.Errorf("expected tenant secret key, got %q", cfg.SecretKey)
	}
	if cfg.PublishableKey != "pk_test_platform" {
		t.Errorf("expected platform publishable key fallback, got %q", cfg.PublishableKey)
	}
	if cfg.WebhookSecret != "whsec_platform" {
		t.Errorf("expected platform webhook secret fallback, got %q", cfg.WebhookSecret)
	}
}

func TestResolve_DisabledTenantUsesDefaults(t *testing.T) {
	p := billing.NewProvider(defaults)

	cfg := p.Resolve(models.TenantStripe{
		Enabled:   false,
		SecretKey: "sk_live_tenant", // must be ignored while disabled
	})

	if cfg.SecretKey != defaults.SecretKey {
		t.Errorf("disabled tenant should resolve platform key, got %q", cfg.SecretKey)
	}
	if cfg.Enabled {
		t.Error("Enabled should reflect the tenant toggle")
	}
}

func TestResolve_TestModeDetection(t *testing.T) {
	p := billing.NewProvider(billing.Defaults{SecretKey: "sk_live_platform"})

	if cfg := p.Resolve(models.TenantStripe{}); cfg.TestMode {
		t.Error("live platform key should not be test mode")
	}

	cfg := p.Resolve(models.TenantStripe{Enabled: true, SecretKey: "sk_test_abc"})
	if !cfg.TestMode {
		t.Error("key containing _test_ should resolve test mode")
	}
}

func TestResolve_TestModeOverride(t *testing.T) {
	p := billing.NewProvider(defaults)

	override := false
	cfg := p.Resolve(models.TenantStripe{
		Enabled:   true,
		SecretKey: "sk_test_tenant",
		TestMode:  &override,
	})
	if cfg.TestMode {
		t.Error("explicit TestMode=false should override key detection")
	}
}

func TestClient_ErrNotConfigured(t *testing.T) {
	p := billing.NewProvider(billing.Defaults{})

	cfg := p.Resolve(models.TenantStripe{})
	if _, err := cfg.Client(); !errors.Is(err, billing.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestClient_IsolatedPerConfig(t *testing.T) {
	p := billing.NewProvider(defaults)

	a, err := p.Resolve(models.TenantStripe{Enabled: true, SecretKey: "sk_test_a"}).Client()
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	b, err := p.Resolve(models.TenantStripe{Enabled: true, SecretKey: "sk_test_b"}).Client()
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	if a == b {
		t.Error("expected distinct clients per tenant config")
	}
}
