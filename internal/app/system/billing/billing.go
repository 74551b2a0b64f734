// Package billing resolves the Stripe configuration for a tenant and builds
// per-request Stripe clients from it.
//
// Every tenant can carry its own Stripe credentials. Fields a tenant leaves
// empty fall back individually to the process-wide defaults, so one tenant on
// its own Stripe account never mixes keys with a tenant on the platform
// account. Clients are constructed per request from the resolved config;
// there is no package-level key.
package billing

import (
	"errors"
	"strings"

	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/stripe/stripe-go/v82/client"
)

// ErrNotConfigured means neither the tenant nor the process defaults carry a
// usable secret key. Handlers translate it to a 400 for payment endpoints.
var ErrNotConfigured = errors.New("stripe is not configured for this tenant")

// Config is the fully resolved Stripe configuration for one tenant.
type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string

	// TestMode reports whether the resolved secret key is a test-mode key.
	TestMode bool

	// Enabled reflects the tenant's billing toggle. A disabled tenant still
	// resolves to the defaults so platform-level billing keeps working.
	Enabled bool
}

// Defaults are the process-wide Stripe credentials used when a tenant does
// not carry its own. Loaded from configuration at startup.
type Defaults struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
}

// Provider resolves tenant Stripe configs against the process defaults.
type Provider struct {
	defaults Defaults
}

func NewProvider(defaults Defaults) *Provider {
	return &Provider{defaults: defaults}
}

// Resolve merges a tenant's Stripe settings over the process defaults,
// field by field. Tenants with billing disabled resolve to pure defaults.
func (p *Provider) Resolve(ts models.TenantStripe) Config {
	cfg := Config{
		SecretKey:      p.defaults.SecretKey,
		PublishableKey: p.defaults.PublishableKey,
		WebhookSecret:  p.defaults.WebhookSecret,
		Enabled:        ts.Enabled,
	}

	if ts.Enabled {
		if ts.SecretKey != "" {
			cfg.SecretKey = ts.SecretKey
		}
		if ts.PublishableKey != "" {
			cfg.PublishableKey = ts.PublishableKey
		}
		if ts.WebhookSecret != "" {
			cfg.WebhookSecret = ts.WebhookSecret
		}
	}

	if ts.Enabled && ts.TestMode != nil {
		cfg.TestMode = *ts.TestMode
	} else {
		cfg.TestMode = IsTestKey(cfg.SecretKey)
	}
	return cfg
}

// IsTestKey reports whether a Stripe secret key is a test-mode key.
func IsTestKey(secretKey string) bool {
	return strings.Contains(secretKey, "_test_")
}

// Client builds a Stripe API client for the resolved config. Returns
// ErrNotConfigured when no secret key is available from any source.
func (cfg Config) Client() (*client.API, error) {
	if cfg.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	sc := &client.API{}
	sc.Init(cfg.SecretKey, nil)
	return sc, nil
}
