// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CourseLoft.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: COURSELOFT_MONGO_URI, COURSELOFT_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "courseloft", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "courseloft-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Multi-tenant domain configuration
	{Name: "primary_domain", Default: "", Desc: "Primary platform domain for cross-subdomain cookies (e.g., courseloft.com)"},
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for OAuth callbacks"},

	// Platform-level Stripe account (tenant keys override these)
	{Name: "stripe_secret_key", Default: "", Desc: "Platform Stripe secret key"},
	{Name: "stripe_publishable_key", Default: "", Desc: "Platform Stripe publishable key"},
	{Name: "stripe_webhook_secret", Default: "", Desc: "Platform Stripe webhook signing secret"},

	// Google OAuth configuration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},

	// Agency-owner tenant bootstrap
	{Name: "agency_owner_name", Default: "CourseLoft", Desc: "Display name for the agency-owner tenant"},
	{Name: "agency_owner_slug", Default: "agency-owner", Desc: "Slug for the agency-owner tenant"},

	// SuperAdmin bootstrap
	{Name: "superadmin_email", Default: "", Desc: "Email of the super-admin user (promotes on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, COURSELOFT_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COURSELOFT", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		PrimaryDomain: appValues.String("primary_domain"),
		BaseURL:       appValues.String("base_url"),

		StripeSecretKey:      appValues.String("stripe_secret_key"),
		StripePublishableKey: appValues.String("stripe_publishable_key"),
		StripeWebhookSecret:  appValues.String("stripe_webhook_secret"),

		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),

		AgencyOwnerName: appValues.String("agency_owner_name"),
		AgencyOwnerSlug: appValues.String("agency_owner_slug"),

		SuperAdminEmail: appValues.String("superadmin_email"),
	}

	// Auto-derive the session cookie domain when a primary domain is set.
	// Cross-subdomain cookies need the leading dot (".courseloft.com") so a
	// login on the platform domain carries to tenant subdomains.
	if appCfg.SessionDomain == "" && appCfg.PrimaryDomain != "" {
		appCfg.SessionDomain = "." + appCfg.PrimaryDomain
		logger.Info("auto-derived session domain from primary domain",
			zap.String("session_domain", appCfg.SessionDomain))
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CourseLoft validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses half-configured
// Google OAuth since a dangling client ID produces confusing 500s at the
// callback instead of a clean startup failure.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}

	if appCfg.AgencyOwnerSlug == "" {
		return fmt.Errorf("agency_owner_slug must not be empty")
	}

	return nil
}
