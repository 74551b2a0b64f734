// internal/app/bootstrap/appconfig.go
package bootstrap

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level, CORS, and request body size limits.
// AppConfig is where everything specific to CourseLoft lives: the Mongo
// connection, session cookies, the platform-level Stripe account, Google
// OAuth credentials, and the agency-owner bootstrap values.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connections in the driver pool
	MongoMinPoolSize uint64 // Min connections kept warm in the pool

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: courseloft-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Primary domain for the platform. Used to auto-derive the session
	// cookie domain so logins survive across tenant subdomains.
	PrimaryDomain string // e.g., "courseloft.com"

	// Base URL for OAuth callbacks and links in outbound redirects.
	BaseURL string // e.g., "https://app.courseloft.com" or "http://localhost:3000"

	// Platform-level Stripe account. Tenants without their own Stripe
	// configuration fall back to these keys.
	StripeSecretKey      string // Platform secret key (sk_live_... / sk_test_...)
	StripePublishableKey string // Platform publishable key (pk_live_... / pk_test_...)
	StripeWebhookSecret  string // Platform webhook signing secret (whsec_...)

	// Google OAuth configuration
	GoogleClientID     string // Google OAuth2 client ID
	GoogleClientSecret string // Google OAuth2 client secret

	// Agency-owner tenant bootstrap. Created on startup if missing; it is
	// the tenant that serves localhost and the bare platform domain.
	AgencyOwnerName string // Display name (e.g., "CourseLoft")
	AgencyOwnerSlug string // Slug (e.g., "agency-owner")

	// SuperAdmin bootstrap
	SuperAdminEmail string // Email of the super-admin user (promotes on startup)
}
