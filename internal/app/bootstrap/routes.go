// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authgooglefeature "github.com/courseloft/courseloft/internal/app/features/authgoogle"
	domaininfofeature "github.com/courseloft/courseloft/internal/app/features/domaininfo"
	healthfeature "github.com/courseloft/courseloft/internal/app/features/health"
	lmsfeature "github.com/courseloft/courseloft/internal/app/features/lms"
	loginfeature "github.com/courseloft/courseloft/internal/app/features/login"
	logoutfeature "github.com/courseloft/courseloft/internal/app/features/logout"
	pagesfeature "github.com/courseloft/courseloft/internal/app/features/pages"
	stripefeature "github.com/courseloft/courseloft/internal/app/features/stripe"
	achievementstore "github.com/courseloft/courseloft/internal/app/store/achievements"
	customerstore "github.com/courseloft/courseloft/internal/app/store/customers"
	domainstore "github.com/courseloft/courseloft/internal/app/store/domains"
	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	lessonstore "github.com/courseloft/courseloft/internal/app/store/lessons"
	oauthstatestore "github.com/courseloft/courseloft/internal/app/store/oauthstates"
	pagestore "github.com/courseloft/courseloft/internal/app/store/pages"
	productstore "github.com/courseloft/courseloft/internal/app/store/products"
	programstore "github.com/courseloft/courseloft/internal/app/store/programs"
	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	tenantstore "github.com/courseloft/courseloft/internal/app/store/tenants"
	transactionstore "github.com/courseloft/courseloft/internal/app/store/transactions"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	videoprogressstore "github.com/courseloft/courseloft/internal/app/store/videoprogress"
	videostore "github.com/courseloft/courseloft/internal/app/store/videos"
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/billing"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed.
//
// Every request passes two global middlewares in order: LoadSessionUser
// (who is asking) and the tenancy resolver (which site they are asking).
// Feature routers then layer their own guards: the LMS API requires a
// signed-in member of the resolved tenant, page writes require an admin
// role, and the Stripe webhook stays outside session auth entirely because
// Stripe authenticates with a signature header, not a cookie.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.CourseLoftMongoDatabase

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	resolver := tenancy.NewResolver(domainstore.New(db), tenantstore.New(db), logger)

	// Tenant Stripe keys override these platform defaults per request.
	billingProvider := billing.NewProvider(billing.Defaults{
		SecretKey:      appCfg.StripeSecretKey,
		PublishableKey: appCfg.StripePublishableKey,
		WebhookSecret:  appCfg.StripeWebhookSecret,
	})

	r := chi.NewRouter()

	// Global middleware: session user first, then tenant resolution, so
	// downstream guards can compare the two.
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(tenancy.Middleware(resolver, logger))

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.CourseLoftMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Which tenant answered this hostname. Public, credential-free.
	domainInfoHandler := domaininfofeature.NewHandler(resolver, logger)
	r.Mount("/api/domain-info", domaininfofeature.Routes(domainInfoHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(userstore.New(db), sessionMgr, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(
		userstore.New(db),
		oauthstatestore.New(db),
		sessionMgr,
		appCfg.GoogleClientID,
		appCfg.GoogleClientSecret,
		appCfg.BaseURL,
		appCfg.SessionKey,
		logger,
	)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Tenant content pages. Reads honor the tenant's public-read setting;
	// writes are guarded inside the feature router.
	pagesHandler := pagesfeature.NewHandler(pagestore.New(db), logger)
	r.Route("/api/pages", func(r chi.Router) {
		r.Use(tenancy.RequireTenant)
		r.Mount("/", pagesfeature.Routes(pagesHandler, sessionMgr))
	})

	// Payments. The webhook route inside needs the tenant for key
	// resolution but must not sit behind session auth.
	stripeHandler := stripefeature.NewHandler(
		billingProvider,
		transactionstore.New(db),
		subscriptionstore.New(db),
		customerstore.New(db),
		productstore.New(db),
		logger,
	)
	r.Route("/api/stripe", func(r chi.Router) {
		r.Use(tenancy.RequireTenant)
		r.Mount("/", stripefeature.Routes(stripeHandler))
	})

	// LMS API: signed-in members of the resolved tenant only.
	lmsHandler := lmsfeature.NewHandler(
		enrollmentstore.New(db),
		videoprogressstore.New(db),
		programstore.New(db),
		videostore.New(db),
		lessonstore.New(db),
		achievementstore.New(db),
		subscriptionstore.New(db),
		productstore.New(db),
		logger,
	)
	r.Route("/api/lms", func(r chi.Router) {
		r.Use(tenancy.RequireTenant)
		r.Use(sessionMgr.RequireSignedIn)
		r.Use(tenancy.RequireMember(sessionMgr, logger))
		r.Mount("/", lmsfeature.Routes(lmsHandler))
	})

	return r, nil
}
