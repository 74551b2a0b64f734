// Package tenancy resolves the tenant for each request from the Host header
// and carries it through the request context for scoped queries.
package tenancy

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/status"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ctxKey string

const tenantKey ctxKey = "tenant"

// AgencyOwnerSlug is the reserved slug for the platform-owner tenant that
// serves localhost and otherwise-unmatched development hosts.
const AgencyOwnerSlug = "agency-owner"

// Info holds the resolved tenant for the current request.
type Info struct {
	ID     primitive.ObjectID
	Slug   string
	Name   string
	Status string

	// Domain is the hostname that matched, empty when the tenant was
	// resolved by slug or localhost fallback.
	Domain string

	AllowPublicRead bool
	Settings        models.TenantSettings
	Stripe          models.TenantStripe
}

// DomainStore defines the domain lookups the resolver needs.
type DomainStore interface {
	GetActiveByHostname(ctx context.Context, hostname string) (models.Domain, error)
	FindActiveContaining(ctx context.Context, fragment string) ([]models.Domain, error)
}

// TenantStore defines the tenant lookups the resolver needs.
type TenantStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (models.Tenant, error)
	GetAgencyOwner(ctx context.Context) (models.Tenant, error)
}

// Resolver maps request hostnames to tenants. Lookups are memoized for a
// short TTL since the domain table changes rarely and every request pays
// the cost otherwise.
type Resolver struct {
	domains DomainStore
	tenants TenantStore
	logger  *zap.Logger

	ttl     time.Duration
	mu      sync.Mutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	info    *Info
	expires time.Time
}

// NewResolver creates a Resolver with a 30 second memoization TTL.
func NewResolver(domains DomainStore, tenants TenantStore, logger *zap.Logger) *Resolver {
	return &Resolver{
		domains: domains,
		tenants: tenants,
		logger:  logger,
		ttl:     30 * time.Second,
		cache:   make(map[string]cacheEntry),
	}
}

// Resolve maps a request host to its tenant. The lookup order is:
//
//  1. localhost / 127.0.0.1 resolve to the agency-owner tenant
//  2. exact match on an active custom domain
//  3. substring match on the part of the host before the first dot
//     (covers subdomain setups like acme.courseloft.com)
//  4. the first host label as a tenant slug
//
// Resolve never fails the request: lookup errors are logged and return
// (nil, nil) so handlers can decide how to respond to an unknown host.
func (res *Resolver) Resolve(ctx context.Context, host string) (*Info, error) {
	hostname := strings.ToLower(host)
	if idx := strings.Index(hostname, ":"); idx != -1 {
		hostname = hostname[:idx]
	}
	if hostname == "" {
		return nil, nil
	}

	if info, ok := res.cached(hostname); ok {
		return info, nil
	}

	info := res.resolve(ctx, hostname)
	if info != nil {
		res.store(hostname, info)
	}
	return info, nil
}

func (res *Resolver) resolve(ctx context.Context, hostname string) *Info {
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return res.agencyOwner(ctx)
	}

	// Exact custom-domain match.
	d, err := res.domains.GetActiveByHostname(ctx, hostname)
	if err == nil {
		if info := res.tenantInfo(ctx, d.TenantID, hostname); info != nil {
			return info
		}
	}

	candidate := hostname
	if idx := strings.Index(hostname, "."); idx != -1 {
		candidate = hostname[:idx]
	}
	if candidate == "" {
		return nil
	}

	// Partial match: a stored domain containing the subdomain label.
	matches, err := res.domains.FindActiveContaining(ctx, candidate)
	if err != nil {
		res.logger.Warn("domain partial lookup failed",
			zap.String("host", hostname), zap.Error(err))
	} else if len(matches) > 0 {
		if info := res.tenantInfo(ctx, matches[0].TenantID, matches[0].Domain); info != nil {
			return info
		}
	}

	// Last resort: the label is a tenant slug.
	t, err := res.tenants.GetBySlug(ctx, candidate)
	if err != nil {
		res.logger.Debug("no tenant for host",
			zap.String("host", hostname), zap.String("candidate", candidate))
		return nil
	}
	if !t.IsActive() {
		return nil
	}
	return infoFromTenant(t, "")
}

func (res *Resolver) agencyOwner(ctx context.Context) *Info {
	t, err := res.tenants.GetAgencyOwner(ctx)
	if err != nil {
		t, err = res.tenants.GetBySlug(ctx, AgencyOwnerSlug)
		if err != nil {
			res.logger.Warn("agency owner tenant not found", zap.Error(err))
			return nil
		}
	}
	return infoFromTenant(t, "")
}

func (res *Resolver) tenantInfo(ctx context.Context, tenantID primitive.ObjectID, domain string) *Info {
	t, err := res.tenants.GetByID(ctx, tenantID)
	if err != nil {
		res.logger.Warn("domain points at missing tenant",
			zap.String("tenant_id", tenantID.Hex()), zap.Error(err))
		return nil
	}
	if !t.IsActive() {
		return nil
	}
	return infoFromTenant(t, domain)
}

func infoFromTenant(t models.Tenant, domain string) *Info {
	return &Info{
		ID:              t.ID,
		Slug:            t.Slug,
		Name:            t.Name,
		Status:          t.Status,
		Domain:          domain,
		AllowPublicRead: t.AllowPublicRead,
		Settings:        t.Settings,
		Stripe:          t.Stripe,
	}
}

func (res *Resolver) cached(hostname string) (*Info, bool) {
	res.mu.Lock()
	defer res.mu.Unlock()
	e, ok := res.cache[hostname]
	if !ok || time.Now().After(e.expires) {
		delete(res.cache, hostname)
		return nil, false
	}
	return e.info, true
}

func (res *Resolver) store(hostname string, info *Info) {
	res.mu.Lock()
	defer res.mu.Unlock()
	res.cache[hostname] = cacheEntry{info: info, expires: time.Now().Add(res.ttl)}
}

// Invalidate drops a host from the memoization cache. Called after domain
// or tenant edits so changes take effect without waiting out the TTL.
func (res *Resolver) Invalidate(hostname string) {
	res.mu.Lock()
	defer res.mu.Unlock()
	delete(res.cache, strings.ToLower(hostname))
}

// Middleware resolves the tenant for every request and stores it in the
// request context. Requests to unknown hosts proceed without tenant context;
// handlers that need one use RequireTenant or FromRequest.
func Middleware(res *Resolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
			defer cancel()

			info, err := res.Resolve(ctx, r.Host)
			if err != nil {
				logger.Warn("tenant resolution failed",
					zap.String("host", r.Host), zap.Error(err))
			}
			if info != nil {
				r = withTenant(r, info)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromRequest returns the tenant info from the request context, or nil.
func FromRequest(r *http.Request) *Info {
	if t, ok := r.Context().Value(tenantKey).(*Info); ok {
		return t
	}
	return nil
}

// FromContext returns the tenant info from the context, or nil.
func FromContext(ctx context.Context) *Info {
	if t, ok := ctx.Value(tenantKey).(*Info); ok {
		return t
	}
	return nil
}

// IDFromRequest returns the tenant ID from the request context.
// Returns primitive.NilObjectID if no tenant is set.
func IDFromRequest(r *http.Request) primitive.ObjectID {
	t := FromRequest(r)
	if t == nil {
		return primitive.NilObjectID
	}
	return t.ID
}

func withTenant(r *http.Request, t *Info) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), tenantKey, t))
}

// RequireTenant returns middleware that rejects requests with no resolved
// tenant. API requests get 404 JSON-ish plain text; there is no HTML fallback
// because every route behind it is an API route.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromRequest(r) == nil {
			http.Error(w, "Unknown domain", http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMember returns middleware that ensures the signed-in user belongs to
// the request's tenant. Super-admins pass for any tenant. A session bound to
// a different tenant (or to none) is terminated and the request is rejected,
// so a cookie issued on one tenant's domain never grants access to another.
func RequireMember(sessions *auth.SessionManager, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.CurrentUser(r)
			if !ok {
				reject(w, r, http.StatusUnauthorized, "Sign in required")
				return
			}
			if user.IsSuperAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			t := FromRequest(r)
			if t == nil || user.TenantID == "" || user.TenantID != t.ID.Hex() {
				logger.Info("session tenant mismatch",
					zap.String("user_id", user.ID),
					zap.String("session_tenant", user.TenantID),
					zap.String("host", r.Host))
				sessions.SignOut(w, r)
				reject(w, r, http.StatusUnauthorized, "Access denied for this site")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, code int, msg string) {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "text/html") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Error(w, msg, code)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Query Helpers                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// Filter adds tenant_id to a bson.M filter map for scoped queries.
// If no tenant context exists the filter is unchanged.
func Filter(r *http.Request, filter map[string]interface{}) {
	t := FromRequest(r)
	if t == nil {
		return
	}
	filter["tenant_id"] = t.ID
}

// MustFilter adds tenant_id to a filter map and reports whether a tenant was
// found. Callers use the false return to reject unscoped requests.
func MustFilter(r *http.Request, filter map[string]interface{}) bool {
	t := FromRequest(r)
	if t == nil {
		return false
	}
	filter["tenant_id"] = t.ID
	return true
}

// SetOnDoc sets tenant_id on a document map for new records and returns the
// tenant ID that was set (NilObjectID if no tenant context).
func SetOnDoc(r *http.Request, doc map[string]interface{}) primitive.ObjectID {
	t := FromRequest(r)
	if t == nil {
		return primitive.NilObjectID
	}
	doc["tenant_id"] = t.ID
	return t.ID
}

/*─────────────────────────────────────────────────────────────────────────────*
| Test Helpers                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// WithTestTenant returns a request with tenant context set for testing.
func WithTestTenant(r *http.Request, id primitive.ObjectID, slug, name string) *http.Request {
	return withTenant(r, &Info{
		ID:     id,
		Slug:   slug,
		Name:   name,
		Status: status.Active,
	})
}

// WithTestTenantInfo returns a request with a full tenant Info set for testing.
func WithTestTenantInfo(r *http.Request, info *Info) *http.Request {
	return withTenant(r, info)
}

// WithTestTenantCtx returns a context with tenant info set for testing.
func WithTestTenantCtx(ctx context.Context, id primitive.ObjectID, slug, name string) context.Context {
	return context.WithValue(ctx, tenantKey, &Info{
		ID:     id,
		Slug:   slug,
		Name:   name,
		Status: status.Active,
	})
}
