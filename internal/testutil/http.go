package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewJSONRequest builds a request with a JSON body and Content-Type set.
func NewJSONRequest(method, target string, body any) *http.Request {
	var rdr io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithTenant injects the given tenant into the request context.
func WithTenant(r *http.Request, t models.Tenant) *http.Request {
	return tenancy.WithTestTenantInfo(r, &tenancy.Info{
		ID:              t.ID,
		Slug:            t.Slug,
		Name:            t.Name,
		Status:          t.Status,
		AllowPublicRead: t.AllowPublicRead,
		Settings:        t.Settings,
		Stripe:          t.Stripe,
	})
}

// WithUser injects a signed-in session user bound to the given tenant.
func WithUser(r *http.Request, u models.User, tenantID primitive.ObjectID) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName,
		Email:    u.Email,
		Role:     u.Role,
		TenantID: tenantID.Hex(),
	})
}

// DecodeJSON decodes a recorded response body into out, failing the test on error.
func DecodeJSON(t *testing.T, rr *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rr.Body.String())
	}
}
