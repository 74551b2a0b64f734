package pages_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pagesfeature "github.com/courseloft/courseloft/internal/app/features/pages"
	pagestore "github.com/courseloft/courseloft/internal/app/store/pages"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *pagesfeature.Handler {
	return pagesfeature.NewHandler(pagestore.New(db), zap.NewNop())
}

// withSlugParam attaches a chi route parameter so handlers under test can
// read chi.URLParam without going through the full router.
func withSlugParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestServeGet_PublicTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	tenant.AllowPublicRead = true

	_, err := f.Pages.Create(ctx, models.Page{
		TenantID:  tenant.ID,
		Slug:      "home",
		Title:     "Welcome",
		Content:   "<h1>Hello</h1>",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	h := newHandler(db)
	req := httptest.NewRequest("GET", "/api/pages/home", nil)
	req = testutil.WithTenant(req, tenant)
	req = withSlugParam(req, "slug", "home")
	rr := httptest.NewRecorder()
	h.ServeGet(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var page models.Page
	testutil.DecodeJSON(t, rr, &page)
	if page.Title != "Welcome" {
		t.Errorf("expected page title Welcome, got %q", page.Title)
	}
}

func TestServeGet_PrivateTenantRequiresSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme") // AllowPublicRead defaults false
	user := f.CreateUser(ctx, tenant.ID, "Pat Learner", "pat@example.com")

	_, err := f.Pages.Create(ctx, models.Page{
		TenantID:  tenant.ID,
		Slug:      "members",
		Title:     "Members Only",
		Published: true,
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	h := newHandler(db)

	// Anonymous read is rejected.
	req := httptest.NewRequest("GET", "/api/pages/members", nil)
	req = testutil.WithTenant(req, tenant)
	req = withSlugParam(req, "slug", "members")
	rr := httptest.NewRecorder()
	h.ServeGet(rr, req)
	if rr.Code != 401 {
		t.Fatalf("expected 401 for anonymous read, got %d", rr.Code)
	}

	// A signed-in user reads the same page.
	req = httptest.NewRequest("GET", "/api/pages/members", nil)
	req = testutil.WithTenant(req, tenant)
	req = testutil.WithUser(req, user, tenant.ID)
	req = withSlugParam(req, "slug", "members")
	rr = httptest.NewRecorder()
	h.ServeGet(rr, req)
	if rr.Code != 200 {
		t.Fatalf("expected 200 for signed-in read, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestServeGet_UnpublishedIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	tenant.AllowPublicRead = true

	_, err := f.Pages.Create(ctx, models.Page{
		TenantID: tenant.ID,
		Slug:     "draft",
		Title:    "Draft",
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	h := newHandler(db)
	req := httptest.NewRequest("GET", "/api/pages/draft", nil)
	req = testutil.WithTenant(req, tenant)
	req = withSlugParam(req, "slug", "draft")
	rr := httptest.NewRecorder()
	h.ServeGet(rr, req)

	if rr.Code != 404 {
		t.Fatalf("expected 404 for unpublished page, got %d", rr.Code)
	}
}

func TestServeCreate_SanitizesContent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")

	h := newHandler(db)
	req := testutil.NewJSONRequest("POST", "/api/pages", map[string]any{
		"slug":      "landing",
		"title":     "Landing",
		"content":   `<p>Hi</p><script>alert("x")</script>`,
		"published": true,
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.ServeCreate(rr, req)

	if rr.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var page models.Page
	testutil.DecodeJSON(t, rr, &page)
	if strings.Contains(page.Content, "<script") {
		t.Errorf("script content must be stripped before storage: %q", page.Content)
	}
	if !strings.Contains(page.Content, "<p>Hi</p>") {
		t.Errorf("safe markup should survive sanitization: %q", page.Content)
	}
}

func TestServeCreate_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	if err := f.Pages.EnsureIndexes(ctx); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	h := newHandler(db)
	body := map[string]any{"slug": "home", "title": "Home"}

	req := testutil.NewJSONRequest("POST", "/api/pages", body)
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.ServeCreate(rr, req)
	if rr.Code != 201 {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}

	req = testutil.NewJSONRequest("POST", "/api/pages", body)
	req = testutil.WithTenant(req, tenant)
	rr = httptest.NewRecorder()
	h.ServeCreate(rr, req)
	if rr.Code != 409 {
		t.Fatalf("expected 409 on duplicate slug, got %d", rr.Code)
	}
}

func TestServeCreate_PageLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	tenant.Settings.MaxPages = 1

	_, err := f.Pages.Create(ctx, models.Page{
		TenantID: tenant.ID,
		Slug:     "first",
		Title:    "First",
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	h := newHandler(db)
	req := testutil.NewJSONRequest("POST", "/api/pages", map[string]any{
		"slug":  "second",
		"title": "Second",
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.ServeCreate(rr, req)

	if rr.Code != 403 {
		t.Fatalf("expected 403 at the page limit, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestServeUpdate_CrossTenantLooksMissing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	owner := f.CreateTenant(ctx, "Owner", "owner")
	intruder := f.CreateTenant(ctx, "Intruder", "intruder")

	page, err := f.Pages.Create(ctx, models.Page{
		TenantID: owner.ID,
		Slug:     "home",
		Title:    "Home",
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}

	h := newHandler(db)
	req := testutil.NewJSONRequest("PUT", "/api/pages/"+page.ID.Hex(), map[string]any{
		"title": "Defaced",
	})
	req = testutil.WithTenant(req, intruder)
	req = withSlugParam(req, "id", page.ID.Hex())
	rr := httptest.NewRecorder()
	h.ServeUpdate(rr, req)

	if rr.Code != 404 {
		t.Fatalf("cross-tenant update must look like a missing page, got %d", rr.Code)
	}

	// Original content untouched.
	stored, err := f.Pages.GetByID(ctx, page.ID)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if stored.Title != "Home" {
		t.Errorf("cross-tenant update must not change the page, got title %q", stored.Title)
	}
}
