package login_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	loginfeature "github.com/courseloft/courseloft/internal/app/features/login"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database) *loginfeature.Handler {
	t.Helper()
	sessionMgr, err := auth.NewSessionManager(strings.Repeat("k", 32), "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	return loginfeature.NewHandler(userstore.New(db), sessionMgr, zap.NewNop())
}

func createPasswordUser(t *testing.T, db *mongo.Database, email, password string, tenantID primitive.ObjectID) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := loginfeature.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	users := userstore.New(db)
	u, err := users.Create(ctx, models.User{
		FullName:     "Pat Learner",
		Email:        email,
		PasswordHash: hash,
		AuthMethod:   "password",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if !tenantID.IsZero() {
		if err := users.AddTenantMembership(ctx, u.ID, tenantID, []string{"tenant-viewer"}); err != nil {
			t.Fatalf("add membership: %v", err)
		}
	}
	return u
}

func TestServe_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	user := createPasswordUser(t, db, "pat@example.com", "correct horse", tenant.ID)

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "correct horse",
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		ID       string `json:"id"`
		Role     string `json:"role"`
		TenantID string `json:"tenantId"`
	}
	testutil.DecodeJSON(t, rr, &resp)
	if resp.ID != user.ID.Hex() {
		t.Errorf("expected user id %s, got %s", user.ID.Hex(), resp.ID)
	}
	if resp.TenantID != tenant.ID.Hex() {
		t.Errorf("session should be bound to the resolved tenant, got %q", resp.TenantID)
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Error("expected a session cookie to be set")
	}
}

func TestServe_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	createPasswordUser(t, db, "pat@example.com", "correct horse", tenant.ID)

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "wrong",
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 401 {
		t.Fatalf("expected 401 for wrong password, got %d", rr.Code)
	}
}

func TestServe_NonMemberGetsSameMessageAsWrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	home := f.CreateTenant(ctx, "Home", "home")
	other := f.CreateTenant(ctx, "Other", "other")
	createPasswordUser(t, db, "pat@example.com", "correct horse", home.ID)

	h := newHandler(t, db)

	wrongPassword := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "wrong",
	})
	wrongPassword = testutil.WithTenant(wrongPassword, home)
	rrWrong := httptest.NewRecorder()
	h.Serve(rrWrong, wrongPassword)

	// Correct password on a tenant the user does not belong to.
	nonMember := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "correct horse",
	})
	nonMember = testutil.WithTenant(nonMember, other)
	rrMember := httptest.NewRecorder()
	h.Serve(rrMember, nonMember)

	if rrMember.Code != 401 {
		t.Fatalf("expected 401 for non-member, got %d", rrMember.Code)
	}
	if rrWrong.Body.String() != rrMember.Body.String() {
		t.Errorf("non-member and wrong-password responses must be indistinguishable: %q vs %q",
			rrWrong.Body.String(), rrMember.Body.String())
	}
}

func TestServe_OAuthOnlyAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")
	// Fixture users have no password hash.
	f.CreateUser(ctx, tenant.ID, "Pat Learner", "pat@example.com")

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "anything",
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 401 {
		t.Fatalf("expected 401 for an OAuth-only account, got %d", rr.Code)
	}
}

func TestServe_SuperAdminOnAnyHost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	tenant := f.CreateTenant(ctx, "Acme Fitness", "acme")

	hash, err := loginfeature.HashPassword("root password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	_, err = userstore.New(db).Create(ctx, models.User{
		FullName:     "Root",
		Email:        "root@example.com",
		PasswordHash: hash,
		Role:         "super-admin",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "root@example.com",
		"password": "root password",
	})
	req = testutil.WithTenant(req, tenant)
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	// No membership record, but super-admins sign in anywhere.
	if rr.Code != 200 {
		t.Fatalf("expected 200 for super-admin, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestServe_UnknownDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)

	createPasswordUser(t, db, "pat@example.com", "correct horse", primitive.NilObjectID)

	h := newHandler(t, db)
	// No tenant in context: the hostname resolved to nothing.
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{
		"email":    "pat@example.com",
		"password": "correct horse",
	})
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 404 {
		t.Fatalf("expected 404 on an unresolved host, got %d", rr.Code)
	}
}

func TestServe_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := newHandler(t, db)
	req := testutil.NewJSONRequest("POST", "/login", map[string]string{"email": "pat@example.com"})
	rr := httptest.NewRecorder()
	h.Serve(rr, req)

	if rr.Code != 400 {
		t.Fatalf("expected 400 without a password, got %d", rr.Code)
	}
}
