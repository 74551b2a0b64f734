package tenantstore_test

import (
	"testing"

	tenantstore "github.com/courseloft/courseloft/internal/app/store/tenants"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tenantstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Tenant{
		Name: "Acme Fitness",
		Slug: "acme",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != "active" {
		t.Errorf("expected default status 'active', got %q", created.Status)
	}
	if created.NameCI != "acme fitness" {
		t.Errorf("expected folded name_ci, got %q", created.NameCI)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be stamped")
	}

	found, err := store.GetBySlug(ctx, "acme")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if found.ID != created.ID {
		t.Error("GetBySlug returned a different tenant")
	}
}

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tenantstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	if _, err := store.Create(ctx, models.Tenant{Name: "First", Slug: "shared"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Tenant{Name: "Second", Slug: "shared"})
	if err != tenantstore.ErrDuplicateSlug {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestStore_EnsureAgencyOwner_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tenantstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	first, err := store.EnsureAgencyOwner(ctx, "CourseLoft", "agency-owner")
	if err != nil {
		t.Fatalf("EnsureAgencyOwner failed: %v", err)
	}
	if !first.IsAgencyOwner {
		t.Error("expected is_agency_owner to be set")
	}

	second, err := store.EnsureAgencyOwner(ctx, "CourseLoft", "agency-owner")
	if err != nil {
		t.Fatalf("second EnsureAgencyOwner failed: %v", err)
	}
	if second.ID != first.ID {
		t.Error("expected the existing agency owner to be reused")
	}

	// The partial unique index rejects a second agency-owner tenant even
	// when inserted directly.
	_, err = store.Create(ctx, models.Tenant{
		Name:          "Impostor",
		Slug:          "impostor",
		IsAgencyOwner: true,
	})
	if err == nil {
		t.Error("expected a second agency-owner insert to be rejected")
	}
}

func TestStore_GetAgencyOwner_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := tenantstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetAgencyOwner(ctx); err != tenantstore.ErrNotFound {
		t.Errorf("expected ErrNotFound with no agency owner, got %v", err)
	}
}
