package domainstore_test

import (
	"testing"

	domainstore "github.com/courseloft/courseloft/internal/app/store/domains"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_LowercasesHostname(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := domainstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Domain{
		Domain:   "  Fitness.Example.COM ",
		TenantID: primitive.NewObjectID(),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Domain != "fitness.example.com" {
		t.Errorf("expected lowercased hostname, got %q", created.Domain)
	}

	// Lookup with mixed case still matches.
	found, err := store.GetActiveByHostname(ctx, "FITNESS.example.com")
	if err != nil {
		t.Fatalf("GetActiveByHostname failed: %v", err)
	}
	if found.ID != created.ID {
		t.Error("expected case-insensitive hostname lookup to find the domain")
	}
}

func TestStore_Create_DuplicateHostname(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := domainstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	_, err := store.Create(ctx, models.Domain{
		Domain:   "acme.example.com",
		TenantID: primitive.NewObjectID(),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Same hostname for a different tenant is still rejected.
	_, err = store.Create(ctx, models.Domain{
		Domain:   "ACME.example.com",
		TenantID: primitive.NewObjectID(),
		IsActive: true,
	})
	if err != domainstore.ErrDuplicateDomain {
		t.Errorf("expected ErrDuplicateDomain, got %v", err)
	}
}

func TestStore_Create_OneDefaultPerTenant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := domainstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	tenantID := primitive.NewObjectID()
	_, err := store.Create(ctx, models.Domain{
		Domain:    "one.example.com",
		TenantID:  tenantID,
		IsActive:  true,
		IsDefault: true,
	})
	if err != nil {
		t.Fatalf("first default Create failed: %v", err)
	}

	_, err = store.Create(ctx, models.Domain{
		Domain:    "two.example.com",
		TenantID:  tenantID,
		IsActive:  true,
		IsDefault: true,
	})
	if err != domainstore.ErrDefaultExists {
		t.Errorf("expected ErrDefaultExists for a second default, got %v", err)
	}

	// Non-default extra domains for the same tenant are fine.
	if _, err := store.Create(ctx, models.Domain{
		Domain:   "three.example.com",
		TenantID: tenantID,
		IsActive: true,
	}); err != nil {
		t.Errorf("non-default Create should succeed, got %v", err)
	}

	// A different tenant may have its own default.
	if _, err := store.Create(ctx, models.Domain{
		Domain:    "other.example.com",
		TenantID:  primitive.NewObjectID(),
		IsActive:  true,
		IsDefault: true,
	}); err != nil {
		t.Errorf("default Create for another tenant should succeed, got %v", err)
	}
}

func TestStore_GetActiveByHostname_SkipsInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := domainstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Create(ctx, models.Domain{
		Domain:   "paused.example.com",
		TenantID: primitive.NewObjectID(),
		IsActive: false,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.GetActiveByHostname(ctx, "paused.example.com")
	if err != domainstore.ErrNotFound {
		t.Errorf("inactive domain should not resolve, got %v", err)
	}
}

func TestStore_FindActiveContaining(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := domainstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Domain{
		Domain:   "studio.courseloft.io",
		TenantID: primitive.NewObjectID(),
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.FindActiveContaining(ctx, "studio")
	if err != nil {
		t.Fatalf("FindActiveContaining failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != created.ID {
		t.Errorf("expected fragment match to find the domain, got %v", found)
	}

	if empty, err := store.FindActiveContaining(ctx, ""); err != nil || len(empty) != 0 {
		t.Errorf("empty fragment must not match anything, got %v (err %v)", empty, err)
	}
	if none, err := store.FindActiveContaining(ctx, "nomatch"); err != nil || len(none) != 0 {
		t.Errorf("expected no matches for unmatched fragment, got %v (err %v)", none, err)
	}
}
