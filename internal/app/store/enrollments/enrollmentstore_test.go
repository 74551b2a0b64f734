package enrollmentstore_test

import (
	"testing"

	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_OnePerUserAndProgram(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes failed: %v", err)
	}

	userID := primitive.NewObjectID()
	programID := primitive.NewObjectID()
	tenantID := primitive.NewObjectID()

	created, err := store.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: programID,
		TenantID:  tenantID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.EnrollmentActive {
		t.Errorf("expected default status active, got %q", created.Status)
	}
	if created.EnrolledAt.IsZero() {
		t.Error("expected EnrolledAt to be stamped")
	}

	_, err = store.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: programID,
		TenantID:  tenantID,
	})
	if err != enrollmentstore.ErrAlreadyEnrolled {
		t.Errorf("expected ErrAlreadyEnrolled, got %v", err)
	}
}

func TestStore_UpdateProgress_CompletionInvariant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Enrollment{
		UserID:    primitive.NewObjectID(),
		ProgramID: primitive.NewObjectID(),
		TenantID:  primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A payload that claims "active" at full progress still lands completed.
	updated, err := store.UpdateProgress(ctx, created.ID, 100, models.EnrollmentActive, 120)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if updated.Status != models.EnrollmentCompleted {
		t.Errorf("progress 100 must force status completed, got %q", updated.Status)
	}
	if updated.CompletedAt == nil {
		t.Error("completed enrollment must carry completed_at")
	}
	if updated.TotalTimeSpentSeconds != 120 {
		t.Errorf("expected 120 seconds recorded, got %d", updated.TotalTimeSpentSeconds)
	}

	// The persisted document matches what was returned.
	stored, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != models.EnrollmentCompleted || stored.CompletedAt == nil {
		t.Errorf("persisted enrollment lost the completion invariant: %+v", stored)
	}
}

func TestStore_UpdateProgress_ClampsRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Enrollment{
		UserID:    primitive.NewObjectID(),
		ProgramID: primitive.NewObjectID(),
		TenantID:  primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	over, err := store.UpdateProgress(ctx, created.ID, 150, "", 0)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if over.Progress != 100 {
		t.Errorf("expected progress clamped to 100, got %v", over.Progress)
	}

	second, err := store.Create(ctx, models.Enrollment{
		UserID:    primitive.NewObjectID(),
		ProgramID: primitive.NewObjectID(),
		TenantID:  primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	under, err := store.UpdateProgress(ctx, second.ID, -5, "", 0)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if under.Progress != 0 {
		t.Errorf("expected progress clamped to 0, got %v", under.Progress)
	}
}

func TestStore_CountByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := enrollmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()
	tenantID := primitive.NewObjectID()

	active, err := store.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: primitive.NewObjectID(),
		TenantID:  tenantID,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_ = active

	done, err := store.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: primitive.NewObjectID(),
		TenantID:  tenantID,
		Progress:  100,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if done.Status != models.EnrollmentCompleted {
		t.Fatalf("enrollment created at progress 100 should land completed, got %q", done.Status)
	}

	// An enrollment in another tenant must not leak into the counts.
	if _, err := store.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: primitive.NewObjectID(),
		TenantID:  primitive.NewObjectID(),
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	total, completed, err := store.CountByUser(ctx, userID, tenantID)
	if err != nil {
		t.Fatalf("CountByUser failed: %v", err)
	}
	if total != 2 || completed != 1 {
		t.Errorf("expected total=2 completed=1, got total=%d completed=%d", total, completed)
	}
}
