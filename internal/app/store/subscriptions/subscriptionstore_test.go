package subscriptionstore_test

import (
	"testing"
	"time"

	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/courseloft/courseloft/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_UpdateDetails_PlanChange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := subscriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Subscription{
		TenantID:             primitive.NewObjectID(),
		StripeSubscriptionID: "sub_plan_change",
		StripeProductID:      "prod_basic",
		Status:               "active",
		CurrentPeriodEnd:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newEnd := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	err = store.UpdateDetails(ctx, "sub_plan_change", "active", "prod_premium", newEnd)
	if err != nil {
		t.Fatalf("UpdateDetails failed: %v", err)
	}

	got, err := store.GetByStripeID(ctx, "sub_plan_change")
	if err != nil {
		t.Fatalf("GetByStripeID failed: %v", err)
	}
	if got.StripeProductID != "prod_premium" {
		t.Errorf("expected product prod_premium after plan change, got %q", got.StripeProductID)
	}
	if !got.CurrentPeriodEnd.Equal(newEnd) {
		t.Errorf("expected period end %v, got %v", newEnd, got.CurrentPeriodEnd)
	}
	if got.ID != created.ID {
		t.Error("UpdateDetails should modify the existing record, not create one")
	}
}

func TestStore_UpdateDetails_EmptyFieldsKeepStoredValues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := subscriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	end := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	_, err := store.Create(ctx, models.Subscription{
		TenantID:             primitive.NewObjectID(),
		StripeSubscriptionID: "sub_partial",
		StripeProductID:      "prod_basic",
		Status:               "active",
		CurrentPeriodEnd:     end,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.UpdateDetails(ctx, "sub_partial", "past_due", "", time.Time{})
	if err != nil {
		t.Fatalf("UpdateDetails failed: %v", err)
	}

	got, err := store.GetByStripeID(ctx, "sub_partial")
	if err != nil {
		t.Fatalf("GetByStripeID failed: %v", err)
	}
	if got.Status != "past_due" {
		t.Errorf("expected status past_due, got %q", got.Status)
	}
	if got.StripeProductID != "prod_basic" {
		t.Errorf("empty product should keep stored value, got %q", got.StripeProductID)
	}
	if !got.CurrentPeriodEnd.Equal(end) {
		t.Errorf("zero period end should keep stored value, got %v", got.CurrentPeriodEnd)
	}
}

func TestStore_UpdateDetails_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := subscriptionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := store.UpdateDetails(ctx, "sub_missing", "active", "prod_basic", time.Now())
	if err != subscriptionstore.ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
