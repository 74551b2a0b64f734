package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The billing collections mirror Stripe objects. They are written by the
// webhook feature, not by direct user action, so each carries the Stripe ID
// it mirrors plus tenant scoping.

// Product mirrors a Stripe product with the access tier it unlocks.
type Product struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	StripeProductID string `bson:"stripe_product_id" json:"stripeProductId"`
	StripePriceID   string `bson:"stripe_price_id,omitempty" json:"stripePriceId,omitempty"`

	Name string `bson:"name" json:"name"`

	// AccessLevel granted by an active subscription to this product:
	// free | basic | premium | vip
	AccessLevel string `bson:"access_level" json:"accessLevel"`

	Active bool `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Subscription mirrors a Stripe subscription.
type Subscription struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	UserID *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`

	StripeSubscriptionID string `bson:"stripe_subscription_id" json:"stripeSubscriptionId"`
	StripeCustomerID     string `bson:"stripe_customer_id" json:"stripeCustomerId"`
	StripeProductID      string `bson:"stripe_product_id,omitempty" json:"stripeProductId,omitempty"`

	// Status as reported by Stripe: active, trialing, past_due, canceled, ...
	Status string `bson:"status" json:"status"`

	CurrentPeriodEnd time.Time `bson:"current_period_end,omitempty" json:"currentPeriodEnd,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// IsActive reports whether the subscription currently grants access.
func (s Subscription) IsActive() bool {
	return s.Status == "active" || s.Status == "trialing"
}

// Transaction mirrors a succeeded Stripe payment intent.
type Transaction struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	UserID *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`

	StripePaymentIntentID string `bson:"stripe_payment_intent_id" json:"stripePaymentIntentId"`
	StripeCustomerID      string `bson:"stripe_customer_id,omitempty" json:"stripeCustomerId,omitempty"`

	// StripeEventID is the webhook event that produced this record. Stripe
	// retries deliveries, so the unique index on it makes recording idempotent.
	StripeEventID string `bson:"stripe_event_id" json:"-"`

	Amount   int64  `bson:"amount" json:"amount"` // smallest currency unit
	Currency string `bson:"currency" json:"currency"`
	Status   string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Customer mirrors a Stripe customer linked to a CourseLoft user.
type Customer struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	UserID *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`

	StripeCustomerID string `bson:"stripe_customer_id" json:"stripeCustomerId"`
	Email            string `bson:"email,omitempty" json:"email,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
