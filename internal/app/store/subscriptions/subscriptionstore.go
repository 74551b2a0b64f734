// internal/app/store/subscriptions/subscriptionstore.go
package subscriptionstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("subscription not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("subscriptions")}
}

// Create inserts a new subscription record.
func (s *Store) Create(ctx context.Context, sub models.Subscription) (models.Subscription, error) {
	now := time.Now().UTC()
	sub.ID = primitive.NewObjectID()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, sub); err != nil {
		return models.Subscription{}, err
	}
	return sub, nil
}

// GetByStripeID retrieves a subscription by its Stripe subscription ID.
func (s *Store) GetByStripeID(ctx context.Context, stripeSubID string) (models.Subscription, error) {
	var sub models.Subscription
	err := s.c.FindOne(ctx, bson.M{"stripe_subscription_id": stripeSubID}).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// GetActiveForUser returns the user's current subscription in a tenant,
// preferring the most recently created one.
func (s *Store) GetActiveForUser(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Subscription, error) {
	var sub models.Subscription
	filter := bson.M{
		"user_id":   userID,
		"tenant_id": tenantID,
		"status":    bson.M{"$in": []string{"active", "trialing"}},
	}
	err := s.c.FindOne(ctx, filter,
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&sub)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, err
	}
	return sub, nil
}

// UpdateDetails refreshes the mutable fields of a subscription identified by
// Stripe ID: status, product, and period end. Plan changes arrive as
// customer.subscription.updated events carrying a new product ID, so a
// status-only update would strand the subscriber on their old product.
// Empty product or zero period end leave the stored values untouched.
func (s *Store) UpdateDetails(ctx context.Context, stripeSubID, newStatus, stripeProductID string, periodEnd time.Time) error {
	set := bson.M{"status": newStatus, "updated_at": time.Now().UTC()}
	if stripeProductID != "" {
		set["stripe_product_id"] = stripeProductID
	}
	if !periodEnd.IsZero() {
		set["current_period_end"] = periodEnd
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus sets the status of a subscription identified by Stripe ID.
func (s *Store) UpdateStatus(ctx context.Context, stripeSubID, newStatus string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"stripe_subscription_id": stripeSubID},
		bson.M{"$set": bson.M{"status": newStatus, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureIndexes creates indexes for the subscriptions collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stripe_subscription_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_sub_stripe_id"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "tenant_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sub_user_tenant"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
