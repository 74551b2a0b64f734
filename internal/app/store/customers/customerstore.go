// internal/app/store/customers/customerstore.go
package customerstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("customer not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("customers")}
}

// Upsert links a user to a Stripe customer ID within a tenant. The mapping
// is one per (tenant, user); a second insert for the pair is a no-op.
func (s *Store) Upsert(ctx context.Context, c models.Customer) (models.Customer, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			if c.UserID != nil {
				return s.GetByUser(ctx, *c.UserID, c.TenantID)
			}
			return s.GetByStripeID(ctx, c.StripeCustomerID)
		}
		return models.Customer{}, err
	}
	return c, nil
}

// GetByUser retrieves the Stripe customer mapping for (user, tenant).
func (s *Store) GetByUser(ctx context.Context, userID, tenantID primitive.ObjectID) (models.Customer, error) {
	var c models.Customer
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "tenant_id": tenantID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Customer{}, ErrNotFound
		}
		return models.Customer{}, err
	}
	return c, nil
}

// GetByStripeID retrieves the mapping for a Stripe customer ID.
func (s *Store) GetByStripeID(ctx context.Context, stripeCustomerID string) (models.Customer, error) {
	var c models.Customer
	err := s.c.FindOne(ctx, bson.M{"stripe_customer_id": stripeCustomerID}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Customer{}, ErrNotFound
		}
		return models.Customer{}, err
	}
	return c, nil
}

// EnsureIndexes creates indexes for the customers collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_customer_tenant_user"),
		},
		{
			Keys:    bson.D{{Key: "stripe_customer_id", Value: 1}},
			Options: options.Index().SetName("idx_customer_stripe_id"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
