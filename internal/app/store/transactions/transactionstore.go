// internal/app/store/transactions/transactionstore.go
package transactionstore

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

var (
	// ErrDuplicateEvent means this Stripe event was already recorded.
	// Webhook deliveries are retried, so callers treat it as success.
	ErrDuplicateEvent = errors.New("transaction for this event already recorded")
	ErrNotFound       = errors.New("transaction not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("transactions")}
}

// Create records a payment transaction keyed by its Stripe event ID.
func (s *Store) Create(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Transaction{}, ErrDuplicateEvent
		}
		return models.Transaction{}, err
	}
	return t, nil
}

// FindByUser returns a user's transactions in a tenant, newest first.
func (s *Store) FindByUser(ctx context.Context, userID, tenantID primitive.ObjectID) ([]models.Transaction, error) {
	filter := bson.M{"user_id": userID, "tenant_id": tenantID}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Transaction
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsureIndexes creates indexes for the transactions collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "stripe_event_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_txn_event"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_txn_tenant_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
