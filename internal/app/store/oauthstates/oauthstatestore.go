// internal/app/store/oauthstates/oauthstatestore.go
package oauthstatestore

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

var ErrNotFound = errors.New("oauth state not found or expired")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("oauth_states")}
}

// Create stores a pending OAuth state token with a TTL.
func (s *Store) Create(ctx context.Context, st models.OAuthState) (models.OAuthState, error) {
	now := time.Now().UTC()
	st.ID = primitive.NewObjectID()
	st.CreatedAt = now
	if st.ExpiresAt.IsZero() {
		st.ExpiresAt = now.Add(10 * time.Minute)
	}
	if _, err := s.c.InsertOne(ctx, st); err != nil {
		return models.OAuthState{}, err
	}
	return st, nil
}

// Consume atomically fetches and deletes a state token. A token can only be
// redeemed once; expired tokens are rejected even if the TTL monitor has not
// swept them yet.
func (s *Store) Consume(ctx context.Context, state string) (models.OAuthState, error) {
	var st models.OAuthState
	err := s.c.FindOneAndDelete(ctx, bson.M{"state": state}).Decode(&st)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.OAuthState{}, ErrNotFound
		}
		return models.OAuthState{}, err
	}
	if time.Now().UTC().After(st.ExpiresAt) {
		return models.OAuthState{}, ErrNotFound
	}
	return st, nil
}

// EnsureIndexes creates the TTL and lookup indexes for oauth_states.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "state", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_oauth_state"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_oauth_expiry"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
