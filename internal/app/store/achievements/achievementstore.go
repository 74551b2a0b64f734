// internal/app/store/achievements/achievementstore.go
package achievementstore

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

// Store covers both achievement definitions and per-user unlock records.
type Store struct {
	defs    *mongo.Collection
	unlocks *mongo.Collection
}

var (
	ErrDuplicateKey    = errors.New("an achievement with this key already exists for the tenant")
	ErrAlreadyUnlocked = errors.New("user has already earned this achievement")
	ErrNotFound        = errors.New("achievement not found")
)

func New(db *mongo.Database) *Store {
	return &Store{
		defs:    db.Collection("achievements"),
		unlocks: db.Collection("user_achievements"),
	}
}

// Create inserts an achievement definition.
func (s *Store) Create(ctx context.Context, a models.Achievement) (models.Achievement, error) {
	now := time.Now().UTC()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = now
	a.UpdatedAt = now
	if _, err := s.defs.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Achievement{}, ErrDuplicateKey
		}
		return models.Achievement{}, err
	}
	return a, nil
}

// FindByTenant returns all achievement definitions for a tenant.
func (s *Store) FindByTenant(ctx context.Context, tenantID primitive.ObjectID) ([]models.Achievement, error) {
	cur, err := s.defs.Find(ctx, bson.M{"tenant_id": tenantID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var defs []models.Achievement
	if err := cur.All(ctx, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// Unlock records that a user earned an achievement. Points are copied from
// the definition so later edits to it do not change historical totals.
func (s *Store) Unlock(ctx context.Context, userID primitive.ObjectID, a models.Achievement, progress int) (models.UserAchievement, error) {
	ua := models.UserAchievement{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		AchievementID: a.ID,
		TenantID:      a.TenantID,
		EarnedAt:      time.Now().UTC(),
		Progress:      progress,
		Points:        a.Points,
	}
	if _, err := s.unlocks.InsertOne(ctx, ua); err != nil {
		if wafflemongo.IsDup(err) {
			return models.UserAchievement{}, ErrAlreadyUnlocked
		}
		return models.UserAchievement{}, err
	}
	return ua, nil
}

// FindUnlocked returns a user's earned achievements in a tenant.
func (s *Store) FindUnlocked(ctx context.Context, userID, tenantID primitive.ObjectID) ([]models.UserAchievement, error) {
	filter := bson.M{"user_id": userID, "tenant_id": tenantID}
	cur, err := s.unlocks.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "earned_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.UserAchievement
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SumPoints totals a user's earned achievement points in a tenant.
func (s *Store) SumPoints(ctx context.Context, userID, tenantID primitive.ObjectID) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_id": userID, "tenant_id": tenantID}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$points"}}},
	}
	cur, err := s.unlocks.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, err
		}
	}
	return row.Total, nil
}

// EnsureIndexes creates indexes for both achievement collections.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	defIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_achievement_tenant_key"),
		},
	}
	if _, err := s.defs.Indexes().CreateMany(ctx, defIndexes); err != nil {
		return err
	}

	unlockIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "achievement_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_unlock_user_achievement"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_unlock_tenant_user"),
		},
	}
	_, err := s.unlocks.Indexes().CreateMany(ctx, unlockIndexes)
	return err
}
