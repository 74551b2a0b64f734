// internal/app/store/lessons/lessonstore.go
package lessonstore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/status"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("lesson not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lessons")}
}

// Create inserts a new live lesson.
func (s *Store) Create(ctx context.Context, l models.Lesson) (models.Lesson, error) {
	now := time.Now().UTC()
	l.ID = primitive.NewObjectID()
	if l.Status == "" {
		l.Status = status.Active
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Lesson{}, err
	}
	return l, nil
}

// FindUpcoming returns lessons for a tenant starting after now, soonest first.
func (s *Store) FindUpcoming(ctx context.Context, tenantID primitive.ObjectID, after time.Time, limit int64) ([]models.Lesson, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"status":    status.Active,
		"starts_at": bson.M{"$gt": after},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "starts_at", Value: 1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var lessons []models.Lesson
	if err := cur.All(ctx, &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}

// EnsureIndexes creates indexes for the lessons collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "starts_at", Value: 1}},
			Options: options.Index().SetName("idx_lesson_tenant_starts"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
