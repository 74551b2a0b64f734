// internal/app/store/videos/videostore.go
package videostore

import (
	"context"
	"errors"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/status"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrNotFound = errors.New("video not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("videos")}
}

// Create inserts a new video.
func (s *Store) Create(ctx context.Context, v models.Video) (models.Video, error) {
	now := time.Now().UTC()
	v.ID = primitive.NewObjectID()
	v.TitleCI = text.Fold(v.Title)
	if v.Status == "" {
		v.Status = status.Active
	}
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return models.Video{}, err
	}
	return v, nil
}

// GetByID retrieves a video by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Video, error) {
	var v models.Video
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, err
	}
	return v, nil
}

// FindFeatured returns active featured videos for a tenant.
func (s *Store) FindFeatured(ctx context.Context, tenantID primitive.ObjectID, limit int64) ([]models.Video, error) {
	filter := bson.M{
		"tenant_id": tenantID,
		"featured":  true,
		"status":    status.Active,
	}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "title_ci", Value: 1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// FindByIDs returns videos for the given IDs (used to hydrate progress rows).
func (s *Store) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var videos []models.Video
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

// EnsureIndexes creates indexes for the videos collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "featured", Value: 1}},
			Options: options.Index().SetName("idx_video_tenant_featured"),
		},
		{
			Keys:    bson.D{{Key: "program_id", Value: 1}},
			Options: options.Index().SetName("idx_video_program"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
