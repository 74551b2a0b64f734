// internal/app/store/videoprogress/progressstore.go
package videoprogressstore

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

var ErrNotFound = errors.New("video progress not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("video_progress")}
}

// Upsert records a watch-progress update for (user, video). The completion
// invariant is applied before the write: progress at or past the threshold
// stores completed=true regardless of the submitted value, and a completed
// record is never un-completed by a later lower-progress update.
func (s *Store) Upsert(ctx context.Context, p models.VideoProgress) (models.VideoProgress, error) {
	now := time.Now().UTC()
	p.Normalize()
	p.LastWatchedAt = now

	existing, err := s.Get(ctx, p.UserID, p.VideoID)
	switch {
	case err == ErrNotFound:
		p.ID = primitive.NewObjectID()
		p.FirstWatchedAt = now
		if _, err := s.c.InsertOne(ctx, p); err != nil {
			return models.VideoProgress{}, err
		}
		return p, nil
	case err != nil:
		return models.VideoProgress{}, err
	}

	p.ID = existing.ID
	p.FirstWatchedAt = existing.FirstWatchedAt
	p.WatchTimeSeconds += existing.WatchTimeSeconds
	if existing.Completed {
		p.Completed = true
	}

	set := bson.M{
		"progress":           p.Progress,
		"current_time":       p.CurrentTime,
		"duration":           p.Duration,
		"completed":          p.Completed,
		"watch_time_seconds": p.WatchTimeSeconds,
		"last_watched_at":    p.LastWatchedAt,
	}
	if _, err := s.c.UpdateByID(ctx, existing.ID, bson.M{"$set": set}); err != nil {
		return models.VideoProgress{}, err
	}
	return p, nil
}

// Get retrieves the progress record for (user, video).
func (s *Store) Get(ctx context.Context, userID, videoID primitive.ObjectID) (models.VideoProgress, error) {
	var p models.VideoProgress
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "video_id": videoID}).Decode(&p)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.VideoProgress{}, ErrNotFound
		}
		return models.VideoProgress{}, err
	}
	return p, nil
}

// FindRecentByUser returns a user's most recently watched videos in a tenant.
func (s *Store) FindRecentByUser(ctx context.Context, userID, tenantID primitive.ObjectID, limit int64) ([]models.VideoProgress, error) {
	filter := bson.M{"user_id": userID, "tenant_id": tenantID}
	cur, err := s.c.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "last_watched_at", Value: -1}}).
		SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.VideoProgress
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CountCompleted returns the number of videos a user has completed in a tenant.
func (s *Store) CountCompleted(ctx context.Context, userID, tenantID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"tenant_id": tenantID,
		"completed": true,
	})
}

// SumWatchTime aggregates total watch seconds across a user's videos.
func (s *Store) SumWatchTime(ctx context.Context, userID, tenantID primitive.ObjectID) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_id": userID, "tenant_id": tenantID}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$watch_time_seconds"}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
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

// EnsureIndexes creates indexes for the video_progress collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "video_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_progress_user_video"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}, {Key: "last_watched_at", Value: -1}},
			Options: options.Index().SetName("idx_progress_recent"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
