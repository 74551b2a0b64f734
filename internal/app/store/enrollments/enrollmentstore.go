// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

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
	ErrAlreadyEnrolled = errors.New("user is already enrolled in this program")
	ErrNotFound        = errors.New("enrollment not found")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

// Create inserts a new enrollment. The completion invariant is applied
// before the write, so an enrollment created at progress 100 lands completed.
func (s *Store) Create(ctx context.Context, e models.Enrollment) (models.Enrollment, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	if e.Status == "" {
		e.Status = models.EnrollmentActive
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = now
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	e.Normalize(now)

	_, err := s.c.InsertOne(ctx, e)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Enrollment{}, ErrAlreadyEnrolled
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// GetByID retrieves an enrollment by ID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Enrollment{}, ErrNotFound
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// GetByUserProgram retrieves a user's enrollment in one program.
func (s *Store) GetByUserProgram(ctx context.Context, userID, programID primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "program_id": programID}).Decode(&e)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return models.Enrollment{}, ErrNotFound
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// FindByUser returns a user's enrollments within a tenant, newest first.
func (s *Store) FindByUser(ctx context.Context, userID, tenantID primitive.ObjectID) ([]models.Enrollment, error) {
	filter := bson.M{"user_id": userID, "tenant_id": tenantID}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "enrolled_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var enrollments []models.Enrollment
	if err := cur.All(ctx, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}

// UpdateProgress sets progress/status/time-spent on an enrollment.
//
// The update is read-modify-write rather than a blind $set so the completion
// invariant holds no matter what the caller submitted: progress >= 100
// forces status=completed and stamps completed_at if unset, even when the
// same payload carried status "active".
func (s *Store) UpdateProgress(ctx context.Context, id primitive.ObjectID, progress float64, submittedStatus string, addTimeSpent int) (models.Enrollment, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Enrollment{}, err
	}

	now := time.Now().UTC()
	e.Progress = progress
	if submittedStatus != "" {
		e.Status = submittedStatus
	}
	e.TotalTimeSpentSeconds += addTimeSpent
	e.UpdatedAt = now
	e.Normalize(now)

	set := bson.M{
		"progress":                 e.Progress,
		"status":                   e.Status,
		"total_time_spent_seconds": e.TotalTimeSpentSeconds,
		"updated_at":               e.UpdatedAt,
	}
	if e.CompletedAt != nil {
		set["completed_at"] = *e.CompletedAt
	}

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

// CompleteLesson appends a completed lesson, recomputes progress from the
// program's lesson count, and applies the completion invariant.
func (s *Store) CompleteLesson(ctx context.Context, id primitive.ObjectID, lessonIndex, timeSpent, lessonCount int) (models.Enrollment, error) {
	e, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Enrollment{}, err
	}

	for _, cl := range e.CompletedLessons {
		if cl.LessonIndex == lessonIndex {
			return e, nil // already recorded
		}
	}

	now := time.Now().UTC()
	e.CompletedLessons = append(e.CompletedLessons, models.CompletedLesson{
		LessonIndex:      lessonIndex,
		CompletedAt:      now,
		TimeSpentSeconds: timeSpent,
	})
	e.TotalTimeSpentSeconds += timeSpent
	if lessonCount > 0 {
		e.Progress = float64(len(e.CompletedLessons)) / float64(lessonCount) * 100
	}
	e.UpdatedAt = now
	e.Normalize(now)

	set := bson.M{
		"completed_lessons":        e.CompletedLessons,
		"progress":                 e.Progress,
		"status":                   e.Status,
		"total_time_spent_seconds": e.TotalTimeSpentSeconds,
		"updated_at":               e.UpdatedAt,
	}
	if e.CompletedAt != nil {
		set["completed_at"] = *e.CompletedAt
	}

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return models.Enrollment{}, err
	}
	return e, nil
}

// CountByUser returns enrollment counts (total, completed) for a user in a tenant.
func (s *Store) CountByUser(ctx context.Context, userID, tenantID primitive.ObjectID) (total, completed int64, err error) {
	base := bson.M{"user_id": userID, "tenant_id": tenantID}
	total, err = s.c.CountDocuments(ctx, base)
	if err != nil {
		return 0, 0, err
	}
	done := bson.M{"user_id": userID, "tenant_id": tenantID, "status": models.EnrollmentCompleted}
	completed, err = s.c.CountDocuments(ctx, done)
	if err != nil {
		return 0, 0, err
	}
	return total, completed, nil
}

// SumTimeSpent aggregates total learning seconds across a user's enrollments.
func (s *Store) SumTimeSpent(ctx context.Context, userID, tenantID primitive.ObjectID) (int64, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"user_id": userID, "tenant_id": tenantID}},
		{"$group": bson.M{"_id": nil, "total": bson.M{"$sum": "$total_time_spent_seconds"}}},
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

// EnsureIndexes creates indexes for the enrollments collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		// One enrollment per user per program
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "program_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_enrollment_user_program"),
		},
		{
			Keys:    bson.D{{Key: "tenant_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_enrollment_tenant_user"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_enrollment_status"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
