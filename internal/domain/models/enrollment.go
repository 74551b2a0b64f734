package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentPaused    = "paused"
	EnrollmentCancelled = "cancelled"
)

// Enrollment tracks a user's participation in a program.
//
// Invariant: progress >= 100 forces Status=completed and a non-nil
// CompletedAt. The store applies this on every write path, so a caller
// submitting progress=100 with status "active" still ends up completed.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	ProgramID primitive.ObjectID `bson:"program_id" json:"programId"`
	TenantID  primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	Status   string  `bson:"status" json:"status"`
	Progress float64 `bson:"progress" json:"progress"` // 0..100

	CompletedLessons []CompletedLesson `bson:"completed_lessons,omitempty" json:"completedLessons,omitempty"`

	EnrolledAt  time.Time  `bson:"enrolled_at" json:"enrolledAt"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completedAt,omitempty"`

	TotalTimeSpentSeconds int `bson:"total_time_spent_seconds" json:"totalTimeSpentSeconds"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// CompletedLesson records one finished lesson within an enrollment.
type CompletedLesson struct {
	LessonIndex      int       `bson:"lesson_index" json:"lessonIndex"`
	CompletedAt      time.Time `bson:"completed_at" json:"completedAt"`
	TimeSpentSeconds int       `bson:"time_spent_seconds" json:"timeSpentSeconds"`
}

// Normalize clamps progress to [0,100] and applies the completion invariant.
// now supplies the completion timestamp when one must be set.
func (e *Enrollment) Normalize(now time.Time) {
	if e.Progress < 0 {
		e.Progress = 0
	}
	if e.Progress > 100 {
		e.Progress = 100
	}
	if e.Progress >= 100 {
		e.Status = EnrollmentCompleted
		if e.CompletedAt == nil {
			t := now
			e.CompletedAt = &t
		}
	}
}
