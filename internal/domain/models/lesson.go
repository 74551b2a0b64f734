package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson is a scheduled live lesson (webinar/Q&A session).
type Lesson struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	ProgramID *primitive.ObjectID `bson:"program_id,omitempty" json:"programId,omitempty"`

	Title           string    `bson:"title" json:"title"`
	StartsAt        time.Time `bson:"starts_at" json:"startsAt"`
	DurationMinutes int       `bson:"duration_minutes" json:"durationMinutes"`

	// AccessLevel is the minimum subscription tier required to join.
	AccessLevel string `bson:"access_level" json:"accessLevel"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
