package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video is a standalone or program-linked video.
type Video struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	ProgramID *primitive.ObjectID `bson:"program_id,omitempty" json:"programId,omitempty"`

	Title           string `bson:"title" json:"title"`
	TitleCI         string `bson:"title_ci" json:"-"`
	DurationSeconds int    `bson:"duration_seconds" json:"durationSeconds"`

	Featured bool   `bson:"featured" json:"featured"`
	Status   string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
