package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a structured course a user can enroll in.
type Program struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	Title       string `bson:"title" json:"title"`
	TitleCI     string `bson:"title_ci" json:"-"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`

	// AccessLevel is the minimum subscription tier required:
	// free | basic | premium | vip
	AccessLevel string `bson:"access_level" json:"accessLevel"`

	Featured    bool `bson:"featured" json:"featured"`
	LessonCount int  `bson:"lesson_count" json:"lessonCount"`

	// Points awarded when the program is completed.
	Points int `bson:"points" json:"points"`

	Status string `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
