package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Achievement is a static achievement definition for a tenant.
type Achievement struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	Key         string `bson:"key" json:"key"` // unique per tenant
	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Points      int    `bson:"points" json:"points"`

	Criteria AchievementCriteria `bson:"criteria" json:"criteria"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// AchievementCriteria describes when an achievement unlocks.
// Type: "programs_completed", "videos_completed", "learning_time_minutes".
type AchievementCriteria struct {
	Type      string `bson:"type" json:"type"`
	Threshold int    `bson:"threshold" json:"threshold"`
}

// UserAchievement is a per-user unlock record.
type UserAchievement struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"userId"`
	AchievementID primitive.ObjectID `bson:"achievement_id" json:"achievementId"`
	TenantID      primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	EarnedAt time.Time `bson:"earned_at" json:"earnedAt"`

	// Progress toward the criteria threshold at the time of the last update.
	Progress int `bson:"progress" json:"progress"`

	// Points copied from the definition at unlock time so point totals
	// survive later edits to the definition.
	Points int `bson:"points" json:"points"`
}
