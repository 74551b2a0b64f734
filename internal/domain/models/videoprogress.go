package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoCompletionThreshold is the watch percentage at which a video counts
// as completed regardless of what the client submitted.
const VideoCompletionThreshold = 95.0

// VideoProgress tracks a user's position in one video.
//
// Invariant: progress >= VideoCompletionThreshold forces Completed=true.
type VideoProgress struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"userId"`
	VideoID  primitive.ObjectID `bson:"video_id" json:"videoId"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	Progress    float64 `bson:"progress" json:"progress"` // 0..100
	CurrentTime float64 `bson:"current_time" json:"currentTime"`
	Duration    float64 `bson:"duration" json:"duration"`
	Completed   bool    `bson:"completed" json:"completed"`

	WatchTimeSeconds int `bson:"watch_time_seconds" json:"watchTimeSeconds"`

	FirstWatchedAt time.Time `bson:"first_watched_at" json:"firstWatchedAt"`
	LastWatchedAt  time.Time `bson:"last_watched_at" json:"lastWatchedAt"`
}

// Normalize clamps progress and applies the completion invariant.
func (v *VideoProgress) Normalize() {
	if v.Progress < 0 {
		v.Progress = 0
	}
	if v.Progress > 100 {
		v.Progress = 100
	}
	if v.Progress >= VideoCompletionThreshold {
		v.Completed = true
	}
}
