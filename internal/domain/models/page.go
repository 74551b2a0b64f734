package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page is a tenant marketing/landing page. Content is HTML that has been
// sanitized on write; handlers serve it as-is.
type Page struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	Slug    string `bson:"slug" json:"slug"` // unique per tenant
	Title   string `bson:"title" json:"title"`
	Content string `bson:"content" json:"content"`

	Published bool `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
