package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Domain maps an inbound hostname to a tenant.
//
// A tenant can own several domains (e.g. "academy.example.com" plus a custom
// apex domain) but at most one of them is the default; a unique partial index
// on (tenant_id, is_default=true) enforces that.
type Domain struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Domain   string             `bson:"domain" json:"domain"` // full hostname, unique
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`

	IsRootDomain bool `bson:"is_root_domain" json:"isRootDomain"`
	IsActive     bool `bson:"is_active" json:"isActive"`
	IsDefault    bool `bson:"is_default" json:"isDefault"`

	// Optional landing page served at the domain root.
	LandingPageID *primitive.ObjectID `bson:"landing_page_id,omitempty" json:"landingPageId,omitempty"`

	// Optional redirect target; when set, requests to this domain are
	// redirected instead of served.
	RedirectTo string `bson:"redirect_to,omitempty" json:"redirectTo,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
