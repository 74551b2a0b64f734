package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tenant represents a top-level customer container in CourseLoft.
// Each tenant is isolated from others and owns its:
// - Marketing pages, programs, videos, and live lessons
// - Users' enrollments, progress, and achievements
// - Stripe billing configuration
// - Domains (custom domains and subdomains of the primary domain)
//
// Exactly one tenant is flagged as the agency owner; it is the fallback for
// requests from development hosts (localhost, 127.0.0.1) and unmapped domains.
type Tenant struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"-"` // Case-insensitive for search

	// URL-safe identifier, unique across all tenants. Also used as the
	// last-resort subdomain match during domain resolution.
	Slug string `bson:"slug" json:"slug"`

	// The agency-owner tenant is the fallback for unmapped hosts.
	// A unique partial index keeps this flag on at most one document.
	IsAgencyOwner bool `bson:"is_agency_owner" json:"isAgencyOwner"`

	// Status: "active", "inactive", or "suspended"
	Status string `bson:"status" json:"status"`

	// AllowPublicRead permits unauthenticated reads of this tenant's
	// published pages and featured content.
	AllowPublicRead bool `bson:"allow_public_read" json:"allowPublicRead"`

	Settings TenantSettings `bson:"settings" json:"settings"`
	Stripe   TenantStripe   `bson:"stripe" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// TenantSettings holds per-tenant limits and feature flags.
type TenantSettings struct {
	MaxUsers          int  `bson:"max_users" json:"maxUsers"`
	MaxPages          int  `bson:"max_pages" json:"maxPages"`
	EnableCustomPages bool `bson:"enable_custom_pages" json:"enableCustomPages"`
}

// TenantStripe holds the tenant's Stripe credentials. Fields left empty fall
// back individually to the process-wide defaults when billing config is
// resolved. Never serialized to JSON.
type TenantStripe struct {
	Enabled        bool   `bson:"enabled" json:"-"`
	SecretKey      string `bson:"secret_key,omitempty" json:"-"`
	PublishableKey string `bson:"publishable_key,omitempty" json:"-"`
	WebhookSecret  string `bson:"webhook_secret,omitempty" json:"-"`

	// TestMode overrides key-based detection when set.
	TestMode *bool `bson:"test_mode,omitempty" json:"-"`
}

// IsActive reports whether the tenant may serve traffic.
func (t Tenant) IsActive() bool {
	return t.Status == "active"
}
