package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a global identity. A user may belong to multiple tenants with
// different tenant-level roles in each; tenant membership lives on the user
// document rather than in a join collection because membership lists are
// small and always read together with the user.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"fullName"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	EmailCI    string             `bson:"email_ci" json:"-"`

	// PasswordHash is empty for OAuth-only accounts.
	PasswordHash string `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string `bson:"auth_method,omitempty" json:"authMethod,omitempty"` // password | google

	// Role: super-admin | admin | regular
	Role   string `bson:"role" json:"role"`
	Status string `bson:"status,omitempty" json:"status,omitempty"`

	Tenants []TenantMembership `bson:"tenants,omitempty" json:"tenants,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// TenantMembership records a user's roles within one tenant.
// Tenant roles: "tenant-admin", "tenant-viewer".
type TenantMembership struct {
	TenantID primitive.ObjectID `bson:"tenant_id" json:"tenantId"`
	Roles    []string           `bson:"roles" json:"roles"`
}

// MemberOf reports whether the user has any membership in the given tenant.
func (u User) MemberOf(tenantID primitive.ObjectID) bool {
	for _, m := range u.Tenants {
		if m.TenantID == tenantID {
			return true
		}
	}
	return false
}

// TenantRoles returns the user's roles within the given tenant, or nil.
func (u User) TenantRoles(tenantID primitive.ObjectID) []string {
	for _, m := range u.Tenants {
		if m.TenantID == tenantID {
			return m.Roles
		}
	}
	return nil
}
