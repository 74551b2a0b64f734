// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/courseloft/courseloft/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Global roles.
const (
	RoleSuperAdmin = "super-admin"
	RoleAdmin      = "admin"
	RoleRegular    = "regular"
)

// Tenant-level roles.
const (
	TenantAdmin  = "tenant-admin"
	TenantViewer = "tenant-viewer"
)

// UserCtx returns the user's role (lowercased), name, Mongo ObjectID, and a
// found flag. If no user is present in context or the user ID is malformed,
// it returns "visitor", "", NilObjectID, false, so ok=true always means a
// valid, authenticated user with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsSuperAdmin reports whether the current request's user is a super-admin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == RoleSuperAdmin
}

// IsAdmin reports whether the current request's user is an admin.
// Super-admins are also considered admins for permission purposes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && (role == RoleAdmin || role == RoleSuperAdmin)
}

// SessionTenantID returns the tenant captured in the session at sign-in.
// Returns NilObjectID if not signed in or the session has no tenant.
func SessionTenantID(r *http.Request) primitive.ObjectID {
	user, ok := auth.CurrentUser(r)
	if !ok || user.TenantID == "" {
		return primitive.NilObjectID
	}
	oid, err := primitive.ObjectIDFromHex(user.TenantID)
	if err != nil {
		return primitive.NilObjectID
	}
	return oid
}
