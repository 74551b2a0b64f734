package login

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves password sign-in.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, SessionMgr: sessionMgr, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	TenantID string `json:"tenantId,omitempty"`
}

// Serve handles POST /login.
//
// The session is bound to the tenant resolved from the request host. A user
// who is not a member of that tenant is rejected with the same message as a
// wrong password, so the endpoint does not reveal which accounts exist where.
// Super-admins may sign in on any host.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Burn a comparison anyway to keep timing consistent.
		_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(req.Password))
		h.reject(w, r)
		return
	}

	if user.PasswordHash == "" {
		// OAuth-only account.
		h.reject(w, r)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.reject(w, r)
		return
	}
	if user.Status != "" && user.Status != "active" {
		http.Error(w, "account disabled", http.StatusForbidden)
		return
	}

	t := tenancy.FromRequest(r)
	sessionTenant := ""
	switch {
	case user.Role == "super-admin":
		if t != nil {
			sessionTenant = t.ID.Hex()
		}
	case t == nil:
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	case !user.MemberOf(t.ID):
		h.Log.Info("login rejected: not a member of tenant",
			zap.String("email", user.EmailCI),
			zap.String("tenant", t.Slug))
		h.reject(w, r)
		return
	default:
		sessionTenant = t.ID.Hex()
	}

	err = h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:       user.ID.Hex(),
		Name:     user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: sessionTenant,
	})
	if err != nil {
		h.Log.Error("session write failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{
		ID:       user.ID.Hex(),
		FullName: user.FullName,
		Email:    user.Email,
		Role:     user.Role,
		TenantID: sessionTenant,
	})
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "invalid email or password", http.StatusUnauthorized)
}

// HashPassword produces a bcrypt hash for storage on the user document.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
