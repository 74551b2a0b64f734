package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	oauthstatestore "github.com/courseloft/courseloft/internal/app/store/oauthstates"
	userstore "github.com/courseloft/courseloft/internal/app/store/users"
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const stateCookieName = "courseloft_oauth"

// Handler handles Google OAuth sign-in.
//
// The state nonce is checked twice on callback: against the server-side
// oauth_states collection (single use, TTL-bound) and against an encrypted
// browser cookie, so a state stolen in transit is useless without the
// originating browser.
type Handler struct {
	Users      *userstore.Store
	States     *oauthstatestore.Store
	SessionMgr *auth.SessionManager
	Log        *zap.Logger

	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g. "https://app.courseloft.com/auth/google/callback"

	cookie *securecookie.SecureCookie
}

func NewHandler(
	users *userstore.Store,
	states *oauthstatestore.Store,
	sessionMgr *auth.SessionManager,
	clientID, clientSecret, baseURL, cookieKey string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:        users,
		States:       states,
		SessionMgr:   sessionMgr,
		Log:          logger,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/google/callback",
		cookie:       securecookie.New([]byte(cookieKey), nil),
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}

// IsConfigured reports whether Google OAuth credentials are present.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

// ServeLogin handles GET /auth/google and redirects to Google's consent screen.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		http.Redirect(w, r, "/login?error=google_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := r.URL.Query().Get("return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, err = h.States.Create(ctx, models.OAuthState{
		State:     state,
		ReturnURL: returnURL,
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	})
	if err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if encoded, err := h.cookie.Encode(stateCookieName, state); err == nil {
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    encoded,
			Path:     "/auth/google",
			MaxAge:   600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	url := h.oauth2Config().AuthCodeURL(state, oauth2.AccessTypeOffline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// ServeCallback handles GET /auth/google/callback.
func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=google_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" || !h.stateCookieMatches(r, state) {
		h.Log.Warn("missing or mismatched OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	stored, err := h.States.Consume(ctxTimeout, state)
	if err != nil {
		if err == oauthstatestore.ErrNotFound {
			h.Log.Warn("invalid or expired OAuth state")
			http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
			return
		}
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	googleUser, err := fetchGoogleUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}

	user, err := h.Users.GetByEmail(ctxTimeout, googleUser.Email)
	if err != nil {
		h.Log.Info("Google OAuth: no account for email",
			zap.String("email", googleUser.Email))
		http.Redirect(w, r, "/login?error=no_account", http.StatusSeeOther)
		return
	}
	if user.Status != "" && user.Status != "active" {
		http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
		return
	}

	// Bind the session to the tenant of the host the flow started on.
	t := tenancy.FromRequest(r)
	sessionTenant := ""
	switch {
	case user.Role == "super-admin":
		if t != nil {
			sessionTenant = t.ID.Hex()
		}
	case t == nil:
		http.Redirect(w, r, "/login?error=unknown_domain", http.StatusSeeOther)
		return
	case !user.MemberOf(t.ID):
		h.Log.Info("Google OAuth: not a member of tenant",
			zap.String("email", googleUser.Email),
			zap.String("tenant", t.Slug))
		http.Redirect(w, r, "/login?error=no_account", http.StatusSeeOther)
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
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	dest := stored.ReturnURL
	if dest == "" || dest[0] != '/' {
		dest = "/"
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) stateCookieMatches(r *http.Request, state string) bool {
	c, err := r.Cookie(stateCookieName)
	if err != nil {
		return false
	}
	var fromCookie string
	if err := h.cookie.Decode(stateCookieName, c.Value, &fromCookie); err != nil {
		return false
	}
	return fromCookie == state
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func fetchGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
