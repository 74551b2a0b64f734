package logout

import (
	"net/http"

	"github.com/courseloft/courseloft/internal/app/system/auth"
	"go.uber.org/zap"
)

// Handler clears the session.
type Handler struct {
	SessionMgr *auth.SessionManager
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{SessionMgr: sessionMgr, Log: logger}
}

// Serve handles POST /logout. Always succeeds, signed in or not.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("session clear failed", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}
