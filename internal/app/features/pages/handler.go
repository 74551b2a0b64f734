package pages

import (
	"context"
	"encoding/json"
	"net/http"

	pagestore "github.com/courseloft/courseloft/internal/app/store/pages"
	"github.com/courseloft/courseloft/internal/app/system/auth"
	"github.com/courseloft/courseloft/internal/app/system/htmlsanitize"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves tenant marketing pages.
type Handler struct {
	Pages *pagestore.Store
	Log   *zap.Logger
}

func NewHandler(pages *pagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Pages: pages, Log: logger}
}

// ServeGet handles GET /api/pages/{slug}.
//
// Published pages are public when the tenant allows public reads; otherwise
// a signed-in session is required. Unpublished pages are 404 for everyone.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	}

	if !t.AllowPublicRead {
		if _, ok := auth.CurrentUser(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	slug := chi.URLParam(r, "slug")
	page, err := h.Pages.GetPublished(ctx, t.ID, slug)
	if err != nil {
		if err == pagestore.ErrNotFound {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		h.Log.Error("page lookup failed", zap.String("slug", slug), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

type pageRequest struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Published bool   `json:"published"`
}

// ServeCreate handles POST /api/pages. Tenant admins only; the router wires
// the role check. Content is sanitized before it is stored.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Slug == "" || req.Title == "" {
		http.Error(w, "slug and title are required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if max := t.Settings.MaxPages; max > 0 {
		count, err := h.Pages.CountByTenant(ctx, t.ID)
		if err != nil {
			h.Log.Error("page count failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if count >= int64(max) {
			http.Error(w, "page limit reached for this site", http.StatusForbidden)
			return
		}
	}

	page, err := h.Pages.Create(ctx, models.Page{
		TenantID:  t.ID,
		Slug:      req.Slug,
		Title:     req.Title,
		Content:   htmlsanitize.Sanitize(req.Content),
		Published: req.Published,
	})
	if err != nil {
		if err == pagestore.ErrDuplicateSlug {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.Log.Error("page create failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(page)
}

// ServeUpdate handles PUT /api/pages/{id}.
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid page id", http.StatusBadRequest)
		return
	}

	var req pageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Pages.GetByID(ctx, id)
	if err != nil {
		if err == pagestore.ErrNotFound {
			http.Error(w, "Page not found", http.StatusNotFound)
			return
		}
		h.Log.Error("page lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// A page belonging to another tenant is indistinguishable from a
	// missing one.
	if existing.TenantID != t.ID {
		http.Error(w, "Page not found", http.StatusNotFound)
		return
	}

	err = h.Pages.Update(ctx, id, models.Page{
		Title:     req.Title,
		Content:   htmlsanitize.Sanitize(req.Content),
		Published: req.Published,
	})
	if err != nil {
		h.Log.Error("page update failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
