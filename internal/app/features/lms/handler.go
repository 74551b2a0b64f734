// Package lms serves the learner-facing dashboard and progress endpoints.
// All routes are mounted behind the tenant membership guard, so handlers can
// assume a resolved tenant and a session bound to it.
package lms

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	achievementstore "github.com/courseloft/courseloft/internal/app/store/achievements"
	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	lessonstore "github.com/courseloft/courseloft/internal/app/store/lessons"
	productstore "github.com/courseloft/courseloft/internal/app/store/products"
	programstore "github.com/courseloft/courseloft/internal/app/store/programs"
	subscriptionstore "github.com/courseloft/courseloft/internal/app/store/subscriptions"
	videoprogressstore "github.com/courseloft/courseloft/internal/app/store/videoprogress"
	videostore "github.com/courseloft/courseloft/internal/app/store/videos"
	"github.com/courseloft/courseloft/internal/app/system/access"
	"github.com/courseloft/courseloft/internal/app/system/authz"
	"github.com/courseloft/courseloft/internal/app/system/tenancy"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	featuredLimit = 6
	upcomingLimit = 5
	recentLimit   = 5
)

// Handler holds the stores behind the LMS endpoints.
type Handler struct {
	Enrollments   *enrollmentstore.Store
	Progress      *videoprogressstore.Store
	Programs      *programstore.Store
	Videos        *videostore.Store
	Lessons       *lessonstore.Store
	Achievements  *achievementstore.Store
	Subscriptions *subscriptionstore.Store
	Products      *productstore.Store
	Log           *zap.Logger
}

func NewHandler(
	enrollments *enrollmentstore.Store,
	progress *videoprogressstore.Store,
	programs *programstore.Store,
	videos *videostore.Store,
	lessons *lessonstore.Store,
	achievements *achievementstore.Store,
	subscriptions *subscriptionstore.Store,
	products *productstore.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Enrollments:   enrollments,
		Progress:      progress,
		Programs:      programs,
		Videos:        videos,
		Lessons:       lessons,
		Achievements:  achievements,
		Subscriptions: subscriptions,
		Products:      products,
		Log:           logger,
	}
}

// requestScope pulls the (user, tenant) pair every LMS handler needs.
// Writes the error response and returns ok=false when either is missing.
func (h *Handler) requestScope(w http.ResponseWriter, r *http.Request) (userID, tenantID primitive.ObjectID, role string, ok bool) {
	role, _, userID, ok = authz.UserCtx(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return primitive.NilObjectID, primitive.NilObjectID, "", false
	}
	t := tenancy.FromRequest(r)
	if t == nil {
		http.Error(w, "Unknown domain", http.StatusNotFound)
		return primitive.NilObjectID, primitive.NilObjectID, "", false
	}
	return userID, t.ID, role, true
}

// userTier resolves the user's subscription tier within a tenant: the access
// level of the product behind their active subscription, or free.
func (h *Handler) userTier(ctx context.Context, userID, tenantID primitive.ObjectID) string {
	sub, err := h.Subscriptions.GetActiveForUser(ctx, userID, tenantID)
	if err != nil {
		return access.TierFree
	}
	if sub.StripeProductID == "" {
		return access.TierFree
	}
	product, err := h.Products.GetByStripeProduct(ctx, tenantID, sub.StripeProductID)
	if err != nil {
		h.Log.Debug("subscription product not found",
			zap.String("stripe_product_id", sub.StripeProductID))
		return access.TierFree
	}
	return product.AccessLevel
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Read endpoints                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// dashboardStats is the summary block at the top of the learner dashboard.
type dashboardStats struct {
	TotalEnrollments    int64 `json:"totalEnrollments"`
	CompletedPrograms   int64 `json:"completedPrograms"`
	VideosCompleted     int64 `json:"videosCompleted"`
	LearningTimeMinutes int64 `json:"learningTimeMinutes"`
	Points              int64 `json:"points"`
}

func (h *Handler) loadStats(ctx context.Context, userID, tenantID primitive.ObjectID) (dashboardStats, error) {
	total, completed, err := h.Enrollments.CountByUser(ctx, userID, tenantID)
	if err != nil {
		return dashboardStats{}, err
	}
	videosDone, err := h.Progress.CountCompleted(ctx, userID, tenantID)
	if err != nil {
		return dashboardStats{}, err
	}
	watchSeconds, err := h.Progress.SumWatchTime(ctx, userID, tenantID)
	if err != nil {
		return dashboardStats{}, err
	}
	lessonSeconds, err := h.Enrollments.SumTimeSpent(ctx, userID, tenantID)
	if err != nil {
		return dashboardStats{}, err
	}
	points, err := h.Achievements.SumPoints(ctx, userID, tenantID)
	if err != nil {
		return dashboardStats{}, err
	}
	return dashboardStats{
		TotalEnrollments:    total,
		CompletedPrograms:   completed,
		VideosCompleted:     videosDone,
		LearningTimeMinutes: (watchSeconds + lessonSeconds) / 60,
		Points:              points,
	}, nil
}

// ServeDashboardStats handles GET /api/lms/dashboard-stats.
func (h *Handler) ServeDashboardStats(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	stats, err := h.loadStats(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("dashboard stats failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, stats)
}

type featuredContent struct {
	Programs []models.Program `json:"programs"`
	Videos   []models.Video   `json:"videos"`
}

func (h *Handler) loadFeatured(ctx context.Context, tenantID primitive.ObjectID) (featuredContent, error) {
	programs, err := h.Programs.FindFeatured(ctx, tenantID, featuredLimit)
	if err != nil {
		return featuredContent{}, err
	}
	videos, err := h.Videos.FindFeatured(ctx, tenantID, featuredLimit)
	if err != nil {
		return featuredContent{}, err
	}
	if programs == nil {
		programs = []models.Program{}
	}
	if videos == nil {
		videos = []models.Video{}
	}
	return featuredContent{Programs: programs, Videos: videos}, nil
}

// ServeFeaturedContent handles GET /api/lms/featured-content.
func (h *Handler) ServeFeaturedContent(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	featured, err := h.loadFeatured(ctx, tenantID)
	if err != nil {
		h.Log.Error("featured content failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, featured)
}

// ServeUserEnrollments handles GET /api/lms/user-enrollments.
func (h *Handler) ServeUserEnrollments(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	enrollments, err := h.Enrollments.FindByUser(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("user enrollments failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	writeJSON(w, enrollments)
}

// ServeUserPoints handles GET /api/lms/user-points.
func (h *Handler) ServeUserPoints(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	points, err := h.Achievements.SumPoints(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("user points failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{"points": points})
}

// ServeUpcomingLessons handles GET /api/lms/upcoming-lessons.
func (h *Handler) ServeUpcomingLessons(w http.ResponseWriter, r *http.Request) {
	_, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	lessons, err := h.Lessons.FindUpcoming(ctx, tenantID, time.Now().UTC(), upcomingLimit)
	if err != nil {
		h.Log.Error("upcoming lessons failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	writeJSON(w, lessons)
}

// ServeUserLearningTime handles GET /api/lms/user-learning-time.
func (h *Handler) ServeUserLearningTime(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	watchSeconds, err := h.Progress.SumWatchTime(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("learning time failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	lessonSeconds, err := h.Enrollments.SumTimeSpent(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("learning time failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]int64{
		"learningTimeMinutes": (watchSeconds + lessonSeconds) / 60,
	})
}

// recentVideo pairs a progress row with the video it belongs to.
type recentVideo struct {
	Video    models.Video         `json:"video"`
	Progress models.VideoProgress `json:"progress"`
}

func (h *Handler) loadRecentVideos(ctx context.Context, userID, tenantID primitive.ObjectID) ([]recentVideo, error) {
	rows, err := h.Progress.FindRecentByUser(ctx, userID, tenantID, recentLimit)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.VideoID)
	}
	videos, err := h.Videos.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Video, len(videos))
	for _, v := range videos {
		byID[v.ID] = v
	}

	out := make([]recentVideo, 0, len(rows))
	for _, row := range rows {
		v, found := byID[row.VideoID]
		if !found {
			continue // video deleted since last watch
		}
		out = append(out, recentVideo{Video: v, Progress: row})
	}
	return out, nil
}

// ServeRecentVideosProgress handles GET /api/lms/recent-videos-progress.
func (h *Handler) ServeRecentVideosProgress(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	recent, err := h.loadRecentVideos(ctx, userID, tenantID)
	if err != nil {
		h.Log.Error("recent videos failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if recent == nil {
		recent = []recentVideo{}
	}
	writeJSON(w, recent)
}

// ServePermissions handles GET /api/lms/permissions.
func (h *Handler) ServePermissions(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, role, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	writeJSON(w, access.Compute(role, h.userTier(ctx, userID, tenantID)))
}
