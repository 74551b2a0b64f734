package lms

import (
	"context"
	"net/http"
	"time"

	"github.com/courseloft/courseloft/internal/app/system/access"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// dashboardResponse bundles every dashboard section into one payload so the
// frontend renders from a single round trip.
type dashboardResponse struct {
	Stats        dashboardStats      `json:"stats"`
	Featured     featuredContent     `json:"featured"`
	Enrollments  []models.Enrollment `json:"enrollments"`
	Upcoming     []models.Lesson     `json:"upcomingLessons"`
	RecentVideos []recentVideo       `json:"recentVideos"`
	Permissions  access.Permissions  `json:"permissions"`
}

// section is one independently fetched dashboard section. A failing section
// logs and leaves its zero value in place rather than failing the request.
type section struct {
	name string
	load func(ctx context.Context) error
}

// gather runs sections concurrently. Failures are isolated per section; the
// returned count is how many sections failed.
func gather(ctx context.Context, logger *zap.Logger, sections []section) int {
	g, ctx := errgroup.WithContext(ctx)
	failed := make(chan string, len(sections))

	for _, s := range sections {
		g.Go(func() error {
			if err := s.load(ctx); err != nil {
				logger.Warn("dashboard section failed",
					zap.String("section", s.name), zap.Error(err))
				failed <- s.name
			}
			return nil // section errors never cancel the group
		})
	}
	_ = g.Wait()
	close(failed)

	n := 0
	for range failed {
		n++
	}
	return n
}

// ServeDashboard handles GET /api/lms/dashboard.
//
// Sections are fetched concurrently and degrade independently: a failing
// aggregation leaves its section zero-valued instead of turning the whole
// dashboard into a 500.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, role, ok := h.requestScope(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	resp := dashboardResponse{
		Featured: featuredContent{
			Programs: []models.Program{},
			Videos:   []models.Video{},
		},
		Enrollments:  []models.Enrollment{},
		Upcoming:     []models.Lesson{},
		RecentVideos: []recentVideo{},
	}

	sections := []section{
		{name: "stats", load: func(ctx context.Context) error {
			stats, err := h.loadStats(ctx, userID, tenantID)
			if err == nil {
				resp.Stats = stats
			}
			return err
		}},
		{name: "featured", load: func(ctx context.Context) error {
			featured, err := h.loadFeatured(ctx, tenantID)
			if err == nil {
				resp.Featured = featured
			}
			return err
		}},
		{name: "enrollments", load: func(ctx context.Context) error {
			enrollments, err := h.Enrollments.FindByUser(ctx, userID, tenantID)
			if err == nil && enrollments != nil {
				resp.Enrollments = enrollments
			}
			return err
		}},
		{name: "upcoming", load: func(ctx context.Context) error {
			lessons, err := h.Lessons.FindUpcoming(ctx, tenantID, time.Now().UTC(), upcomingLimit)
			if err == nil && lessons != nil {
				resp.Upcoming = lessons
			}
			return err
		}},
		{name: "recent_videos", load: func(ctx context.Context) error {
			recent, err := h.loadRecentVideos(ctx, userID, tenantID)
			if err == nil && recent != nil {
				resp.RecentVideos = recent
			}
			return err
		}},
		{name: "permissions", load: func(ctx context.Context) error {
			resp.Permissions = access.Compute(role, h.userTier(ctx, userID, tenantID))
			return nil
		}},
	}

	if failures := gather(ctx, h.Log, sections); failures > 0 {
		h.Log.Warn("dashboard served with degraded sections",
			zap.Int("failed_sections", failures))
	}

	writeJSON(w, resp)
}
