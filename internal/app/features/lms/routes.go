// internal/app/features/lms/routes.go
package lms

import "github.com/go-chi/chi/v5"

// Routes returns the router for LMS endpoints, mounted under /api/lms.
// The caller wires the session and tenant-membership middleware; every route
// here assumes both have run.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/dashboard", h.ServeDashboard)
	r.Get("/dashboard-stats", h.ServeDashboardStats)
	r.Get("/featured-content", h.ServeFeaturedContent)
	r.Get("/user-enrollments", h.ServeUserEnrollments)
	r.Get("/user-points", h.ServeUserPoints)
	r.Get("/upcoming-lessons", h.ServeUpcomingLessons)
	r.Get("/user-learning-time", h.ServeUserLearningTime)
	r.Get("/recent-videos-progress", h.ServeRecentVideosProgress)
	r.Get("/permissions", h.ServePermissions)

	r.Post("/enroll", h.ServeEnroll)
	r.Post("/video-progress", h.ServeVideoProgress)
	r.Post("/complete-lesson", h.ServeCompleteLesson)

	return r
}
