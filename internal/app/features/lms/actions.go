package lms

import (
	"context"
	"encoding/json"
	"net/http"

	enrollmentstore "github.com/courseloft/courseloft/internal/app/store/enrollments"
	programstore "github.com/courseloft/courseloft/internal/app/store/programs"
	"github.com/courseloft/courseloft/internal/app/system/access"
	"github.com/courseloft/courseloft/internal/app/system/timeouts"
	"github.com/courseloft/courseloft/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type enrollRequest struct {
	ProgramID string `json:"programId"`
}

// ServeEnroll handles POST /api/lms/enroll.
//
// Enrollment requires the tier the program demands. Admins bypass the tier
// check but still get a real enrollment record.
func (h *Handler) ServeEnroll(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, role, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req enrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	programID, err := primitive.ObjectIDFromHex(req.ProgramID)
	if err != nil {
		http.Error(w, "invalid program id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	program, err := h.Programs.GetByID(ctx, programID)
	if err != nil {
		if err == programstore.ErrNotFound {
			http.Error(w, "Program not found", http.StatusNotFound)
			return
		}
		h.Log.Error("program lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if program.TenantID != tenantID {
		http.Error(w, "Program not found", http.StatusNotFound)
		return
	}

	perms := access.Compute(role, h.userTier(ctx, userID, tenantID))
	if !access.Meets(perms.Tier, program.AccessLevel) {
		http.Error(w, "subscription upgrade required", http.StatusForbidden)
		return
	}

	enrollment, err := h.Enrollments.Create(ctx, models.Enrollment{
		UserID:    userID,
		ProgramID: programID,
		TenantID:  tenantID,
	})
	if err != nil {
		if err == enrollmentstore.ErrAlreadyEnrolled {
			http.Error(w, "already enrolled in this program", http.StatusConflict)
			return
		}
		h.Log.Error("enroll failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, enrollment)
}

type videoProgressRequest struct {
	VideoID          string  `json:"videoId"`
	Progress         float64 `json:"progress"` // 0..100
	CurrentTime      float64 `json:"currentTime"`
	Duration         float64 `json:"duration"`
	WatchTimeSeconds int     `json:"watchTimeSeconds"` // delta since last report
	Completed        bool    `json:"completed"`
}

// ServeVideoProgress handles POST /api/lms/video-progress.
//
// The store applies the completion threshold and never un-completes a video,
// whatever the client submits.
func (h *Handler) ServeVideoProgress(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req videoProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	videoID, err := primitive.ObjectIDFromHex(req.VideoID)
	if err != nil {
		http.Error(w, "invalid video id", http.StatusBadRequest)
		return
	}
	if req.WatchTimeSeconds < 0 {
		http.Error(w, "watchTimeSeconds must not be negative", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	progress, err := h.Progress.Upsert(ctx, models.VideoProgress{
		UserID:           userID,
		VideoID:          videoID,
		TenantID:         tenantID,
		Progress:         req.Progress,
		CurrentTime:      req.CurrentTime,
		Duration:         req.Duration,
		WatchTimeSeconds: req.WatchTimeSeconds,
		Completed:        req.Completed,
	})
	if err != nil {
		h.Log.Error("video progress upsert failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, progress)
}

type completeLessonRequest struct {
	EnrollmentID     string `json:"enrollmentId"`
	LessonIndex      int    `json:"lessonIndex"`
	TimeSpentSeconds int    `json:"timeSpentSeconds"`
}

// ServeCompleteLesson handles POST /api/lms/complete-lesson.
//
// Completing the final lesson pushes progress to 100, which the store
// converts into a completed enrollment with a completion timestamp.
func (h *Handler) ServeCompleteLesson(w http.ResponseWriter, r *http.Request) {
	userID, tenantID, _, ok := h.requestScope(w, r)
	if !ok {
		return
	}

	var req completeLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	enrollmentID, err := primitive.ObjectIDFromHex(req.EnrollmentID)
	if err != nil {
		http.Error(w, "invalid enrollment id", http.StatusBadRequest)
		return
	}
	if req.LessonIndex < 0 {
		http.Error(w, "lessonIndex must not be negative", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	enrollment, err := h.Enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		if err == enrollmentstore.ErrNotFound {
			http.Error(w, "Enrollment not found", http.StatusNotFound)
			return
		}
		h.Log.Error("enrollment lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// Users only complete their own lessons, in their own tenant.
	if enrollment.UserID != userID || enrollment.TenantID != tenantID {
		http.Error(w, "Enrollment not found", http.StatusNotFound)
		return
	}

	program, err := h.Programs.GetByID(ctx, enrollment.ProgramID)
	if err != nil {
		h.Log.Error("program lookup failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if program.LessonCount > 0 && req.LessonIndex >= program.LessonCount {
		http.Error(w, "lessonIndex out of range", http.StatusBadRequest)
		return
	}

	updated, err := h.Enrollments.CompleteLesson(ctx, enrollmentID, req.LessonIndex, req.TimeSpentSeconds, program.LessonCount)
	if err != nil {
		h.Log.Error("complete lesson failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, updated)
}
