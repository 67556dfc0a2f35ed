package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/services"
)

const (
	timeLayout          = time.RFC3339
	defaultUpcomingDays = 7
	maxUpcomingDays     = 30
)

type completeReviewRequest struct {
	DifficultyRating    int  `json:"difficulty_rating" validate:"required,oneof=1 2 3"`
	ResponseTimeSeconds *int `json:"response_time_seconds" validate:"omitempty,min=0,max=3600"`
}

type rescheduleReviewRequest struct {
	DueDate time.Time `json:"due_date" validate:"required"`
}

func (s *Server) handlePendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.ScheduleService.GetPendingReviews(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleUpcomingReviews(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", defaultUpcomingDays)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if days < 1 || days > maxUpcomingDays {
		handleError(w, r, errors.NewValidationError("days", fmt.Sprintf("must be between 1 and %d", maxUpcomingDays)))
		return
	}

	grouped, err := s.ScheduleService.GetUpcomingReviews(r.Context(), userFromContext(r.Context()).ID, days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"days": grouped})
}

func (s *Server) handleCompleteReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req completeReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"scheduled_review_id": id,
		"rating":              req.DifficultyRating,
	})
	log.Debug("completing review")

	result, err := s.ReviewService.CompleteReview(r.Context(), id, services.CompleteReviewInput{
		Rating:              models.DifficultyRating(req.DifficultyRating),
		ResponseTimeSeconds: req.ResponseTimeSeconds,
	}, userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleRescheduleReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req rescheduleReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	review, err := s.ReviewService.RescheduleReview(r.Context(), id, req.DueDate, userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, review)
}
