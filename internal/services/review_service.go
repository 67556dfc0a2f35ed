package services

import (
	"context"
	"time"

	"github.com/vytor/studyspace/internal/calendar"
	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/flashcard"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

const maxResponseTimeSeconds = 3600

// CompleteReviewInput is the self-assessment submitted with a review.
type CompleteReviewInput struct {
	Rating              models.DifficultyRating
	ResponseTimeSeconds *int
}

// ReviewService drives scheduled reviews from Open to Completed
type ReviewService interface {
	// CompleteReview closes an open review and schedules the card's next one.
	CompleteReview(ctx context.Context, scheduledReviewID int64, input CompleteReviewInput, userID int64) (*models.ReviewCompletion, error)
	// RescheduleReview moves the due date of an open review.
	RescheduleReview(ctx context.Context, scheduledReviewID int64, dueDate time.Time, userID int64) (*models.ScheduledReview, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	notifier   calendar.Notifier
	settings   Settings
}

// NewReviewService creates a new ReviewService
func NewReviewService(reviewRepo repository.ReviewRepository, notifier calendar.Notifier, settings Settings) ReviewService {
	if notifier == nil {
		notifier = calendar.Nop{}
	}
	return &reviewService{reviewRepo: reviewRepo, notifier: notifier, settings: settings}
}

func (s *reviewService) CompleteReview(ctx context.Context, scheduledReviewID int64, input CompleteReviewInput, userID int64) (*models.ReviewCompletion, error) {
	log := logger.FromContext(ctx)
	log.Debug("completing review: id=%d, user_id=%d, rating=%s", scheduledReviewID, userID, input.Rating)

	if !input.Rating.Valid() {
		return nil, errors.NewValidationError("difficulty_rating", "must be 1, 2 or 3")
	}
	if rt := input.ResponseTimeSeconds; rt != nil && (*rt < 0 || *rt > maxResponseTimeSeconds) {
		return nil, errors.NewValidationError("response_time_seconds", "must be between 0 and 3600")
	}

	now := s.settings.now()
	next := func(previousIntervalDays, reviewCount int) (int, time.Time) {
		interval := flashcard.NextInterval(input.Rating, previousIntervalDays, reviewCount)
		return interval, now.AddDate(0, 0, interval)
	}

	result, err := s.reviewRepo.Complete(ctx, repository.CompleteParams{
		ScheduledReviewID:   scheduledReviewID,
		UserID:              userID,
		Rating:              input.Rating,
		ResponseTimeSeconds: input.ResponseTimeSeconds,
		CompletedAt:         now,
	}, next)
	if err != nil {
		return nil, repoError(log, "complete review", err, errors.NewNotFoundOrCompletedError(scheduledReviewID))
	}

	s.notifier.ReviewScheduled(ctx, result.NextReview)
	log.Info("review completed: id=%d, next review in %d days", scheduledReviewID, result.NextInterval)
	return result, nil
}

func (s *reviewService) RescheduleReview(ctx context.Context, scheduledReviewID int64, dueDate time.Time, userID int64) (*models.ScheduledReview, error) {
	log := logger.FromContext(ctx)
	log.Debug("rescheduling review: id=%d, user_id=%d, due=%s", scheduledReviewID, userID, dueDate)

	if dueDate.IsZero() {
		return nil, errors.NewValidationError("due_date", "is required")
	}

	review, err := s.reviewRepo.Reschedule(ctx, scheduledReviewID, userID, dueDate)
	if err != nil {
		return nil, repoError(log, "reschedule review", err, errors.NewNotFoundOrCompletedError(scheduledReviewID))
	}

	s.notifier.ReviewRescheduled(ctx, *review)
	return review, nil
}
