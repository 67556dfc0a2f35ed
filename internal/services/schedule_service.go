package services

import (
	"context"
	"sort"

	"github.com/samber/lo"
	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

const dayKeyLayout = "2006-01-02"

// ScheduleService answers what is due and what has been done
type ScheduleService interface {
	GetPendingReviews(ctx context.Context, userID int64) ([]models.PendingReview, error)
	// GetUpcomingReviews groups open reviews due within the next days by
	// UTC calendar day.
	GetUpcomingReviews(ctx context.Context, userID int64, days int) ([]models.ReviewDay, error)
	GetCardReviewHistory(ctx context.Context, cardID, userID int64, page, limit int) (*models.ReviewHistoryPage, error)
}

type scheduleService struct {
	reviewRepo repository.ReviewRepository
	settings   Settings
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(reviewRepo repository.ReviewRepository, settings Settings) ScheduleService {
	return &scheduleService{reviewRepo: reviewRepo, settings: settings}
}

func (s *scheduleService) GetPendingReviews(ctx context.Context, userID int64) ([]models.PendingReview, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting pending reviews: user_id=%d", userID)

	reviews, err := s.reviewRepo.Pending(ctx, userID, s.settings.now())
	if err != nil {
		log.Error("failed to get pending reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return reviews, nil
}

func (s *scheduleService) GetUpcomingReviews(ctx context.Context, userID int64, days int) ([]models.ReviewDay, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting upcoming reviews: user_id=%d, days=%d", userID, days)

	if days < 1 {
		return nil, errors.NewValidationError("days", "must be positive")
	}

	now := s.settings.now()
	reviews, err := s.reviewRepo.Upcoming(ctx, userID, now, now.AddDate(0, 0, days))
	if err != nil {
		log.Error("failed to get upcoming reviews: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return groupByDay(reviews), nil
}

// groupByDay buckets reviews by the UTC date of their due date. Input order
// is kept within a bucket.
func groupByDay(reviews []models.PendingReview) []models.ReviewDay {
	groups := lo.GroupBy(reviews, func(r models.PendingReview) string {
		return r.DueDate.UTC().Format(dayKeyLayout)
	})
	keys := lo.Keys(groups)
	sort.Strings(keys)

	days := make([]models.ReviewDay, 0, len(keys))
	for _, key := range keys {
		bucket := groups[key]
		sort.SliceStable(bucket, func(i, j int) bool {
			return bucket[i].DueDate.Before(bucket[j].DueDate)
		})
		days = append(days, models.ReviewDay{Date: key, Reviews: bucket})
	}
	return days
}

func (s *scheduleService) GetCardReviewHistory(ctx context.Context, cardID, userID int64, page, limit int) (*models.ReviewHistoryPage, error) {
	log := logger.FromContext(ctx)
	page, limit = normalizePage(page, limit)
	log.Debug("getting review history: card_id=%d, user_id=%d, page=%d, limit=%d", cardID, userID, page, limit)

	pagination := models.NewPagination(page, limit, 0)
	history, total, err := s.reviewRepo.History(ctx, cardID, userID, limit, pagination.Offset())
	if err != nil {
		return nil, repoError(log, "get review history", err, errors.NewNotFoundError("card", cardID))
	}
	return &models.ReviewHistoryPage{
		CardID:     cardID,
		History:    history,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}
