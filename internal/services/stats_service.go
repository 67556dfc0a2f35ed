package services

import (
	"context"

	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/timezone"
	"golang.org/x/sync/errgroup"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
}

type statsService struct {
	userRepo   repository.UserRepository
	topicRepo  repository.TopicRepository
	cardRepo   repository.CardRepository
	reviewRepo repository.ReviewRepository
	streaks    StreakService
	settings   Settings
}

// NewStatsService creates a new StatsService
func NewStatsService(
	userRepo repository.UserRepository,
	topicRepo repository.TopicRepository,
	cardRepo repository.CardRepository,
	reviewRepo repository.ReviewRepository,
	streaks StreakService,
	settings Settings,
) StatsService {
	return &statsService{
		userRepo:   userRepo,
		topicRepo:  topicRepo,
		cardRepo:   cardRepo,
		reviewRepo: reviewRepo,
		streaks:    streaks,
		settings:   settings,
	}
}

func (s *statsService) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building dashboard: user_id=%d", userID)

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, repoError(log, "load user", err, errors.NewNotFoundError("user", userID))
	}

	// The streak stats may persist a lapse reset, so they are read before
	// the counters.
	streakStats, err := s.streaks.GetUserStreakStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.settings.now()
	dayStart, _ := timezone.DayBounds(now, s.settings.location(user.Timezone))

	dash := &models.Dashboard{User: *user}
	dash.Stats.CurrentStreak = streakStats.CurrentStreak
	dash.Stats.LongestStreak = streakStats.LongestStreak
	dash.User.CurrentStreak = streakStats.CurrentStreak

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.Stats.TotalTopics, err = s.topicRepo.Count(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.TotalCards, err = s.cardRepo.Count(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.CompletedReviews, err = s.reviewRepo.CountCompleted(gctx, userID, nil)
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.CompletedToday, err = s.reviewRepo.CountCompleted(gctx, userID, &dayStart)
		return err
	})
	g.Go(func() (err error) {
		dash.PendingReviews, err = s.reviewRepo.Pending(gctx, userID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to build dashboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	dash.Stats.PendingReviews = len(dash.PendingReviews)

	return dash, nil
}
