package services

import (
	"context"
	"time"

	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/streak"
	"github.com/vytor/studyspace/internal/timezone"
)

// StreakService tracks consecutive study days. "Today" is the current date
// in the user's timezone.
type StreakService interface {
	// GetUserStreakStats reports the streak, resetting it first when it has
	// lapsed.
	GetUserStreakStats(ctx context.Context, userID int64) (*models.StreakStats, error)
	// UpdateUserStreak credits today once every review due today is done.
	UpdateUserStreak(ctx context.Context, userID int64) (*models.StreakUpdate, error)
	// CheckStreak applies the lapse reset and reports days since the last
	// credited day.
	CheckStreak(ctx context.Context, userID int64) (*models.StreakCheck, error)
}

type streakService struct {
	userRepo   repository.UserRepository
	streakRepo repository.StreakRepository
	settings   Settings
}

// NewStreakService creates a new StreakService
func NewStreakService(userRepo repository.UserRepository, streakRepo repository.StreakRepository, settings Settings) StreakService {
	return &streakService{userRepo: userRepo, streakRepo: streakRepo, settings: settings}
}

// today returns the user's current calendar date and the UTC bounds of that
// local day.
func (s *streakService) today(ctx context.Context, userID int64) (time.Time, time.Time, time.Time, error) {
	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, time.Time{}, err
	}
	loc := s.settings.location(user.Timezone)
	now := s.settings.now()
	start, end := timezone.DayBounds(now, loc)
	return streak.DateOf(now, loc), start, end, nil
}

func (s *streakService) GetUserStreakStats(ctx context.Context, userID int64) (*models.StreakStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting streak stats: user_id=%d", userID)

	today, start, end, err := s.today(ctx, userID)
	if err != nil {
		return nil, repoError(log, "load user", err, errors.NewNotFoundError("user", userID))
	}

	wasAutoReset := false
	state, err := s.streakRepo.Modify(ctx, userID, start, end, func(st repository.StreakState) (repository.StreakState, bool) {
		if !streak.IsStale(st.LastCompletionDate, today) {
			return st, false
		}
		wasAutoReset = true
		changed := st.CurrentStreak != 0
		st.CurrentStreak = 0
		return st, changed
	})
	if err != nil {
		return nil, repoError(log, "evaluate streak", err, errors.NewNotFoundError("user", userID))
	}
	if wasAutoReset {
		log.Info("streak reset after lapse: user_id=%d", userID)
	}

	completedToday := streak.IsSameDay(state.LastCompletionDate, today)
	return &models.StreakStats{
		CurrentStreak:      state.CurrentStreak,
		LongestStreak:      state.LongestStreak,
		LastCompletionDate: state.LastCompletionDate,
		IsActiveToday:      completedToday,
		PendingToday:       state.PendingToday,
		CanExtendStreak:    state.PendingToday == 0 && !completedToday && !wasAutoReset,
		WasAutoReset:       wasAutoReset,
	}, nil
}

func (s *streakService) UpdateUserStreak(ctx context.Context, userID int64) (*models.StreakUpdate, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating streak: user_id=%d", userID)

	today, start, end, err := s.today(ctx, userID)
	if err != nil {
		return nil, repoError(log, "load user", err, errors.NewNotFoundError("user", userID))
	}

	var result models.StreakUpdate
	_, err = s.streakRepo.Modify(ctx, userID, start, end, func(st repository.StreakState) (repository.StreakState, bool) {
		switch {
		case st.PendingToday > 0:
			result = models.StreakUpdate{
				Success:       false,
				PendingCount:  st.PendingToday,
				CurrentStreak: st.CurrentStreak,
				LongestStreak: st.LongestStreak,
			}
			return st, false
		case streak.IsSameDay(st.LastCompletionDate, today):
			result = models.StreakUpdate{
				Success:            true,
				AlreadyUpdated:     true,
				CurrentStreak:      st.CurrentStreak,
				LongestStreak:      st.LongestStreak,
				LastCompletionDate: st.LastCompletionDate,
			}
			return st, false
		}

		st.CurrentStreak = streak.Next(st.CurrentStreak, st.LastCompletionDate, today)
		st.LongestStreak = max(st.LongestStreak, st.CurrentStreak)
		day := today
		st.LastCompletionDate = &day
		result = models.StreakUpdate{
			Success:            true,
			CurrentStreak:      st.CurrentStreak,
			LongestStreak:      st.LongestStreak,
			LastCompletionDate: st.LastCompletionDate,
		}
		return st, true
	})
	if err != nil {
		return nil, repoError(log, "update streak", err, errors.NewNotFoundError("user", userID))
	}

	if result.Success && !result.AlreadyUpdated {
		log.Info("streak credited: user_id=%d, current=%d, longest=%d", userID, result.CurrentStreak, result.LongestStreak)
	}
	return &result, nil
}

func (s *streakService) CheckStreak(ctx context.Context, userID int64) (*models.StreakCheck, error) {
	log := logger.FromContext(ctx)
	log.Debug("checking streak: user_id=%d", userID)

	today, start, end, err := s.today(ctx, userID)
	if err != nil {
		return nil, repoError(log, "load user", err, errors.NewNotFoundError("user", userID))
	}

	state, err := s.streakRepo.Modify(ctx, userID, start, end, func(st repository.StreakState) (repository.StreakState, bool) {
		if !streak.IsStale(st.LastCompletionDate, today) || st.CurrentStreak == 0 {
			return st, false
		}
		st.CurrentStreak = 0
		return st, true
	})
	if err != nil {
		return nil, repoError(log, "check streak", err, errors.NewNotFoundError("user", userID))
	}

	if state.LastCompletionDate == nil {
		return &models.StreakCheck{CurrentStreak: 0, LongestStreak: state.LongestStreak}, nil
	}
	days := streak.DaysBetween(*state.LastCompletionDate, today)
	return &models.StreakCheck{
		CurrentStreak:           state.CurrentStreak,
		LongestStreak:           state.LongestStreak,
		IsActive:                days == 0,
		DaysSinceLastCompletion: &days,
	}, nil
}
