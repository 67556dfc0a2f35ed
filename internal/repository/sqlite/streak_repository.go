package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/streak"
)

type streakRepository struct {
	db *sql.DB
}

// NewStreakRepository creates a new StreakRepository implementation
func NewStreakRepository(db *sql.DB) repository.StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Modify(ctx context.Context, userID int64, dayStart, dayEnd time.Time, fn repository.StreakMutator) (repository.StreakState, error) {
	log := logger.FromContext(ctx).WithPrefix("streak_repo")
	log.Debug("evaluating streak: user_id=%d, day=[%s, %s)", userID, dayStart, dayEnd)

	var result repository.StreakState
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var state repository.StreakState
		var last sql.NullString
		err := tx.QueryRowContext(ctx, `
SELECT current_streak, longest_streak, last_completion_date FROM users WHERE id = ?
`, userID).Scan(&state.CurrentStreak, &state.LongestStreak, &last)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}
		if last.Valid {
			d, err := streak.ParseDate(last.String)
			if err != nil {
				return err
			}
			state.LastCompletionDate = &d
		}

		err = tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM scheduled_reviews
WHERE user_id = ? AND state = ? AND due_date >= ? AND due_date < ?
`, userID, string(models.ReviewOpen), dbTime(dayStart), dbTime(dayEnd)).Scan(&state.PendingToday)
		if err != nil {
			return err
		}

		next, changed := fn(state)
		result = next
		if !changed {
			return nil
		}

		var lastDate sql.NullString
		if next.LastCompletionDate != nil {
			lastDate = sql.NullString{String: streak.FormatDate(*next.LastCompletionDate), Valid: true}
		}
		log.Debug("persisting streak: user_id=%d, current=%d, longest=%d", userID, next.CurrentStreak, next.LongestStreak)
		_, err = tx.ExecContext(ctx, `
UPDATE users SET current_streak = ?, longest_streak = ?, last_completion_date = ?
WHERE id = ?
`, next.CurrentStreak, next.LongestStreak, lastDate, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to modify streak: %v", err)
		}
		return repository.StreakState{}, err
	}
	return result, nil
}
