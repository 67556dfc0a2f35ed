// Package calendar mirrors scheduled reviews into an external calendar.
// Synchronisation is best-effort: it runs after the scheduling transaction
// has committed and its failures are logged, never returned.
package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
)

// SessionLength is the duration of the calendar event created for a review.
const SessionLength = 30 * time.Minute

// Syncer talks to a calendar provider.
type Syncer interface {
	// CreateEvent creates an event for the review and returns its id.
	CreateEvent(ctx context.Context, review models.ScheduledReview) (string, error)
	UpdateEvent(ctx context.Context, eventID string, review models.ScheduledReview) error
	DeleteEvent(ctx context.Context, eventID string, userID int64) error
}

// Notifier receives scheduling changes once they are committed.
type Notifier interface {
	ReviewScheduled(ctx context.Context, review models.ScheduledReview)
	ReviewRescheduled(ctx context.Context, review models.ScheduledReview)
	ReviewsRemoved(ctx context.Context, reviews []models.ScheduledReview)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) ReviewScheduled(context.Context, models.ScheduledReview)   {}
func (Nop) ReviewRescheduled(context.Context, models.ScheduledReview) {}
func (Nop) ReviewsRemoved(context.Context, []models.ScheduledReview)  {}

// LogSyncer is a Syncer without a provider: it logs each call and hands out
// synthetic event ids.
type LogSyncer struct {
	log *logger.Logger
}

func NewLogSyncer() *LogSyncer {
	return &LogSyncer{log: logger.Default().WithPrefix("calendar")}
}

func (s *LogSyncer) CreateEvent(ctx context.Context, review models.ScheduledReview) (string, error) {
	id := fmt.Sprintf("review-%d", review.ID)
	s.log.Info("create event %s: user_id=%d, start=%s, end=%s, interval=%dd",
		id, review.UserID, review.DueDate.Format(time.RFC3339), review.DueDate.Add(SessionLength).Format(time.RFC3339), review.IntervalDays)
	return id, nil
}

func (s *LogSyncer) UpdateEvent(ctx context.Context, eventID string, review models.ScheduledReview) error {
	s.log.Info("update event %s: user_id=%d, start=%s", eventID, review.UserID, review.DueDate.Format(time.RFC3339))
	return nil
}

func (s *LogSyncer) DeleteEvent(ctx context.Context, eventID string, userID int64) error {
	s.log.Info("delete event %s: user_id=%d", eventID, userID)
	return nil
}
