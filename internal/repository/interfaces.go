package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/studyspace/internal/models"
)

var (
	// ErrNotFound is returned when a row is absent or not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint.
	ErrConflict = errors.New("conflict")
)

// UserRepository handles user account data access
type UserRepository interface {
	Create(ctx context.Context, user models.User) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateTimezone(ctx context.Context, id int64, tz string) error
}

// SessionRepository handles login session data access
type SessionRepository interface {
	Create(ctx context.Context, session models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TopicRepository handles topic data access. Every method is scoped to the
// owning user.
type TopicRepository interface {
	Create(ctx context.Context, topic models.Topic) (*models.Topic, error)
	Get(ctx context.Context, id, userID int64) (*models.Topic, error)
	List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, int, error)
	Update(ctx context.Context, id, userID int64, update models.TopicUpdate) (*models.Topic, error)
	// Delete removes the topic with its cards and reviews and returns the
	// open reviews that were removed.
	Delete(ctx context.Context, id, userID int64) ([]models.ScheduledReview, error)
	Count(ctx context.Context, userID int64) (int, error)
}

// CardRepository handles card data access. Cards are owned through their
// topic.
type CardRepository interface {
	// Create stores the card and its initial scheduled review atomically.
	Create(ctx context.Context, userID int64, card models.Card, initial models.ScheduledReview) (*models.Card, *models.ScheduledReview, error)
	Get(ctx context.Context, id, userID int64) (*models.CardSummary, error)
	ListByTopic(ctx context.Context, topicID, userID int64) ([]models.CardSummary, error)
	Update(ctx context.Context, id, userID int64, update models.CardUpdate) (*models.Card, error)
	// Delete removes the card with its reviews and returns the open review
	// that was removed, if any.
	Delete(ctx context.Context, id, userID int64) ([]models.ScheduledReview, error)
	Search(ctx context.Context, userID int64, term string, limit int) ([]models.CardSummary, error)
	Count(ctx context.Context, userID int64) (int, error)
}

// NextReviewFunc computes the next review from the interval of the review
// being closed and the card's review count including this completion.
type NextReviewFunc func(previousIntervalDays, reviewCount int) (intervalDays int, dueDate time.Time)

// CompleteParams describes a review completion.
type CompleteParams struct {
	ScheduledReviewID   int64
	UserID              int64
	Rating              models.DifficultyRating
	ResponseTimeSeconds *int
	CompletedAt         time.Time
}

// ReviewRepository handles scheduled and completed review data access
type ReviewRepository interface {
	// Complete closes an open review, records the completion and schedules
	// the next review in one transaction. It returns ErrNotFound when the
	// review is absent, owned by someone else, or already completed.
	Complete(ctx context.Context, params CompleteParams, next NextReviewFunc) (*models.ReviewCompletion, error)
	// Reschedule moves the due date of an open review. It returns
	// ErrNotFound when the review is absent, foreign or completed.
	Reschedule(ctx context.Context, id, userID int64, dueDate time.Time) (*models.ScheduledReview, error)
	Get(ctx context.Context, id, userID int64) (*models.ScheduledReview, error)
	Pending(ctx context.Context, userID int64, now time.Time) ([]models.PendingReview, error)
	Upcoming(ctx context.Context, userID int64, from, to time.Time) ([]models.PendingReview, error)
	CountOpenDueBetween(ctx context.Context, userID int64, from, to time.Time) (int, error)
	CountOpenDueBefore(ctx context.Context, userID int64, t time.Time) (int, error)
	CountOpenForCard(ctx context.Context, cardID int64) (int, error)
	CountCompleted(ctx context.Context, userID int64, since *time.Time) (int, error)
	// History pages through the completions of a card owned by userID.
	History(ctx context.Context, cardID, userID int64, limit, offset int) ([]models.ReviewHistoryEntry, int, error)
	SetExternalEventID(ctx context.Context, id int64, eventID *string) error
	// ExternalEventID returns the calendar event id stored on a review, nil
	// when none has been stored.
	ExternalEventID(ctx context.Context, id int64) (*string, error)
}

// StreakState is the streak counters of a user together with the number of
// open reviews due on the day being evaluated.
type StreakState struct {
	CurrentStreak      int
	LongestStreak      int
	LastCompletionDate *time.Time
	PendingToday       int
}

// StreakMutator inspects a streak state and returns the state to persist
// and whether it changed.
type StreakMutator func(state StreakState) (StreakState, bool)

// StreakRepository reads and writes streak counters under one transaction.
type StreakRepository interface {
	// Modify loads the user's counters and the number of open reviews due in
	// [dayStart, dayEnd), applies fn and persists the result when fn reports
	// a change. The returned state is the one fn produced.
	Modify(ctx context.Context, userID int64, dayStart, dayEnd time.Time, fn StreakMutator) (StreakState, error)
}
