package models

import "time"

// DifficultyRating is the self-reported difficulty of a completed review.
// Lower is easier.
type DifficultyRating int

const (
	RatingEasy      DifficultyRating = 1
	RatingMedium    DifficultyRating = 2
	RatingDifficult DifficultyRating = 3
)

func (r DifficultyRating) Valid() bool {
	return r >= RatingEasy && r <= RatingDifficult
}

func (r DifficultyRating) String() string {
	switch r {
	case RatingEasy:
		return "easy"
	case RatingMedium:
		return "medium"
	case RatingDifficult:
		return "difficult"
	default:
		return "unknown"
	}
}

type ReviewStatus string

const (
	ReviewOpen      ReviewStatus = "open"
	ReviewCompleted ReviewStatus = "completed"
)

// ReviewState is Open, or Completed by exactly one CompletedReview.
// CompletedReviewID is zero while the review is open.
type ReviewState struct {
	Status            ReviewStatus `json:"status"`
	CompletedReviewID int64        `json:"completed_review_id,omitempty"`
}

func OpenState() ReviewState {
	return ReviewState{Status: ReviewOpen}
}

func CompletedState(completedReviewID int64) ReviewState {
	return ReviewState{Status: ReviewCompleted, CompletedReviewID: completedReviewID}
}

func (s ReviewState) IsOpen() bool {
	return s.Status == ReviewOpen
}

type ScheduledReview struct {
	ID              int64       `json:"id"`
	CardID          int64       `json:"card_id"`
	UserID          int64       `json:"user_id"`
	DueDate         time.Time   `json:"due_date"`
	IntervalDays    int         `json:"interval_days"`
	ExternalEventID *string     `json:"external_event_id,omitempty"`
	State           ReviewState `json:"state"`
	CreatedAt       time.Time   `json:"created_at"`
}

type CompletedReview struct {
	ID                  int64            `json:"id"`
	ScheduledReviewID   int64            `json:"scheduled_review_id"`
	CardID              int64            `json:"card_id"`
	UserID              int64            `json:"user_id"`
	CompletedAt         time.Time        `json:"completed_at"`
	DifficultyRating    DifficultyRating `json:"difficulty_rating"`
	ResponseTimeSeconds *int             `json:"response_time_seconds,omitempty"`
}

// ReviewCompletion is the outcome of closing a scheduled review.
type ReviewCompletion struct {
	CompletedReview CompletedReview `json:"completed_review"`
	NextReview      ScheduledReview `json:"next_review"`
	NextInterval    int             `json:"next_interval"`
}

type ReviewCard struct {
	ID       int64    `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Topic    TopicRef `json:"topic"`
}

// PendingReview is an open scheduled review with its card.
type PendingReview struct {
	ScheduledReview
	Card ReviewCard `json:"card"`
}

// ReviewDay groups open reviews due on one UTC calendar day (YYYY-MM-DD).
type ReviewDay struct {
	Date    string          `json:"date"`
	Reviews []PendingReview `json:"reviews"`
}

type ReviewHistoryEntry struct {
	ID                  int64            `json:"id"`
	CompletedAt         time.Time        `json:"completed_at"`
	DifficultyRating    DifficultyRating `json:"difficulty_rating"`
	ResponseTimeSeconds *int             `json:"response_time_seconds,omitempty"`
	IntervalDays        int              `json:"interval_days"`
	ScheduledFor        time.Time        `json:"scheduled_for"`
}

type ReviewHistoryPage struct {
	CardID     int64                `json:"card_id"`
	History    []ReviewHistoryEntry `json:"history"`
	Pagination Pagination           `json:"pagination"`
}
