package models

import "time"

type Card struct {
	ID        int64     `json:"id"`
	TopicID   int64     `json:"topic_id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// CardSummary is a card enriched with its topic and review activity.
type CardSummary struct {
	Card
	Topic        TopicRef          `json:"topic"`
	NextReview   *time.Time        `json:"next_review"`
	TimesStudied int               `json:"times_studied"`
	LastRating   *DifficultyRating `json:"last_rating"`
}

// CardUpdate carries a partial update; nil fields are left untouched.
type CardUpdate struct {
	Question *string
	Answer   *string
}
