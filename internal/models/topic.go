package models

import "time"

const DefaultTopicColor = "#3B82F6"

type Topic struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	CardsCount  int       `json:"cards_count"`
}

// TopicRef is the short form of a topic embedded in card and review payloads.
type TopicRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type TopicFilter struct {
	UserID int64
	Search string
	Page   int
	Limit  int
}

// TopicUpdate carries a partial update; nil fields are left untouched.
type TopicUpdate struct {
	Name        *string
	Description *string
	Color       *string
}
