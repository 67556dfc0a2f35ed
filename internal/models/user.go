package models

import "time"

type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Timezone     string `json:"timezone"`
	// CurrentStreak never exceeds LongestStreak.
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
	// LastCompletionDate is a calendar date, stored as midnight UTC.
	LastCompletionDate *time.Time `json:"last_completion_date"`
	CreatedAt          time.Time  `json:"created_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
