package models

import "time"

type StreakStats struct {
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastCompletionDate *time.Time `json:"last_completion_date"`
	IsActiveToday      bool       `json:"is_active_today"`
	PendingToday       int        `json:"pending_today"`
	CanExtendStreak    bool       `json:"can_extend_streak"`
	WasAutoReset       bool       `json:"was_auto_reset"`
}

// StreakUpdate is the result of crediting today's study session.
// Success is false while reviews due today are still open.
type StreakUpdate struct {
	Success            bool       `json:"success"`
	AlreadyUpdated     bool       `json:"already_updated"`
	PendingCount       int        `json:"pending_count"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastCompletionDate *time.Time `json:"last_completion_date,omitempty"`
}

type StreakCheck struct {
	CurrentStreak           int  `json:"current_streak"`
	LongestStreak           int  `json:"longest_streak"`
	IsActive                bool `json:"is_active"`
	DaysSinceLastCompletion *int `json:"days_since_last_completion,omitempty"`
}
