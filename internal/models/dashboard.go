package models

type DashboardStats struct {
	TotalTopics      int `json:"total_topics"`
	TotalCards       int `json:"total_cards"`
	CompletedReviews int `json:"completed_reviews"`
	PendingReviews   int `json:"pending_reviews"`
	CompletedToday   int `json:"completed_today"`
	CurrentStreak    int `json:"current_streak"`
	LongestStreak    int `json:"longest_streak"`
}

type Dashboard struct {
	User           User            `json:"user"`
	Stats          DashboardStats  `json:"stats"`
	PendingReviews []PendingReview `json:"pending_reviews"`
}
