package api

import (
	"context"

	"github.com/vytor/studyspace/internal/services"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	UserService     services.UserService
	TopicService    services.TopicService
	CardService     services.CardService
	ReviewService   services.ReviewService
	ScheduleService services.ScheduleService
	StreakService   services.StreakService
	StatsService    services.StatsService
	DB              Pinger
	Limiter         *RateLimiter
}
