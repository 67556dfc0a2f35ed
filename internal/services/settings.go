package services

import (
	stderrors "errors"
	"time"

	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/timezone"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	cardSearchLimit  = 20
)

// Settings holds the knobs shared by the services.
type Settings struct {
	DefaultTimezone string
	FirstReviewHour int
	SessionTTL      time.Duration
	BcryptCost      int
	// Now reports the current instant. Defaults to time.Now.
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// location resolves a user's timezone, falling back to the configured zone.
func (s Settings) location(tz string) *time.Location {
	return timezone.Resolve(tz, s.DefaultTimezone)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// repoError translates a repository failure into an AppError. notFound is
// returned for repository.ErrNotFound; anything unexpected is logged and
// reported as internal.
func repoError(log *logger.Logger, op string, err error, notFound *errors.AppError) error {
	if notFound != nil && stderrors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	log.Error("failed to %s: %v", op, err)
	return errors.NewInternalError(err)
}
