package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("creating session: user_id=%d", s.UserID)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (token, user_id, expires_at, created_at)
VALUES (?, ?, ?, ?)
`, s.Token, s.UserID, dbTime(s.ExpiresAt), dbTime(s.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		log.Error("failed to create session: %v", err)
	}
	return err
}

func (r *sessionRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	var s models.Session
	err := r.db.QueryRowContext(ctx, `
SELECT token, user_id, expires_at, created_at FROM sessions WHERE token = ?
`, token).Scan(&s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found")
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return &s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, token string) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		log.Error("failed to delete session: %v", err)
	}
	return err
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, dbTime(now))
	if err != nil {
		log.Error("failed to delete expired sessions: %v", err)
		return 0, err
	}
	n, _ := res.RowsAffected()
	log.Debug("deleted %d expired sessions", n)
	return n, nil
}
