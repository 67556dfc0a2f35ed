package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/streak"
)

const userColumns = `id, email, password_hash, timezone, current_streak, longest_streak, last_completion_date, created_at`

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u models.User) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("creating user: email=%s", u.Email)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO users (email, password_hash, timezone)
VALUES (?, ?, ?)
`, u.Email, u.PasswordHash, u.Timezone)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("email already registered: %s", u.Email)
			return nil, repository.ErrConflict
		}
		log.Error("failed to create user: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get user id: %v", err)
		return nil, err
	}
	log.Debug("user created: id=%d", id)
	return r.Get(ctx, id)
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("fetching user: id=%d", id)

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%d", id)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("fetching user by email: %s", email)

	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get user by email: %v", err)
		return nil, err
	}
	return u, nil
}

func (r *userRepository) UpdateTimezone(ctx context.Context, id int64, tz string) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating timezone: user_id=%d, tz=%s", id, tz)

	res, err := r.db.ExecContext(ctx, `UPDATE users SET timezone = ? WHERE id = ?`, tz, id)
	if err != nil {
		log.Error("failed to update timezone: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var last sql.NullString
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Timezone, &u.CurrentStreak, &u.LongestStreak, &last, &u.CreatedAt); err != nil {
		return nil, err
	}
	if last.Valid {
		d, err := streak.ParseDate(last.String)
		if err != nil {
			return nil, err
		}
		u.LastCompletionDate = &d
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}
