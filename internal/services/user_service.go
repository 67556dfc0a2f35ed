package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/timezone"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Email    string
	Password string
	Timezone string
}

// UserService handles accounts and login sessions
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.Session, *models.User, error)
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a session token to its user.
	Authenticate(ctx context.Context, token string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateTimezone(ctx context.Context, id int64, tz string) (*models.User, error)
}

type userService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	settings    Settings
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, settings Settings) UserService {
	if settings.BcryptCost == 0 {
		settings.BcryptCost = bcrypt.DefaultCost
	}
	return &userService{userRepo: userRepo, sessionRepo: sessionRepo, settings: settings}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	log := logger.FromContext(ctx)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	log.Debug("registering user: email=%s", email)

	if email == "" {
		return nil, errors.NewValidationError("email", "cannot be empty")
	}
	tz := strings.TrimSpace(input.Timezone)
	if tz == "" {
		tz = s.settings.DefaultTimezone
	}
	if !timezone.IsValid(tz) {
		return nil, errors.NewValidationError("timezone", "unknown timezone "+tz)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.settings.BcryptCost)
	if err != nil {
		log.Error("failed to hash password: %v", err)
		return nil, errors.NewInternalError(err)
	}

	user, err := s.userRepo.Create(ctx, models.User{Email: email, PasswordHash: string(hash), Timezone: tz})
	if err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.NewDuplicateNameError("email", email)
		}
		log.Error("failed to create user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("user registered: id=%d", user.ID)
	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	log := logger.FromContext(ctx)
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug("login attempt: email=%s", email)

	invalid := errors.NewUnauthorizedError("invalid email or password")

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, nil, invalid
		}
		log.Error("failed to load user: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug("password mismatch: user_id=%d", user.ID)
		return nil, nil, invalid
	}

	now := s.settings.now()
	session := models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.settings.SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		log.Error("failed to create session: %v", err)
		return nil, nil, errors.NewInternalError(err)
	}
	log.Info("user logged in: id=%d", user.ID)
	return &session, user, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)
	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		log.Error("failed to delete session: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	log := logger.FromContext(ctx)
	unauthorized := errors.NewUnauthorizedError("invalid or expired session")

	if token == "" {
		return nil, unauthorized
	}
	session, err := s.sessionRepo.Get(ctx, token)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, unauthorized
		}
		log.Error("failed to load session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !session.ExpiresAt.After(s.settings.now()) {
		log.Debug("session expired: user_id=%d", session.UserID)
		if err := s.sessionRepo.Delete(ctx, token); err != nil {
			log.Warn("failed to delete expired session: %v", err)
		}
		return nil, unauthorized
	}

	user, err := s.userRepo.Get(ctx, session.UserID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, unauthorized
		}
		log.Error("failed to load session user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	log := logger.FromContext(ctx)
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, repoError(log, "get user", err, errors.NewNotFoundError("user", id))
	}
	return user, nil
}

func (s *userService) UpdateTimezone(ctx context.Context, id int64, tz string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating timezone: user_id=%d, tz=%s", id, tz)

	tz = strings.TrimSpace(tz)
	if !timezone.IsValid(tz) {
		return nil, errors.NewValidationError("timezone", "unknown timezone "+tz)
	}
	if err := s.userRepo.UpdateTimezone(ctx, id, tz); err != nil {
		return nil, repoError(log, "update timezone", err, errors.NewNotFoundError("user", id))
	}
	return s.GetUser(ctx, id)
}
