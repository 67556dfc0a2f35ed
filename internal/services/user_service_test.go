package services_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/services"
)

type UserServiceSuite struct {
	serviceSuite
}

func (s *UserServiceSuite) TestRegister() {
	u, err := s.users.Register(s.ctx, services.RegisterInput{Email: "  New@Example.com ", Password: "secret123"})
	s.Require().NoError(err)
	s.Assert().Equal("new@example.com", u.Email)
	s.Assert().Equal("America/Bogota", u.Timezone)
	s.Assert().NotEqual("secret123", u.PasswordHash)

	_, err = s.users.Register(s.ctx, services.RegisterInput{Email: "new@example.com", Password: "other123"})
	s.Assert().True(stderrors.Is(err, apperrors.ErrDuplicateName))

	_, err = s.users.Register(s.ctx, services.RegisterInput{Email: "tz@example.com", Password: "secret123", Timezone: "Mars/Olympus"})
	s.Assert().True(stderrors.Is(err, apperrors.ErrValidation))
}

func (s *UserServiceSuite) TestLoginAuthenticateLogout() {
	session, user, err := s.users.Login(s.ctx, "student@example.com", "secret123")
	s.Require().NoError(err)
	s.Assert().Equal(s.userModel.ID, user.ID)
	s.Assert().NotEmpty(session.Token)
	s.Assert().True(session.ExpiresAt.Equal(start.Add(48 * time.Hour)))

	authed, err := s.users.Authenticate(s.ctx, session.Token)
	s.Require().NoError(err)
	s.Assert().Equal(s.userModel.ID, authed.ID)

	s.Require().NoError(s.users.Logout(s.ctx, session.Token))
	_, err = s.users.Authenticate(s.ctx, session.Token)
	s.Assert().True(stderrors.Is(err, apperrors.ErrUnauthorized))
}

func (s *UserServiceSuite) TestLogin_WrongCredentials() {
	_, _, err := s.users.Login(s.ctx, "student@example.com", "wrong")
	s.Assert().True(stderrors.Is(err, apperrors.ErrUnauthorized))

	_, _, err = s.users.Login(s.ctx, "ghost@example.com", "secret123")
	s.Assert().True(stderrors.Is(err, apperrors.ErrUnauthorized))
}

func (s *UserServiceSuite) TestAuthenticate_ExpiredSession() {
	session, _, err := s.users.Login(s.ctx, "student@example.com", "secret123")
	s.Require().NoError(err)

	s.clock.Advance(49 * time.Hour)
	_, err = s.users.Authenticate(s.ctx, session.Token)
	s.Assert().True(stderrors.Is(err, apperrors.ErrUnauthorized))
	s.Assert().Equal(0, s.countRows(`SELECT COUNT(*) FROM sessions`))
}

func (s *UserServiceSuite) TestUpdateTimezone() {
	u, err := s.users.UpdateTimezone(s.ctx, s.userModel.ID, "Europe/Madrid")
	s.Require().NoError(err)
	s.Assert().Equal("Europe/Madrid", u.Timezone)

	_, err = s.users.UpdateTimezone(s.ctx, s.userModel.ID, "Nowhere/City")
	s.Assert().True(stderrors.Is(err, apperrors.ErrValidation))
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}
