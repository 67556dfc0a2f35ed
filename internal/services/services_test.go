package services_test

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository/sqlite"
	"github.com/vytor/studyspace/internal/services"
	"github.com/vytor/studyspace/internal/testutil"
	"github.com/vytor/studyspace/internal/testutil/mocks"
	"golang.org/x/crypto/bcrypt"
)

// start is 15:00 on 2026-03-10 in Bogota (UTC-5).
var start = time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)

// serviceSuite wires every service to an in-memory database and a clock
// the tests can move.
type serviceSuite struct {
	suite.Suite
	ctx      context.Context
	db       *sql.DB
	clock    *testutil.Clock
	notifier *mocks.MockNotifier

	users     services.UserService
	topics    services.TopicService
	cards     services.CardService
	reviews   services.ReviewService
	schedule  services.ScheduleService
	streaks   services.StreakService
	stats     services.StatsService
	userModel *models.User
}

func (s *serviceSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.clock = &testutil.Clock{Now: start}
	s.notifier = new(mocks.MockNotifier)
	s.notifier.On("ReviewScheduled", mock.Anything, mock.Anything).Maybe()
	s.notifier.On("ReviewRescheduled", mock.Anything, mock.Anything).Maybe()
	s.notifier.On("ReviewsRemoved", mock.Anything, mock.Anything).Maybe()

	settings := services.Settings{
		DefaultTimezone: "America/Bogota",
		FirstReviewHour: 9,
		SessionTTL:      48 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
		Now:             s.clock.Func(),
	}

	userRepo := sqlite.NewUserRepository(s.db)
	topicRepo := sqlite.NewTopicRepository(s.db)
	cardRepo := sqlite.NewCardRepository(s.db)
	reviewRepo := sqlite.NewReviewRepository(s.db)
	streakRepo := sqlite.NewStreakRepository(s.db)

	s.users = services.NewUserService(userRepo, sqlite.NewSessionRepository(s.db), settings)
	s.topics = services.NewTopicService(topicRepo, s.notifier)
	s.cards = services.NewCardService(cardRepo, userRepo, s.notifier, settings)
	s.reviews = services.NewReviewService(reviewRepo, s.notifier, settings)
	s.schedule = services.NewScheduleService(reviewRepo, settings)
	s.streaks = services.NewStreakService(userRepo, streakRepo, settings)
	s.stats = services.NewStatsService(userRepo, topicRepo, cardRepo, reviewRepo, s.streaks, settings)

	s.userModel = s.register("student@example.com")
}

func (s *serviceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *serviceSuite) register(email string) *models.User {
	u, err := s.users.Register(s.ctx, services.RegisterInput{Email: email, Password: "secret123", Timezone: "America/Bogota"})
	s.Require().NoError(err)
	return u
}

func (s *serviceSuite) topic(userID int64, name string) *models.Topic {
	t, err := s.topics.CreateTopic(s.ctx, userID, services.TopicInput{Name: name})
	s.Require().NoError(err)
	return t
}

func (s *serviceSuite) card(userID, topicID int64, question string) *services.NewCard {
	c, err := s.cards.CreateCard(s.ctx, userID, services.CardInput{TopicID: topicID, Question: question, Answer: "an answer"})
	s.Require().NoError(err)
	return c
}

func (s *serviceSuite) countRows(query string, args ...any) int {
	var n int
	require.NoError(s.T(), s.db.QueryRowContext(s.ctx, query, args...).Scan(&n))
	return n
}
