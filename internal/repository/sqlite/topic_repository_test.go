package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/repository/sqlite"
	"github.com/vytor/studyspace/internal/testutil"
)

type TopicRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.TopicRepository
	user *models.User
}

func (s *TopicRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewTopicRepository(s.db)
	s.user = createUser(s.T(), s.db, "topics@example.com")
}

func (s *TopicRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *TopicRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()

	topic, err := s.repo.Create(ctx, models.Topic{UserID: s.user.ID, Name: "Go", Description: "Concurrency", Color: "#000000"})
	s.Require().NoError(err)
	s.Assert().Equal("Go", topic.Name)
	s.Assert().Equal("Concurrency", topic.Description)
	s.Assert().Equal(0, topic.CardsCount)

	createCard(s.T(), s.db, s.user.ID, topic.ID, "What is a goroutine?", baseTime)

	got, err := s.repo.Get(ctx, topic.ID, s.user.ID)
	s.Require().NoError(err)
	s.Assert().Equal(1, got.CardsCount)
}

func (s *TopicRepositorySuite) TestCreate_DuplicateNamePerUser() {
	ctx := context.Background()
	createTopic(s.T(), s.db, s.user.ID, "History")

	_, err := s.repo.Create(ctx, models.Topic{UserID: s.user.ID, Name: "History", Color: models.DefaultTopicColor})
	s.Assert().ErrorIs(err, repository.ErrConflict)

	other := createUser(s.T(), s.db, "other@example.com")
	_, err = s.repo.Create(ctx, models.Topic{UserID: other.ID, Name: "History", Color: models.DefaultTopicColor})
	s.Assert().NoError(err)
}

func (s *TopicRepositorySuite) TestGet_ForeignUser() {
	topic := createTopic(s.T(), s.db, s.user.ID, "Private")
	other := createUser(s.T(), s.db, "intruder@example.com")

	_, err := s.repo.Get(context.Background(), topic.ID, other.ID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *TopicRepositorySuite) TestList_SearchAndPagination() {
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		createTopic(s.T(), s.db, s.user.ID, fmt.Sprintf("Math %d", i))
	}
	createTopic(s.T(), s.db, s.user.ID, "Biology")

	topics, total, err := s.repo.List(ctx, models.TopicFilter{UserID: s.user.ID, Page: 1, Limit: 4})
	s.Require().NoError(err)
	s.Assert().Equal(6, total)
	s.Assert().Len(topics, 4)

	topics, total, err = s.repo.List(ctx, models.TopicFilter{UserID: s.user.ID, Page: 2, Limit: 4})
	s.Require().NoError(err)
	s.Assert().Equal(6, total)
	s.Assert().Len(topics, 2)

	topics, total, err = s.repo.List(ctx, models.TopicFilter{UserID: s.user.ID, Search: "math", Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Assert().Equal(5, total)
	s.Assert().Len(topics, 5)
}

func (s *TopicRepositorySuite) TestList_SearchWildcardsAreLiteral() {
	ctx := context.Background()
	createTopic(s.T(), s.db, s.user.ID, "C_plus")
	createTopic(s.T(), s.db, s.user.ID, "Cxplus")
	createTopic(s.T(), s.db, s.user.ID, "100% Spanish")

	topics, total, err := s.repo.List(ctx, models.TopicFilter{UserID: s.user.ID, Search: "c_p", Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Assert().Equal(1, total)
	s.Require().Len(topics, 1)
	s.Assert().Equal("C_plus", topics[0].Name)

	_, total, err = s.repo.List(ctx, models.TopicFilter{UserID: s.user.ID, Search: "%", Page: 1, Limit: 10})
	s.Require().NoError(err)
	s.Assert().Equal(1, total)
}

func (s *TopicRepositorySuite) TestUpdate() {
	ctx := context.Background()
	topic := createTopic(s.T(), s.db, s.user.ID, "Old")
	createTopic(s.T(), s.db, s.user.ID, "Taken")

	name := "New"
	color := "#FF0000"
	updated, err := s.repo.Update(ctx, topic.ID, s.user.ID, models.TopicUpdate{Name: &name, Color: &color})
	s.Require().NoError(err)
	s.Assert().Equal("New", updated.Name)
	s.Assert().Equal("#FF0000", updated.Color)

	taken := "Taken"
	_, err = s.repo.Update(ctx, topic.ID, s.user.ID, models.TopicUpdate{Name: &taken})
	s.Assert().ErrorIs(err, repository.ErrConflict)

	other := createUser(s.T(), s.db, "other@example.com")
	_, err = s.repo.Update(ctx, topic.ID, other.ID, models.TopicUpdate{Name: &name})
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *TopicRepositorySuite) TestDelete_CascadesAndReturnsOpenReviews() {
	ctx := context.Background()
	topic := createTopic(s.T(), s.db, s.user.ID, "Doomed")
	createCard(s.T(), s.db, s.user.ID, topic.ID, "First question", baseTime)
	createCard(s.T(), s.db, s.user.ID, topic.ID, "Second question", baseTime.Add(time.Hour))

	removed, err := s.repo.Delete(ctx, topic.ID, s.user.ID)
	s.Require().NoError(err)
	s.Assert().Len(removed, 2)

	var cards, reviews int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&cards))
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scheduled_reviews`).Scan(&reviews))
	s.Assert().Zero(cards)
	s.Assert().Zero(reviews)

	_, err = s.repo.Delete(ctx, topic.ID, s.user.ID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *TopicRepositorySuite) TestCount() {
	createTopic(s.T(), s.db, s.user.ID, "A")
	createTopic(s.T(), s.db, s.user.ID, "B")

	n, err := s.repo.Count(context.Background(), s.user.ID)
	s.Require().NoError(err)
	s.Assert().Equal(2, n)
}

func TestTopicRepositorySuite(t *testing.T) {
	suite.Run(t, new(TopicRepositorySuite))
}
