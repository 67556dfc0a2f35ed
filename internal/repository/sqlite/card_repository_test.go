package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/repository/sqlite"
	"github.com/vytor/studyspace/internal/testutil"
)

type CardRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.CardRepository
	user  *models.User
	topic *models.Topic
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db)
	s.user = createUser(s.T(), s.db, "cards@example.com")
	s.topic = createTopic(s.T(), s.db, s.user.ID, "Spanish")
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) TestCreate_SchedulesInitialReview() {
	ctx := context.Background()

	card, review, err := s.repo.Create(ctx, s.user.ID,
		models.Card{TopicID: s.topic.ID, Question: "How do you say cat?", Answer: "gato"},
		models.ScheduledReview{DueDate: baseTime, IntervalDays: 1},
	)
	s.Require().NoError(err)
	s.Assert().Equal(s.topic.ID, card.TopicID)
	s.Assert().Equal(card.ID, review.CardID)
	s.Assert().Equal(s.user.ID, review.UserID)
	s.Assert().Equal(1, review.IntervalDays)
	s.Assert().True(review.DueDate.Equal(baseTime))
	s.Assert().True(review.State.IsOpen())

	summary, err := s.repo.Get(ctx, card.ID, s.user.ID)
	s.Require().NoError(err)
	s.Assert().Equal("gato", summary.Answer)
	s.Assert().Equal("Spanish", summary.Topic.Name)
	s.Require().NotNil(summary.NextReview)
	s.Assert().True(summary.NextReview.Equal(baseTime))
	s.Assert().Equal(0, summary.TimesStudied)
	s.Assert().Nil(summary.LastRating)
}

func (s *CardRepositorySuite) TestCreate_ForeignTopic() {
	other := createUser(s.T(), s.db, "other@example.com")

	_, _, err := s.repo.Create(context.Background(), other.ID,
		models.Card{TopicID: s.topic.ID, Question: "Sneaky?", Answer: "no"},
		models.ScheduledReview{DueDate: baseTime, IntervalDays: 1},
	)
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	n, err := s.repo.Count(context.Background(), s.user.ID)
	s.Require().NoError(err)
	s.Assert().Zero(n)
}

func (s *CardRepositorySuite) TestListByTopicAndSearch() {
	ctx := context.Background()
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "How do you say dog?", baseTime)
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "How do you say house?", baseTime)

	cards, err := s.repo.ListByTopic(ctx, s.topic.ID, s.user.ID)
	s.Require().NoError(err)
	s.Assert().Len(cards, 2)

	found, err := s.repo.Search(ctx, s.user.ID, "house", 20)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Assert().Equal("How do you say house?", found[0].Question)

	other := createUser(s.T(), s.db, "other@example.com")
	_, err = s.repo.ListByTopic(ctx, s.topic.ID, other.ID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	found, err = s.repo.Search(ctx, other.ID, "house", 20)
	s.Require().NoError(err)
	s.Assert().Empty(found)
}

func (s *CardRepositorySuite) TestSearch_WildcardsAreLiteral() {
	ctx := context.Background()
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Is 50% of ten five?", baseTime)
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Is 500 a large number?", baseTime)
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Write snake_case in Go?", baseTime)
	createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Write snakeXcase in Go?", baseTime)

	found, err := s.repo.Search(ctx, s.user.ID, "50%", 20)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Assert().Equal("Is 50% of ten five?", found[0].Question)

	found, err = s.repo.Search(ctx, s.user.ID, "e_c", 20)
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Assert().Equal("Write snake_case in Go?", found[0].Question)

	found, err = s.repo.Search(ctx, s.user.ID, `\`, 20)
	s.Require().NoError(err)
	s.Assert().Empty(found)
}

func (s *CardRepositorySuite) TestUpdate() {
	ctx := context.Background()
	card, _ := createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Old question", baseTime)

	q := "New question"
	updated, err := s.repo.Update(ctx, card.ID, s.user.ID, models.CardUpdate{Question: &q})
	s.Require().NoError(err)
	s.Assert().Equal("New question", updated.Question)
	s.Assert().Equal("answer", updated.Answer)

	other := createUser(s.T(), s.db, "other@example.com")
	_, err = s.repo.Update(ctx, card.ID, other.ID, models.CardUpdate{Question: &q})
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *CardRepositorySuite) TestDelete() {
	ctx := context.Background()
	card, review := createCard(s.T(), s.db, s.user.ID, s.topic.ID, "Delete me", baseTime)

	other := createUser(s.T(), s.db, "other@example.com")
	_, err := s.repo.Delete(ctx, card.ID, other.ID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)

	removed, err := s.repo.Delete(ctx, card.ID, s.user.ID)
	s.Require().NoError(err)
	s.Require().Len(removed, 1)
	s.Assert().Equal(review.ID, removed[0].ID)

	_, err = s.repo.Get(ctx, card.ID, s.user.ID)
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
