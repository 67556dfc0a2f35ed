package services_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/services"
)

type TopicServiceSuite struct {
	serviceSuite
}

func (s *TopicServiceSuite) TestCreateTopic_DefaultsAndDuplicates() {
	topic, err := s.topics.CreateTopic(s.ctx, s.userModel.ID, services.TopicInput{Name: " Algebra "})
	s.Require().NoError(err)
	s.Assert().Equal("Algebra", topic.Name)
	s.Assert().Equal(models.DefaultTopicColor, topic.Color)

	_, err = s.topics.CreateTopic(s.ctx, s.userModel.ID, services.TopicInput{Name: "Algebra"})
	s.Assert().True(stderrors.Is(err, apperrors.ErrDuplicateName))

	_, err = s.topics.CreateTopic(s.ctx, s.userModel.ID, services.TopicInput{Name: "  "})
	s.Assert().True(stderrors.Is(err, apperrors.ErrValidation))
}

func (s *TopicServiceSuite) TestListTopics_Pagination() {
	for i := 1; i <= 12; i++ {
		s.topic(s.userModel.ID, fmt.Sprintf("Topic %02d", i))
	}

	page, err := s.topics.ListTopics(s.ctx, s.userModel.ID, "", 2, 5)
	s.Require().NoError(err)
	s.Assert().Len(page.Topics, 5)
	s.Assert().Equal(models.Pagination{Page: 2, Limit: 5, Total: 12, TotalPages: 3}, page.Pagination)

	page, err = s.topics.ListTopics(s.ctx, s.userModel.ID, "topic 1", 0, 0)
	s.Require().NoError(err)
	s.Assert().Equal(3, page.Pagination.Total)
	s.Assert().Equal(1, page.Pagination.Page)
}

func (s *TopicServiceSuite) TestUpdateAndDeleteTopic() {
	topic := s.topic(s.userModel.ID, "Draft")
	s.topic(s.userModel.ID, "Final")
	s.card(s.userModel.ID, topic.ID, "Inside the topic?")

	taken := "Final"
	_, err := s.topics.UpdateTopic(s.ctx, topic.ID, s.userModel.ID, models.TopicUpdate{Name: &taken})
	s.Assert().True(stderrors.Is(err, apperrors.ErrDuplicateName))

	desc := "Notes"
	updated, err := s.topics.UpdateTopic(s.ctx, topic.ID, s.userModel.ID, models.TopicUpdate{Description: &desc})
	s.Require().NoError(err)
	s.Assert().Equal("Notes", updated.Description)
	s.Assert().Equal(1, updated.CardsCount)

	other := s.register("other@example.com")
	err = s.topics.DeleteTopic(s.ctx, topic.ID, other.ID)
	s.Assert().True(stderrors.Is(err, apperrors.ErrNotFound))

	s.Require().NoError(s.topics.DeleteTopic(s.ctx, topic.ID, s.userModel.ID))
	s.notifier.AssertCalled(s.T(), "ReviewsRemoved", mock.Anything, mock.MatchedBy(func(removed []models.ScheduledReview) bool {
		return len(removed) == 1
	}))
	s.Assert().Equal(0, s.countRows(`SELECT COUNT(*) FROM cards`))

	_, err = s.topics.GetTopic(s.ctx, topic.ID, s.userModel.ID)
	s.Assert().True(stderrors.Is(err, apperrors.ErrNotFound))
}

func TestTopicServiceSuite(t *testing.T) {
	suite.Run(t, new(TopicServiceSuite))
}
