package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/studyspace/internal/calendar"
	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

// TopicInput carries the fields of a new topic.
type TopicInput struct {
	Name        string
	Description string
	Color       string
}

// TopicPage is one page of a topic listing.
type TopicPage struct {
	Topics     []models.Topic    `json:"topics"`
	Pagination models.Pagination `json:"pagination"`
}

// TopicService handles topic-related business logic
type TopicService interface {
	CreateTopic(ctx context.Context, userID int64, input TopicInput) (*models.Topic, error)
	ListTopics(ctx context.Context, userID int64, search string, page, limit int) (*TopicPage, error)
	GetTopic(ctx context.Context, id, userID int64) (*models.Topic, error)
	UpdateTopic(ctx context.Context, id, userID int64, update models.TopicUpdate) (*models.Topic, error)
	DeleteTopic(ctx context.Context, id, userID int64) error
}

type topicService struct {
	topicRepo repository.TopicRepository
	notifier  calendar.Notifier
}

// NewTopicService creates a new TopicService
func NewTopicService(topicRepo repository.TopicRepository, notifier calendar.Notifier) TopicService {
	if notifier == nil {
		notifier = calendar.Nop{}
	}
	return &topicService{topicRepo: topicRepo, notifier: notifier}
}

func (s *topicService) CreateTopic(ctx context.Context, userID int64, input TopicInput) (*models.Topic, error) {
	log := logger.FromContext(ctx)
	name := strings.TrimSpace(input.Name)
	log.Debug("creating topic: user_id=%d, name=%s", userID, name)

	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}
	color := strings.TrimSpace(input.Color)
	if color == "" {
		color = models.DefaultTopicColor
	}

	topic, err := s.topicRepo.Create(ctx, models.Topic{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Color:       color,
	})
	if err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.NewDuplicateNameError("topic name", name)
		}
		log.Error("failed to create topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return topic, nil
}

func (s *topicService) ListTopics(ctx context.Context, userID int64, search string, page, limit int) (*TopicPage, error) {
	log := logger.FromContext(ctx)
	page, limit = normalizePage(page, limit)
	log.Debug("listing topics: user_id=%d, search=%q, page=%d, limit=%d", userID, search, page, limit)

	topics, total, err := s.topicRepo.List(ctx, models.TopicFilter{
		UserID: userID,
		Search: strings.TrimSpace(search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &TopicPage{Topics: topics, Pagination: models.NewPagination(page, limit, total)}, nil
}

func (s *topicService) GetTopic(ctx context.Context, id, userID int64) (*models.Topic, error) {
	log := logger.FromContext(ctx)
	topic, err := s.topicRepo.Get(ctx, id, userID)
	if err != nil {
		return nil, repoError(log, "get topic", err, errors.NewNotFoundError("topic", id))
	}
	return topic, nil
}

func (s *topicService) UpdateTopic(ctx context.Context, id, userID int64, update models.TopicUpdate) (*models.Topic, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating topic: id=%d, user_id=%d", id, userID)

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, errors.NewValidationError("name", "cannot be empty")
		}
		update.Name = &name
	}

	topic, err := s.topicRepo.Update(ctx, id, userID, update)
	if err != nil {
		if stderrors.Is(err, repository.ErrConflict) {
			return nil, errors.NewDuplicateNameError("topic name", *update.Name)
		}
		return nil, repoError(log, "update topic", err, errors.NewNotFoundError("topic", id))
	}
	return topic, nil
}

func (s *topicService) DeleteTopic(ctx context.Context, id, userID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting topic: id=%d, user_id=%d", id, userID)

	removed, err := s.topicRepo.Delete(ctx, id, userID)
	if err != nil {
		return repoError(log, "delete topic", err, errors.NewNotFoundError("topic", id))
	}
	s.notifier.ReviewsRemoved(ctx, removed)
	log.Info("topic deleted: id=%d", id)
	return nil
}
