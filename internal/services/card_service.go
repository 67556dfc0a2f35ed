package services

import (
	"context"
	"strings"

	"github.com/vytor/studyspace/internal/calendar"
	"github.com/vytor/studyspace/internal/errors"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
	"github.com/vytor/studyspace/internal/timezone"
)

// initialIntervalDays is the interval of a new card's first review.
const initialIntervalDays = 1

// CardInput carries the fields of a new card.
type CardInput struct {
	TopicID  int64
	Question string
	Answer   string
}

// NewCard is a created card with its first scheduled review.
type NewCard struct {
	Card       models.Card            `json:"card"`
	NextReview models.ScheduledReview `json:"next_review"`
}

// CardService handles card-related business logic
type CardService interface {
	CreateCard(ctx context.Context, userID int64, input CardInput) (*NewCard, error)
	GetCard(ctx context.Context, id, userID int64) (*models.CardSummary, error)
	ListTopicCards(ctx context.Context, topicID, userID int64) ([]models.CardSummary, error)
	UpdateCard(ctx context.Context, id, userID int64, update models.CardUpdate) (*models.Card, error)
	DeleteCard(ctx context.Context, id, userID int64) error
	SearchCards(ctx context.Context, userID int64, term string) ([]models.CardSummary, error)
}

type cardService struct {
	cardRepo repository.CardRepository
	userRepo repository.UserRepository
	notifier calendar.Notifier
	settings Settings
}

// NewCardService creates a new CardService
func NewCardService(cardRepo repository.CardRepository, userRepo repository.UserRepository, notifier calendar.Notifier, settings Settings) CardService {
	if notifier == nil {
		notifier = calendar.Nop{}
	}
	return &cardService{cardRepo: cardRepo, userRepo: userRepo, notifier: notifier, settings: settings}
}

func (s *cardService) CreateCard(ctx context.Context, userID int64, input CardInput) (*NewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating card: user_id=%d, topic_id=%d", userID, input.TopicID)

	question := strings.TrimSpace(input.Question)
	answer := strings.TrimSpace(input.Answer)
	if question == "" {
		return nil, errors.NewValidationError("question", "cannot be empty")
	}
	if answer == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		return nil, repoError(log, "load card owner", err, errors.NewNotFoundError("user", userID))
	}

	// First review: next local calendar day at the configured hour.
	loc := s.settings.location(user.Timezone)
	due := timezone.DateIn(s.settings.now(), loc, 1, s.settings.FirstReviewHour, 0)

	card, review, err := s.cardRepo.Create(ctx, userID,
		models.Card{TopicID: input.TopicID, Question: question, Answer: answer},
		models.ScheduledReview{DueDate: due, IntervalDays: initialIntervalDays},
	)
	if err != nil {
		return nil, repoError(log, "create card", err, errors.NewNotFoundError("topic", input.TopicID))
	}

	s.notifier.ReviewScheduled(ctx, *review)
	log.Debug("card created: id=%d, first review due %s", card.ID, review.DueDate)
	return &NewCard{Card: *card, NextReview: *review}, nil
}

func (s *cardService) GetCard(ctx context.Context, id, userID int64) (*models.CardSummary, error) {
	log := logger.FromContext(ctx)
	card, err := s.cardRepo.Get(ctx, id, userID)
	if err != nil {
		return nil, repoError(log, "get card", err, errors.NewNotFoundError("card", id))
	}
	return card, nil
}

func (s *cardService) ListTopicCards(ctx context.Context, topicID, userID int64) ([]models.CardSummary, error) {
	log := logger.FromContext(ctx)
	cards, err := s.cardRepo.ListByTopic(ctx, topicID, userID)
	if err != nil {
		return nil, repoError(log, "list cards", err, errors.NewNotFoundError("topic", topicID))
	}
	return cards, nil
}

func (s *cardService) UpdateCard(ctx context.Context, id, userID int64, update models.CardUpdate) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating card: id=%d, user_id=%d", id, userID)

	if update.Question != nil {
		q := strings.TrimSpace(*update.Question)
		if q == "" {
			return nil, errors.NewValidationError("question", "cannot be empty")
		}
		update.Question = &q
	}
	if update.Answer != nil {
		a := strings.TrimSpace(*update.Answer)
		if a == "" {
			return nil, errors.NewValidationError("answer", "cannot be empty")
		}
		update.Answer = &a
	}

	card, err := s.cardRepo.Update(ctx, id, userID, update)
	if err != nil {
		return nil, repoError(log, "update card", err, errors.NewNotFoundError("card", id))
	}
	return card, nil
}

func (s *cardService) DeleteCard(ctx context.Context, id, userID int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting card: id=%d, user_id=%d", id, userID)

	removed, err := s.cardRepo.Delete(ctx, id, userID)
	if err != nil {
		return repoError(log, "delete card", err, errors.NewNotFoundError("card", id))
	}
	s.notifier.ReviewsRemoved(ctx, removed)
	return nil
}

func (s *cardService) SearchCards(ctx context.Context, userID int64, term string) ([]models.CardSummary, error) {
	log := logger.FromContext(ctx)
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.NewValidationError("q", "cannot be empty")
	}
	cards, err := s.cardRepo.Search(ctx, userID, term, cardSearchLimit)
	if err != nil {
		log.Error("failed to search cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return cards, nil
}
