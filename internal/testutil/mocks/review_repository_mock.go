package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

// MockReviewRepository is a mock implementation of repository.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Complete(ctx context.Context, params repository.CompleteParams, next repository.NextReviewFunc) (*models.ReviewCompletion, error) {
	args := m.Called(ctx, params, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCompletion), args.Error(1)
}

func (m *MockReviewRepository) Reschedule(ctx context.Context, id, userID int64, dueDate time.Time) (*models.ScheduledReview, error) {
	args := m.Called(ctx, id, userID, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledReview), args.Error(1)
}

func (m *MockReviewRepository) Get(ctx context.Context, id, userID int64) (*models.ScheduledReview, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ScheduledReview), args.Error(1)
}

func (m *MockReviewRepository) Pending(ctx context.Context, userID int64, now time.Time) ([]models.PendingReview, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingReview), args.Error(1)
}

func (m *MockReviewRepository) Upcoming(ctx context.Context, userID int64, from, to time.Time) ([]models.PendingReview, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingReview), args.Error(1)
}

func (m *MockReviewRepository) CountOpenDueBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) CountOpenDueBefore(ctx context.Context, userID int64, t time.Time) (int, error) {
	args := m.Called(ctx, userID, t)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) CountOpenForCard(ctx context.Context, cardID int64) (int, error) {
	args := m.Called(ctx, cardID)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) CountCompleted(ctx context.Context, userID int64, since *time.Time) (int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewRepository) History(ctx context.Context, cardID, userID int64, limit, offset int) ([]models.ReviewHistoryEntry, int, error) {
	args := m.Called(ctx, cardID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.ReviewHistoryEntry), args.Int(1), args.Error(2)
}

func (m *MockReviewRepository) SetExternalEventID(ctx context.Context, id int64, eventID *string) error {
	args := m.Called(ctx, id, eventID)
	return args.Error(0)
}

func (m *MockReviewRepository) ExternalEventID(ctx context.Context, id int64) (*string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}
