package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyspace/internal/models"
)

// MockSyncer is a mock implementation of calendar.Syncer
type MockSyncer struct {
	mock.Mock
}

func (m *MockSyncer) CreateEvent(ctx context.Context, review models.ScheduledReview) (string, error) {
	args := m.Called(ctx, review)
	return args.String(0), args.Error(1)
}

func (m *MockSyncer) UpdateEvent(ctx context.Context, eventID string, review models.ScheduledReview) error {
	args := m.Called(ctx, eventID, review)
	return args.Error(0)
}

func (m *MockSyncer) DeleteEvent(ctx context.Context, eventID string, userID int64) error {
	args := m.Called(ctx, eventID, userID)
	return args.Error(0)
}

// MockEventIDStore is a mock implementation of calendar.EventIDStore
type MockEventIDStore struct {
	mock.Mock
}

func (m *MockEventIDStore) SetExternalEventID(ctx context.Context, id int64, eventID *string) error {
	args := m.Called(ctx, id, eventID)
	return args.Error(0)
}

func (m *MockEventIDStore) ExternalEventID(ctx context.Context, id int64) (*string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// MockNotifier is a mock implementation of calendar.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) ReviewScheduled(ctx context.Context, review models.ScheduledReview) {
	m.Called(ctx, review)
}

func (m *MockNotifier) ReviewRescheduled(ctx context.Context, review models.ScheduledReview) {
	m.Called(ctx, review)
}

func (m *MockNotifier) ReviewsRemoved(ctx context.Context, reviews []models.ScheduledReview) {
	m.Called(ctx, reviews)
}
