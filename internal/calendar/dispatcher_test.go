package calendar_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyspace/internal/calendar"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/testutil/mocks"
	"github.com/vytor/studyspace/internal/worker"
)

func newDispatcher(t *testing.T, syncer calendar.Syncer, store calendar.EventIDStore) (*calendar.Dispatcher, *worker.Pool) {
	t.Helper()
	pool := worker.NewPool(1, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	return calendar.NewDispatcher(pool, syncer, store), pool
}

func review(id int64, eventID *string) models.ScheduledReview {
	return models.ScheduledReview{
		ID:              id,
		CardID:          10,
		UserID:          1,
		DueDate:         time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC),
		IntervalDays:    1,
		ExternalEventID: eventID,
		State:           models.OpenState(),
	}
}

func TestDispatcher_ScheduledStoresEventID(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	r := review(5, nil)
	syncer.On("CreateEvent", mock.Anything, r).Return("evt-5", nil)
	store.On("SetExternalEventID", mock.Anything, int64(5), mock.MatchedBy(func(id *string) bool {
		return id != nil && *id == "evt-5"
	})).Return(nil)

	d.ReviewScheduled(context.Background(), r)
	pool.Stop()

	syncer.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestDispatcher_SyncerErrorIsSwallowed(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	r := review(6, nil)
	syncer.On("CreateEvent", mock.Anything, r).Return("", errors.New("provider down"))

	assert.NotPanics(t, func() { d.ReviewScheduled(context.Background(), r) })
	pool.Stop()

	syncer.AssertExpectations(t)
	store.AssertNotCalled(t, "SetExternalEventID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_RescheduledUpdatesKnownEvent(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	eventID := "evt-7"
	r := review(7, &eventID)
	syncer.On("UpdateEvent", mock.Anything, "evt-7", r).Return(nil)

	d.ReviewRescheduled(context.Background(), r)
	pool.Stop()

	syncer.AssertExpectations(t)
	syncer.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
}

func TestDispatcher_RescheduledWithoutEventCreatesOne(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	r := review(8, nil)
	store.On("ExternalEventID", mock.Anything, int64(8)).Return(nil, nil)
	syncer.On("CreateEvent", mock.Anything, r).Return("evt-8", nil)
	store.On("SetExternalEventID", mock.Anything, int64(8), mock.Anything).Return(nil)

	d.ReviewRescheduled(context.Background(), r)
	pool.Stop()

	syncer.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestDispatcher_RescheduledUsesStoredEventID(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	stored := "evt-12"
	r := review(12, nil)
	store.On("ExternalEventID", mock.Anything, int64(12)).Return(&stored, nil)
	syncer.On("UpdateEvent", mock.Anything, "evt-12", r).Return(nil).Once()

	d.ReviewRescheduled(context.Background(), r)
	pool.Stop()

	syncer.AssertExpectations(t)
	syncer.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "SetExternalEventID", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatcher_RescheduleDuringCreateUpdatesSameEvent(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	pool := worker.NewPool(2, 8)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)
	d := calendar.NewDispatcher(pool, syncer, store)

	created := review(11, nil)
	moved := created
	moved.DueDate = created.DueDate.Add(48 * time.Hour)

	started := make(chan struct{})
	release := make(chan struct{})
	syncer.On("CreateEvent", mock.Anything, created).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return("evt-11", nil).Once()
	store.On("SetExternalEventID", mock.Anything, int64(11), mock.Anything).Return(nil).Once()
	syncer.On("UpdateEvent", mock.Anything, "evt-11", moved).Return(nil).Once()

	d.ReviewScheduled(context.Background(), created)
	<-started
	d.ReviewRescheduled(context.Background(), moved)
	close(release)
	pool.Stop()

	syncer.AssertExpectations(t)
	store.AssertExpectations(t)
	syncer.AssertNumberOfCalls(t, "CreateEvent", 1)
	store.AssertNotCalled(t, "ExternalEventID", mock.Anything, mock.Anything)
}

func TestDispatcher_RemovedDeletesOnlySyncedEvents(t *testing.T) {
	syncer := new(mocks.MockSyncer)
	store := new(mocks.MockEventIDStore)
	d, pool := newDispatcher(t, syncer, store)

	eventID := "evt-9"
	syncer.On("DeleteEvent", mock.Anything, "evt-9", int64(1)).Return(nil).Once()

	d.ReviewsRemoved(context.Background(), []models.ScheduledReview{review(9, &eventID), review(10, nil)})
	pool.Stop()

	syncer.AssertExpectations(t)
}

func TestLogSyncer(t *testing.T) {
	s := calendar.NewLogSyncer()
	ctx := context.Background()

	id, err := s.CreateEvent(ctx, review(3, nil))
	assert.NoError(t, err)
	assert.Equal(t, "review-3", id)
	assert.NoError(t, s.UpdateEvent(ctx, id, review(3, &id)))
	assert.NoError(t, s.DeleteEvent(ctx, id, 1))
}
