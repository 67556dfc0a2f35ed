package calendar

import (
	"context"
	"sync"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/worker"
)

// EventIDStore persists the provider's event id on a scheduled review.
type EventIDStore interface {
	SetExternalEventID(ctx context.Context, id int64, eventID *string) error
	ExternalEventID(ctx context.Context, id int64) (*string, error)
}

// pendingCreate tracks a review whose event is being created. latest holds
// the most recent reschedule received meanwhile.
type pendingCreate struct {
	latest *models.ScheduledReview
}

// Dispatcher turns scheduling notifications into Syncer calls on a worker
// pool. Notifications never block: when the queue is full they are dropped.
// At most one create is in flight per review; reschedules that arrive during
// it are applied to the created event afterwards.
type Dispatcher struct {
	pool   *worker.Pool
	syncer Syncer
	store  EventIDStore
	log    *logger.Logger

	mu       sync.Mutex
	creating map[int64]*pendingCreate
}

func NewDispatcher(pool *worker.Pool, syncer Syncer, store EventIDStore) *Dispatcher {
	return &Dispatcher{
		pool:     pool,
		syncer:   syncer,
		store:    store,
		log:      logger.Default().WithPrefix("calendar"),
		creating: make(map[int64]*pendingCreate),
	}
}

func (d *Dispatcher) ReviewScheduled(ctx context.Context, review models.ScheduledReview) {
	d.mu.Lock()
	d.creating[review.ID] = &pendingCreate{}
	d.mu.Unlock()
	d.submitCreate(review, false)
}

func (d *Dispatcher) ReviewRescheduled(ctx context.Context, review models.ScheduledReview) {
	if review.ExternalEventID != nil {
		eventID := *review.ExternalEventID
		d.submit("calendar_update", func(ctx context.Context) error {
			return d.syncer.UpdateEvent(ctx, eventID, review)
		})
		return
	}

	d.mu.Lock()
	if pending, ok := d.creating[review.ID]; ok {
		pending.latest = &review
		d.mu.Unlock()
		d.log.Debug("review %d rescheduled while its event is being created", review.ID)
		return
	}
	d.creating[review.ID] = &pendingCreate{}
	d.mu.Unlock()

	// The event id may have been stored after this review was read.
	d.submitCreate(review, true)
}

// submitCreate queues the job that creates the review's event, or updates
// the stored one when lookup is set and an id exists.
func (d *Dispatcher) submitCreate(review models.ScheduledReview, lookup bool) {
	ok := d.submit("calendar_create", func(ctx context.Context) error {
		eventID, err := d.ensureEvent(ctx, review, lookup)
		latest := d.finishCreate(review.ID)
		if latest != nil && eventID != "" {
			if uerr := d.syncer.UpdateEvent(ctx, eventID, *latest); uerr != nil && err == nil {
				err = uerr
			}
		}
		return err
	})
	if !ok {
		d.finishCreate(review.ID)
	}
}

func (d *Dispatcher) ensureEvent(ctx context.Context, review models.ScheduledReview, lookup bool) (string, error) {
	if lookup {
		existing, err := d.store.ExternalEventID(ctx, review.ID)
		if err != nil {
			return "", err
		}
		if existing != nil {
			return *existing, d.syncer.UpdateEvent(ctx, *existing, review)
		}
	}

	eventID, err := d.syncer.CreateEvent(ctx, review)
	if err != nil || eventID == "" {
		return "", err
	}
	return eventID, d.store.SetExternalEventID(ctx, review.ID, &eventID)
}

// finishCreate ends the in-flight create of a review and returns the
// reschedule that arrived during it, if any.
func (d *Dispatcher) finishCreate(id int64) *models.ScheduledReview {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending, ok := d.creating[id]
	if !ok {
		return nil
	}
	delete(d.creating, id)
	return pending.latest
}

func (d *Dispatcher) ReviewsRemoved(ctx context.Context, reviews []models.ScheduledReview) {
	for _, review := range reviews {
		if review.ExternalEventID == nil {
			continue
		}
		eventID, userID := *review.ExternalEventID, review.UserID
		d.submit("calendar_delete", func(ctx context.Context) error {
			return d.syncer.DeleteEvent(ctx, eventID, userID)
		})
	}
}

func (d *Dispatcher) submit(name string, fn func(context.Context) error) bool {
	if !d.pool.TrySubmit(worker.JobFunc{JobName: name, Fn: fn}) {
		d.log.Warn("calendar event dropped: %s", name)
		return false
	}
	return true
}
