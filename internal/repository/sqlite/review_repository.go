package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository implementation
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

var reviewColumns = []string{
	"sr.id", "sr.card_id", "sr.user_id", "sr.due_date", "sr.interval_days",
	"sr.external_event_id", "sr.state", "cr.id", "sr.created_at",
}

func reviewSelect(extra ...string) squirrel.SelectBuilder {
	cols := append(append([]string{}, reviewColumns...), extra...)
	return sqlBuilder.Select(cols...).
		From("scheduled_reviews sr").
		LeftJoin("completed_reviews cr ON cr.scheduled_review_id = sr.id")
}

// pendingSelect joins the card and topic of each review.
func pendingSelect() squirrel.SelectBuilder {
	return reviewSelect("c.id", "c.question", "c.answer", "t.id", "t.name", "t.color").
		Join("cards c ON c.id = sr.card_id").
		Join("topics t ON t.id = c.topic_id")
}

func (r *reviewRepository) Complete(ctx context.Context, p repository.CompleteParams, next repository.NextReviewFunc) (*models.ReviewCompletion, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("completing review: id=%d, user_id=%d, rating=%s", p.ScheduledReviewID, p.UserID, p.Rating)

	var result models.ReviewCompletion
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var cardID int64
		var previousInterval int
		err := tx.QueryRowContext(ctx, `
SELECT card_id, interval_days FROM scheduled_reviews
WHERE id = ? AND user_id = ? AND state = 'open'
`, p.ScheduledReviewID, p.UserID).Scan(&cardID, &previousInterval)
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `
UPDATE scheduled_reviews SET state = 'completed'
WHERE id = ? AND user_id = ? AND state = 'open'
`, p.ScheduledReviewID, p.UserID)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return repository.ErrNotFound
		}

		var prior int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM completed_reviews WHERE card_id = ?`, cardID).Scan(&prior); err != nil {
			return err
		}

		completedAt := dbTime(p.CompletedAt)
		res, err = tx.ExecContext(ctx, `
INSERT INTO completed_reviews (scheduled_review_id, card_id, user_id, completed_at, difficulty_rating, response_time_seconds)
VALUES (?, ?, ?, ?, ?, ?)
`, p.ScheduledReviewID, cardID, p.UserID, completedAt, int(p.Rating), nullInt(p.ResponseTimeSeconds))
		if err != nil {
			if isUniqueViolation(err) {
				return repository.ErrNotFound
			}
			return err
		}
		completedID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		intervalDays, dueDate := next(previousInterval, prior+1)
		res, err = tx.ExecContext(ctx, `
INSERT INTO scheduled_reviews (card_id, user_id, due_date, interval_days, state)
VALUES (?, ?, ?, ?, 'open')
`, cardID, p.UserID, dbTime(dueDate), intervalDays)
		if err != nil {
			return err
		}
		nextID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		nextReview, err := getReview(ctx, tx, nextID)
		if err != nil {
			return err
		}

		result = models.ReviewCompletion{
			CompletedReview: models.CompletedReview{
				ID:                  completedID,
				ScheduledReviewID:   p.ScheduledReviewID,
				CardID:              cardID,
				UserID:              p.UserID,
				CompletedAt:         completedAt,
				DifficultyRating:    p.Rating,
				ResponseTimeSeconds: p.ResponseTimeSeconds,
			},
			NextReview:   *nextReview,
			NextInterval: intervalDays,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("review not open: id=%d", p.ScheduledReviewID)
		} else {
			log.Error("failed to complete review: %v", err)
		}
		return nil, err
	}
	log.Debug("review completed: id=%d, next review id=%d in %d days",
		p.ScheduledReviewID, result.NextReview.ID, result.NextInterval)
	return &result, nil
}

func (r *reviewRepository) Reschedule(ctx context.Context, id, userID int64, dueDate time.Time) (*models.ScheduledReview, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("rescheduling review: id=%d, user_id=%d, due=%s", id, userID, dueDate)

	res, err := r.db.ExecContext(ctx, `
UPDATE scheduled_reviews SET due_date = ?
WHERE id = ? AND user_id = ? AND state = 'open'
`, dbTime(dueDate), id, userID)
	if err != nil {
		log.Error("failed to reschedule review: %v", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		log.Debug("review not open: id=%d", id)
		return nil, repository.ErrNotFound
	}
	return getReview(ctx, r.db, id)
}

func (r *reviewRepository) Get(ctx context.Context, id, userID int64) (*models.ScheduledReview, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	query, args, err := reviewSelect().Where(squirrel.Eq{"sr.id": id, "sr.user_id": userID}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	sr, err := scanReview(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get review: %v", err)
		return nil, err
	}
	return sr, nil
}

func (r *reviewRepository) Pending(ctx context.Context, userID int64, now time.Time) ([]models.PendingReview, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching pending reviews: user_id=%d", userID)

	return r.listPending(ctx, pendingSelect().
		Where(squirrel.Eq{"sr.user_id": userID, "sr.state": string(models.ReviewOpen)}).
		Where(squirrel.LtOrEq{"sr.due_date": dbTime(now)}).
		OrderBy("sr.due_date ASC", "sr.id ASC"))
}

func (r *reviewRepository) Upcoming(ctx context.Context, userID int64, from, to time.Time) ([]models.PendingReview, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching upcoming reviews: user_id=%d, from=%s, to=%s", userID, from, to)

	return r.listPending(ctx, pendingSelect().
		Where(squirrel.Eq{"sr.user_id": userID, "sr.state": string(models.ReviewOpen)}).
		Where(squirrel.GtOrEq{"sr.due_date": dbTime(from)}).
		Where(squirrel.LtOrEq{"sr.due_date": dbTime(to)}).
		OrderBy("sr.due_date ASC", "sr.id ASC"))
}

func (r *reviewRepository) listPending(ctx context.Context, builder squirrel.SelectBuilder) ([]models.PendingReview, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	query, args, err := builder.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	reviews := []models.PendingReview{}
	for rows.Next() {
		var pr models.PendingReview
		sr, err := scanReview(rows,
			&pr.Card.ID, &pr.Card.Question, &pr.Card.Answer,
			&pr.Card.Topic.ID, &pr.Card.Topic.Name, &pr.Card.Topic.Color)
		if err != nil {
			log.Error("failed to scan review row: %v", err)
			return nil, err
		}
		pr.ScheduledReview = *sr
		reviews = append(reviews, pr)
	}
	log.Debug("found %d reviews", len(reviews))
	return reviews, rows.Err()
}

func (r *reviewRepository) CountOpenDueBetween(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	n, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("scheduled_reviews").
		Where(squirrel.Eq{"user_id": userID, "state": string(models.ReviewOpen)}).
		Where(squirrel.GtOrEq{"due_date": dbTime(from)}).
		Where(squirrel.Lt{"due_date": dbTime(to)}))
	if err != nil {
		log.Error("failed to count open reviews: %v", err)
	}
	return n, err
}

func (r *reviewRepository) CountOpenDueBefore(ctx context.Context, userID int64, t time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	n, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("scheduled_reviews").
		Where(squirrel.Eq{"user_id": userID, "state": string(models.ReviewOpen)}).
		Where(squirrel.LtOrEq{"due_date": dbTime(t)}))
	if err != nil {
		log.Error("failed to count due reviews: %v", err)
	}
	return n, err
}

func (r *reviewRepository) CountOpenForCard(ctx context.Context, cardID int64) (int, error) {
	return countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("scheduled_reviews").
		Where(squirrel.Eq{"card_id": cardID, "state": string(models.ReviewOpen)}))
}

func (r *reviewRepository) CountCompleted(ctx context.Context, userID int64, since *time.Time) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	builder := sqlBuilder.Select("COUNT(*)").From("completed_reviews").Where(squirrel.Eq{"user_id": userID})
	if since != nil {
		builder = builder.Where(squirrel.GtOrEq{"completed_at": dbTime(*since)})
	}
	n, err := countQuery(ctx, r.db, builder)
	if err != nil {
		log.Error("failed to count completed reviews: %v", err)
	}
	return n, err
}

func (r *reviewRepository) History(ctx context.Context, cardID, userID int64, limit, offset int) ([]models.ReviewHistoryEntry, int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")
	log.Debug("fetching review history: card_id=%d, user_id=%d, limit=%d, offset=%d", cardID, userID, limit, offset)

	owned, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("cards c").
		Join("topics t ON t.id = c.topic_id").
		Where(squirrel.Eq{"c.id": cardID, "t.user_id": userID}))
	if err != nil {
		log.Error("failed to check card ownership: %v", err)
		return nil, 0, err
	}
	if owned == 0 {
		return nil, 0, repository.ErrNotFound
	}

	total, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("completed_reviews").
		Where(squirrel.Eq{"card_id": cardID}))
	if err != nil {
		log.Error("failed to count review history: %v", err)
		return nil, 0, err
	}

	query, args, err := sqlBuilder.Select(
		"cr.id", "cr.completed_at", "cr.difficulty_rating", "cr.response_time_seconds",
		"sr.interval_days", "sr.due_date",
	).
		From("completed_reviews cr").
		Join("scheduled_reviews sr ON sr.id = cr.scheduled_review_id").
		Where(squirrel.Eq{"cr.card_id": cardID}).
		OrderBy("cr.completed_at ASC", "cr.id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review history: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	history := []models.ReviewHistoryEntry{}
	for rows.Next() {
		var h models.ReviewHistoryEntry
		var rating int
		var responseTime sql.NullInt64
		if err := rows.Scan(&h.ID, &h.CompletedAt, &rating, &responseTime, &h.IntervalDays, &h.ScheduledFor); err != nil {
			log.Error("failed to scan history row: %v", err)
			return nil, 0, err
		}
		h.CompletedAt = h.CompletedAt.UTC()
		h.ScheduledFor = h.ScheduledFor.UTC()
		h.DifficultyRating = models.DifficultyRating(rating)
		h.ResponseTimeSeconds = intPtr(responseTime)
		history = append(history, h)
	}
	log.Debug("found %d history entries of %d", len(history), total)
	return history, total, rows.Err()
}

func (r *reviewRepository) SetExternalEventID(ctx context.Context, id int64, eventID *string) error {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	_, err := r.db.ExecContext(ctx, `UPDATE scheduled_reviews SET external_event_id = ? WHERE id = ?`, nullString(eventID), id)
	if err != nil {
		log.Error("failed to set external event id: %v", err)
	}
	return err
}

func (r *reviewRepository) ExternalEventID(ctx context.Context, id int64) (*string, error) {
	log := logger.FromContext(ctx).WithPrefix("review_repo")

	var eventID sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT external_event_id FROM scheduled_reviews WHERE id = ?`, id).Scan(&eventID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get external event id: %v", err)
		return nil, err
	}
	return stringPtr(eventID), nil
}

func getReview(ctx context.Context, q queryer, id int64) (*models.ScheduledReview, error) {
	query, args, err := reviewSelect().Where(squirrel.Eq{"sr.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanReview(q.QueryRowContext(ctx, query, args...))
}

func openReviewsWhere(ctx context.Context, q queryer, pred any) ([]models.ScheduledReview, error) {
	query, args, err := reviewSelect().
		Where(squirrel.Eq{"sr.state": string(models.ReviewOpen)}).
		Where(pred).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.ScheduledReview
	for rows.Next() {
		sr, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *sr)
	}
	return reviews, rows.Err()
}

func scanReview(row interface{ Scan(...any) error }, extra ...any) (*models.ScheduledReview, error) {
	var sr models.ScheduledReview
	var externalID sql.NullString
	var status string
	var completedID sql.NullInt64
	dest := append([]any{
		&sr.ID, &sr.CardID, &sr.UserID, &sr.DueDate, &sr.IntervalDays,
		&externalID, &status, &completedID, &sr.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	sr.DueDate = sr.DueDate.UTC()
	sr.CreatedAt = sr.CreatedAt.UTC()
	sr.ExternalEventID = stringPtr(externalID)
	if models.ReviewStatus(status) == models.ReviewCompleted {
		sr.State = models.CompletedState(completedID.Int64)
	} else {
		sr.State = models.OpenState()
	}
	return &sr, nil
}
