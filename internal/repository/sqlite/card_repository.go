package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func cardSummarySelect() squirrel.SelectBuilder {
	return sqlBuilder.Select(
		"c.id", "c.topic_id", "c.question", "c.answer", "c.created_at",
		"t.id", "t.name", "t.color",
		"sr.due_date",
		"(SELECT COUNT(*) FROM completed_reviews cr WHERE cr.card_id = c.id)",
		"(SELECT cr.difficulty_rating FROM completed_reviews cr WHERE cr.card_id = c.id ORDER BY cr.completed_at DESC, cr.id DESC LIMIT 1)",
	).
		From("cards c").
		Join("topics t ON t.id = c.topic_id").
		LeftJoin("scheduled_reviews sr ON sr.card_id = c.id AND sr.state = 'open'")
}

func (r *cardRepository) Create(ctx context.Context, userID int64, c models.Card, initial models.ScheduledReview) (*models.Card, *models.ScheduledReview, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("creating card: topic_id=%d, user_id=%d", c.TopicID, userID)

	var card *models.Card
	var review *models.ScheduledReview
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var owned int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics WHERE id = ? AND user_id = ?`, c.TopicID, userID).Scan(&owned)
		if err != nil {
			return err
		}
		if owned == 0 {
			return repository.ErrNotFound
		}

		res, err := tx.ExecContext(ctx, `
INSERT INTO cards (topic_id, question, answer)
VALUES (?, ?, ?)
`, c.TopicID, c.Question, c.Answer)
		if err != nil {
			return err
		}
		cardID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		res, err = tx.ExecContext(ctx, `
INSERT INTO scheduled_reviews (card_id, user_id, due_date, interval_days, state)
VALUES (?, ?, ?, ?, 'open')
`, cardID, userID, dbTime(initial.DueDate), initial.IntervalDays)
		if err != nil {
			return err
		}
		reviewID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		card, err = getCard(ctx, tx, cardID)
		if err != nil {
			return err
		}
		review, err = getReview(ctx, tx, reviewID)
		return err
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to create card: %v", err)
		}
		return nil, nil, err
	}
	log.Debug("card created: id=%d, first review id=%d due %s", card.ID, review.ID, review.DueDate)
	return card, review, nil
}

func (r *cardRepository) Get(ctx context.Context, id, userID int64) (*models.CardSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("fetching card: id=%d, user_id=%d", id, userID)

	query, args, err := cardSummarySelect().Where(squirrel.Eq{"c.id": id, "t.user_id": userID}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	cs, err := scanCardSummary(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return cs, nil
}

func (r *cardRepository) ListByTopic(ctx context.Context, topicID, userID int64) ([]models.CardSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: topic_id=%d, user_id=%d", topicID, userID)

	var owned int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM topics WHERE id = ? AND user_id = ?`, topicID, userID).Scan(&owned); err != nil {
		log.Error("failed to check topic ownership: %v", err)
		return nil, err
	}
	if owned == 0 {
		return nil, repository.ErrNotFound
	}

	return r.listSummaries(ctx, cardSummarySelect().
		Where(squirrel.Eq{"c.topic_id": topicID}).
		OrderBy("c.created_at DESC", "c.id DESC"))
}

func (r *cardRepository) Search(ctx context.Context, userID int64, term string, limit int) ([]models.CardSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("searching cards: user_id=%d, term=%q, limit=%d", userID, term, limit)

	if limit <= 0 {
		limit = 20
	}
	pattern := containsPattern(term)
	return r.listSummaries(ctx, cardSummarySelect().
		Where(squirrel.Eq{"t.user_id": userID}).
		Where(squirrel.Or{
			likeExpr("c.question", pattern),
			likeExpr("c.answer", pattern),
		}).
		OrderBy("c.created_at DESC", "c.id DESC").
		Limit(uint64(limit)))
}

func (r *cardRepository) listSummaries(ctx context.Context, builder squirrel.SelectBuilder) ([]models.CardSummary, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query, args, err := builder.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	cards := []models.CardSummary{}
	for rows.Next() {
		cs, err := scanCardSummary(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, *cs)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Update(ctx context.Context, id, userID int64, update models.CardUpdate) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%d, user_id=%d", id, userID)

	builder := sqlBuilder.Update("cards").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("topic_id IN (SELECT id FROM topics WHERE user_id = ?)", userID))
	changed := false
	if update.Question != nil {
		builder = builder.Set("question", *update.Question)
		changed = true
	}
	if update.Answer != nil {
		builder = builder.Set("answer", *update.Answer)
		changed = true
	}
	if changed {
		query, args, err := builder.ToSql()
		if err != nil {
			log.Error("failed to build query: %v", err)
			return nil, err
		}
		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			log.Error("failed to update card: %v", err)
			return nil, err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, repository.ErrNotFound
		}
	}

	cs, err := r.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &cs.Card, nil
}

func (r *cardRepository) Delete(ctx context.Context, id, userID int64) ([]models.ScheduledReview, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("deleting card: id=%d, user_id=%d", id, userID)

	var removed []models.ScheduledReview
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		removed, err = openReviewsWhere(ctx, tx, squirrel.Eq{"sr.card_id": id, "sr.user_id": userID})
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
DELETE FROM cards
WHERE id = ? AND topic_id IN (SELECT id FROM topics WHERE user_id = ?)
`, id, userID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to delete card: %v", err)
		}
		return nil, err
	}
	log.Debug("card deleted: id=%d", id)
	return removed, nil
}

func (r *cardRepository) Count(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	n, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").
		From("cards c").
		Join("topics t ON t.id = c.topic_id").
		Where(squirrel.Eq{"t.user_id": userID}))
	if err != nil {
		log.Error("failed to count cards: %v", err)
	}
	return n, err
}

func getCard(ctx context.Context, q queryer, id int64) (*models.Card, error) {
	var c models.Card
	err := q.QueryRowContext(ctx, `
SELECT id, topic_id, question, answer, created_at FROM cards WHERE id = ?
`, id).Scan(&c.ID, &c.TopicID, &c.Question, &c.Answer, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	return &c, nil
}

func scanCardSummary(row interface{ Scan(...any) error }) (*models.CardSummary, error) {
	var cs models.CardSummary
	var next sql.NullTime
	var lastRating sql.NullInt64
	err := row.Scan(
		&cs.ID, &cs.TopicID, &cs.Question, &cs.Answer, &cs.CreatedAt,
		&cs.Topic.ID, &cs.Topic.Name, &cs.Topic.Color,
		&next, &cs.TimesStudied, &lastRating,
	)
	if err != nil {
		return nil, err
	}
	cs.CreatedAt = cs.CreatedAt.UTC()
	cs.NextReview = timePtr(next)
	if lastRating.Valid {
		rating := models.DifficultyRating(lastRating.Int64)
		cs.LastRating = &rating
	}
	return &cs, nil
}
