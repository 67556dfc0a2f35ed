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

type topicRepository struct {
	db *sql.DB
}

// NewTopicRepository creates a new TopicRepository implementation
func NewTopicRepository(db *sql.DB) repository.TopicRepository {
	return &topicRepository{db: db}
}

func topicSelect() squirrel.SelectBuilder {
	return sqlBuilder.Select(
		"t.id", "t.user_id", "t.name", "COALESCE(t.description, '')", "t.color", "t.created_at",
		"(SELECT COUNT(*) FROM cards c WHERE c.topic_id = t.id)",
	).From("topics t")
}

func (r *topicRepository) Create(ctx context.Context, t models.Topic) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("creating topic: user_id=%d, name=%s", t.UserID, t.Name)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO topics (user_id, name, description, color)
VALUES (?, ?, ?, ?)
`, t.UserID, t.Name, t.Description, t.Color)
	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("duplicate topic name: %s", t.Name)
			return nil, repository.ErrConflict
		}
		log.Error("failed to create topic: %v", err)
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get topic id: %v", err)
		return nil, err
	}
	log.Debug("topic created: id=%d", id)
	return r.Get(ctx, id, t.UserID)
}

func (r *topicRepository) Get(ctx context.Context, id, userID int64) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("fetching topic: id=%d, user_id=%d", id, userID)

	query, args, err := topicSelect().Where(squirrel.Eq{"t.id": id, "t.user_id": userID}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	t, err := scanTopic(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("topic not found: id=%d", id)
		return nil, repository.ErrNotFound
	}
	if err != nil {
		log.Error("failed to get topic: %v", err)
		return nil, err
	}
	return t, nil
}

func (r *topicRepository) List(ctx context.Context, filter models.TopicFilter) ([]models.Topic, int, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("listing topics: user_id=%d, search=%q, page=%d, limit=%d", filter.UserID, filter.Search, filter.Page, filter.Limit)

	where := squirrel.And{squirrel.Eq{"t.user_id": filter.UserID}}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, squirrel.Or{
			likeExpr("t.name", pattern),
			likeExpr("t.description", pattern),
		})
	}

	total, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").From("topics t").Where(where))
	if err != nil {
		log.Error("failed to count topics: %v", err)
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := models.NewPagination(filter.Page, limit, total).Offset()

	query, args, err := topicSelect().
		Where(where).
		OrderBy("t.created_at DESC", "t.id DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, 0, err
	}
	defer rows.Close()

	topics := []models.Topic{}
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			log.Error("failed to scan topic row: %v", err)
			return nil, 0, err
		}
		topics = append(topics, *t)
	}
	log.Debug("found %d topics of %d", len(topics), total)
	return topics, total, rows.Err()
}

func (r *topicRepository) Update(ctx context.Context, id, userID int64, update models.TopicUpdate) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("updating topic: id=%d, user_id=%d", id, userID)

	builder := sqlBuilder.Update("topics").Where(squirrel.Eq{"id": id, "user_id": userID})
	changed := false
	if update.Name != nil {
		builder = builder.Set("name", *update.Name)
		changed = true
	}
	if update.Description != nil {
		builder = builder.Set("description", *update.Description)
		changed = true
	}
	if update.Color != nil {
		builder = builder.Set("color", *update.Color)
		changed = true
	}
	if !changed {
		return r.Get(ctx, id, userID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		log.Error("failed to update topic: %v", err)
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id, userID)
}

func (r *topicRepository) Delete(ctx context.Context, id, userID int64) ([]models.ScheduledReview, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("deleting topic: id=%d, user_id=%d", id, userID)

	var removed []models.ScheduledReview
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		removed, err = openReviewsWhere(ctx, tx, squirrel.Expr("sr.card_id IN (SELECT c.id FROM cards c WHERE c.topic_id = ?)", id))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM topics WHERE id = ? AND user_id = ?`, id, userID)
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
			log.Error("failed to delete topic: %v", err)
		}
		return nil, err
	}
	log.Debug("topic deleted: id=%d, open reviews removed=%d", id, len(removed))
	return removed, nil
}

func (r *topicRepository) Count(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")

	n, err := countQuery(ctx, r.db, sqlBuilder.Select("COUNT(*)").From("topics").Where(squirrel.Eq{"user_id": userID}))
	if err != nil {
		log.Error("failed to count topics: %v", err)
	}
	return n, err
}

func scanTopic(row interface{ Scan(...any) error }) (*models.Topic, error) {
	var t models.Topic
	if err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.Color, &t.CreatedAt, &t.CardsCount); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}
