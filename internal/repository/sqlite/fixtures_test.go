package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/repository/sqlite"
)

var baseTime = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *sql.DB, email string) *models.User {
	t.Helper()
	u, err := sqlite.NewUserRepository(db).Create(context.Background(), models.User{
		Email:        email,
		PasswordHash: "hash",
		Timezone:     "UTC",
	})
	require.NoError(t, err)
	return u
}

func createTopic(t *testing.T, db *sql.DB, userID int64, name string) *models.Topic {
	t.Helper()
	topic, err := sqlite.NewTopicRepository(db).Create(context.Background(), models.Topic{
		UserID: userID,
		Name:   name,
		Color:  models.DefaultTopicColor,
	})
	require.NoError(t, err)
	return topic
}

func createCard(t *testing.T, db *sql.DB, userID, topicID int64, question string, due time.Time) (*models.Card, *models.ScheduledReview) {
	t.Helper()
	card, review, err := sqlite.NewCardRepository(db).Create(context.Background(), userID,
		models.Card{TopicID: topicID, Question: question, Answer: "answer"},
		models.ScheduledReview{DueDate: due, IntervalDays: 1},
	)
	require.NoError(t, err)
	return card, review
}
