package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyspace/internal/api"
	"github.com/vytor/studyspace/internal/repository/sqlite"
	"github.com/vytor/studyspace/internal/services"
	"github.com/vytor/studyspace/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

type APISuite struct {
	suite.Suite
	db      *sql.DB
	clock   *testutil.Clock
	handler http.Handler
	token   string
}

func (s *APISuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.clock = &testutil.Clock{Now: time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)}

	settings := services.Settings{
		DefaultTimezone: "America/Bogota",
		FirstReviewHour: 9,
		SessionTTL:      48 * time.Hour,
		BcryptCost:      bcrypt.MinCost,
		Now:             s.clock.Func(),
	}
	userRepo := sqlite.NewUserRepository(s.db)
	topicRepo := sqlite.NewTopicRepository(s.db)
	cardRepo := sqlite.NewCardRepository(s.db)
	reviewRepo := sqlite.NewReviewRepository(s.db)
	streaks := services.NewStreakService(userRepo, sqlite.NewStreakRepository(s.db), settings)

	srv := &api.Server{
		UserService:     services.NewUserService(userRepo, sqlite.NewSessionRepository(s.db), settings),
		TopicService:    services.NewTopicService(topicRepo, nil),
		CardService:     services.NewCardService(cardRepo, userRepo, nil, settings),
		ReviewService:   services.NewReviewService(reviewRepo, nil, settings),
		ScheduleService: services.NewScheduleService(reviewRepo, settings),
		StreakService:   streaks,
		StatsService:    services.NewStatsService(userRepo, topicRepo, cardRepo, reviewRepo, streaks, settings),
		DB:              s.db,
	}
	s.handler = srv.Routes()

	s.do(http.MethodPost, "/api/users", "", map[string]any{"email": "student@example.com", "password": "secret123"}, http.StatusCreated, nil)
	var login struct {
		Token string `json:"token"`
	}
	s.do(http.MethodPost, "/api/login", "", map[string]any{"email": "student@example.com", "password": "secret123"}, http.StatusOK, &login)
	s.Require().NotEmpty(login.Token)
	s.token = login.Token
}

func (s *APISuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends a JSON request, asserts the status and decodes the response into out.
func (s *APISuite) do(method, path, token string, body any, wantStatus int, out any) {
	s.T().Helper()
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Require().Equal(wantStatus, rec.Code, rec.Body.String())
	if out != nil {
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), out))
	}
}

func (s *APISuite) TestHealthAndReady() {
	s.do(http.MethodGet, "/health", "", nil, http.StatusOK, nil)
	s.do(http.MethodGet, "/ready", "", nil, http.StatusOK, nil)
}

func (s *APISuite) TestRequiresBearerToken() {
	var body errorBody
	s.do(http.MethodGet, "/api/me", "", nil, http.StatusUnauthorized, &body)
	s.Assert().Equal("UNAUTHORIZED", body.Error.Code)

	s.do(http.MethodGet, "/api/me", "not-a-token", nil, http.StatusUnauthorized, nil)

	s.clock.Advance(49 * time.Hour)
	s.do(http.MethodGet, "/api/me", s.token, nil, http.StatusUnauthorized, nil)
}

func (s *APISuite) TestReviewFlow() {
	var topic struct {
		ID int64 `json:"id"`
	}
	s.do(http.MethodPost, "/api/topics", s.token, map[string]any{"name": "Spanish"}, http.StatusCreated, &topic)

	var created struct {
		Card struct {
			ID int64 `json:"id"`
		} `json:"card"`
		NextReview struct {
			ID      int64     `json:"id"`
			DueDate time.Time `json:"due_date"`
		} `json:"next_review"`
	}
	s.do(http.MethodPost, "/api/cards", s.token, map[string]any{
		"topic_id": topic.ID,
		"question": "How do you say cat?",
		"answer":   "gato",
	}, http.StatusCreated, &created)
	s.Assert().Equal(time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC), created.NextReview.DueDate.UTC())

	s.clock.Advance(24 * time.Hour)

	var pending struct {
		Reviews []struct {
			ID int64 `json:"id"`
		} `json:"reviews"`
	}
	s.do(http.MethodGet, "/api/reviews/pending", s.token, nil, http.StatusOK, &pending)
	s.Require().Len(pending.Reviews, 1)
	s.Assert().Equal(created.NextReview.ID, pending.Reviews[0].ID)

	completePath := fmt.Sprintf("/api/reviews/%d/complete", created.NextReview.ID)
	var completion struct {
		NextInterval int `json:"next_interval"`
		NextReview   struct {
			ID int64 `json:"id"`
		} `json:"next_review"`
	}
	s.do(http.MethodPost, completePath, s.token, map[string]any{"difficulty_rating": 1, "response_time_seconds": 8}, http.StatusOK, &completion)
	s.Assert().Positive(completion.NextInterval)
	s.Assert().NotEqual(created.NextReview.ID, completion.NextReview.ID)

	var body errorBody
	s.do(http.MethodPost, completePath, s.token, map[string]any{"difficulty_rating": 1}, http.StatusNotFound, &body)
	s.Assert().Equal("NOT_FOUND_OR_COMPLETED", body.Error.Code)

	var streak struct {
		Success       bool `json:"success"`
		CurrentStreak int  `json:"current_streak"`
	}
	s.do(http.MethodPost, "/api/streak/update", s.token, nil, http.StatusOK, &streak)
	s.Assert().True(streak.Success)
	s.Assert().Equal(1, streak.CurrentStreak)

	var history struct {
		History []struct {
			DifficultyRating int `json:"difficulty_rating"`
		} `json:"history"`
	}
	s.do(http.MethodGet, fmt.Sprintf("/api/cards/%d/history", created.Card.ID), s.token, nil, http.StatusOK, &history)
	s.Require().Len(history.History, 1)
	s.Assert().Equal(1, history.History[0].DifficultyRating)
}

func (s *APISuite) TestValidationErrors() {
	cases := []struct {
		name string
		path string
		body map[string]any
	}{
		{"rating out of range", "/api/reviews/1/complete", map[string]any{"difficulty_rating": 5}},
		{"response time too long", "/api/reviews/1/complete", map[string]any{"difficulty_rating": 2, "response_time_seconds": 3601}},
		{"short question", "/api/cards", map[string]any{"topic_id": 1, "question": "ab", "answer": "ok"}},
		{"bad colour", "/api/topics", map[string]any{"name": "Art", "color": "blue"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			var body errorBody
			s.do(http.MethodPost, tc.path, s.token, tc.body, http.StatusBadRequest, &body)
			s.Assert().Equal("VALIDATION_ERROR", body.Error.Code)
		})
	}

	for _, days := range []string{"0", "31", "365", "soon"} {
		var body errorBody
		s.do(http.MethodGet, "/api/reviews/upcoming?days="+days, s.token, nil, http.StatusBadRequest, &body)
		s.Assert().Equal("VALIDATION_ERROR", body.Error.Code, "days=%s", days)
	}

	var upcoming struct {
		Days []any `json:"days"`
	}
	s.do(http.MethodGet, "/api/reviews/upcoming?days=30", s.token, nil, http.StatusOK, &upcoming)
	s.do(http.MethodGet, "/api/reviews/upcoming", s.token, nil, http.StatusOK, &upcoming)
}

func (s *APISuite) TestDuplicateTopicName() {
	s.do(http.MethodPost, "/api/topics", s.token, map[string]any{"name": "Biology"}, http.StatusCreated, nil)

	var body errorBody
	s.do(http.MethodPost, "/api/topics", s.token, map[string]any{"name": "Biology"}, http.StatusConflict, &body)
	s.Assert().Equal("DUPLICATE_NAME", body.Error.Code)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func TestRateLimiter(t *testing.T) {
	rl := api.NewRateLimiter(1, 2)
	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"), "burst exhausted")
	assert.True(t, rl.Allow("b"), "clients have separate buckets")
}
