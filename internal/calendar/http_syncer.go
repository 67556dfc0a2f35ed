package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
)

// HTTPSyncer sends review events to a calendar service over HTTP.
// Events live under {baseURL}/events.
type HTTPSyncer struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewHTTPSyncer(baseURL string) *HTTPSyncer {
	return &HTTPSyncer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        logger.Default().WithPrefix("calendar_http"),
	}
}

type eventPayload struct {
	UserID            int64     `json:"user_id"`
	ScheduledReviewID int64     `json:"scheduled_review_id"`
	CardID            int64     `json:"card_id"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	IntervalDays      int       `json:"interval_days"`
}

type eventResponse struct {
	ID string `json:"id"`
}

func newEventPayload(review models.ScheduledReview) eventPayload {
	return eventPayload{
		UserID:            review.UserID,
		ScheduledReviewID: review.ID,
		CardID:            review.CardID,
		Start:             review.DueDate.UTC(),
		End:               review.DueDate.UTC().Add(SessionLength),
		IntervalDays:      review.IntervalDays,
	}
}

func (s *HTTPSyncer) CreateEvent(ctx context.Context, review models.ScheduledReview) (string, error) {
	var out eventResponse
	if err := s.do(ctx, http.MethodPost, s.baseURL+"/events", newEventPayload(review), &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("create event: empty id in response")
	}
	return out.ID, nil
}

func (s *HTTPSyncer) UpdateEvent(ctx context.Context, eventID string, review models.ScheduledReview) error {
	return s.do(ctx, http.MethodPut, s.baseURL+"/events/"+eventID, newEventPayload(review), nil)
}

func (s *HTTPSyncer) DeleteEvent(ctx context.Context, eventID string, userID int64) error {
	url := fmt.Sprintf("%s/events/%s?user_id=%d", s.baseURL, eventID, userID)
	return s.do(ctx, http.MethodDelete, url, nil, nil)
}

func (s *HTTPSyncer) do(ctx context.Context, method, url string, body, out any) error {
	log := s.log.WithFields(map[string]any{"method": method, "url": url})
	start := time.Now()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			log.Error("failed to encode request: %v", err)
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		log.Error("failed to create request: %v", err)
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Error("calendar request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	log.Debug("calendar response received in %v, status=%d", time.Since(start), resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("calendar %s status %d: %s", method, resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			log.Error("failed to decode calendar response: %v", err)
			return err
		}
	}
	return nil
}
