package api

import (
	"net/http"

	"github.com/vytor/studyspace/internal/logger"
	"github.com/vytor/studyspace/internal/models"
	"github.com/vytor/studyspace/internal/services"
)

type createCardRequest struct {
	TopicID  int64  `json:"topic_id" validate:"required,gt=0"`
	Question string `json:"question" validate:"required,min=3"`
	Answer   string `json:"answer" validate:"required,min=2"`
}

type updateCardRequest struct {
	Question *string `json:"question" validate:"omitempty,min=3"`
	Answer   *string `json:"answer" validate:"omitempty,min=2"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.CardService.CreateCard(r.Context(), userFromContext(r.Context()).ID, services.CardInput{
		TopicID:  req.TopicID,
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Info("card created: id=%d", created.Card.ID)
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.GetCard(r.Context(), id, userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	var req updateCardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.CardService.UpdateCard(r.Context(), id, userFromContext(r.Context()).ID, models.CardUpdate{
		Question: req.Question,
		Answer:   req.Answer,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.CardService.DeleteCard(r.Context(), id, userFromContext(r.Context()).ID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSearchCards(w http.ResponseWriter, r *http.Request) {
	cards, err := s.CardService.SearchCards(r.Context(), userFromContext(r.Context()).ID, r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"cards": cards})
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	page, err := queryInt(r, "page", 1)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	history, err := s.ScheduleService.GetCardReviewHistory(r.Context(), id, userFromContext(r.Context()).ID, page, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, history)
}
