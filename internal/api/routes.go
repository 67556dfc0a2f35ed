package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(timeoutMiddleware(requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.Limiter != nil {
			r.Use(s.rateLimitMiddleware)
		}

		r.Post("/users", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/logout", s.handleLogout)
			r.Get("/me", s.handleMe)
			r.Patch("/me", s.handleUpdateMe)
			r.Get("/dashboard", s.handleDashboard)

			r.Route("/topics", func(r chi.Router) {
				r.Get("/", s.handleListTopics)
				r.Post("/", s.handleCreateTopic)
				r.Get("/{id}", s.handleGetTopic)
				r.Patch("/{id}", s.handleUpdateTopic)
				r.Delete("/{id}", s.handleDeleteTopic)
				r.Get("/{id}/cards", s.handleListTopicCards)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Post("/", s.handleCreateCard)
				r.Get("/search", s.handleSearchCards)
				r.Get("/{id}", s.handleGetCard)
				r.Patch("/{id}", s.handleUpdateCard)
				r.Delete("/{id}", s.handleDeleteCard)
				r.Get("/{id}/history", s.handleCardHistory)
			})

			r.Route("/reviews", func(r chi.Router) {
				r.Get("/pending", s.handlePendingReviews)
				r.Get("/upcoming", s.handleUpcomingReviews)
				r.Post("/{id}/complete", s.handleCompleteReview)
				r.Patch("/{id}", s.handleRescheduleReview)
			})

			r.Get("/streak", s.handleStreak)
			r.Post("/streak/check", s.handleCheckStreak)
			r.Post("/streak/update", s.handleUpdateStreak)
		})
	})

	return r
}
