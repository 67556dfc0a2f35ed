package api

import "net/http"

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StreakService.GetUserStreakStats(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleCheckStreak(w http.ResponseWriter, r *http.Request) {
	check, err := s.StreakService.CheckStreak(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, check)
}

func (s *Server) handleUpdateStreak(w http.ResponseWriter, r *http.Request) {
	update, err := s.StreakService.UpdateUserStreak(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, update)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.StatsService.GetDashboard(r.Context(), userFromContext(r.Context()).ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dash)
}
