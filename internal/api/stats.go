package api

import (
	"net/http"

	"github.com/balkashynov/shed/internal/stats"
)

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Summary(r.Context(), callerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, summary, http.StatusOK)
}

func (s *Server) calendar(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, stats.DefaultCalendarDays)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	calendar, err := s.store.Calendar(r.Context(), callerFrom(r), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, calendar, http.StatusOK)
}

func (s *Server) byInstrument(w http.ResponseWriter, r *http.Request) {
	days, err := queryDays(r, stats.DefaultByInstrumentDays)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	totals, err := s.store.ByInstrument(r.Context(), callerFrom(r), days)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, totals, http.StatusOK)
}
