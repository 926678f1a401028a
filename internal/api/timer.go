package api

import (
	"context"
	"net/http"

	"github.com/balkashynov/shed/internal/db"
	"github.com/balkashynov/shed/internal/models"
)

func (s *Server) startTimer(w http.ResponseWriter, r *http.Request) {
	var req startTimerRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.store.StartTimer(r.Context(), callerFrom(r), db.StartTimerRequest{
		Instrument:  req.Instrument,
		Description: req.Description,
		Goals:       req.Goals,
		SkillLevel:  req.SkillLevel,
		TagIDs:      req.TagIDs,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponse(session, s.store.Now()), http.StatusCreated)
}

func (s *Server) pauseTimer(w http.ResponseWriter, r *http.Request) {
	s.timerTransition(w, r, s.store.PauseTimer)
}

func (s *Server) resumeTimer(w http.ResponseWriter, r *http.Request) {
	s.timerTransition(w, r, s.store.ResumeTimer)
}

func (s *Server) stopTimer(w http.ResponseWriter, r *http.Request) {
	s.timerTransition(w, r, s.store.StopTimer)
}

func (s *Server) timerTransition(w http.ResponseWriter, r *http.Request, apply func(context.Context, db.Caller, uint) (*models.Session, error)) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := apply(r.Context(), callerFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponse(session, s.store.Now()), http.StatusOK)
}

func (s *Server) activeTimer(w http.ResponseWriter, r *http.Request) {
	active, err := s.store.ActiveTimer(r.Context(), callerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := activeTimerResponse{Active: active.Active}
	if active.Session != nil {
		session := newSessionResponse(active.Session, s.store.Now())
		resp.Session = &session
	}
	respondJSON(w, resp, http.StatusOK)
}
