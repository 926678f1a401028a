package api

import (
	"net/http"

	"github.com/balkashynov/shed/internal/db"
)

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tagID, err := queryUint(r, "tag")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	limit, err := queryUint(r, "limit")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), callerFrom(r), db.SessionQuery{
		User:       q.Get("user"),
		Instrument: q.Get("instrument"),
		From:       q.Get("from"),
		To:         q.Get("to"),
		TagID:      tagID,
		Search:     q.Get("q"),
		Limit:      int(limit),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponses(sessions, s.store.Now()), http.StatusOK)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	create, err := req.toCreate()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.store.CreateSession(r.Context(), callerFrom(r), create)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponse(session, s.store.Now()), http.StatusCreated)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.store.GetSession(r.Context(), callerFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponse(session, s.store.Now()), http.StatusOK)
}

func (s *Server) updateSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req sessionRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	update, err := req.toUpdate()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	session, err := s.store.UpdateSession(r.Context(), callerFrom(r), id, update)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, newSessionResponse(session, s.store.Now()), http.StatusOK)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.DeleteSession(r.Context(), callerFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
