package api

import (
	"net/http"

	"github.com/balkashynov/shed/internal/db"
)

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTags(r.Context(), callerFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, tags, http.StatusOK)
}

func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	tag, err := s.store.CreateTag(r.Context(), callerFrom(r), db.CreateTagRequest{
		Name:  deref(req.Name),
		Color: deref(req.Color),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, tag, http.StatusCreated)
}

func (s *Server) getTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	tag, err := s.store.GetTag(r.Context(), callerFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, tag, http.StatusOK)
}

func (s *Server) updateTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var req tagRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	tag, err := s.store.UpdateTag(r.Context(), callerFrom(r), id, db.UpdateTagRequest{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, tag, http.StatusOK)
}

func (s *Server) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.store.DeleteTag(r.Context(), callerFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
