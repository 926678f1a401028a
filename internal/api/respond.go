package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/balkashynov/shed/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message, code string, status int) {
	respondJSON(w, errorResponse{Error: message, Code: code}, status)
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict, apperr.CodeInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Errors without a domain code are logged
// and reported with a generic message.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", requestIDFrom(r.Context()),
			"error", err,
		)
		respondError(w, "internal server error", string(apperr.CodeUnknown), http.StatusInternalServerError)
		return
	}
	respondError(w, appErr.Message, string(appErr.Code), statusFor(appErr.Code))
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (uint, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("%q not found", raw)
	}
	return uint(id), nil
}

// queryDays reads the days query parameter, falling back to def.
func queryDays(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return def, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("days must be an integer, got %q", raw)
	}
	return days, nil
}

func queryUint(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("%s must be a positive integer, got %q", name, raw)
	}
	return uint(v), nil
}
