package api

import (
	"context"
	"net/http"

	"github.com/balkashynov/shed/internal/db"
)

type contextKey string

const (
	callerKey    contextKey = "caller"
	requestIDKey contextKey = "requestID"
)

// extractUser reads the user name set by the fronting proxy.
func (s *Server) extractUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Traefik BasicAuth sets this header
		userID := r.Header.Get("X-Auth-User")

		// Also check common alternatives
		if userID == "" {
			userID = r.Header.Get("X-Forwarded-User")
		}
		if userID == "" {
			userID = r.Header.Get("Remote-User")
		}

		if userID == "" {
			s.log.WarnContext(r.Context(), "authentication failed: no user header found", "path", r.URL.Path)
			respondError(w, "authentication required", "UNAUTHENTICATED", http.StatusUnauthorized)
			return
		}

		caller := db.Caller{UserID: userID, Admin: s.admins[userID]}
		s.log.DebugContext(r.Context(), "authenticated request", "user", userID, "admin", caller.Admin)

		ctx := context.WithValue(r.Context(), callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) db.Caller {
	caller, _ := r.Context().Value(callerKey).(db.Caller)
	return caller
}
