package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/comigor/friendbot-go/internal/auth"
	"github.com/comigor/friendbot-go/internal/logger"
	"github.com/comigor/friendbot-go/internal/storage"
)

type ctxKey struct{}

// requireUser resolves the bearer token to its account or answers 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if errors.Is(err, auth.ErrMissingToken) {
			writeError(w, http.StatusUnauthorized, "Token is missing!")
			return
		}
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		u, err := s.db.UserByID(r.Context(), claims.UserID)
		if err != nil {
			if !errors.Is(err, storage.ErrNotFound) {
				logger.L.Error("failed to load token user", "user_id", claims.UserID, "error", err)
			}
			writeError(w, http.StatusUnauthorized, "Token is invalid!")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, u)))
	})
}

func currentUser(r *http.Request) *storage.User {
	u, _ := r.Context().Value(ctxKey{}).(*storage.User)
	return u
}
