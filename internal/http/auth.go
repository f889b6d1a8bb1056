package httpapi

import (
	"context"
	"net/http"
	"strings"

	"foundgames-backend-go/internal/models"
	"foundgames-backend-go/internal/services"

	"go.uber.org/zap"
)

type contextKey string

const (
	ctxProfileID contextKey = "profileID"
	ctxEmail     contextKey = "email"
	ctxProfile   contextKey = "profile"
)

func WithAuth(tokenService services.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				WriteError(w, http.StatusUnauthorized, "Unauthorized: You must be logged in")
				return
			}
			claims, err := tokenService.ParseAccess(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "Unauthorized: You must be logged in")
				return
			}
			ctx := context.WithValue(r.Context(), ctxProfileID, claims.ProfileID)
			ctx = context.WithValue(ctx, ctxEmail, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin reloads the caller's profile on every request, so a role
// change takes effect without waiting for tokens to expire.
func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.Profiles.GetProfile(r.Context(), CurrentProfileID(r))
		if err != nil {
			if _, ok := services.AsServiceError(err); !ok {
				s.Log.Error("load profile", zap.Error(err))
				WriteError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			WriteError(w, http.StatusForbidden, "Forbidden: Admin privileges required")
			return
		}
		if !profile.IsAdmin() {
			WriteError(w, http.StatusForbidden, "Forbidden: Admin privileges required")
			return
		}
		ctx := context.WithValue(r.Context(), ctxProfile, profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func CurrentProfileID(r *http.Request) string {
	if value, ok := r.Context().Value(ctxProfileID).(string); ok {
		return value
	}
	return ""
}

// CurrentProfile is only set behind RequireAdmin.
func CurrentProfile(r *http.Request) (models.Profile, bool) {
	p, ok := r.Context().Value(ctxProfile).(models.Profile)
	return p, ok
}
