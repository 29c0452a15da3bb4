package httpapi

import (
	"context"
	"net/http"
	"strings"

	"hamawards/internal/common"
	"hamawards/internal/server/auth"
	"hamawards/internal/server/services"
)

type contextKey struct{}

var principalKey contextKey

// authMiddleware validates the bearer token and stores the caller identity
// in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, r, common.ErrUnauthorized)
			return
		}

		claims, err := auth.ParseToken(s.secretKey, token)
		if err != nil {
			s.writeError(w, r, common.ErrInvalidToken)
			return
		}

		p := services.Principal{UserID: claims.UserID, Callsign: claims.Callsign, Role: claims.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
	})
}

func principalFrom(r *http.Request) services.Principal {
	p, _ := r.Context().Value(principalKey).(services.Principal)
	return p
}
