package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dosada05/knockout-system/utils"
)

type contextKey string

const umpireContextKey contextKey = "umpire"

// UmpireAuthenticator reads the bearer token issued by match code verification.
// With required=false a missing token is let through, an invalid one is still rejected.
func UmpireAuthenticator(secret []byte, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					writeAuthError(w, http.StatusUnauthorized, "umpire token required")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || strings.TrimSpace(tokenString) == "" {
				writeAuthError(w, http.StatusUnauthorized, "authorization header must be of the form 'Bearer <token>'")
				return
			}

			claims, err := utils.ParseUmpireToken(secret, strings.TrimSpace(tokenString))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), umpireContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
