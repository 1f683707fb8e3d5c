package middleware

import (
	"net/http"

	"github.com/mmynk/settleup/internal/auth"
)

// RequireAuthHTTP is RequireAuth for plain HTTP handlers. Requests without
// a valid bearer token get 401.
func RequireAuthHTTP(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, auth.ErrMissingToken.Error(), http.StatusUnauthorized)
				return
			}
			claims, err := jwtManager.Validate(token)
			if err != nil {
				http.Error(w, auth.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims.UserID, claims.Email)))
		})
	}
}
