package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenCookie carries the access token for browsers that cannot set headers on
// websocket requests.
const TokenCookie = "facecounter_token"

// AuthMiddleware requires token on every request except /metrics. The token is
// accepted as a Bearer header, a "token" query parameter or the TokenCookie. An
// empty token disables the check.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		if !validToken(r, token) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func validToken(r *http.Request, token string) bool {
	candidate := ""
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		candidate = strings.TrimPrefix(header, "Bearer ")
	} else if query := r.URL.Query().Get("token"); query != "" {
		candidate = query
	} else if cookie, err := r.Cookie(TokenCookie); err == nil {
		candidate = cookie.Value
	}

	return subtle.ConstantTimeCompare([]byte(candidate), []byte(token)) == 1
}
