package api

import (
	"crypto/sha256"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
)

// AdminTokenHeader is the alternative to an Authorization bearer token
const AdminTokenHeader = "X-Admin-Token"

// tokenEqual compares secrets in constant time. Hashing first keeps the
// comparison independent of the length of either input.
func tokenEqual(got, want string) bool {
	g := sha256.Sum256([]byte(got))
	w := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(g[:], w[:]) == 1
}

// requestToken extracts the admin token from the request
func requestToken(r *http.Request) string {
	if v := r.Header.Get(AdminTokenHeader); v != "" {
		return v
	}
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RequireAdmin guards session control routes. An empty token leaves them open,
// which is the local-play default.
func RequireAdmin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !tokenEqual(requestToken(r), token) {
				log.Printf("🔒 Admin request rejected from %s", ClientIP(r))
				RecordConnectionRejected("auth")
				writeError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
