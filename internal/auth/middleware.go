package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// RequireSharedSecret guards the cron trigger endpoints. The external
// scheduler sends "Authorization: Bearer <shared secret>"; anything else
// gets a bare 401 so the scheduler's logs stay readable.
func RequireSharedSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if secret == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte("Unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
