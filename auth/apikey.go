// auth/apikey.go
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	fherrors "github.com/dalemusser/fhurl/errors"
)

// APIKey authenticates machine clients presenting a static key.
// Key lookup order:
//  1. Authorization: Bearer <token>
//  2. X-API-Key header
//  3. api_key query param
type APIKey struct {
	Key string
}

func (a APIKey) Authenticated(r *http.Request) bool {
	expected := strings.TrimSpace(a.Key)
	if expected == "" {
		return false
	}
	key, ok := apiKeyFromRequest(r)
	return ok && subtle.ConstantTimeCompare([]byte(key), []byte(expected)) == 1
}

// RequireAPIKey guards a handler with a static key. An empty key leaves the
// handler open, so optional protection can be wired unconditionally.
func RequireAPIKey(key, realm string, logger *zap.Logger) func(next http.Handler) http.Handler {
	a := APIKey{Key: key}
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(realm) == "" {
		realm = "fhurl"
	}

	return func(next http.Handler) http.Handler {
		if strings.TrimSpace(key) == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Authenticated(r) {
				logger.Warn("API key unauthorized",
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.String("remote_ip", r.RemoteAddr),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="`+realm+`"`)
				fherrors.Write(w, fherrors.Unauthorized("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func apiKeyFromRequest(r *http.Request) (string, bool) {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		if token := strings.TrimSpace(auth[len("Bearer "):]); token != "" {
			return token, true
		}
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key, true
	}
	if key := strings.TrimSpace(r.URL.Query().Get("api_key")); key != "" {
		return key, true
	}
	return "", false
}
