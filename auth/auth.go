// Package auth answers "is this request authenticated, and as whom" for
// form routes that require login.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/fhurl/session"
)

// UserIDKey is the session key holding the logged-in user's ID.
const UserIDKey = "user_id"

// Authenticator reports whether a request carries a logged-in user.
type Authenticator interface {
	Authenticated(r *http.Request) bool
}

// Func adapts a function to Authenticator.
type Func func(r *http.Request) bool

func (f Func) Authenticated(r *http.Request) bool { return f(r) }

// Nobody never authenticates. It is the default when none is configured.
var Nobody Authenticator = Func(func(*http.Request) bool { return false })

// Any authenticates when any of as does.
func Any(as ...Authenticator) Authenticator {
	return Func(func(r *http.Request) bool {
		for _, a := range as {
			if a != nil && a.Authenticated(r) {
				return true
			}
		}
		return false
	})
}

// SessionAuth authenticates requests whose session holds UserIDKey.
// It needs session.Middleware upstream.
type SessionAuth struct{}

func (SessionAuth) Authenticated(r *http.Request) bool {
	s := session.FromContext(r.Context())
	return s != nil && s.GetString(UserIDKey) != ""
}

var ErrNoSession = errors.New("auth: no session in request (session.Middleware missing)")

// Login records userID in the request's session under a fresh session ID.
func Login(ctx context.Context, m *session.Manager, userID string) error {
	s := session.FromContext(ctx)
	if s == nil {
		return ErrNoSession
	}
	if err := m.Regenerate(ctx, s); err != nil {
		return err
	}
	s.Set(UserIDKey, userID)
	return nil
}

// Logout destroys the request's session and expires its cookie.
func Logout(w http.ResponseWriter, r *http.Request, m *session.Manager) error {
	s := session.FromContext(r.Context())
	if s == nil {
		return ErrNoSession
	}
	return m.Destroy(r.Context(), w, s)
}

type subjectKey struct{}

// WithUserID stores an authenticated user ID in ctx. Token middlewares
// use it so UserID works without a session.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, subjectKey{}, id)
}

// UserID returns the logged-in user's ID from a verified token or the
// session, or "".
func UserID(r *http.Request) string {
	if id, ok := r.Context().Value(subjectKey{}).(string); ok && id != "" {
		return id
	}
	if s := session.FromContext(r.Context()); s != nil {
		return s.GetString(UserIDKey)
	}
	return ""
}
