// session/middleware.go
package session

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type contextKey struct{}

// Middleware loads the session for each request and saves it, when
// modified, just before the response header goes out.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := m.Load(r)
			if err != nil {
				m.logger.Warn("session load failed", zap.String("path", r.URL.Path), zap.Error(err))
				if s == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			r = r.WithContext(WithSession(r.Context(), s))
			sw := &saveWriter{ResponseWriter: w, ctx: r.Context(), session: s, manager: m}
			next.ServeHTTP(sw, r)
			sw.saveOnce()
		})
	}
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the request's session, or nil without Middleware.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}

// saveWriter saves the session before the first header or body write.
type saveWriter struct {
	http.ResponseWriter
	ctx     context.Context
	session *Session
	manager *Manager
	done    bool
}

func (sw *saveWriter) saveOnce() {
	if sw.done {
		return
	}
	sw.done = true
	if !sw.session.Modified() {
		return
	}
	if err := sw.manager.Save(sw.ctx, sw.ResponseWriter, sw.session); err != nil {
		sw.manager.logger.Error("session save failed", zap.Error(err))
	}
}

func (sw *saveWriter) WriteHeader(code int) {
	sw.saveOnce()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *saveWriter) Write(b []byte) (int, error) {
	sw.saveOnce()
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *saveWriter) Unwrap() http.ResponseWriter { return sw.ResponseWriter }

const flashKey = "_flash"

// Flash queues a one-time message shown on the next page.
func Flash(s *Session, msg string) {
	if s == nil {
		return
	}
	s.Set(flashKey, append(Peek(s), msg))
}

// Peek returns queued flash messages without consuming them.
func Peek(s *Session) []string {
	v, ok := s.Get(flashKey)
	if !ok {
		return nil
	}
	switch msgs := v.(type) {
	case []string:
		return append([]string(nil), msgs...)
	case []any:
		out := make([]string, 0, len(msgs))
		for _, m := range msgs {
			if str, ok := m.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}

// Flashes returns and clears queued flash messages.
func Flashes(s *Session) []string {
	if s == nil {
		return nil
	}
	msgs := Peek(s)
	s.Delete(flashKey)
	return msgs
}
