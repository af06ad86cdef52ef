// session/session.go
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/config"
)

// Session is one visitor's key-value data for the current request.
type Session struct {
	mu        sync.RWMutex
	id        string
	values    map[string]any
	isNew     bool
	modified  bool
	destroyed bool
	createdAt time.Time
	expiresAt time.Time
}

// ID returns the session ID.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// IsNew reports whether the session was created by this request.
func (s *Session) IsNew() bool { return s.isNew }

// Get retrieves a value.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString retrieves a string value, or "".
func (s *Session) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt retrieves an int value. Values that went through JSON (the Redis
// store) come back as float64 and are converted.
func (s *Session) GetInt(key string) int {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Set stores a value.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.modified = true
}

// Delete removes a value.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.modified = true
	}
}

// Clear removes every value.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any)
	s.modified = true
}

// Modified reports whether the session needs saving.
func (s *Session) Modified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modified
}

// ExpiresAt returns when the session expires.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) record(now time.Time) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	return &Record{
		ID:        s.id,
		Values:    values,
		ExpiresAt: s.expiresAt,
		CreatedAt: s.createdAt,
		UpdatedAt: now,
	}
}

// Options configures the session cookie.
type Options struct {
	CookieName string
	MaxAge     time.Duration
	Path       string
	Secure     bool
	SameSite   http.SameSite
}

// OptionsFromConfig maps the session_* config keys onto Options.
func OptionsFromConfig(cfg config.SessionConfig) Options {
	return Options{
		CookieName: cfg.CookieName,
		MaxAge:     cfg.MaxAge,
		Secure:     cfg.SecureCookie,
	}
}

// Manager loads and persists sessions through a Store and a cookie.
type Manager struct {
	store  Store
	opts   Options
	newID  func() (string, error)
	logger *zap.Logger
}

// NewManager creates a manager. Zero option fields get defaults: cookie
// "fhurl_session", 24h lifetime, path "/", SameSite Lax.
func NewManager(store Store, opts Options, logger *zap.Logger) *Manager {
	if opts.CookieName == "" {
		opts.CookieName = "fhurl_session"
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = 24 * time.Hour
	}
	if opts.Path == "" {
		opts.Path = "/"
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteLaxMode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, opts: opts, newID: generateID, logger: logger}
}

func generateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Load returns the request's session, or a fresh one when the cookie is
// missing, unknown or expired. Store failures other than ErrNotFound are
// returned alongside the fresh session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	if m.store == nil {
		return nil, ErrNoStore
	}

	var loadErr error
	if c, err := r.Cookie(m.opts.CookieName); err == nil && c.Value != "" {
		rec, err := m.store.Load(r.Context(), c.Value)
		if err == nil {
			return &Session{
				id:        rec.ID,
				values:    rec.Values,
				createdAt: rec.CreatedAt,
				expiresAt: rec.ExpiresAt,
			}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			loadErr = err
		}
	}

	s, err := m.New()
	if err != nil {
		return nil, err
	}
	return s, loadErr
}

// New creates an unsaved session.
func (m *Manager) New() (*Session, error) {
	id, err := m.newID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		id:        id,
		values:    make(map[string]any),
		isNew:     true,
		createdAt: now,
		expiresAt: now.Add(m.opts.MaxAge),
	}, nil
}

// Save persists s and sets the cookie. It must run before the response
// header is written.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	if err := m.store.Save(ctx, s.record(time.Now())); err != nil {
		return err
	}
	s.mu.Lock()
	s.modified = false
	s.mu.Unlock()

	http.SetCookie(w, m.cookie(s.ID(), int(m.opts.MaxAge.Seconds())))
	return nil
}

// Destroy deletes s from the store and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.mu.Lock()
	s.destroyed = true
	s.modified = false
	s.values = make(map[string]any)
	id := s.id
	s.mu.Unlock()

	http.SetCookie(w, m.cookie("", -1))
	return m.store.Delete(ctx, id)
}

// Regenerate gives s a new ID and keeps its values. Call it when the
// user's privilege level changes (login) to defeat session fixation.
func (m *Manager) Regenerate(ctx context.Context, s *Session) error {
	newID, err := m.newID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	oldID := s.id
	s.id = newID
	s.modified = true
	s.mu.Unlock()

	if err := m.store.Delete(ctx, oldID); err != nil {
		m.logger.Warn("session: delete old id failed", zap.Error(err))
	}
	return nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    value,
		Path:     m.opts.Path,
		MaxAge:   maxAge,
		Secure:   m.opts.Secure,
		HttpOnly: true,
		SameSite: m.opts.SameSite,
	}
}

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string { return m.opts.CookieName }

// Close closes the underlying store.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	return m.store.Close()
}

// Ping checks the store when it supports it. Stores without a Ping method
// (the memory store) are always reachable.
func (m *Manager) Ping(ctx context.Context) error {
	p, ok := m.store.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return p.Ping(ctx)
}
