package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/fhurl/config"
	"github.com/stretchr/testify/assert"
)

func TestNew_StandardStack(t *testing.T) {
	r := New(&config.Config{HTTP: config.HTTPConfig{MaxRequestBodyBytes: 16}}, nil)
	r.Post("/form/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/panic/", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	t.Run("not found is JSON", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), `"not_found"`)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/form/", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("body limit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/form/", strings.NewReader(strings.Repeat("a", 64)))
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("panic recovered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic/", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("security headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/form/", nil))
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}
