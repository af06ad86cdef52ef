// templates/adapter.go
package templates

import (
	"bytes"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var errNoEngine = errors.New("templates: no engine installed")

var (
	engine Renderer
	logger = zap.NewNop()
)

// UseEngine installs the renderer and logger used by the helper Render
// functions.
func UseEngine(e Renderer, l *zap.Logger) {
	engine = e
	if l != nil {
		logger = l
	}
}

// Render writes a full page as text/html, or a plain 500 on failure.
func Render(w http.ResponseWriter, r *http.Request, name string, data any) {
	_ = RenderWith(w, r, engine, logger, http.StatusOK, name, data)
}

// RenderWith renders through an explicit renderer. On failure it has
// already written the 500 and returns the cause.
func RenderWith(w http.ResponseWriter, r *http.Request, e Renderer, l *zap.Logger, status int, name string, data any) error {
	if l == nil {
		l = zap.NewNop()
	}
	if e == nil {
		l.Error("render called before engine installed", zap.String("name", name))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return errNoEngine
	}

	var buf bytes.Buffer
	if err := e.Render(&buf, name, data); err != nil {
		l.Error("template render failed",
			zap.String("name", name),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		http.Error(w, "template exec error", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
	return nil
}
