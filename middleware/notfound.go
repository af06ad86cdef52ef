package middleware

import (
	"net/http"

	fherrors "github.com/dalemusser/fhurl/errors"
	"go.uber.org/zap"
)

// NotFoundHandler returns a handler that logs a 404 and returns a JSON error body.
// It is designed to be passed directly to chi.Router.NotFound(..).
func NotFoundHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logger != nil {
			logger.Info("not_found",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_ip", r.RemoteAddr),
			)
		}
		fherrors.Write(w, fherrors.NotFound("The requested resource was not found"))
	}
}

// MethodNotAllowedHandler returns a handler that logs a 405 and returns a JSON error body.
// Form routes accept GET and POST only, so this is what a PUT or DELETE sees.
func MethodNotAllowedHandler(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if logger != nil {
			logger.Info("method_not_allowed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_ip", r.RemoteAddr),
			)
		}
		fherrors.Write(w, fherrors.MethodNotAllowed("The requested HTTP method is not allowed for this resource"))
	}
}
