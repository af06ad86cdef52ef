// errors/http.go
package errors

import (
	"net/http"

	"github.com/dalemusser/fhurl/httputil"
	"go.uber.org/zap"
)

// Write writes an error as the standard JSON envelope
// {"error": code, "message": ..., "details": ...} with the error's status.
func Write(w http.ResponseWriter, err error) {
	e := From(err)
	httputil.WriteJSON(w, e.HTTPStatus(), httputil.ErrorResponse{
		Error:   e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}

// WriteWithLogger writes an error and logs server-side failures with the
// underlying cause.
func WriteWithLogger(w http.ResponseWriter, r *http.Request, err error, logger *zap.Logger) {
	e := From(err)

	if e.HTTPStatus() >= 500 && logger != nil {
		logger.Error("internal error",
			zap.String("code", e.Code),
			zap.String("message", e.Message),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(e.Err),
		)
	}

	Write(w, e)
}

// Handler returns an http.Handler that always writes e. It lets an error be
// used wherever a response value is expected.
func Handler(e *Error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Write(w, e)
	})
}
