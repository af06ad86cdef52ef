// httputil/json.go
package httputil

import (
	"encoding/json"
	"net/http"
	"reflect"

	"go.uber.org/zap"
)

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// jsonLogger reports encoding failures that happen after the status line is sent.
var jsonLogger = zap.NewNop()

// SetJSONLogger configures the logger used for JSON encoding errors.
// This should be called once during application startup.
func SetJSONLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	jsonLogger = logger
}

func clampStatus(status int) int {
	// Valid HTTP status codes are 100-599.
	if status < 100 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged because headers and status have
// already been sent and we can't send another response.
//
// Invalid status codes (outside 100-599) are clamped to 500 Internal Server Error
// to prevent undefined behavior in net/http.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(clampStatus(status))

	if err := json.NewEncoder(w).Encode(v); err != nil {
		typeName := "nil"
		if v != nil {
			typeName = reflect.TypeOf(v).String()
		}
		jsonLogger.Error("json encoding failed after headers sent",
			zap.String("type", typeName), zap.Error(err))
	}
}

// WriteJSONBytes writes an already-encoded JSON body. Form handlers encode
// before writing so that serialization failures can still become a 500.
func WriteJSONBytes(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(clampStatus(status))
	if _, err := w.Write(body); err != nil {
		jsonLogger.Debug("json write failed", zap.Error(err))
	}
}
