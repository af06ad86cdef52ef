// middleware/compress.go
package middleware

import (
	"net/http"

	"github.com/dalemusser/fhurl/config"
	"github.com/go-chi/chi/v5/middleware"
)

// compressLevel balances speed and ratio for small HTML and JSON bodies.
const compressLevel = 5

// compressTypes covers rendered form pages and AJAX responses.
var compressTypes = []string{"text/html", "application/json", "text/css", "text/plain"}

// CompressFromConfig returns a gzip/deflate middleware for HTML and JSON
// responses, or an identity middleware when compression is disabled.
func CompressFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	if cfg == nil || !cfg.HTTP.EnableCompression {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	return middleware.Compress(compressLevel, compressTypes...)
}
