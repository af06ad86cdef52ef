// middleware/sizelimit.go
package middleware

import (
	"net/http"

	fherrors "github.com/dalemusser/fhurl/errors"
)

// LimitBodySize returns a middleware that limits the size of the request body
// to maxBytes. If maxBytes <= 0, it is a no-op and does not wrap the body.
//
// A request whose declared Content-Length is already over the limit is
// rejected with 413 before the handler runs. Otherwise the body is wrapped
// with http.MaxBytesReader, so form parsing fails once the limit is crossed.
func LimitBodySize(maxBytes int64) func(next http.Handler) http.Handler {
	if maxBytes <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				fherrors.Write(w, fherrors.TooLarge("request body too large"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
