// middleware/contenttype.go
package middleware

import (
	"mime"
	"net/http"

	fherrors "github.com/dalemusser/fhurl/errors"
)

// RequireFormEncoded returns a middleware that rejects POST requests whose
// body is not an HTML form encoding (application/x-www-form-urlencoded or
// multipart/form-data) with 415 Unsupported Media Type.
//
// Bodyless POSTs pass through; they bind as an empty submission.
func RequireFormEncoded() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.ContentLength == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ct, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || (ct != "application/x-www-form-urlencoded" && ct != "multipart/form-data") {
				fherrors.Write(w, fherrors.UnsupportedMedia("Content-Type must be a form encoding"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
