// middleware/security.go
package middleware

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/fhurl/config"
)

// SecurityHeadersOptions configures the security headers middleware.
// An empty string (or zero) disables the corresponding header.
type SecurityHeadersOptions struct {
	// XFrameOptions controls iframe embedding. Form pages default to "DENY"
	// so a login form cannot be framed for clickjacking.
	XFrameOptions string

	XContentTypeOptions string
	ReferrerPolicy      string

	// CacheControl keeps browsers and proxies from storing rendered forms,
	// which may echo submitted values back into the page.
	CacheControl string

	// HSTSMaxAge sets Strict-Transport-Security max-age in seconds.
	// Only sent when the request is over HTTPS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	ContentSecurityPolicy string
}

// DefaultSecurityHeadersOptions returns options suited to pages that render
// and accept forms.
func DefaultSecurityHeadersOptions() SecurityHeadersOptions {
	return SecurityHeadersOptions{
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "same-origin",
		CacheControl:          "no-store",
		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubDomains: true,
		ContentSecurityPolicy: "frame-ancestors 'none'; form-action 'self'",
	}
}

// SecurityHeaders returns middleware that sets the configured headers before
// calling the next handler.
//
//	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersOptions()))
func SecurityHeaders(opts SecurityHeadersOptions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setIf(h, "X-Frame-Options", opts.XFrameOptions)
			setIf(h, "X-Content-Type-Options", opts.XContentTypeOptions)
			setIf(h, "Referrer-Policy", opts.ReferrerPolicy)
			setIf(h, "Cache-Control", opts.CacheControl)
			setIf(h, "Content-Security-Policy", opts.ContentSecurityPolicy)

			if opts.HSTSMaxAge > 0 && r.TLS != nil {
				hsts := "max-age=" + strconv.Itoa(opts.HSTSMaxAge)
				if opts.HSTSIncludeSubDomains {
					hsts += "; includeSubDomains"
				}
				h.Set("Strict-Transport-Security", hsts)
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setIf(h http.Header, key, value string) {
	if value != "" {
		h.Set(key, value)
	}
}

// SecurityHeadersFromConfig returns the default form-page headers, with HSTS
// only in prod. A nil config yields the dev behavior.
func SecurityHeadersFromConfig(cfg *config.Config) func(next http.Handler) http.Handler {
	opts := DefaultSecurityHeadersOptions()
	if cfg == nil || cfg.Env != "prod" {
		opts.HSTSMaxAge = 0
	}
	return SecurityHeaders(opts)
}

// SecureDefaults is SecurityHeaders(DefaultSecurityHeadersOptions()).
func SecureDefaults() func(next http.Handler) http.Handler {
	return SecurityHeaders(DefaultSecurityHeadersOptions())
}
