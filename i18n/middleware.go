// i18n/middleware.go
package i18n

import (
	"net/http"

	"golang.org/x/text/language"
)

// LocaleDetector returns a raw language preference from a request, or "".
// The value may be a single tag or an Accept-Language style list.
type LocaleDetector func(r *http.Request) string

// MiddlewareConfig configures the i18n middleware.
type MiddlewareConfig struct {
	Bundle *Bundle

	// Detectors are tried in order; the first non-empty result is matched
	// against the bundle's locales.
	// Default: QueryDetector, CookieDetector, HeaderDetector
	Detectors []LocaleDetector

	// CookieName is the name of the locale cookie. Default: "lang"
	CookieName string

	// QueryParam is the query parameter for locale. Default: "lang"
	QueryParam string

	// SetCookie persists an explicit ?lang= choice in the cookie.
	SetCookie bool
}

// DefaultMiddlewareConfig returns sensible defaults.
func DefaultMiddlewareConfig(bundle *Bundle) MiddlewareConfig {
	return MiddlewareConfig{
		Bundle:     bundle,
		CookieName: "lang",
		QueryParam: "lang",
	}
}

// Middleware detects the request locale, matches it against the bundle with
// golang.org/x/text/language, and stores a Localizer in the request context.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = "lang"
	}
	if cfg.QueryParam == "" {
		cfg.QueryParam = "lang"
	}
	if len(cfg.Detectors) == 0 {
		cfg.Detectors = []LocaleDetector{
			QueryDetector(cfg.QueryParam),
			CookieDetector(cfg.CookieName),
			HeaderDetector(),
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Built per request so catalogs added after startup are honored.
			matcher, supported := cfg.Bundle.Matcher()
			locale := cfg.Bundle.DefaultLocale()
			for _, detect := range cfg.Detectors {
				if pref := detect(r); pref != "" {
					locale = Match(matcher, supported, pref)
					break
				}
			}

			if cfg.SetCookie && r.URL.Query().Get(cfg.QueryParam) != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.CookieName,
					Value:    locale,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithLocalizer(r.Context(), cfg.Bundle.Localizer(locale))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Match picks the supported locale best matching pref, an Accept-Language
// style list. supported[0] is returned when nothing matches.
func Match(matcher language.Matcher, supported []string, pref string) string {
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return supported[0]
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// QueryDetector detects locale from a query parameter.
func QueryDetector(param string) LocaleDetector {
	return func(r *http.Request) string {
		return r.URL.Query().Get(param)
	}
}

// CookieDetector detects locale from a cookie.
func CookieDetector(name string) LocaleDetector {
	return func(r *http.Request) string {
		cookie, err := r.Cookie(name)
		if err != nil {
			return ""
		}
		return cookie.Value
	}
}

// HeaderDetector passes the Accept-Language header through for matching.
func HeaderDetector() LocaleDetector {
	return func(r *http.Request) string {
		return r.Header.Get("Accept-Language")
	}
}
