// urlutil/urlutil.go
package urlutil

import (
	"net/url"
	"path"
	"strings"
)

// SafeNext validates a same-origin redirect target taken from a request
// ("next" parameters) and returns fallback if it is unsafe.
//
// Accepted targets are absolute paths without scheme or host, free of CR/LF
// and backslashes. "." and ".." segments are resolved; the trailing slash and
// query string are kept so "/john/?tab=1" survives unchanged.
func SafeNext(ret, fallback string) string {
	ret = strings.TrimSpace(ret)
	if ret == "" {
		return fallback
	}
	// Reject characters that can break headers.
	if strings.ContainsAny(ret, "\r\n") {
		return fallback
	}
	// No backslashes; some browsers treat "/\evil.com" as scheme-relative.
	if strings.ContainsRune(ret, '\\') {
		return fallback
	}
	// Must be an absolute path (same-origin) and not scheme-relative.
	if !strings.HasPrefix(ret, "/") || strings.HasPrefix(ret, "//") {
		return fallback
	}

	u, err := url.Parse(ret)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" || u.User != nil {
		return fallback
	}

	p := u.EscapedPath()
	clean := path.Clean(p)
	if !strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, "//") {
		return fallback
	}
	if strings.HasSuffix(p, "/") && clean != "/" {
		clean += "/"
	}
	if u.RawQuery != "" {
		clean += "?" + u.RawQuery
	}
	return clean
}

// SafeNextExcluding is SafeNext but also falls back when the target's path
// matches one of excluded (ignoring query and trailing slash). Form handlers
// exclude their login page so a successful login never lands back on it.
func SafeNextExcluding(ret, fallback string, excluded ...string) string {
	safe := SafeNext(ret, fallback)
	if safe == fallback {
		return fallback
	}
	p := normalizePath(safe)
	for _, ex := range excluded {
		if ex != "" && p == normalizePath(ex) {
			return fallback
		}
	}
	return safe
}

func normalizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// WithNext appends next as the "next" parameter of loginURL, using "&" when
// loginURL already carries a query. next is appended verbatim, not
// query-escaped: an escaped request path is safe to embed, but a next that
// still contains '&' or '#' is cut short at that character.
func WithNext(loginURL, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + next
}
