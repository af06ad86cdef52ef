package urlutil

import "testing"

func TestSafeNext(t *testing.T) {
	tests := []struct {
		name     string
		ret      string
		fallback string
		want     string
	}{
		// Basic functionality
		{"empty returns fallback", "", "/", "/"},
		{"valid path", "/dashboard", "/", "/dashboard"},
		{"keeps trailing slash", "/john/", "/", "/john/"},
		{"keeps query", "/login/required/?tab=2", "/", "/login/required/?tab=2"},
		{"root", "/", "/home/", "/"},

		// Security: header injection
		{"rejects CR", "/foo\rbar", "/", "/"},
		{"rejects LF", "/foo\nbar", "/", "/"},
		{"rejects backslash", "/\\evil.com", "/", "/"},

		// Security: open redirect
		{"rejects scheme", "http://evil.com", "/", "/"},
		{"rejects javascript", "javascript:alert(1)", "/", "/"},
		{"rejects scheme-relative", "//evil.com/path", "/", "/"},
		{"rejects non-absolute", "relative/path", "/", "/"},

		// Path normalization
		{"normalizes dot segments", "/foo/../bar/", "/", "/bar/"},
		{"collapses to root", "/foo/..", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNext(tt.ret, tt.fallback)
			if got != tt.want {
				t.Errorf("SafeNext(%q, %q) = %q, want %q", tt.ret, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestSafeNextExcluding(t *testing.T) {
	tests := []struct {
		name     string
		ret      string
		excluded []string
		want     string
	}{
		{"exact exclusion", "/accounts/login/", []string{"/accounts/login/"}, "/"},
		{"exclusion ignores trailing slash", "/accounts/login", []string{"/accounts/login/"}, "/"},
		{"exclusion ignores query", "/accounts/logout/?x=1", []string{"/accounts/logout/"}, "/"},
		{"prefix is not a match", "/accounts/login-help/", []string{"/accounts/login/"}, "/accounts/login-help/"},
		{"no exclusions", "/accounts/login/", nil, "/accounts/login/"},
		{"still validates", "http://evil.com", nil, "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNextExcluding(tt.ret, "/", tt.excluded...)
			if got != tt.want {
				t.Errorf("SafeNextExcluding(%q, %v) = %q, want %q", tt.ret, tt.excluded, got, tt.want)
			}
		})
	}
}

func TestWithNext(t *testing.T) {
	tests := []struct {
		login, next, want string
	}{
		{"/accounts/login/", "/login/required/", "/accounts/login/?next=/login/required/"},
		{"/mylogin/", "/login/required/with/url/", "/mylogin/?next=/login/required/with/url/"},
		{"/sso?realm=x", "/a/", "/sso?realm=x&next=/a/"},
		// Appended verbatim; an escaped path keeps its escapes.
		{"/accounts/login/", "/with/data/jack%20smith/", "/accounts/login/?next=/with/data/jack%20smith/"},
		{"/accounts/login/", "/a&b/", "/accounts/login/?next=/a&b/"},
	}
	for _, tt := range tests {
		if got := WithNext(tt.login, tt.next); got != tt.want {
			t.Errorf("WithNext(%q, %q) = %q, want %q", tt.login, tt.next, got, tt.want)
		}
	}
}
