package fhtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"testing"
)

// Response wraps a recorded response with assertions.
type Response struct {
	*http.Response
	Body []byte
	t    testing.TB
}

// Status asserts the status code.
func (r *Response) Status(code int) *Response {
	r.t.Helper()
	if r.StatusCode != code {
		r.t.Errorf("expected status %d, got %d\nBody: %s", code, r.StatusCode, string(r.Body))
	}
	return r
}

// StatusOK asserts 200 OK.
func (r *Response) StatusOK() *Response {
	return r.Status(http.StatusOK)
}

// StatusNotFound asserts 404 Not Found.
func (r *Response) StatusNotFound() *Response {
	return r.Status(http.StatusNotFound)
}

// Redirect asserts a 302 to location.
func (r *Response) Redirect(location string) *Response {
	r.t.Helper()
	r.Status(http.StatusFound)
	if got := r.Header.Get("Location"); got != location {
		r.t.Errorf("expected redirect to %q, got %q", location, got)
	}
	return r
}

// ContentTypeJSON asserts a JSON content type.
func (r *Response) ContentTypeJSON() *Response {
	r.t.Helper()
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		r.t.Errorf("expected JSON content type, got %q", ct)
	}
	return r
}

// BodyContains asserts the body contains substr.
func (r *Response) BodyContains(substr string) *Response {
	r.t.Helper()
	if !bytes.Contains(r.Body, []byte(substr)) {
		r.t.Errorf("expected body to contain %q\nBody: %s", substr, string(r.Body))
	}
	return r
}

// BodyNotContains asserts the body does not contain substr.
func (r *Response) BodyNotContains(substr string) *Response {
	r.t.Helper()
	if bytes.Contains(r.Body, []byte(substr)) {
		r.t.Errorf("expected body not to contain %q\nBody: %s", substr, string(r.Body))
	}
	return r
}

// BodyEquals asserts the exact body, ignoring a trailing newline.
func (r *Response) BodyEquals(expected string) *Response {
	r.t.Helper()
	if got := strings.TrimSuffix(string(r.Body), "\n"); got != expected {
		r.t.Errorf("expected body %q, got %q", expected, got)
	}
	return r
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) *Response {
	r.t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.t.Fatalf("decode JSON: %v\nBody: %s", err, string(r.Body))
	}
	return r
}

// JSONPath returns the value at a dot-separated path such as
// "errors.username.0". Numbers decode as float64.
func (r *Response) JSONPath(path string) any {
	r.t.Helper()

	var current any
	r.JSON(&current)
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				r.t.Fatalf("path %q not found at %q\nBody: %s", path, part, string(r.Body))
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				r.t.Fatalf("bad index %q in path %q", part, path)
			}
			current = v[idx]
		default:
			r.t.Fatalf("cannot navigate path %q at %q (type %T)", path, part, current)
		}
	}
	return current
}

// JSONPathEquals asserts the value at path, compared by JSON encoding.
func (r *Response) JSONPathEquals(path string, expected any) *Response {
	r.t.Helper()
	actual, _ := json.Marshal(r.JSONPath(path))
	want, _ := json.Marshal(expected)
	if !bytes.Equal(actual, want) {
		r.t.Errorf("at %q expected %s, got %s", path, want, actual)
	}
	return r
}

// HasJSONPath reports whether path exists without failing the test.
func (r *Response) HasJSONPath(path string) bool {
	var current any
	if err := json.Unmarshal(r.Body, &current); err != nil {
		return false
	}
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		if current, ok = m[part]; !ok {
			return false
		}
	}
	return true
}

// String returns the body.
func (r *Response) String() string {
	return string(r.Body)
}
