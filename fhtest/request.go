// Package fhtest drives form routes in tests without starting a server.
//
//	fhtest.New(t, router).Post("/login/").
//		Form(url.Values{"username": {"jack"}}).
//		AJAX().
//		Do().
//		StatusOK().
//		JSONPathEquals("success", true)
package fhtest

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// Client sends requests to a handler through httptest.NewRecorder. It
// keeps the cookies handlers set, so a session survives across requests.
type Client struct {
	t       testing.TB
	handler http.Handler
	cookies map[string]*http.Cookie
}

// New returns a client for handler.
func New(t testing.TB, handler http.Handler) *Client {
	return &Client{t: t, handler: handler, cookies: make(map[string]*http.Cookie)}
}

// Get starts a GET request.
func (c *Client) Get(path string) *Request {
	return c.Request(http.MethodGet, path)
}

// Post starts a POST request.
func (c *Client) Post(path string) *Request {
	return c.Request(http.MethodPost, path)
}

// Request starts a request with any method.
func (c *Client) Request(method, path string) *Request {
	return &Request{
		client: c,
		method: method,
		path:   path,
		header: make(http.Header),
		query:  make(url.Values),
	}
}

// Cookie returns the value of a cookie the handler set, or "".
func (c *Client) Cookie(name string) string {
	if ck, ok := c.cookies[name]; ok {
		return ck.Value
	}
	return ""
}

// ForgetCookies drops every stored cookie.
func (c *Client) ForgetCookies() {
	c.cookies = make(map[string]*http.Cookie)
}

// Request builds one request.
type Request struct {
	client *Client
	method string
	path   string
	header http.Header
	query  url.Values
	body   io.Reader
}

// Header sets a request header.
func (r *Request) Header(key, value string) *Request {
	r.header.Set(key, value)
	return r
}

// Query sets a query parameter.
func (r *Request) Query(key, value string) *Request {
	r.query.Set(key, value)
	return r
}

// AJAX marks the request the way browser scripts do.
func (r *Request) AJAX() *Request {
	return r.Header("X-Requested-With", "XMLHttpRequest")
}

// Form sets an urlencoded body.
func (r *Request) Form(data url.Values) *Request {
	r.body = strings.NewReader(data.Encode())
	r.header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

// Multipart sets a multipart body carrying data as plain fields.
func (r *Request) Multipart(data url.Values) *Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range data {
		for _, v := range vs {
			if err := mw.WriteField(k, v); err != nil {
				r.client.t.Fatalf("write multipart field: %v", err)
			}
		}
	}
	if err := mw.Close(); err != nil {
		r.client.t.Fatalf("close multipart body: %v", err)
	}
	r.body = &buf
	r.header.Set("Content-Type", mw.FormDataContentType())
	return r
}

// BodyString sets a raw body.
func (r *Request) BodyString(body string) *Request {
	r.body = strings.NewReader(body)
	return r
}

// Bearer sets the Authorization header.
func (r *Request) Bearer(token string) *Request {
	return r.Header("Authorization", "Bearer "+token)
}

// Cookie adds a cookie to this request only.
func (r *Request) Cookie(name, value string) *Request {
	if existing := r.header.Get("Cookie"); existing != "" {
		r.header.Set("Cookie", existing+"; "+name+"="+value)
	} else {
		r.header.Set("Cookie", name+"="+value)
	}
	return r
}

// Build creates the http.Request without sending it.
func (r *Request) Build() *http.Request {
	path := r.path
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + r.query.Encode()
	}

	req := httptest.NewRequest(r.method, path, r.body)
	for k, vs := range r.header {
		req.Header[k] = vs
	}
	for _, ck := range r.client.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
	return req
}

// Do sends the request and records the response.
func (r *Request) Do() *Response {
	r.client.t.Helper()

	w := httptest.NewRecorder()
	r.client.handler.ServeHTTP(w, r.Build())

	resp := w.Result()
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.client.t.Fatalf("read response body: %v", err)
	}

	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 {
			delete(r.client.cookies, ck.Name)
			continue
		}
		r.client.cookies[ck.Name] = ck
	}

	return &Response{Response: resp, Body: body, t: r.client.t}
}
