// fhurl/config.go
package fhurl

import (
	"fmt"
	"net/http"
)

// DefaultLoginURL is used when neither the route nor Deps name a login page.
const DefaultLoginURL = "/accounts/login/"

type loginKind int

const (
	loginOptional loginKind = iota
	loginRequired
	loginPredicate
	loginOr404
)

// LoginRequirement says what an unauthenticated request gets.
type LoginRequirement struct {
	kind loginKind
	pred func(*http.Request) bool
}

var (
	// LoginOptional lets everyone in.
	LoginOptional = LoginRequirement{kind: loginOptional}
	// LoginRequired redirects unauthenticated requests to the login page.
	LoginRequired = LoginRequirement{kind: loginRequired}
	// LoginOr404 answers unauthenticated requests with 404, hiding the route.
	LoginOr404 = LoginRequirement{kind: loginOr404}
)

// LoginPredicate redirects to the login page whenever fn returns true.
// fn decides on its own; the Authenticator is not consulted.
func LoginPredicate(fn func(*http.Request) bool) LoginRequirement {
	return LoginRequirement{kind: loginPredicate, pred: fn}
}

func (l LoginRequirement) String() string {
	switch l.kind {
	case loginRequired:
		return "required"
	case loginPredicate:
		return "predicate"
	case loginOr404:
		return "or-404"
	}
	return "optional"
}

// Config is the per-route dispatch configuration. It is read-only once the
// route is mounted.
type Config struct {
	RequireLogin LoginRequirement
	// LoginURL defaults to Deps.LoginURL, then DefaultLoginURL.
	LoginURL string
	// AJAX forces JSON replies.
	AJAX bool
	// Next is the redirect after a successful save. Requires Template.
	Next string
	// Template is rendered for GET and for invalid submissions.
	Template string
	// OmitRequest keeps the request from forms implementing
	// form.RequestReceiver. By default they get it.
	OmitRequest bool
	// ValidateOnly validates without saving.
	ValidateOnly bool
	// PostOnly answers GET with 404.
	PostOnly bool
	// InitArgs are passed to form.Initializer along with URL parameters,
	// which win on conflicts.
	InitArgs map[string]string
}

// PassRequest reports whether forms receive the request.
func (c Config) PassRequest() bool { return !c.OmitRequest }

// Validate checks invariants that do not depend on the route's Deps.
func (c Config) Validate() error {
	if c.Next != "" && c.Template == "" {
		return &ConfigurationError{Reason: "template required when next is set"}
	}
	if c.RequireLogin.kind == loginPredicate && c.RequireLogin.pred == nil {
		return &ConfigurationError{Reason: "login predicate is nil"}
	}
	return nil
}

// ConfigurationError reports a route that cannot be served as configured.
type ConfigurationError struct {
	Route  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Route == "" {
		return "fhurl: " + e.Reason
	}
	return fmt.Sprintf("fhurl: route %q: %s", e.Route, e.Reason)
}
