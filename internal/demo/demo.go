// Package demo is the example site served by fhurld: a handful of login
// style forms exercising every dispatch path, a contact page with two
// forms, and real session login against an account store.
package demo

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/auth"
	"github.com/dalemusser/fhurl/fhurl"
	"github.com/dalemusser/fhurl/form"
	"github.com/dalemusser/fhurl/internal/accounts"
	"github.com/dalemusser/fhurl/session"
)

// Deps are the services the demo forms use.
type Deps struct {
	Accounts *accounts.Store
	Sessions *session.Manager
	// JWT, when set, lets AJAX logins receive a bearer token.
	JWT    *auth.JWTAuth
	Inbox  *Inbox
	Logger *zap.Logger
}

func (d *Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// Routes returns the demo's form routes.
func Routes(d *Deps) []fhurl.Route {
	if d.Inbox == nil {
		d.Inbox = NewInbox()
	}
	page := fhurl.Config{Template: "login.gohtml"}

	routes := []fhurl.Route{
		{Name: "login_without", Pattern: "/login/without/", Form: NewLoginForm,
			Config: fhurl.Config{Template: "login.gohtml", OmitRequest: true}},
		{Name: "login_with", Pattern: "/login/with/", Form: NewLoginForm, Config: page},
		{Name: "with_http", Pattern: "/with/http/", Form: NewGreetingForm, Config: page},
		{Name: "with_variable_redirect", Pattern: "/with/variable/redirect/", Form: NewProfileRedirectForm, Config: page},
		{Name: "with_data", Pattern: "/with/data/{username}/", Form: NewPrefilledForm, Config: page},
		{Name: "init_returning", Pattern: "/init/returning/{username}/", Form: NewGreeterForm, Config: page},
		{Name: "init_raising_404", Pattern: "/init/raising/404/", Form: NewHiddenForm, Config: page},
		{Name: "login_required", Pattern: "/login/required/", Form: NewLoginForm,
			Config: fhurl.Config{Template: "login.gohtml", RequireLogin: fhurl.LoginRequired}},
		{Name: "login_required_with_url", Pattern: "/login/required/with/url/", Form: NewLoginForm,
			Config: fhurl.Config{Template: "login.gohtml", RequireLogin: fhurl.LoginRequired, LoginURL: "/mylogin/"}},
		{Name: "login_or_404", Pattern: "/login/or/404/", Form: NewLoginForm,
			Config: fhurl.Config{Template: "login.gohtml", RequireLogin: fhurl.LoginOr404}},
		{Name: "contact", Pattern: "/contact/",
			Forms: map[string]form.Factory{
				"contact":    d.newContactForm,
				"newsletter": d.newNewsletterForm,
			},
			Config: fhurl.Config{Template: "contact.gohtml", Next: "/contact/?sent=1"}},
	}

	if d.Accounts != nil && d.Sessions != nil {
		routes = append(routes,
			fhurl.Route{Name: "account_login", Pattern: "/accounts/login/", Form: d.newAccountLoginForm,
				Config: fhurl.Config{Template: "account_login.gohtml"}},
			fhurl.Route{Name: "account_logout", Pattern: "/accounts/logout/", Form: d.newLogoutForm,
				Config: fhurl.Config{PostOnly: true}},
		)
	}
	return routes
}

// Mount registers the demo routes and its plain handlers.
func Mount(router chi.Router, reg *fhurl.Registry, d *Deps) error {
	for _, r := range Routes(d) {
		if err := reg.Mount(r); err != nil {
			return err
		}
	}
	router.Get("/session/", SessionCounter)
	return nil
}

// SessionCounter counts visits in the caller's session.
func SessionCounter(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}
	n := s.GetInt("count") + 1
	s.Set("count", n)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "session: %d", n)
}
