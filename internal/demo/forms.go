package demo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/fhurl/form"
)

func loginFields() []form.Field {
	return []form.Field{
		form.TextField("username", "max=100"),
		form.PasswordField("password", "max=100"),
	}
}

// LoginForm accepts any username and password and sends the user home.
type LoginForm struct {
	*form.Base
}

func NewLoginForm() form.Form {
	return &LoginForm{Base: form.New(loginFields()...)}
}

func (f *LoginForm) Save(context.Context) (any, error) {
	return "/", nil
}

// GreetingForm answers a valid submission with a plain-text greeting.
type GreetingForm struct {
	*form.Base
}

func NewGreetingForm() form.Form {
	return &GreetingForm{Base: form.New(loginFields()...)}
}

func (f *GreetingForm) Save(context.Context) (any, error) {
	username := f.String("username")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "hi %s", username)
	}), nil
}

// ProfileRedirectForm redirects to the submitted user's page.
type ProfileRedirectForm struct {
	*form.Base
}

func NewProfileRedirectForm() form.Form {
	return &ProfileRedirectForm{Base: form.New(loginFields()...)}
}

func (f *ProfileRedirectForm) Save(context.Context) (any, error) {
	return "/" + f.String("username") + "/", nil
}

// PrefilledForm takes its initial username from the URL.
type PrefilledForm struct {
	ProfileRedirectForm
}

func NewPrefilledForm() form.Form {
	return &PrefilledForm{ProfileRedirectForm{Base: form.New(loginFields()...)}}
}

func (f *PrefilledForm) Init(_ context.Context, args map[string]string) form.InitOutcome {
	f.Initialize(map[string]any{"username": args["username"]})
	return form.Continue()
}

// GreeterForm answers every request from its Init hook.
type GreeterForm struct {
	LoginForm
}

func NewGreeterForm() form.Form {
	return &GreeterForm{LoginForm{Base: form.New(loginFields()...)}}
}

func (f *GreeterForm) Init(_ context.Context, args map[string]string) form.InitOutcome {
	username := args["username"]
	return form.RespondWith(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "good boy %s", username)
	}))
}

// HiddenForm is never found.
type HiddenForm struct {
	LoginForm
}

func NewHiddenForm() form.Form {
	return &HiddenForm{LoginForm{Base: form.New(loginFields()...)}}
}

func (f *HiddenForm) Init(context.Context, map[string]string) form.InitOutcome {
	return form.NotFound()
}
