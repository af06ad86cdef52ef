package fhurl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dalemusser/fhurl/auth"
	fherrors "github.com/dalemusser/fhurl/errors"
	"github.com/dalemusser/fhurl/fhtest"
	"github.com/dalemusser/fhurl/form"
)

// stubRenderer writes the template name and, per form, whether it is bound
// and how many errors it carries.
type stubRenderer struct {
	calls []string
}

func (s *stubRenderer) Render(w io.Writer, name string, data any) error {
	s.calls = append(s.calls, name)
	m := data.(map[string]any)
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != "request" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fmt.Fprint(w, name)
	for _, k := range keys {
		f := m[k].(form.Form)
		fmt.Fprintf(w, " %s:bound=%v errors=%d", k, f.IsBound(), len(f.Errors()))
	}
	return nil
}

// lookupRenderer also reports which templates it has.
type lookupRenderer struct {
	stubRenderer
	names map[string]bool
}

func (l *lookupRenderer) Has(name string) bool { return l.names[name] }

type failingRenderer struct{}

func (failingRenderer) Render(io.Writer, string, any) error { return errors.New("exec failed") }

type counter struct{ n int }

type loginForm struct {
	*form.Base
	saves  *counter
	result any
	err    error
}

func loginFactory(c *counter, result any, err error) form.Factory {
	return func() form.Form {
		return &loginForm{
			Base: form.New(
				form.TextField("username", "max=100"),
				form.PasswordField("password", ""),
				form.Field{Name: "remember_me", Kind: form.Bool},
			),
			saves:  c,
			result: result,
			err:    err,
		}
	}
}

func (f *loginForm) Save(ctx context.Context) (any, error) {
	f.saves.n++
	return f.result, f.err
}

var goodLogin = url.Values{"username": {"jack"}, "password": {"secret"}}

func serve(t *testing.T, route Route, deps Deps) *fhtest.Client {
	t.Helper()
	r := chi.NewRouter()
	require.NoError(t, Mount(r, route, deps))
	return fhtest.New(t, r)
}

func TestNew_ConfigurationErrors(t *testing.T) {
	c := &counter{}
	tests := []struct {
		name  string
		route Route
		deps  Deps
		want  string
	}{
		{"no form", Route{Name: "x"}, Deps{}, "no form"},
		{"both", Route{Name: "x", Form: loginFactory(c, nil, nil), Forms: map[string]form.Factory{"a": loginFactory(c, nil, nil)}}, Deps{}, "either Form or Forms"},
		{"nil factory", Route{Name: "x", Forms: map[string]form.Factory{"a": nil}}, Deps{}, `form "a" has a nil factory`},
		{"next without template", Route{Name: "x", Form: loginFactory(c, nil, nil), Config: Config{Next: "/"}}, Deps{}, "template required when next is set"},
		{"template without renderer", Route{Name: "x", Form: loginFactory(c, nil, nil), Config: Config{Template: "login.gohtml"}}, Deps{}, "no renderer"},
		{"nil predicate", Route{Name: "x", Form: loginFactory(c, nil, nil), Config: Config{RequireLogin: LoginPredicate(nil)}}, Deps{}, "predicate is nil"},
		{"unknown template", Route{Name: "x", Form: loginFactory(c, nil, nil), Config: Config{Template: "lgoin.gohtml"}},
			Deps{Renderer: &lookupRenderer{names: map[string]bool{"login.gohtml": true}}}, `template "lgoin.gohtml" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.route, tt.deps)
			require.Error(t, err)
			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, "x", ce.Route)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := Mount(chi.NewRouter(), Route{Pattern: "login/", Form: loginFactory(c, nil, nil)}, Deps{})
	assert.ErrorContains(t, err, "pattern must start with /")

	_, err = New(Route{Name: "x", Form: loginFactory(c, nil, nil), Config: Config{Template: "login.gohtml"}},
		Deps{Renderer: &lookupRenderer{names: map[string]bool{"login.gohtml": true}}})
	assert.NoError(t, err)
}

func TestLoginRequired_Redirects(t *testing.T) {
	c := &counter{}
	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{
		Pattern: "/login/required/",
		Form:    loginFactory(c, nil, nil),
		Config:  Config{RequireLogin: LoginRequired},
	}, Deps{}))
	require.NoError(t, Mount(r, Route{
		Pattern: "/login/required/with/url/",
		Form:    loginFactory(c, nil, nil),
		Config:  Config{RequireLogin: LoginRequired, LoginURL: "/mylogin/"},
	}, Deps{}))
	client := fhtest.New(t, r)

	client.Get("/login/required/").Do().Redirect("/accounts/login/?next=/login/required/")
	client.Post("/login/required/").Form(goodLogin).Do().Redirect("/accounts/login/?next=/login/required/")
	client.Get("/login/required/with/url/").Do().Redirect("/mylogin/?next=/login/required/with/url/")

	client.Get("/login/required/").AJAX().Do().
		StatusOK().
		ContentTypeJSON().
		BodyEquals(`{"redirect":"/accounts/login/?next=/login/required/","success":false}`)

	assert.Zero(t, c.n)
}

func TestLoginRequired_DepsLoginURLAndAuthenticated(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{
		Pattern: "/secret/",
		Form:    loginFactory(c, "/done/", nil),
		Config:  Config{RequireLogin: LoginRequired},
	}, Deps{LoginURL: "/signin/?src=form", Auth: auth.APIKey{Key: "k"}})

	client.Get("/secret/").Do().Redirect("/signin/?src=form&next=/secret/")
	client.Post("/secret/").Query("api_key", "k").Form(goodLogin).Do().
		StatusOK().
		JSONPathEquals("success", true).
		JSONPathEquals("response", "/done/")
	assert.Equal(t, 1, c.n)
}

func TestLoginPredicate(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{
		Pattern: "/p/",
		Form:    loginFactory(c, nil, nil),
		Config: Config{RequireLogin: LoginPredicate(func(r *http.Request) bool {
			return r.Header.Get("X-Guest") == "1"
		})},
	}, Deps{Auth: auth.Func(func(*http.Request) bool { return true })})

	client.Get("/p/").Header("X-Guest", "1").Do().Redirect("/accounts/login/?next=/p/")
	client.Get("/p/").Do().StatusOK()
}

func TestLoginOr404(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{
		Pattern: "/hidden/",
		Form:    loginFactory(c, nil, nil),
		Config:  Config{RequireLogin: LoginOr404},
	}, Deps{})

	client.Get("/hidden/").Do().StatusNotFound()
	client.Post("/hidden/").Form(goodLogin).Do().StatusNotFound()
	client.Get("/hidden/").AJAX().Do().StatusNotFound()
	assert.Zero(t, c.n)
}

func TestPostOnly(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{
		Pattern: "/post/",
		Form:    loginFactory(c, nil, nil),
		Config:  Config{PostOnly: true},
	}, Deps{})

	client.Get("/post/").Do().StatusNotFound().JSONPathEquals("error", "not_found")
	client.Get("/post/").AJAX().Do().StatusNotFound()
	client.Post("/post/").Form(goodLogin).Do().StatusOK().JSONPathEquals("success", true)
	assert.Equal(t, 1, c.n)
}

func TestEmptyPost_RequiredErrorsOnly(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{Pattern: "/login/", Form: loginFactory(c, nil, nil)}, Deps{})

	resp := client.Post("/login/").Form(url.Values{}).Do().StatusOK()
	resp.BodyEquals(`{"errors":{"password":["This field is required."],"username":["This field is required."]},"success":false}`)
	assert.False(t, resp.HasJSONPath("errors.remember_me"))
	assert.Zero(t, c.n)
}

func TestSave_CalledOncePerValidPost(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{Pattern: "/login/", Form: loginFactory(c, map[string]any{"id": 7}, nil)}, Deps{})

	client.Post("/login/").Form(goodLogin).Do().
		StatusOK().
		BodyEquals(`{"response":{"id":7},"success":true}`)
	assert.Equal(t, 1, c.n)

	client.Post("/login/").Form(goodLogin).Do().StatusOK()
	assert.Equal(t, 2, c.n)
}

func TestValidateOnly(t *testing.T) {
	c := &counter{}
	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{Pattern: "/login/", Form: loginFactory(c, nil, nil)}, Deps{}))
	require.NoError(t, Mount(r, Route{Pattern: "/check/", Form: loginFactory(c, nil, nil), Config: Config{ValidateOnly: true}}, Deps{}))
	client := fhtest.New(t, r)

	client.Post("/check/").Form(goodLogin).Do().
		StatusOK().
		BodyEquals(`{"errors":{},"valid":true}`)
	client.Post("/login/").Query("validate_only", "true").Form(goodLogin).Do().
		BodyEquals(`{"errors":{},"valid":true}`)

	client.Post("/check/").Form(url.Values{"username": {"jack"}}).Do().
		StatusOK().
		JSONPathEquals("valid", false).
		JSONPathEquals("errors.password", []string{"This field is required."})

	client.Post("/check/").Query("field", "password").Form(url.Values{"username": {"jack"}}).Do().
		BodyEquals(`{"errors":"This field is required.","valid":false}`)
	client.Post("/check/").Query("field", "username").Form(url.Values{"username": {"jack"}}).Do().
		BodyEquals(`{"errors":"","valid":true}`)

	assert.Zero(t, c.n, "validate-only never saves")
}

func TestMetadata_Idempotent(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{Pattern: "/login/", Form: loginFactory(c, nil, nil), Config: Config{AJAX: true}}, Deps{})

	first := client.Get("/login/").Do().StatusOK().ContentTypeJSON()
	second := client.Get("/login/").Do().StatusOK()
	assert.Equal(t, first.Body, second.Body)
	first.BodyEquals(`{"password":{"help_text":"","label":"Password","required":true},` +
		`"remember_me":{"help_text":"","label":"Remember Me","required":false},` +
		`"username":{"help_text":"","label":"Username","required":true}}`)
	assert.Zero(t, c.n)
}

func TestTemplateRoute(t *testing.T) {
	c := &counter{}
	rend := &stubRenderer{}
	client := serve(t, Route{
		Pattern: "/login/with/",
		Form:    loginFactory(c, nil, nil),
		Config:  Config{Template: "login.gohtml"},
	}, Deps{Renderer: rend})

	client.Get("/login/with/").Do().
		StatusOK().
		BodyEquals("login.gohtml form:bound=false errors=0")

	client.Post("/login/with/").Form(url.Values{"username": {"jack"}}).Do().
		StatusOK().
		BodyEquals("login.gohtml form:bound=true errors=1")

	client.Post("/login/with/").Form(goodLogin).Do().Redirect("/")

	client.Post("/login/with/").Query("json", "true").Form(url.Values{}).Do().
		StatusOK().
		JSONPathEquals("success", false).
		JSONPathEquals("errors.username", []string{"This field is required."})

	client.Get("/login/with/").Query("json", "true").Do().
		StatusOK().
		JSONPathEquals("username.label", "Username").
		JSONPathEquals("username.required", true)

	assert.Equal(t, 1, c.n)
	assert.Len(t, rend.calls, 2)
}

func TestTemplateRoute_SaveResultAndNext(t *testing.T) {
	c := &counter{}
	r := chi.NewRouter()
	deps := Deps{Renderer: &stubRenderer{}}
	require.NoError(t, Mount(r, Route{Pattern: "/result/", Form: loginFactory(c, "/john/", nil), Config: Config{Template: "t"}}, deps))
	require.NoError(t, Mount(r, Route{Pattern: "/next/", Form: loginFactory(c, "/john/", nil), Config: Config{Template: "t", Next: "/static/"}}, deps))
	require.NoError(t, Mount(r, Route{Pattern: "/json/", Form: loginFactory(c, "/john/", nil)}, deps))
	client := fhtest.New(t, r)

	client.Post("/result/").Form(goodLogin).Do().Redirect("/john/")
	client.Post("/next/").Form(goodLogin).Do().Redirect("/static/")

	client.Post("/result/").Query("next", "/a/../b/?x=1").Form(goodLogin).Do().Redirect("/b/?x=1")
	client.Post("/result/").Query("next", "//evil.example/").Form(goodLogin).Do().Redirect("/")
	client.Post("/result/").Query("next", "https://evil.example/").Form(goodLogin).Do().Redirect("/")

	// Never back to the login page.
	client.Post("/result/").Query("next", "/accounts/login/").Form(goodLogin).Do().Redirect("/")
	client.Post("/result/").Query("next", "/accounts/login").Form(goodLogin).Do().Redirect("/")

	// Without a template a next parameter is ignored.
	client.Post("/json/").Query("next", "/b/").Form(goodLogin).Do().
		StatusOK().
		JSONPathEquals("response", "/john/")

	// AJAX wins over next.
	client.Post("/next/").AJAX().Form(goodLogin).Do().
		BodyEquals(`{"response":"/john/","success":true}`)
}

type responseForm struct {
	*form.Base
}

func (f *responseForm) Save(context.Context) (any, error) {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "hi %s", f.String("username"))
	}), nil
}

func TestSave_ReturnsHandler(t *testing.T) {
	client := serve(t, Route{
		Pattern: "/with/http/",
		Form: func() form.Form {
			return &responseForm{Base: form.New(form.TextField("username", ""))}
		},
	}, Deps{})

	client.Post("/with/http/").Form(url.Values{"username": {"john"}}).Do().
		StatusOK().
		BodyEquals("hi john")
	client.Post("/with/http/").AJAX().Form(url.Values{"username": {"john"}}).Do().
		BodyEquals("hi john")
}

type pageHandler struct{ body string }

func (p *pageHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, p.body)
}

func TestSave_NilHandler(t *testing.T) {
	c := &counter{}
	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{Pattern: "/func/", Form: loginFactory(c, http.HandlerFunc(nil), nil)}, Deps{}))
	require.NoError(t, Mount(r, Route{Pattern: "/ptr/", Form: loginFactory(c, (*pageHandler)(nil), nil), Config: Config{Template: "t"}},
		Deps{Renderer: &stubRenderer{}}))
	client := fhtest.New(t, r)

	client.Post("/func/").Form(goodLogin).Do().
		StatusOK().
		BodyEquals(`{"response":null,"success":true}`)
	client.Post("/ptr/").Form(goodLogin).Do().Redirect("/")
	assert.Equal(t, 2, c.n)
}

func TestRenderFailure_RecordsError(t *testing.T) {
	h, err := New(Route{
		Name:   "broken",
		Form:   loginFactory(&counter{}, nil, nil),
		Config: Config{Template: "login.gohtml"},
	}, Deps{Renderer: failingRenderer{}})
	require.NoError(t, err)

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader("username=jack")),
	} {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		outcome := h.write(rec, req, h.Decide(req))
		assert.Equal(t, OutcomeError, outcome, req.Method)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, req.Method)
	}
}

func TestSave_Errors(t *testing.T) {
	c := &counter{}
	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{Pattern: "/conflict/", Form: loginFactory(c, nil, fherrors.New("taken", "username taken", http.StatusConflict))}, Deps{}))
	require.NoError(t, Mount(r, Route{Pattern: "/boom/", Form: loginFactory(c, nil, errors.New("db down"))}, Deps{}))
	client := fhtest.New(t, r)

	client.Post("/conflict/").Form(goodLogin).Do().
		Status(http.StatusConflict).
		JSONPathEquals("error", "taken")
	client.Post("/boom/").Form(goodLogin).Do().
		Status(http.StatusInternalServerError).
		JSONPathEquals("error", "internal_error").
		BodyNotContains("db down")
}

type opaque struct{ ID int }

func TestSerializationFailure(t *testing.T) {
	c := &counter{}
	h, err := New(Route{Name: "opaque", Form: loginFactory(c, opaque{ID: 1}, nil)}, Deps{})
	require.NoError(t, err)

	resp := h.Decide(fhtest.New(t, h).Post("/").Form(goodLogin).Build())
	assert.True(t, resp.IsJSON())
	assert.Equal(t, OutcomeSavedJSON, resp.Outcome)

	fhtest.New(t, h).Post("/").Form(goodLogin).Do().
		Status(http.StatusInternalServerError).
		JSONPathEquals("error", "internal_error")
	assert.Equal(t, 2, c.n)
}

type jsonerForm struct {
	loginForm
}

func (f *jsonerForm) ToJSON(result any) any {
	return map[string]any{"user": result}
}

func TestSave_ToJSON(t *testing.T) {
	c := &counter{}
	client := serve(t, Route{
		Pattern: "/j/",
		Form: func() form.Form {
			return &jsonerForm{loginForm: *loginFactory(c, "jack", nil)().(*loginForm)}
		},
	}, Deps{})

	client.Post("/j/").Form(goodLogin).Do().
		BodyEquals(`{"response":{"user":"jack"},"success":true}`)
}

type initForm struct {
	*form.Base
	args    map[string]string
	outcome form.InitOutcome
	saves   *counter
}

func (f *initForm) Init(ctx context.Context, args map[string]string) form.InitOutcome {
	f.args = args
	if f.outcome.IsContinue() {
		f.Initialize(map[string]any{"username": args["username"]})
	}
	return f.outcome
}

func (f *initForm) Save(context.Context) (any, error) {
	f.saves.n++
	return f.args, nil
}

func TestInit(t *testing.T) {
	c := &counter{}
	rend := &stubRenderer{}
	initFactory := func(out form.InitOutcome) form.Factory {
		return func() form.Form {
			return &initForm{Base: form.New(form.TextField("username", "")), outcome: out, saves: c}
		}
	}
	teapot := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })

	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{Pattern: "/data/{username}/", Form: initFactory(form.Continue()), Config: Config{InitArgs: map[string]string{"username": "static", "site": "main"}}}, Deps{Renderer: rend}))
	require.NoError(t, Mount(r, Route{Pattern: "/respond/", Form: initFactory(form.RespondWith(teapot))}, Deps{}))
	require.NoError(t, Mount(r, Route{Pattern: "/missing/", Form: initFactory(form.NotFound())}, Deps{}))
	client := fhtest.New(t, r)

	client.Post("/data/jack/").Form(url.Values{"username": {"jill"}}).Do().
		BodyEquals(`{"response":{"site":"main","username":"jack"},"success":true}`)
	client.Get("/data/jack/").AJAX().Do().
		JSONPathEquals("username.initial", "jack")

	client.Get("/respond/").Do().Status(http.StatusTeapot)
	client.Post("/respond/").Form(url.Values{"username": {"x"}}).Do().Status(http.StatusTeapot)
	client.Get("/missing/").Do().StatusNotFound()
	client.Post("/missing/").Form(url.Values{"username": {"x"}}).Do().StatusNotFound()

	assert.Equal(t, 1, c.n)
}

func TestMultipleForms(t *testing.T) {
	c1, c2 := &counter{}, &counter{}
	rend := &stubRenderer{}
	client := serve(t, Route{
		Pattern: "/multi/",
		Forms: map[string]form.Factory{
			"login":  loginFactory(c1, nil, nil),
			"signup": loginFactory(c2, nil, nil),
		},
		Config: Config{Template: "multi.gohtml"},
	}, Deps{Renderer: rend})

	client.Get("/multi/").Do().
		StatusOK().
		BodyEquals("multi.gohtml login:bound=false errors=0 signup:bound=false errors=0")

	client.Post("/multi/").Form(url.Values{"fh_form": {"signup"}}).Do().
		BodyEquals("multi.gohtml login:bound=false errors=0 signup:bound=true errors=2")

	signup := url.Values{"fh_form": {"signup"}, "username": {"jack"}, "password": {"x"}}
	client.Post("/multi/").Form(signup).Do().Redirect("/")
	assert.Equal(t, 0, c1.n)
	assert.Equal(t, 1, c2.n)

	client.Post("/multi/").Form(goodLogin).Do().StatusNotFound()
	client.Get("/multi/").AJAX().Do().StatusNotFound()
	client.Get("/multi/").AJAX().Query("fh_form", "login").Do().
		StatusOK().
		JSONPathEquals("username.label", "Username")
}

type requestForm struct {
	*form.Base
	got *http.Request
}

func (f *requestForm) SetRequest(r *http.Request) {
	f.got = r
	f.Base.SetRequest(r)
}

func (f *requestForm) Save(context.Context) (any, error) {
	return f.got != nil, nil
}

func TestPassRequest(t *testing.T) {
	factory := func() form.Form { return &requestForm{Base: form.New(form.TextField("username", ""))} }
	r := chi.NewRouter()
	require.NoError(t, Mount(r, Route{Pattern: "/pass/", Form: factory}, Deps{}))
	require.NoError(t, Mount(r, Route{Pattern: "/omit/", Form: factory, Config: Config{OmitRequest: true}}, Deps{}))
	client := fhtest.New(t, r)

	data := url.Values{"username": {"jack"}}
	client.Post("/pass/").Form(data).Do().JSONPathEquals("response", true)
	client.Post("/omit/").Form(data).Do().JSONPathEquals("response", false)
}

func TestParseForm(t *testing.T) {
	c := &counter{}
	limit := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, 1024)
			next.ServeHTTP(w, r)
		})
	}
	client := serve(t, Route{
		Pattern:    "/login/",
		Form:       loginFactory(c, nil, nil),
		Middleware: []func(http.Handler) http.Handler{limit},
	}, Deps{})

	client.Post("/login/").Multipart(goodLogin).Do().
		StatusOK().
		JSONPathEquals("success", true)

	client.Post("/login/").Form(url.Values{"username": {strings.Repeat("j", 4000)}}).Do().
		Status(http.StatusRequestEntityTooLarge)

	client.Post("/login/").Header("Content-Type", "application/x-www-form-urlencoded").
		BodyString("username=%zz").Do().
		Status(http.StatusBadRequest)

	assert.Equal(t, 1, c.n)
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	client := serve(t, Route{
		Pattern:    "/login/",
		Form:       loginFactory(&counter{}, nil, nil),
		Middleware: []func(http.Handler) http.Handler{mw("outer"), mw("inner")},
	}, Deps{})

	client.Get("/login/").Do().StatusOK()
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestRegistry(t *testing.T) {
	c := &counter{}
	reg := NewRegistry(chi.NewRouter(), Deps{})
	require.NoError(t, reg.Mount(Route{Name: "login", Pattern: "/login/", Form: loginFactory(c, nil, nil)}))
	require.NoError(t, reg.Mount(Route{Name: "with_data", Pattern: "/with/data/{username}/", Form: loginFactory(c, nil, nil)}))
	require.NoError(t, reg.Mount(Route{Name: "by_id", Pattern: "/item/{id:[0-9]+}/", Form: loginFactory(c, nil, nil)}))

	err := reg.Mount(Route{Name: "login", Pattern: "/other/", Form: loginFactory(c, nil, nil)})
	var ce *ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Contains(t, err.Error(), "duplicate route name")

	p, err := reg.Reverse("login", nil)
	require.NoError(t, err)
	assert.Equal(t, "/login/", p)

	p, err = reg.Reverse("with_data", map[string]string{"username": "jack smith"})
	require.NoError(t, err)
	assert.Equal(t, "/with/data/jack%20smith/", p)

	p, err = reg.Reverse("by_id", map[string]string{"id": "42"})
	require.NoError(t, err)
	assert.Equal(t, "/item/42/", p)

	_, err = reg.Reverse("with_data", nil)
	assert.ErrorContains(t, err, "missing params username")
	_, err = reg.Reverse("nope", nil)
	assert.Error(t, err)

	names := []string{}
	for _, r := range reg.Routes() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"login", "with_data", "by_id"}, names)

	assert.Panics(t, func() { reg.MustMount(Route{Name: "login", Pattern: "/again/", Form: loginFactory(c, nil, nil)}) })
}

func TestLoginRequirement_String(t *testing.T) {
	assert.Equal(t, "optional", LoginOptional.String())
	assert.Equal(t, "required", LoginRequired.String())
	assert.Equal(t, "or-404", LoginOr404.String())
	assert.Equal(t, "predicate", LoginPredicate(func(*http.Request) bool { return false }).String())
	assert.True(t, Config{}.PassRequest())
}
