// Package fhurl serves forms over HTTP: one handler per route renders the
// form, describes it to AJAX clients, validates submissions and calls the
// form's Save, choosing between HTML, redirects and JSON replies.
package fhurl

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dalemusser/fhurl/auth"
	fherrors "github.com/dalemusser/fhurl/errors"
	"github.com/dalemusser/fhurl/form"
	"github.com/dalemusser/fhurl/metrics"
	"github.com/dalemusser/fhurl/templates"
	"github.com/dalemusser/fhurl/urlutil"
)

// multipartMemory is how much of a multipart body is held in memory; the
// rest spills to temp files. The body size itself is capped upstream.
const multipartMemory = 8 << 20

// Deps are the services a handler needs, shared by all routes.
type Deps struct {
	// Auth decides login-required routes. Nil means nobody is logged in.
	Auth auth.Authenticator
	// Renderer is required by routes with a Template.
	Renderer templates.Renderer
	// LoginURL is the default login page (config login_url).
	LoginURL string
	Logger   *zap.Logger
}

// Handler dispatches requests for one route.
type Handler struct {
	name      string
	factory   form.Factory
	factories map[string]form.Factory
	cfg       Config
	deps      Deps
	logger    *zap.Logger
}

// New validates route and returns its handler. Deps defaults are resolved
// here, once.
func New(route Route, deps Deps) (*Handler, error) {
	fail := func(reason string) error {
		return &ConfigurationError{Route: route.label(), Reason: reason}
	}

	if err := route.Config.Validate(); err != nil {
		var ce *ConfigurationError
		if errors.As(err, &ce) {
			ce.Route = route.label()
		}
		return nil, err
	}
	switch {
	case route.Form == nil && len(route.Forms) == 0:
		return nil, fail("no form")
	case route.Form != nil && len(route.Forms) > 0:
		return nil, fail("set either Form or Forms, not both")
	}
	for key, f := range route.Forms {
		if f == nil {
			return nil, fail(fmt.Sprintf("form %q has a nil factory", key))
		}
	}
	if route.Config.Template != "" {
		if deps.Renderer == nil {
			return nil, fail("template set but no renderer")
		}
		if l, ok := deps.Renderer.(templates.Lookup); ok && !l.Has(route.Config.Template) {
			return nil, fail(fmt.Sprintf("template %q not found", route.Config.Template))
		}
	}

	cfg := route.Config
	if cfg.LoginURL == "" {
		cfg.LoginURL = deps.LoginURL
	}
	if cfg.LoginURL == "" {
		cfg.LoginURL = DefaultLoginURL
	}
	if deps.Auth == nil {
		deps.Auth = auth.Nobody
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Handler{
		name:      route.Name,
		factory:   route.Form,
		factories: route.Forms,
		cfg:       cfg,
		deps:      deps,
		logger:    deps.Logger.With(zap.String("route", route.label())),
	}, nil
}

// Config returns the resolved route configuration.
func (h *Handler) Config() Config { return h.cfg }

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := h.Decide(r)
	outcome := h.write(w, r, resp)

	metrics.RecordDispatch(h.name, outcome)
	h.logger.Debug("form dispatch",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("outcome", outcome))
}

// request is the per-dispatch view of the request parameters.
type request struct {
	*http.Request
	ajax         bool
	validateOnly bool
	next         string
}

func (h *Handler) newRequest(r *http.Request) *request {
	req := &request{
		Request:      r,
		ajax:         h.cfg.AJAX || r.Header.Get("X-Requested-With") == "XMLHttpRequest" || r.Form.Get("json") == "true",
		validateOnly: h.cfg.ValidateOnly || r.Form.Get("validate_only") == "true",
		next:         h.cfg.Next,
	}
	// A request-supplied next only applies where a static one could.
	if v, ok := r.Form["next"]; ok && h.cfg.Template != "" && len(v) > 0 {
		req.next = urlutil.SafeNextExcluding(v[0], "/", h.cfg.LoginURL)
	}
	return req
}

// Decide runs the dispatch procedure and returns what to send. Only the
// form's Save (and Init) have side effects.
func (h *Handler) Decide(r *http.Request) Response {
	if err := parseForm(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errorResponse(OutcomeError, fherrors.TooLarge("request body too large"))
		}
		return errorResponse(OutcomeError, fherrors.BadRequest("malformed form data"))
	}
	req := h.newRequest(r)

	if resp, stop := h.checkLogin(req); stop {
		return resp
	}
	if h.cfg.PostOnly && r.Method != http.MethodPost {
		return notFound("only post allowed")
	}

	isGet := r.Method == http.MethodGet
	needActive := !(isGet && !req.ajax && h.cfg.Template != "")
	forms, active, resp, stop := h.buildForms(req, needActive)
	if stop {
		return resp
	}

	if isGet && req.ajax {
		return jsonResponse(OutcomeMetadata, form.Describe(active))
	}
	if isGet && h.cfg.Template != "" {
		return renderResponse(h.cfg.Template, h.templateData(req, forms))
	}

	active.Bind(r.Form)
	if !active.Validate(r.Context()) {
		return h.invalid(req, forms, active)
	}
	if req.validateOnly {
		return jsonResponse(OutcomeValidated, map[string]any{"valid": true, "errors": map[string]any{}})
	}
	return h.save(req, active)
}

func parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		err := r.ParseMultipartForm(multipartMemory)
		if errors.Is(err, http.ErrNotMultipart) {
			return r.ParseForm()
		}
		return err
	}
	return r.ParseForm()
}

func (h *Handler) checkLogin(req *request) (Response, bool) {
	var required bool
	switch h.cfg.RequireLogin.kind {
	case loginOptional:
		return Response{}, false
	case loginPredicate:
		required = h.cfg.RequireLogin.pred(req.Request)
	case loginRequired:
		required = !h.deps.Auth.Authenticated(req.Request)
	case loginOr404:
		if !h.deps.Auth.Authenticated(req.Request) {
			return notFound("login required"), true
		}
		return Response{}, false
	}
	if !required {
		return Response{}, false
	}

	target := urlutil.WithNext(h.cfg.LoginURL, req.URL.EscapedPath())
	if req.ajax {
		return jsonResponse(OutcomeLoginRedirect, map[string]any{"success": false, "redirect": target}), true
	}
	return redirectResponse(OutcomeLoginRedirect, target), true
}

// buildForms constructs every form of the route, hands them the request
// and runs their Init hooks in key order. The first hook that does not
// continue ends the dispatch. With needActive, a multi-form route must
// name its active form with fh_form.
func (h *Handler) buildForms(req *request, needActive bool) (map[string]form.Form, form.Form, Response, bool) {
	forms := make(map[string]form.Form)
	var active form.Form

	if h.factory != nil {
		active = form.Adopt(h.factory())
		forms["form"] = active
	} else {
		for key, factory := range h.factories {
			forms[key] = form.Adopt(factory())
		}
		if sel := req.Form.Get("fh_form"); sel != "" {
			active = forms[sel]
		}
		if needActive && active == nil {
			return nil, nil, notFound("unknown form"), true
		}
	}

	keys := make([]string, 0, len(forms))
	for k := range forms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := h.initArgs(req.Request)
	for _, k := range keys {
		f := forms[k]
		if rr, ok := f.(form.RequestReceiver); ok && h.cfg.PassRequest() {
			rr.SetRequest(req.Request)
		}
		init, ok := f.(form.Initializer)
		if !ok {
			continue
		}
		out := init.Init(req.Context(), args)
		switch {
		case out.IsNotFound():
			return nil, nil, notFound("not found"), true
		case !out.IsContinue():
			return nil, nil, handlerResponse(OutcomeInitResponse, out.Response()), true
		}
	}
	return forms, active, Response{}, false
}

// initArgs merges the route's static args with chi URL parameters.
func (h *Handler) initArgs(r *http.Request) map[string]string {
	args := make(map[string]string, len(h.cfg.InitArgs))
	for k, v := range h.cfg.InitArgs {
		args[k] = v
	}
	if rc := chi.RouteContext(r.Context()); rc != nil {
		for i, k := range rc.URLParams.Keys {
			if k == "*" || i >= len(rc.URLParams.Values) {
				continue
			}
			args[k] = rc.URLParams.Values[i]
		}
	}
	return args
}

func (h *Handler) templateData(req *request, forms map[string]form.Form) map[string]any {
	data := make(map[string]any, len(forms)+1)
	for k, f := range forms {
		data[k] = f
	}
	data["request"] = req.Request
	return data
}

func (h *Handler) invalid(req *request, forms map[string]form.Form, active form.Form) Response {
	errs := active.Errors()

	if req.validateOnly {
		if field, ok := req.Form["field"]; ok && len(field) > 0 {
			joined := strings.Join(errs[field[0]], "")
			return jsonResponse(OutcomeInvalid, map[string]any{"errors": joined, "valid": joined == ""})
		}
		return jsonResponse(OutcomeInvalid, map[string]any{"errors": errs, "valid": len(errs) == 0})
	}
	if req.ajax || h.cfg.Template == "" {
		return jsonResponse(OutcomeInvalid, map[string]any{"success": false, "errors": errs})
	}

	resp := renderResponse(h.cfg.Template, h.templateData(req, forms))
	resp.Outcome = OutcomeInvalid
	return resp
}

func (h *Handler) save(req *request, active form.Form) Response {
	result, err := active.Save(req.Context())
	if err != nil {
		return errorResponse(OutcomeError, err)
	}

	if hr, ok := result.(http.Handler); ok {
		if isNil(hr) {
			result = nil
		} else {
			return handlerResponse(OutcomeSavedResponse, hr)
		}
	}
	if req.ajax {
		return jsonResponse(OutcomeSavedJSON, map[string]any{"success": true, "response": toJSON(active, result)})
	}
	if req.next != "" {
		return redirectResponse(OutcomeSavedRedirect, req.next)
	}
	if h.cfg.Template != "" {
		loc := "/"
		if result != nil {
			if s := fmt.Sprint(result); s != "" {
				loc = s
			}
		}
		return redirectResponse(OutcomeSavedRedirect, loc)
	}
	return jsonResponse(OutcomeSavedJSON, map[string]any{"success": true, "response": toJSON(active, result)})
}

// isNil catches handlers stored as typed nils, such as a nil *T or a nil
// http.HandlerFunc, which compare unequal to nil.
func isNil(h http.Handler) bool {
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func toJSON(f form.Form, result any) any {
	if j, ok := f.(form.JSONer); ok {
		return j.ToJSON(result)
	}
	return result
}
