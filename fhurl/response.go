// fhurl/response.go
package fhurl

import (
	"net/http"

	"go.uber.org/zap"

	fherrors "github.com/dalemusser/fhurl/errors"
	"github.com/dalemusser/fhurl/httputil"
	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/serialize"
	"github.com/dalemusser/fhurl/templates"
)

// Dispatch outcomes, used as the metrics label and in debug logs.
const (
	OutcomeLoginRedirect = "login_redirect"
	OutcomeNotFound      = "not_found"
	OutcomeInitResponse  = "init_response"
	OutcomeMetadata      = "metadata"
	OutcomeForm          = "form"
	OutcomeInvalid       = "invalid"
	OutcomeValidated     = "validated"
	OutcomeSavedResponse = "saved_response"
	OutcomeSavedJSON     = "saved_json"
	OutcomeSavedRedirect = "saved_redirect"
	OutcomeError         = "error"
)

type responseKind int

const (
	respJSON responseKind = iota
	respRedirect
	respRender
	respHandler
	respError
)

// Response is what a dispatch decided to send, before anything is written.
type Response struct {
	kind     responseKind
	Outcome  string
	Body     any
	Location string
	Template string
	Data     map[string]any
	Handler  http.Handler
	Err      error
}

// IsJSON reports a JSON reply; Body holds the value to serialize.
func (r Response) IsJSON() bool { return r.kind == respJSON }

// IsRedirect reports a 302 to Location.
func (r Response) IsRedirect() bool { return r.kind == respRedirect }

// IsRender reports a template render of Template with Data.
func (r Response) IsRender() bool { return r.kind == respRender }

// IsHandler reports a ready response from an init hook or save.
func (r Response) IsHandler() bool { return r.kind == respHandler }

// IsError reports an error reply; Err is an *errors.Error or a cause
// that becomes a 500.
func (r Response) IsError() bool { return r.kind == respError }

func jsonResponse(outcome string, body any) Response {
	return Response{kind: respJSON, Outcome: outcome, Body: body}
}

func redirectResponse(outcome, location string) Response {
	return Response{kind: respRedirect, Outcome: outcome, Location: location}
}

func renderResponse(name string, data map[string]any) Response {
	return Response{kind: respRender, Outcome: OutcomeForm, Template: name, Data: data}
}

func handlerResponse(outcome string, h http.Handler) Response {
	return Response{kind: respHandler, Outcome: outcome, Handler: h}
}

func errorResponse(outcome string, err error) Response {
	return Response{kind: respError, Outcome: outcome, Err: err}
}

func notFound(msg string) Response {
	return errorResponse(OutcomeNotFound, fherrors.NotFound(msg))
}

// write sends resp and returns the outcome actually produced, which
// differs from resp.Outcome when serialization or rendering fails.
func (h *Handler) write(w http.ResponseWriter, r *http.Request, resp Response) string {
	switch resp.kind {
	case respHandler:
		resp.Handler.ServeHTTP(w, r)

	case respRedirect:
		http.Redirect(w, r, resp.Location, http.StatusFound)

	case respRender:
		if err := templates.RenderWith(w, r, h.deps.Renderer, h.logger, http.StatusOK, resp.Template, resp.Data); err != nil {
			return OutcomeError
		}

	case respJSON:
		body, err := serialize.Marshal(resp.Body, serialize.WithLocalizer(i18n.FromContext(r.Context())))
		if err != nil {
			h.logger.Error("response serialization failed",
				zap.String("route", h.name),
				zap.String("path", r.URL.Path),
				zap.Error(err))
			fherrors.Write(w, fherrors.Wrap(err, fherrors.CodeInternalError, "response could not be encoded", http.StatusInternalServerError))
			return OutcomeError
		}
		httputil.WriteJSONBytes(w, http.StatusOK, body)

	case respError:
		fherrors.WriteWithLogger(w, r, resp.Err, h.logger)
	}
	return resp.Outcome
}
