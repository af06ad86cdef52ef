// form/form.go
package form

import (
	"context"
	"net/http"
	"net/url"
)

// Form is what a form handler dispatches to. Embedding *Base supplies
// everything except Save.
type Form interface {
	Fields() []Field
	Bind(data url.Values)
	IsBound() bool
	Validate(ctx context.Context) bool
	Errors() map[string][]string
	// Save performs the form's side effect after successful validation.
	// The result is either an http.Handler written as-is, a URL string
	// for template routes, or a value serialized into the JSON reply.
	Save(ctx context.Context) (any, error)
}

// Factory constructs a fresh Form for each request.
type Factory func() Form

// Initializer is implemented by forms that take route arguments before
// binding (URL parameters merged with the route's static init args).
type Initializer interface {
	Init(ctx context.Context, args map[string]string) InitOutcome
}

// RequestReceiver is implemented by forms that want the current request.
// *Base implements it.
type RequestReceiver interface {
	SetRequest(r *http.Request)
}

// JSONer converts a save result into the value sent to AJAX clients.
type JSONer interface {
	ToJSON(result any) any
}

// Cleaner is a form-level validation hook run after every field has been
// converted. It reports problems with Base.AddError.
type Cleaner interface {
	Clean(ctx context.Context, b *Base)
}

type outcomeKind int

const (
	outcomeContinue outcomeKind = iota
	outcomeRespond
	outcomeNotFound
)

// InitOutcome is the result of an Init hook: keep going, answer with a
// ready response, or answer 404.
type InitOutcome struct {
	kind    outcomeKind
	handler http.Handler
}

// Continue lets dispatch proceed.
func Continue() InitOutcome { return InitOutcome{kind: outcomeContinue} }

// RespondWith stops dispatch and writes h. A nil h is treated as Continue.
func RespondWith(h http.Handler) InitOutcome {
	if h == nil {
		return Continue()
	}
	return InitOutcome{kind: outcomeRespond, handler: h}
}

// NotFound stops dispatch with a 404.
func NotFound() InitOutcome { return InitOutcome{kind: outcomeNotFound} }

// IsContinue reports whether dispatch should proceed.
func (o InitOutcome) IsContinue() bool { return o.kind == outcomeContinue }

// IsNotFound reports whether the hook asked for a 404.
func (o InitOutcome) IsNotFound() bool { return o.kind == outcomeNotFound }

// Response returns the handler given to RespondWith, or nil.
func (o InitOutcome) Response() http.Handler { return o.handler }

type ownerSetter interface {
	SetOwner(owner any)
}

// Adopt links a form to its embedded *Base so that Validate can reach the
// form's own hooks (Clean). The form handler calls it for every form it
// constructs; call it yourself when validating forms by hand.
func Adopt(f Form) Form {
	if o, ok := f.(ownerSetter); ok {
		o.SetOwner(f)
	}
	return f
}
