// form/base.go
package form

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/validate"
)

// NonFieldKey is the Errors key for problems not tied to one field.
const NonFieldKey = "__all__"

var defaultValidator = validate.New()

// DefaultValidator returns the validator shared by forms that were not
// given one. Register custom rules on it at startup.
func DefaultValidator() *validate.Validator { return defaultValidator }

// Base holds the state of one form instance for one request. Concrete
// forms embed *Base and add Save (and optionally Init, Clean, ToJSON).
type Base struct {
	fields    []Field
	index     map[string]int
	initial   map[string]any
	data      url.Values
	bound     bool
	validated bool
	errors    map[string][]string
	cleaned   map[string]any
	req       *http.Request
	validator *validate.Validator
	self      any
}

// New returns an unbound form with the given fields, in order.
func New(fields ...Field) *Base {
	b := &Base{
		fields:    append([]Field(nil), fields...),
		index:     make(map[string]int, len(fields)),
		initial:   make(map[string]any),
		errors:    make(map[string][]string),
		cleaned:   make(map[string]any),
		validator: defaultValidator,
	}
	for i, f := range b.fields {
		b.index[f.Name] = i
	}
	return b
}

// SetValidator replaces the rule validator used by Validate.
func (b *Base) SetValidator(v *validate.Validator) {
	if v != nil {
		b.validator = v
	}
}

// SetOwner registers the concrete form embedding b, so Validate can find
// its Clean hook.
func (b *Base) SetOwner(owner any) { b.self = owner }

// Fields returns a copy of the field list.
func (b *Base) Fields() []Field { return append([]Field(nil), b.fields...) }

// Field returns the named field.
func (b *Base) Field(name string) (Field, bool) {
	i, ok := b.index[name]
	if !ok {
		return Field{}, false
	}
	return b.fields[i], true
}

// SetRequest implements RequestReceiver.
func (b *Base) SetRequest(r *http.Request) { b.req = r }

// Request returns the request handed to the form, or nil.
func (b *Base) Request() *http.Request { return b.req }

// Bind attaches submitted data. A nil map still binds the form, so an
// empty POST reports every required field.
func (b *Base) Bind(data url.Values) {
	if data == nil {
		data = url.Values{}
	}
	b.data = data
	b.bound = true
	b.validated = false
}

// IsBound reports whether Bind has been called.
func (b *Base) IsBound() bool { return b.bound }

// Data returns the submitted values.
func (b *Base) Data() url.Values { return b.data }

// Initial returns the form-level initial values.
func (b *Base) Initial() map[string]any { return b.initial }

// SetInitial sets a form-level initial value.
func (b *Base) SetInitial(name string, v any) { b.initial[name] = v }

// Initialize sets field-level initial values. Unknown names are ignored.
func (b *Base) Initialize(kv map[string]any) {
	for name, v := range kv {
		if i, ok := b.index[name]; ok {
			b.fields[i].Initial = v
		}
	}
}

// InitialValue is the value an unbound form shows for name: the field's
// own initial when set, otherwise the form-level one.
func (b *Base) InitialValue(name string) any {
	if i, ok := b.index[name]; ok && !isZero(b.fields[i].Initial) {
		return b.fields[i].Initial
	}
	return b.initial[name]
}

// Validate converts and checks every field, then runs the owner's Clean
// hook. It returns false for an unbound form.
func (b *Base) Validate(ctx context.Context) bool {
	b.errors = make(map[string][]string)
	b.cleaned = make(map[string]any)
	if !b.bound {
		return false
	}

	for _, f := range b.fields {
		v, msgs := b.cleanField(ctx, f)
		if len(msgs) > 0 {
			b.errors[f.Name] = msgs
			continue
		}
		b.cleaned[f.Name] = v
	}

	if c, ok := b.self.(Cleaner); ok {
		c.Clean(ctx, b)
	}

	b.validated = true
	return len(b.errors) == 0
}

// IsValid validates once and reports the result.
func (b *Base) IsValid(ctx context.Context) bool {
	if b.validated {
		return len(b.errors) == 0
	}
	return b.Validate(ctx)
}

func (b *Base) cleanField(ctx context.Context, f Field) (any, []string) {
	raw := b.data.Get(f.Name)
	if f.Kind != Password {
		raw = strings.TrimSpace(raw)
	}

	if f.Kind == Bool {
		v := truthy(raw)
		if f.Required && !v {
			return nil, []string{b.message(ctx, "required", "")}
		}
		return v, nil
	}

	if raw == "" {
		if f.Required {
			return nil, []string{b.message(ctx, "required", "")}
		}
		return f.zero(), nil
	}

	v, failed := f.convert(raw)
	if failed != "" {
		return nil, []string{b.message(ctx, failed, "")}
	}

	if msgs := b.validator.Var(ctx, f.ruleValue(raw, v), f.implicitRules()); len(msgs) > 0 {
		return nil, msgs
	}
	return v, nil
}

func (b *Base) message(ctx context.Context, tag, param string) string {
	return b.validator.Messages().Message(i18n.FromContext(ctx), tag, "", "", param)
}

// Errors returns field errors keyed by field name, with form-level errors
// under NonFieldKey.
func (b *Base) Errors() map[string][]string { return b.errors }

// FieldErrors returns the errors for one field.
func (b *Base) FieldErrors(name string) []string { return b.errors[name] }

// AddError records an error. An empty field name records a form-level
// error. The field's cleaned value is dropped.
func (b *Base) AddError(field, msg string) {
	if field == "" {
		field = NonFieldKey
	}
	b.errors[field] = append(b.errors[field], msg)
	delete(b.cleaned, field)
}

// CleanedData returns converted values of the fields that passed.
func (b *Base) CleanedData() map[string]any { return b.cleaned }

// Cleaned returns one converted value.
func (b *Base) Cleaned(name string) any { return b.cleaned[name] }

// String returns a cleaned value formatted as a string, or "".
func (b *Base) String(name string) string {
	v, ok := b.cleaned[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	}
	return false
}
