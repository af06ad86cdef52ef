// Package validate checks form field values and config structs against
// go-playground/validator rule tags and renders failures as form messages.
//
// Field values are checked one at a time with Var, using the same tag syntax
// as struct tags:
//
//	v := validate.New()
//	msgs := v.Var(ctx, "jo", "min=3,alphanum")
//	// ["Ensure this value has at least 3 characters."]
package validate

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/go-playground/validator/v10"
)

// Validator wraps a go-playground validator with a message provider.
type Validator struct {
	v        *validator.Validate
	messages *MessageProvider
}

// Option configures the validator.
type Option func(*Validator)

// WithMessages sets a custom message provider.
func WithMessages(m *MessageProvider) Option {
	return func(v *Validator) {
		v.messages = m
	}
}

// New creates a validator that names struct fields by their form or json tag.
func New(opts ...Option) *Validator {
	vv := validator.New(validator.WithRequiredStructEnabled())
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.Split(f.Tag.Get(tag), ",")[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	v := &Validator{v: vv, messages: DefaultMessages()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Messages returns the validator's message provider.
func (v *Validator) Messages() *MessageProvider {
	return v.messages
}

// RegisterRule registers a custom rule tag with its failure message.
func (v *Validator) RegisterRule(tag string, fn validator.Func, message string) error {
	if err := v.v.RegisterValidation(tag, fn); err != nil {
		return fmt.Errorf("validate: register %q: %w", tag, err)
	}
	v.messages.Set(tag, message)
	return nil
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Errors is a list of field errors; it implements error.
type Errors []FieldError

func (e Errors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField groups messages by field name, preserving order within a field.
func (e Errors) ByField() map[string][]string {
	out := make(map[string][]string)
	for _, fe := range e {
		out[fe.Field] = append(out[fe.Field], fe.Message)
	}
	return out
}

// Var checks a single value against rules and returns the failure messages,
// localized with the Localizer in ctx when there is one. An empty rules
// string always passes.
func (v *Validator) Var(ctx context.Context, value any, rules string) []string {
	if strings.TrimSpace(rules) == "" {
		return nil
	}
	err := v.v.VarCtx(ctx, value, rules)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{v.messages.Message(localizer(ctx), "invalid", "", "", "")}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, v.messageFor(ctx, fe, ""))
	}
	return msgs
}

// Struct validates a struct's `validate` tags and returns Errors, or nil.
// A non-struct argument is reported as a plain error.
func (v *Validator) Struct(ctx context.Context, s any) error {
	err := v.v.StructCtx(ctx, s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: v.messageFor(ctx, fe, fe.Field()),
		})
	}
	return out
}

func (v *Validator) messageFor(ctx context.Context, fe validator.FieldError, field string) string {
	return v.messages.Message(localizer(ctx), fe.Tag(), kindClass(fe.Kind()), field, fe.Param())
}

func localizer(ctx context.Context) *i18n.Localizer {
	if ctx == nil {
		return nil
	}
	return i18n.FromContext(ctx)
}

func kindClass(k reflect.Kind) string {
	switch k {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	}
	return ""
}
