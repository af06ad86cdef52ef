// form/describe.go
package form

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/serialize"
)

// Descriptor is the metadata AJAX clients get for one field.
type Descriptor struct {
	Label      any
	HelpText   any
	Required   bool
	Initial    any
	HasInitial bool
}

// ToJSON implements serialize.JSONer. "initial" is present only when the
// field or the form has an initial value for it.
func (d Descriptor) ToJSON() any {
	out := map[string]any{
		"label":     d.Label,
		"help_text": d.HelpText,
		"required":  d.Required,
	}
	if out["help_text"] == nil {
		out["help_text"] = ""
	}
	if d.HasInitial {
		out["initial"] = d.Initial
	}
	return out
}

type initialer interface {
	Initial() map[string]any
}

// Describe returns the field metadata of f keyed by field name.
func Describe(f Form) map[string]Descriptor {
	var formInitial map[string]any
	if in, ok := f.(initialer); ok {
		formInitial = in.Initial()
	}

	out := make(map[string]Descriptor)
	for _, field := range f.Fields() {
		d := Descriptor{
			Label:    titleLabel(field),
			HelpText: field.HelpText,
			Required: field.Required,
		}
		if v, ok := formInitial[field.Name]; ok {
			d.Initial, d.HasInitial = v, true
		}
		if !isZero(field.Initial) {
			d.Initial, d.HasInitial = field.Initial, true
		}
		out[field.Name] = d
	}
	return out
}

// Casers are stateful; one per call.
func title(s string) string { return cases.Title(language.Und).String(s) }

// titledPromise title-cases a lazy label once it is forced.
type titledPromise struct{ p serialize.Promise }

func (t titledPromise) Force(l *i18n.Localizer) string { return title(t.p.Force(l)) }

func titleLabel(f Field) any {
	switch l := f.Label.(type) {
	case nil:
		return title(strings.ReplaceAll(f.Name, "_", " "))
	case string:
		if l == "" {
			return title(strings.ReplaceAll(f.Name, "_", " "))
		}
		return title(l)
	case serialize.Promise:
		return titledPromise{p: l}
	}
	return f.Label
}

// BoundField is a field prepared for template rendering.
type BoundField struct {
	Name     string
	ID       string
	Label    string
	HelpText string
	Required bool
	Type     string
	Widget   string
	Value    string
	Checked  bool
	Errors   []string
	Choices  []BoundOption
}

// BoundOption is one rendered choice.
type BoundOption struct {
	Value    string
	Label    string
	Selected bool
}

// BoundFields returns every field with its display value and errors. Lazy
// labels are translated with the Localizer of the form's request.
func (b *Base) BoundFields() []BoundField {
	var loc *i18n.Localizer
	if b.req != nil {
		loc = i18n.FromContext(b.req.Context())
	}

	out := make([]BoundField, 0, len(b.fields))
	for _, f := range b.fields {
		bf := BoundField{
			Name:     f.Name,
			ID:       "id_" + f.Name,
			Label:    text(titleLabel(f), loc),
			HelpText: text(f.HelpText, loc),
			Required: f.Required,
			Type:     f.Kind.InputType(),
			Widget:   f.Widget,
			Value:    b.displayValue(f),
			Errors:   b.errors[f.Name],
		}
		if f.Kind == Bool {
			bf.Checked = truthy(bf.Value)
		}
		for _, opt := range f.Choices {
			bf.Choices = append(bf.Choices, BoundOption{
				Value:    opt.Value,
				Label:    text(opt.Label, loc),
				Selected: opt.Value == bf.Value,
			})
		}
		out = append(out, bf)
	}
	return out
}

// NonFieldErrors returns the form-level errors.
func (b *Base) NonFieldErrors() []string { return b.errors[NonFieldKey] }

func (b *Base) displayValue(f Field) string {
	if b.bound {
		if f.Kind == Password {
			return ""
		}
		return b.data.Get(f.Name)
	}
	return formatValue(b.InitialValue(f.Name))
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case serialize.Date:
		return t.Format(serialize.DateLayout)
	case time.Time:
		return t.Format(serialize.DateTimeLayout)
	}
	return fmt.Sprint(v)
}

func text(v any, loc *i18n.Localizer) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case serialize.Promise:
		return t.Force(loc)
	}
	return fmt.Sprint(v)
}
