// form/field.go
package form

import (
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/fhurl/serialize"
)

// Kind selects how a submitted string is converted into cleaned data.
type Kind int

const (
	Text Kind = iota
	Password
	Email
	Int
	Float
	Bool
	Date
	DateTime
	Choice
	Hidden
)

var kindNames = map[Kind]string{
	Text:     "text",
	Password: "password",
	Email:    "email",
	Int:      "int",
	Float:    "float",
	Bool:     "bool",
	Date:     "date",
	DateTime: "datetime",
	Choice:   "choice",
	Hidden:   "hidden",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// InputType is the HTML input type used when a template renders the field
// without an explicit Widget.
func (k Kind) InputType() string {
	switch k {
	case Password:
		return "password"
	case Email:
		return "email"
	case Int, Float:
		return "number"
	case Bool:
		return "checkbox"
	case Date:
		return "date"
	case DateTime:
		return "datetime-local"
	case Hidden:
		return "hidden"
	case Choice:
		return "select"
	}
	return "text"
}

// Option is one entry of a Choice field.
type Option struct {
	Value string
	Label any
}

// Field declares one input of a form.
//
// Label may be a string or an i18n.LazyString. Rules is a validator tag
// string ("min=3,max=100") checked against the converted value when the
// submitted value is non-empty.
type Field struct {
	Name     string
	Label    any
	HelpText any
	Required bool
	Initial  any
	Kind     Kind
	Rules    string
	Choices  []Option
	Widget   string
}

// TextField returns a required text field.
func TextField(name string, rules string) Field {
	return Field{Name: name, Kind: Text, Required: true, Rules: rules}
}

// PasswordField returns a required password field.
func PasswordField(name string, rules string) Field {
	return Field{Name: name, Kind: Password, Required: true, Rules: rules}
}

// Optional returns a copy of f that may be left blank.
func (f Field) Optional() Field {
	f.Required = false
	return f
}

// WithLabel returns a copy of f with label set.
func (f Field) WithLabel(label any) Field {
	f.Label = label
	return f
}

// WithHelp returns a copy of f with help text set.
func (f Field) WithHelp(help any) Field {
	f.HelpText = help
	return f
}

// convert turns a trimmed, non-empty submitted value into the field's
// cleaned type. The returned key names the message to report on failure.
func (f Field) convert(raw string) (any, string) {
	switch f.Kind {
	case Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, "number"
		}
		return n, ""
	case Float:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, "float"
		}
		return n, ""
	case Date:
		t, err := time.Parse(serialize.DateLayout, raw)
		if err != nil {
			return nil, "date"
		}
		return serialize.DateOf(t), ""
	case DateTime:
		for _, layout := range dateTimeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, ""
			}
		}
		return nil, "datetime"
	case Choice:
		for _, opt := range f.Choices {
			if opt.Value == raw {
				return raw, ""
			}
		}
		return nil, "choice"
	}
	return raw, ""
}

var dateTimeLayouts = []string{
	serialize.DateTimeLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// truthy reports a checkbox-style boolean. Browsers omit unchecked boxes,
// so anything other than an explicit false spelling counts as checked.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	}
	return true
}

// zero is the cleaned value of an optional field left blank.
func (f Field) zero() any {
	switch f.Kind {
	case Int, Float, Date, DateTime:
		return nil
	case Bool:
		return false
	}
	return ""
}

// ruleValue is what validator rules see. Text-like kinds are checked as
// strings; numbers as numbers; dates by their submitted text.
func (f Field) ruleValue(raw string, cleaned any) any {
	switch f.Kind {
	case Int, Float:
		return cleaned
	}
	return raw
}

// implicitRules are added to Rules for kinds that carry their own format.
func (f Field) implicitRules() string {
	if f.Kind == Email {
		if f.Rules == "" {
			return "email"
		}
		return "email," + f.Rules
	}
	return f.Rules
}
