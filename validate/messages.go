package validate

import (
	"strings"
	"sync"

	"github.com/dalemusser/fhurl/i18n"
)

// MessageProvider maps rule tags to human-readable messages.
//
// Lookup order for a failed rule is: the request Localizer under
// "validate.<key>", then the provider's own messages. Keys are the rule tag,
// optionally suffixed with ".string" or ".number" when the wording depends on
// the value kind (min=3 on text is a length, on a number a bound).
//
// Messages may use {field} and {param} placeholders.
type MessageProvider struct {
	mu       sync.RWMutex
	messages map[string]string
}

// NewMessageProvider creates an empty message provider.
func NewMessageProvider() *MessageProvider {
	return &MessageProvider{messages: make(map[string]string)}
}

// DefaultMessages returns a provider with the standard form messages.
func DefaultMessages() *MessageProvider {
	m := NewMessageProvider()
	for k, v := range defaultMessages {
		m.messages[k] = v
	}
	return m
}

// Set adds or replaces the message for key.
func (m *MessageProvider) Set(key, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[key] = message
}

// Message renders the message for a failed rule.
func (m *MessageProvider) Message(loc *i18n.Localizer, tag, kind, field, param string) string {
	keys := []string{tag}
	if kind != "" {
		keys = []string{tag + "." + kind, tag}
	}

	for _, key := range keys {
		if loc != nil && loc.Has("validate."+key) {
			return format(loc.T("validate."+key), field, param)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, key := range keys {
		if msg, ok := m.messages[key]; ok {
			return format(msg, field, param)
		}
	}
	return defaultMessages["invalid"]
}

func format(msg, field, param string) string {
	msg = strings.ReplaceAll(msg, "{field}", field)
	msg = strings.ReplaceAll(msg, "{param}", strings.ReplaceAll(param, " ", ", "))
	return msg
}

// defaultMessages follow the wording HTML form users expect.
var defaultMessages = map[string]string{
	"required": "This field is required.",
	"invalid":  "Enter a valid value.",

	"email":    "Enter a valid email address.",
	"url":      "Enter a valid URL.",
	"alpha":    "Enter only letters.",
	"alphanum": "Enter only letters and numbers.",
	"numeric":  "Enter a number.",
	"number":   "Enter a whole number.",
	"float":    "Enter a number.",
	"boolean":  "Enter a valid boolean value.",
	"date":     "Enter a valid date.",
	"datetime": "Enter a valid date/time.",
	"oneof":    "Select a valid choice. That choice is not one of the available choices.",
	"choice":   "Select a valid choice. That choice is not one of the available choices.",

	"min.string": "Ensure this value has at least {param} characters.",
	"max.string": "Ensure this value has at most {param} characters.",
	"len.string": "Ensure this value has exactly {param} characters.",
	"min.number": "Ensure this value is greater than or equal to {param}.",
	"max.number": "Ensure this value is less than or equal to {param}.",
	"gte.number": "Ensure this value is greater than or equal to {param}.",
	"lte.number": "Ensure this value is less than or equal to {param}.",
	"gt.number":  "Ensure this value is greater than {param}.",
	"lt.number":  "Ensure this value is less than {param}.",

	"eqfield":    "The two {field} fields didn't match.",
	"nefield":    "{field} must differ from {param}.",
	"contains":   "Ensure this value contains {param}.",
	"excludes":   "Ensure this value does not contain {param}.",
	"startswith": "Ensure this value starts with {param}.",
	"hostname":   "Enter a valid hostname.",
	"ip":         "Enter a valid IPv4 or IPv6 address.",
	"uuid":       "Enter a valid UUID.",
}
