// i18n/i18n.go
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Bundle holds translations for multiple locales.
type Bundle struct {
	mu             sync.RWMutex
	locales        map[string]map[string]string
	defaultLocale  string
	missingKeyFunc MissingKeyFunc
}

// MissingKeyFunc is called when a translation key is not found.
type MissingKeyFunc func(locale, key string) string

// NewBundle creates a new translation bundle.
func NewBundle(defaultLocale string) *Bundle {
	return &Bundle{
		locales:        make(map[string]map[string]string),
		defaultLocale:  defaultLocale,
		missingKeyFunc: func(locale, key string) string { return key },
	}
}

// SetMissingKeyFunc sets the function called when a key is missing.
func (b *Bundle) SetMissingKeyFunc(fn MissingKeyFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.missingKeyFunc = fn
}

// AddMessages adds or updates messages for a locale.
func (b *Bundle) AddMessages(locale string, messages map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	msgs, ok := b.locales[locale]
	if !ok {
		msgs = make(map[string]string, len(messages))
		b.locales[locale] = msgs
	}
	for k, v := range messages {
		msgs[k] = v
	}
}

// LoadJSON loads a catalog from JSON. Nested objects are flattened with dots:
// {"form": {"required": "..."}} becomes "form.required".
func (b *Bundle) LoadJSON(locale string, data []byte) error {
	var nested map[string]any
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("i18n: parse JSON catalog %s: %w", locale, err)
	}
	b.AddMessages(locale, flattenMap(nested, ""))
	return nil
}

// LoadYAML loads a catalog from YAML, flattened the same way as LoadJSON.
func (b *Bundle) LoadYAML(locale string, data []byte) error {
	var nested map[string]any
	if err := yaml.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("i18n: parse YAML catalog %s: %w", locale, err)
	}
	b.AddMessages(locale, flattenMap(nested, ""))
	return nil
}

// LoadFS loads every {locale}.json, {locale}.yaml and {locale}.yml file in dir.
func (b *Bundle) LoadFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("i18n: read catalog dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		locale := strings.TrimSuffix(name, ext)

		var load func(string, []byte) error
		switch ext {
		case ".json":
			load = b.LoadJSON
		case ".yaml", ".yml":
			load = b.LoadYAML
		default:
			continue
		}

		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("i18n: read catalog %s: %w", name, err)
		}
		if err := load(locale, data); err != nil {
			return err
		}
	}
	return nil
}

func flattenMap(m map[string]any, prefix string) map[string]string {
	result := make(map[string]string)

	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case string:
			result[key] = val
		case map[string]any:
			for fk, fv := range flattenMap(val, key) {
				result[fk] = fv
			}
		}
	}

	return result
}

// Locales returns all registered locale tags, sorted.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tags := make([]string, 0, len(b.locales))
	for tag := range b.locales {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// HasLocale returns true if the locale exists.
func (b *Bundle) HasLocale(locale string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, exists := b.locales[locale]
	return exists
}

// DefaultLocale returns the default locale.
func (b *Bundle) DefaultLocale() string {
	return b.defaultLocale
}

// Matcher builds a language matcher over the registered locales with the
// default locale preferred on ties.
func (b *Bundle) Matcher() (language.Matcher, []string) {
	locales := b.Locales()
	ordered := make([]string, 0, len(locales)+1)
	ordered = append(ordered, b.defaultLocale)
	for _, l := range locales {
		if l != b.defaultLocale {
			ordered = append(ordered, l)
		}
	}

	tags := make([]language.Tag, 0, len(ordered))
	for _, l := range ordered {
		tags = append(tags, language.Make(l))
	}
	return language.NewMatcher(tags), ordered
}

// Localizer returns a Localizer for the given locale.
func (b *Bundle) Localizer(locale string) *Localizer {
	return &Localizer{bundle: b, locale: locale}
}

// T translates a key using the default locale.
func (b *Bundle) T(key string, args ...any) string {
	return b.Localizer(b.defaultLocale).T(key, args...)
}

// getMessage looks up key in locale, its base language, then the default locale.
func (b *Bundle) getMessage(locale, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if msg, ok := b.locales[locale][key]; ok {
		return msg, true
	}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		if msg, ok := b.locales[locale[:idx]][key]; ok {
			return msg, true
		}
	}
	if locale != b.defaultLocale {
		if msg, ok := b.locales[b.defaultLocale][key]; ok {
			return msg, true
		}
	}
	return "", false
}

// Localizer translates messages for a specific locale.
type Localizer struct {
	bundle *Bundle
	locale string
}

// Locale returns the localizer's locale.
func (l *Localizer) Locale() string {
	return l.locale
}

// T translates a message key.
//
// Positional args use fmt verbs: "Hello, %s!".
// A single map or struct arg feeds a text/template: "Hello, {{.Name}}!".
func (l *Localizer) T(key string, args ...any) string {
	msg, found := l.bundle.getMessage(l.locale, key)
	if !found {
		l.bundle.mu.RLock()
		fn := l.bundle.missingKeyFunc
		l.bundle.mu.RUnlock()
		return fn(l.locale, key)
	}

	if len(args) == 0 {
		return msg
	}
	if strings.Contains(msg, "{{") {
		return executeTemplate(msg, args)
	}
	return fmt.Sprintf(msg, args...)
}

func executeTemplate(msg string, args []any) string {
	var data any = args
	if len(args) == 1 {
		data = args[0]
	}

	tmpl, err := template.New("").Parse(msg)
	if err != nil {
		return msg
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return msg
	}
	return buf.String()
}

// Has returns true if the key exists for this locale.
func (l *Localizer) Has(key string) bool {
	_, found := l.bundle.getMessage(l.locale, key)
	return found
}

type contextKey struct{}

// WithLocalizer adds a Localizer to the context.
func WithLocalizer(ctx context.Context, l *Localizer) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext retrieves the Localizer from context, or nil.
func FromContext(ctx context.Context) *Localizer {
	l, _ := ctx.Value(contextKey{}).(*Localizer)
	return l
}

// T translates using the Localizer from context.
// Falls back to key if no localizer in context.
func T(ctx context.Context, key string, args ...any) string {
	l := FromContext(ctx)
	if l == nil {
		return key
	}
	return l.T(key, args...)
}
