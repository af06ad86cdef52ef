package i18n

import "fmt"

// LazyString is a translatable string whose text is resolved only when a
// Localizer is known, typically when a response is serialized. Form labels
// and validation messages are declared once at package level as LazyStrings
// and rendered per request in the caller's language.
type LazyString struct {
	Key  string
	Args []any
	// Default is used when no localizer is available and the key has no
	// translation. Empty means the key itself.
	Default string
}

// Lazy returns a LazyString for key.
func Lazy(key string, args ...any) LazyString {
	return LazyString{Key: key, Args: args}
}

// LazyDefault returns a LazyString that renders def when untranslated.
func LazyDefault(key, def string, args ...any) LazyString {
	return LazyString{Key: key, Args: args, Default: def}
}

// Force resolves the string with l. A nil localizer yields the default text.
func (s LazyString) Force(l *Localizer) string {
	if l != nil && l.Has(s.Key) {
		return l.T(s.Key, s.Args...)
	}
	text := s.Default
	if text == "" {
		text = s.Key
	}
	if len(s.Args) > 0 {
		return fmt.Sprintf(text, s.Args...)
	}
	return text
}

// String resolves without a localizer, for logs and fmt.
func (s LazyString) String() string {
	return s.Force(nil)
}
