// templates/funcs.go
package templates

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dalemusser/fhurl/serialize"
)

// Funcs returns helpers available to all templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		// {{ "a b" | urlquery }} → "a+b"
		"urlquery": url.QueryEscape,
		// Mark a string as safe HTML (use sparingly!)
		"safeHTML": func(s string) template.HTML { return template.HTML(s) },

		"lower":  strings.ToLower,
		"upper":  strings.ToUpper,
		"join":   strings.Join,
		"title":  func(s string) string { return cases.Title(language.Und).String(s) },
		"printf": func(f string, a ...any) string { return fmt.Sprintf(f, a...) },

		// {{ .Data | toJSON }} → JSON for use in a <script> block.
		// Same encoder as AJAX replies, so lazy strings and dates match.
		"toJSON": func(v any) template.JS {
			b, err := serialize.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},

		// {{ range fieldErrors .form "username" }} ... {{ end }}
		"fieldErrors": func(f any, name string) []string {
			if fe, ok := f.(interface{ FieldErrors(string) []string }); ok {
				return fe.FieldErrors(name)
			}
			return nil
		},
	}
}

var (
	customFuncsMu sync.RWMutex
	customFuncs   = template.FuncMap{}
)

// RegisterFunc adds a custom template function available to all templates.
// Call before Boot, typically from init() in a feature package.
func RegisterFunc(name string, fn any) {
	customFuncsMu.Lock()
	defer customFuncsMu.Unlock()
	customFuncs[name] = fn
}
