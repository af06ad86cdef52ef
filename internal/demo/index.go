package demo

import (
	"net/http"

	"github.com/dalemusser/fhurl/auth"
	"github.com/dalemusser/fhurl/fhurl"
	"github.com/dalemusser/fhurl/templates"
)

type indexEntry struct {
	Name    string
	Path    string
	Pattern string
	Login   string
}

// Index lists the mounted form routes. Routes with URL parameters link to
// an example value.
func Index(reg *fhurl.Registry) http.HandlerFunc {
	examples := map[string]string{"username": "jack"}
	return func(w http.ResponseWriter, r *http.Request) {
		var entries []indexEntry
		for _, route := range reg.Routes() {
			p, err := reg.Reverse(route.Name, examples)
			if err != nil {
				continue
			}
			entries = append(entries, indexEntry{
				Name:    route.Name,
				Path:    p,
				Pattern: route.Pattern,
				Login:   route.Config.RequireLogin.String(),
			})
		}
		templates.Render(w, r, "index.gohtml", map[string]any{
			"routes": entries,
			"user":   auth.UserID(r),
		})
	}
}
