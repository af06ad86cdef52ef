// fhurl/route.go
package fhurl

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/fhurl/form"
)

// Route binds a URL pattern to a form.
type Route struct {
	// Name identifies the route for Reverse and the dispatch metrics.
	Name string
	// Pattern is a chi pattern; its parameters become Init args.
	Pattern string
	// Form builds the route's form. Set either Form or Forms.
	Form form.Factory
	// Forms builds several forms rendered together; fh_form picks the one
	// a submission is for.
	Forms  map[string]form.Factory
	Config Config
	// Middleware wraps the handler, innermost last.
	Middleware []func(http.Handler) http.Handler
}

func (r Route) label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern
}

// Mount validates route and registers it for GET and POST on router.
func Mount(router chi.Router, route Route, deps Deps) error {
	if route.Pattern == "" || !strings.HasPrefix(route.Pattern, "/") {
		return &ConfigurationError{Route: route.label(), Reason: "pattern must start with /"}
	}
	h, err := New(route, deps)
	if err != nil {
		return err
	}

	var handler http.Handler = h
	for i := len(route.Middleware) - 1; i >= 0; i-- {
		handler = route.Middleware[i](handler)
	}
	router.Method(http.MethodGet, route.Pattern, handler)
	router.Method(http.MethodPost, route.Pattern, handler)
	return nil
}

// Registry mounts named routes on one router and builds their URLs.
type Registry struct {
	mu     sync.RWMutex
	router chi.Router
	deps   Deps
	routes map[string]Route
	order  []string
}

// NewRegistry returns a registry mounting onto router with deps.
func NewRegistry(router chi.Router, deps Deps) *Registry {
	return &Registry{router: router, deps: deps, routes: make(map[string]Route)}
}

// Mount registers route. Names must be unique; unnamed routes are mounted
// but cannot be reversed.
func (g *Registry) Mount(route Route) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if route.Name != "" {
		if _, dup := g.routes[route.Name]; dup {
			return &ConfigurationError{Route: route.Name, Reason: "duplicate route name"}
		}
	}
	if err := Mount(g.router, route, g.deps); err != nil {
		return err
	}
	if route.Name != "" {
		g.routes[route.Name] = route
		g.order = append(g.order, route.Name)
	}
	return nil
}

// MustMount is Mount for static route tables; it panics on error.
func (g *Registry) MustMount(routes ...Route) {
	for _, r := range routes {
		if err := g.Mount(r); err != nil {
			panic(err)
		}
	}
}

// Routes returns the named routes in registration order.
func (g *Registry) Routes() []Route {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Route, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.routes[name])
	}
	return out
}

var reParam = regexp.MustCompile(`\{([^}:]+)(:[^}]*)?\}`)

// Reverse builds the path of a named route, substituting params into the
// pattern's {name} placeholders.
func (g *Registry) Reverse(name string, params map[string]string) (string, error) {
	g.mu.RLock()
	route, ok := g.routes[name]
	g.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("fhurl: no route named %q", name)
	}

	var missing []string
	path := reParam.ReplaceAllStringFunc(route.Pattern, func(m string) string {
		key := reParam.FindStringSubmatch(m)[1]
		v, ok := params[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("fhurl: route %q: missing params %s", name, strings.Join(missing, ", "))
	}
	return path, nil
}
