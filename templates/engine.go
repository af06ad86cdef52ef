// templates/engine.go
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Renderer renders a named template. Form handlers depend on this, not on
// *Engine, so tests can substitute their own.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Lookup is implemented by renderers that can tell whether a template
// exists, so routes naming a missing one fail when they are mounted.
type Lookup interface {
	Has(name string) bool
}

type page struct {
	t     *template.Template
	entry string
}

// Engine compiles and holds templates from all registered Sets.
// The shared set (layouts, partials) is parsed once; each page file gets
// its own clone of it, so pages can all define "content" without clashing.
type Engine struct {
	mu      sync.RWMutex
	funcs   template.FuncMap
	sets    []Set
	base    *template.Template
	byName  map[string]page
	devMode bool
	Logger  *zap.Logger
}

// New creates a new Engine. With dev=true every Render recompiles from the
// sets' filesystems, so edits under template_dir show up without a restart.
func New(dev bool) *Engine {
	return &Engine{
		funcs:   Funcs(),
		byName:  map[string]page{},
		devMode: dev,
		Logger:  zap.NewNop(),
	}
}

// Add registers a set on this engine only. Call before Boot.
func (e *Engine) Add(s Set) *Engine {
	e.sets = append(e.sets, s)
	return e
}

// Boot compiles the package-level registered sets plus those added with
// Add. It must be called before Render.
func (e *Engine) Boot(logger *zap.Logger) error {
	if logger != nil {
		e.Logger = logger
	}

	customFuncsMu.RLock()
	for k, v := range customFuncs {
		e.funcs[k] = v
	}
	customFuncsMu.RUnlock()

	return e.compile()
}

func (e *Engine) compile() error {
	sets := append(All(), e.sets...)
	if len(sets) == 0 {
		e.Logger.Warn("no template sets registered")
	}

	base := template.New("root").Funcs(e.funcs)
	var pages []Set
	for _, s := range sets {
		if s.Name != SharedSet {
			pages = append(pages, s)
			continue
		}
		if _, err := parseFS(base, s.FS, s.Patterns...); err != nil {
			return fmt.Errorf("parse shared: %w", err)
		}
	}

	byName := make(map[string]page)
	for _, s := range pages {
		if err := e.compileSetPerPage(base, s, byName); err != nil {
			return fmt.Errorf("compile set %q: %w", s.Name, err)
		}
	}

	e.mu.Lock()
	e.base = base
	e.byName = byName
	e.mu.Unlock()
	return nil
}

// compileSetPerPage clones the shared base for each page file and indexes
// it under the file's base name, the base name without extension, and
// every name the file defines itself (other than "content").
func (e *Engine) compileSetPerPage(base *template.Template, s Set, byName map[string]page) error {
	files, err := globAll(s.FS, s.Patterns)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		e.Logger.Warn("no templates matched", zap.String("set", s.Name))
		return nil
	}
	sort.Strings(files)

	for _, p := range files {
		src, err := fs.ReadFile(s.FS, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		clone, err := base.Clone()
		if err != nil {
			return fmt.Errorf("clone base: %w", err)
		}

		entry := path.Base(p)
		if _, err := clone.New(entry).Funcs(e.funcs).Parse(string(src)); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}

		pg := page{t: clone, entry: entry}
		byName[entry] = pg
		byName[strings.TrimSuffix(entry, path.Ext(entry))] = pg
		for name := range extractDefineNames(string(src)) {
			if name != "content" {
				byName[name] = page{t: clone, entry: name}
			}
		}

		e.Logger.Debug("template page compiled",
			zap.String("set", s.Name),
			zap.String("page", entry))
	}
	return nil
}

var reDefineName = regexp.MustCompile(`{{-?\s*define\s+"([^"]+)"`)

func extractDefineNames(src string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, g := range reDefineName.FindAllStringSubmatch(src, -1) {
		if len(g) >= 2 {
			out[g[1]] = struct{}{}
		}
	}
	return out
}

// parseFS parses all files matching patterns into t.
func parseFS(t *template.Template, filesystem fs.FS, patterns ...string) (*template.Template, error) {
	files, err := globAll(filesystem, patterns)
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, p := range files {
		b, err := fs.ReadFile(filesystem, p)
		if err != nil {
			return nil, err
		}
		if _, err = t.New(path.Base(p)).Parse(string(b)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
	}
	return t, nil
}

func globAll(filesystem fs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	for _, pat := range patterns {
		matches, err := fs.Glob(filesystem, pat)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out, nil
}

// Has reports whether name resolves to a compiled template.
func (e *Engine) Has(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.byName[name]
	return ok
}

// Render executes a page by file name ("login.gohtml" or "login") or by a
// name the page defines. Output is buffered so a failing template writes
// nothing.
func (e *Engine) Render(w io.Writer, name string, data any) error {
	if e.devMode {
		if err := e.compile(); err != nil {
			return err
		}
	}

	e.mu.RLock()
	pg, ok := e.byName[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := pg.t.ExecuteTemplate(&buf, pg.entry, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderSnippet executes a shared partial by its defined name.
func (e *Engine) RenderSnippet(w io.Writer, name string, data any) error {
	e.mu.RLock()
	base := e.base
	e.mu.RUnlock()
	if base == nil || base.Lookup(name) == nil {
		return fmt.Errorf("snippet %q not found", name)
	}
	var buf bytes.Buffer
	if err := base.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
