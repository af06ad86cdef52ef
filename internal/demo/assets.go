package demo

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/templates"
)

//go:embed templates/shared/*.gohtml templates/pages/*.gohtml
var templateFS embed.FS

//go:embed locales/*.yaml
var localeFS embed.FS

// TemplateSets returns the demo's shared and page sets. A non-empty dir
// (config template_dir) replaces the embedded files with the ones on disk.
func TemplateSets(dir string) []templates.Set {
	var fsys fs.FS = templateFS
	if dir != "" {
		fsys = os.DirFS(dir)
	}
	return []templates.Set{
		{Name: templates.SharedSet, FS: fsys, Patterns: []string{"templates/shared/*.gohtml"}},
		{Name: "demo", FS: fsys, Patterns: []string{"templates/pages/*.gohtml"}},
	}
}

// NewEngine compiles the demo templates.
func NewEngine(dir string, dev bool) (*templates.Engine, error) {
	e := templates.New(dev)
	for _, s := range TemplateSets(dir) {
		e.Add(s)
	}
	if err := e.Boot(nil); err != nil {
		return nil, fmt.Errorf("demo templates: %w", err)
	}
	return e, nil
}

// Bundle loads the demo's message catalogs.
func Bundle(defaultLocale string) (*i18n.Bundle, error) {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	b := i18n.NewBundle(defaultLocale)
	if err := b.LoadFS(localeFS, "locales"); err != nil {
		return nil, err
	}
	return b, nil
}
