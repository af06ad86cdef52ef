// templates/views.go
package templates

import (
	"io/fs"
	"sync"
)

// SharedSet is the name of the set holding layouts and partials. Every
// page is compiled on top of it.
const SharedSet = "shared"

// Set describes one package's template files.
type Set struct {
	// Name is for logging / debugging, except for SharedSet.
	Name string
	// FS is usually an embed.FS from the feature package, or os.DirFS for
	// a template_dir on disk.
	FS fs.FS
	// Patterns are the glob patterns to load from FS (e.g., []string{"templates/*.gohtml"}).
	Patterns []string
}

var (
	registryMu sync.RWMutex
	registry   []Set
)

// Register is typically called from a feature package's init().
// It records a template Set so every Engine loads it at Boot.
func Register(s Set) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = append(registry, s)
}

// All returns the registered template sets.
func All() []Set {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Set, len(registry))
	copy(out, registry)
	return out
}

// Reset is handy for tests.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}
