package dialect

import (
	"sync"

	apperrors "github.com/kbukum/dbprime/errors"
	"github.com/kbukum/dbprime/util"
)

// Driver identities of the built-in dialects.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// Registry maps driver identities to dialects. Adding a backend is a
// Register call; the engine is unchanged.
type Registry struct {
	mu       sync.RWMutex
	dialects map[string]Dialect
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{dialects: make(map[string]Dialect)}
}

// Register maps driver to d, replacing any previous mapping.
func (r *Registry) Register(driver string, d Dialect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dialects[driver] = d
}

// Lookup returns the dialect for driver, or UNSUPPORTED_DIALECT listing
// the registered identities.
func (r *Registry) Lookup(driver string) (Dialect, error) {
	r.mu.RLock()
	d, ok := r.dialects[driver]
	r.mu.RUnlock()
	if !ok {
		return nil, apperrors.UnsupportedDialect(driver, r.Names())
	}
	return d, nil
}

// Names returns the registered driver identities, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return util.SortedKeys(r.dialects)
}

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c := NewRegistry()
	for name, d := range r.dialects {
		c.dialects[name] = d
	}
	return c
}

// NewDefaultRegistry returns a registry holding the built-in dialects.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(Postgres, Returning{})
	r.Register(MySQL, LastInsertID{Query: DefaultLastInsertIDQuery})
	r.Register(SQLite, LastInsertID{Query: "SELECT last_insert_rowid()"})
	return r
}

var defaultRegistry = NewDefaultRegistry()

// Default returns the process-wide registry used when no other is given.
// Registering on it affects every later Create.
func Default() *Registry {
	return defaultRegistry
}
