// Package registry merges test descriptors contributed by independent
// modules into one static, ordered registry.
//
// Contributing packages call Register from their init functions, the Go
// analog of placing a descriptor array in a reserved linker section. The
// table is append-only until the first snapshot seals it; after that the
// registry is immutable for the life of the process. Iteration order is
// stable for a given binary: declaration order within one module, package
// initialization order across modules.
package registry

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/log"

	"github.com/charles37/tock/types"
)

// Entry pairs a descriptor with the module that contributed it.
type Entry struct {
	Module     string
	Descriptor types.TestDescriptor
}

// Table accumulates per-module contributions until it is sealed by a
// snapshot. DefaultTable is the process-wide table that init-time
// registration targets; tests construct their own.
type Table struct {
	mu      sync.Mutex
	entries []Entry
	names   map[string]bool // module/name, for duplicate detection
	sealed  bool
}

// DefaultTable is the table used by package-level Register.
var DefaultTable = NewTable()

// NewTable creates an empty, unsealed table.
func NewTable() *Table {
	return &Table{names: make(map[string]bool)}
}

// Register appends a module's test descriptors to the table. It is meant to
// be called from a contributing package's init function, once per module.
// Misuse is a build-integration bug, not a runtime condition, so it panics:
// registering after the table is sealed, registering an invalid descriptor,
// or registering a duplicate name within a module.
func (t *Table) Register(module string, descriptors ...types.TestDescriptor) {
	if module == "" {
		panic("registry: Register called with empty module name")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sealed {
		panic(fmt.Sprintf("registry: module %q registered after the registry was sealed", module))
	}
	for _, d := range descriptors {
		if d.Name == "" {
			panic(fmt.Sprintf("registry: module %q registered a descriptor with no name", module))
		}
		if d.Kind == types.TestKindSync && d.Sync == nil {
			panic(fmt.Sprintf("registry: test %s/%s has no function", module, d.Name))
		}
		key := module + "/" + d.Name
		if t.names[key] {
			panic(fmt.Sprintf("registry: duplicate test name %s", key))
		}
		t.names[key] = true
		t.entries = append(t.entries, Entry{Module: module, Descriptor: d})
	}
}

// Register appends descriptors to the process-wide default table.
func Register(module string, descriptors ...types.TestDescriptor) {
	DefaultTable.Register(module, descriptors...)
}

// Registry is an immutable ordered sequence of test descriptors, produced
// by snapshotting a table.
type Registry struct {
	log     log.Logger
	entries []Entry
	modules []string
}

// Config contains registry configuration
type Config struct {
	Log log.Logger

	// Table to snapshot; nil means the process-wide default table.
	Table *Table

	// Modules filters the snapshot to the named modules; empty means all.
	// Naming a module that contributed nothing is a configuration error.
	Modules []string
}

// NewRegistry seals the table and returns an immutable registry over its
// contents. After the first snapshot no further registration is possible.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	table := cfg.Table
	if table == nil {
		table = DefaultTable
	}

	table.mu.Lock()
	table.sealed = true
	all := make([]Entry, len(table.entries))
	copy(all, table.entries)
	table.mu.Unlock()

	entries, err := filterModules(all, cfg.Modules)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var modules []string
	for _, e := range entries {
		if !seen[e.Module] {
			seen[e.Module] = true
			modules = append(modules, e.Module)
		}
	}

	cfg.Log.Debug("Registry sealed", "tests", len(entries), "modules", modules)

	return &Registry{
		log:     cfg.Log,
		entries: entries,
		modules: modules,
	}, nil
}

func filterModules(entries []Entry, modules []string) ([]Entry, error) {
	if len(modules) == 0 {
		return entries, nil
	}

	wanted := make(map[string]bool, len(modules))
	for _, m := range modules {
		wanted[m] = true
	}

	var filtered []Entry
	matched := make(map[string]bool)
	for _, e := range entries {
		if wanted[e.Module] {
			matched[e.Module] = true
			filtered = append(filtered, e)
		}
	}

	for _, m := range modules {
		if !matched[m] {
			return nil, fmt.Errorf("registry: no tests registered for module %q", m)
		}
	}
	return filtered, nil
}

// Entries returns the ordered descriptor sequence. The slice is a copy;
// the registry itself never changes.
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// Len returns the number of registered tests.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Modules returns the contributing module names in first-registration order.
func (r *Registry) Modules() []string {
	modules := make([]string, len(r.modules))
	copy(modules, r.modules)
	return modules
}
