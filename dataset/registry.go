package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// ErrTableNotLoaded is returned when a table is requested that the registry does not hold.
var ErrTableNotLoaded = errors.New("table not loaded")

// Registry owns the loaded tables of a run, keyed by table name. It is a
// value: Put and Remove return a new registry and leave the receiver as it was.
type Registry struct {
	tables map[string]*Dataset
}

// NewRegistry builds a registry from datasets, keyed by their names.
func NewRegistry(datasets ...*Dataset) Registry {
	r := Registry{tables: make(map[string]*Dataset, len(datasets))}
	for _, ds := range datasets {
		r.tables[ds.Name] = ds
	}
	return r
}

// Get returns the table stored under name.
func (r Registry) Get(name string) (*Dataset, error) {
	ds, ok := r.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotLoaded, name)
	}
	return ds, nil
}

// Has reports whether name is loaded.
func (r Registry) Has(name string) bool {
	_, ok := r.tables[name]
	return ok
}

// Put returns a registry where name maps to ds.
func (r Registry) Put(name string, ds *Dataset) Registry {
	next := r.clone()
	next.tables[name] = ds
	return next
}

// Remove returns a registry without name. Removing an absent name is a no-op.
func (r Registry) Remove(name string) Registry {
	if !r.Has(name) {
		return r
	}
	next := r.clone()
	delete(next.tables, name)
	return next
}

// Take returns the table under name together with a registry that no longer holds it.
func (r Registry) Take(name string) (*Dataset, Registry, error) {
	ds, err := r.Get(name)
	if err != nil {
		return nil, r, err
	}
	return ds, r.Remove(name), nil
}

// Len returns the number of loaded tables.
func (r Registry) Len() int {
	return len(r.tables)
}

// Names returns the loaded table names, sorted.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r Registry) clone() Registry {
	next := Registry{tables: make(map[string]*Dataset, len(r.tables)+1)}
	for k, v := range r.tables {
		next.tables[k] = v
	}
	return next
}
