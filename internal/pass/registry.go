package pass

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownPass is wrapped by lookups of names that are not registered.
var ErrUnknownPass = errors.New("unknown pass")

// Registry maps pass names to factories.
type Registry struct {
	mu    sync.RWMutex
	infos map[string]Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{infos: make(map[string]Info)}
}

// Register adds a pass. The name and description are taken from one
// instance created by f.
func (r *Registry) Register(f Factory) error {
	p := f()
	info := Info{Name: p.Name(), Description: p.Description(), New: f}
	if info.Name == "" {
		return fmt.Errorf("pass registry: empty pass name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.infos[info.Name]; dup {
		return fmt.Errorf("pass registry: %q already registered", info.Name)
	}
	r.infos[info.Name] = info
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup returns the pass registered under name.
func (r *Registry) Lookup(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.infos[name]
	return info, ok
}

// List returns every registered pass sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.infos))
	for _, info := range r.infos {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Pipeline instantiates the named passes in order.
func (r *Registry) Pipeline(names []string) ([]Pass, error) {
	out := make([]Pass, 0, len(names))
	for _, name := range names {
		info, ok := r.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownPass, name)
		}
		out = append(out, info.New())
	}
	return out, nil
}
