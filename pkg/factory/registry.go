package factory

import (
	"slices"

	"github.com/charmbracelet/log"

	oerrors "github.com/matzehuels/obvious/pkg/errors"
)

// Constructor builds a backend instance.
type Constructor func(logger *log.Logger) Backend

// Registry maps backend tags to constructors. Each application (or test)
// builds its own registry; there is no process-wide instance.
type Registry struct {
	ctors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// DefaultRegistry returns a new registry holding the built-in backends.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(BackendMemory, NewMemoryBackend)
	_ = r.Register(BackendAppendOnly, NewAppendOnlyBackend)
	return r
}

// Register adds a backend under name. Names must be lowercase identifiers
// and unique within the registry.
func (r *Registry) Register(name string, ctor Constructor) error {
	if err := oerrors.ValidateBackendName(name); err != nil {
		return err
	}
	if ctor == nil {
		return oerrors.New(oerrors.ErrCodeConfiguration, "backend %q has no constructor", name)
	}
	if _, exists := r.ctors[name]; exists {
		return oerrors.New(oerrors.ErrCodeConfiguration, "backend %q already registered", name)
	}
	r.ctors[name] = ctor
	return nil
}

// Lookup returns the constructor registered under name.
func (r *Registry) Lookup(name string) (Constructor, bool) {
	ctor, ok := r.ctors[name]
	return ctor, ok
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
