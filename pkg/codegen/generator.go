package codegen

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-schemagen/pkg/naming"
	"github.com/goliatone/go-schemagen/pkg/schema"
)

// Settings carries the per-call naming state a generator must honour.
type Settings struct {
	// Namespace wraps the emitted types where the language supports it.
	Namespace string
	// Types names generated types. Nil means the default policy.
	Types *naming.TypeNamePolicy
	// Properties names members of generated classes. Nil keeps JSON names.
	Properties *naming.PropertyNamePolicy
	// Enums names enum members. Nil means the default policy.
	Enums *naming.EnumNamePolicy
	// Scope holds the type names already taken in the generation scope. It
	// grows as types are named; nil starts from an empty scope.
	Scope *naming.Scope
}

// Generator renders a schema set as source text for one target language.
type Generator interface {
	Name() string
	// Extension is the output file extension, including the dot.
	Extension() string
	Generate(ctx context.Context, set *schema.Set, settings Settings) ([]byte, error)
}

// Registry stores generators by name.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator by its Name(). Duplicate names return an error.
func (r *Registry) Register(generator Generator) error {
	if generator == nil {
		return fmt.Errorf("codegen: generator is required")
	}
	name := generator.Name()
	if name == "" {
		return fmt.Errorf("codegen: generator name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.generators[name]; exists {
		return fmt.Errorf("codegen: generator %q already registered", name)
	}
	r.generators[name] = generator
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(generator Generator) {
	if err := r.Register(generator); err != nil {
		panic(err)
	}
}

// Get retrieves a generator by name.
func (r *Registry) Get(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	generator, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("codegen: generator %q not found", name)
	}
	return generator, nil
}

// List returns a sorted list of generator names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a generator is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.generators[name]
	return ok
}
