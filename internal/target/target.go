package target

import (
	"fmt"

	"github.com/schemaforge/schemaforge/internal/config"
)

// Target is a named code-generation configuration. Names are unique across
// the whole run; schemas reference targets by name only.
type Target struct {
	Name        string
	InputSchema string
	JDBCDriver  string
	OutputDir   string
	Package     string
	Excludes    string
}

// Registry holds every registered target keyed by name, preserving
// registration order.
type Registry struct {
	byName map[string]*Target
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Target)}
}

// Register adds a target. Registering a second target under an existing
// name is an authoring error.
func (r *Registry) Register(t *Target) error {
	if t.Name == "" {
		return fmt.Errorf("target name is required")
	}
	if _, exists := r.byName[t.Name]; exists {
		return fmt.Errorf("duplicate target name: %s", t.Name)
	}
	r.byName[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Get returns the target registered under name.
func (r *Registry) Get(name string) (*Target, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns every registered name in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	return len(r.order)
}

// FromDeclaration builds a registry from declared targets, folding in each
// target's manifest file when one is referenced. Declaration values win
// over manifest values.
func FromDeclaration(decls []config.TargetDecl) (*Registry, error) {
	registry := NewRegistry()
	for _, decl := range decls {
		t := &Target{
			Name:        decl.Name,
			InputSchema: decl.InputSchema,
			JDBCDriver:  decl.JDBCDriver,
			OutputDir:   decl.OutputDir,
			Package:     decl.Package,
			Excludes:    decl.Excludes,
		}
		if decl.Manifest != "" {
			if err := applyManifest(t, decl.Manifest); err != nil {
				return nil, fmt.Errorf("target %s: %w", decl.Name, err)
			}
		}
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
