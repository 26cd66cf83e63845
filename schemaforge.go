package schemaforge

import (
	"context"

	"github.com/schemaforge/schemaforge/internal/binding"
	"github.com/schemaforge/schemaforge/internal/cache"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/fingerprint"
	"github.com/schemaforge/schemaforge/internal/location"
	"github.com/schemaforge/schemaforge/internal/run"
)

// Re-export commonly used types for public API

// Declaration is the top-level generation declaration document.
type Declaration = config.Declaration

// MigrationSettings is the optional bag of migration-tool settings.
type MigrationSettings = config.MigrationSettings

// SchemaKey identifies a logical schema within a logical database.
type SchemaKey = binding.SchemaKey

// ResolvedLocation is one concrete contributor of migration resources.
type ResolvedLocation = location.Resolved

// RunContext is the state of one evaluated configuration pass.
type RunContext = run.Context

// WorkUnit is one schema/target pairing executed as a whole.
type WorkUnit = run.WorkUnit

// Snapshot is the ordered fingerprint builder.
type Snapshot = fingerprint.Snapshot

// Cache is the persistent fingerprint cache.
type Cache = cache.Cache

// LoadDeclaration loads a generation declaration from a YAML file.
func LoadDeclaration(path string) (*Declaration, error) {
	return config.LoadDeclaration(path)
}

// NewLocationResolver creates a location resolver for one project layout.
func NewLocationResolver(resourceRoots, runtimeClasspath []string, baseDir string) *location.Resolver {
	return location.NewResolver(resourceRoots, runtimeClasspath, baseDir)
}

// OpenCache opens (and initializes) the fingerprint cache at the given path.
func OpenCache(path string) (*Cache, error) {
	return cache.Open(path)
}

// Evaluate turns a declaration into a run context, reconciling bindings and
// creating a work unit per valid schema/target pair. buildCache may be nil.
func Evaluate(decl *Declaration, locations *location.Resolver, buildCache *Cache) (*RunContext, error) {
	return run.New(decl, locations, buildCache)
}

// Generate evaluates a declaration and executes every work unit.
func Generate(ctx context.Context, decl *Declaration, locations *location.Resolver, buildCache *Cache) error {
	rc, err := run.New(decl, locations, buildCache)
	if err != nil {
		return err
	}
	return rc.Execute(ctx)
}
