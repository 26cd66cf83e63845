package run

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/schemaforge/schemaforge/internal/binding"
	"github.com/schemaforge/schemaforge/internal/cache"
	"github.com/schemaforge/schemaforge/internal/common"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/location"
	"github.com/schemaforge/schemaforge/internal/target"
)

// Context holds the state of one configuration pass: the declaration, the
// target registry, the binding reconciler, and the work units derived from
// them. It is created per run and torn down at run end; nothing here is
// global.
type Context struct {
	ID         string
	Logger     *common.Logger
	Decl       *config.Declaration
	Targets    *target.Registry
	Reconciler *binding.Reconciler
	Locations  *location.Resolver
	Cache      *cache.Cache

	// SkipGenerate runs migrations only, leaving introspection, code
	// emission, and cache recording out.
	SkipGenerate bool

	// DriverOverride forces one driver for every unit in this run, ahead
	// of the schema, database, migration, and JDBC tiers.
	DriverOverride string

	units     map[string]*WorkUnit
	unitOrder []string

	databases map[string]*config.DatabaseDecl
	schemas   map[binding.SchemaKey]*config.SchemaDecl
}

// New evaluates a declaration into a run context: targets are registered,
// schemas declared, claims reconciled, and a work unit created per active
// binding. The first structural error aborts evaluation.
func New(decl *config.Declaration, locations *location.Resolver, buildCache *cache.Cache) (*Context, error) {
	runID := uuid.NewString()
	rc := &Context{
		ID:        runID,
		Logger:    common.GetLogger().WithComponent("run").With("run_id", runID),
		Decl:      decl,
		Locations: locations,
		Cache:     buildCache,
		units:     make(map[string]*WorkUnit),
		databases: make(map[string]*config.DatabaseDecl),
		schemas:   make(map[binding.SchemaKey]*config.SchemaDecl),
	}

	registry, err := target.FromDeclaration(decl.Targets)
	if err != nil {
		return nil, err
	}
	rc.Targets = registry

	rc.Reconciler = binding.NewReconciler(binding.Hooks{
		OnActivate: rc.activateUnit,
		OnOrphan:   rc.orphanUnit,
	})

	for _, name := range registry.Names() {
		rc.Reconciler.RegisterTarget(name)
	}

	for i := range decl.Databases {
		db := &decl.Databases[i]
		rc.databases[db.Name] = db
		for j := range db.Schemas {
			schema := &db.Schemas[j]
			key := binding.SchemaKey{Database: db.Name, Schema: schema.Name}
			rc.schemas[key] = schema
			if err := rc.Reconciler.MergeClaims(key, schema.Targets); err != nil {
				return nil, err
			}
		}
	}

	if err := rc.Reconciler.Validate(); err != nil {
		return nil, err
	}
	return rc, nil
}

func (rc *Context) activateUnit(schema binding.SchemaKey, targetName string) {
	if _, exists := rc.units[targetName]; exists {
		return
	}
	rc.units[targetName] = &WorkUnit{
		TargetName: targetName,
		Schema:     schema,
		run:        rc,
	}
	rc.unitOrder = append(rc.unitOrder, targetName)
	rc.Logger.Debug("work unit registered", "target", targetName, "schema", schema.String())
}

// orphanUnit disables, but does not delete, the unit for a withdrawn claim.
func (rc *Context) orphanUnit(schema binding.SchemaKey, targetName string) {
	if unit, exists := rc.units[targetName]; exists {
		unit.Disabled = true
		rc.Logger.Info("work unit disabled", "target", targetName, "schema", schema.String())
	}
}

// Units returns the work units in activation order, disabled ones included.
func (rc *Context) Units() []*WorkUnit {
	out := make([]*WorkUnit, 0, len(rc.unitOrder))
	for _, name := range rc.unitOrder {
		out = append(out, rc.units[name])
	}
	return out
}

// Unit returns the work unit for a target name.
func (rc *Context) Unit(targetName string) (*WorkUnit, bool) {
	unit, ok := rc.units[targetName]
	return unit, ok
}

func (rc *Context) database(name string) (*config.DatabaseDecl, error) {
	db, ok := rc.databases[name]
	if !ok {
		return nil, fmt.Errorf("unknown database: %s", name)
	}
	return db, nil
}

func (rc *Context) schema(key binding.SchemaKey) (*config.SchemaDecl, error) {
	schema, ok := rc.schemas[key]
	if !ok {
		return nil, fmt.Errorf("unknown schema: %s", key.String())
	}
	return schema, nil
}
