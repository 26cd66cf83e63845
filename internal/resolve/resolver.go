package resolve

import (
	"strings"

	"github.com/schemaforge/schemaforge/internal/common"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/util"
)

// Resolver answers "which value wins" questions for one schema declaration.
// It walks a fixed precedence chain and treats blank strings and empty
// collections as absent at every tier, so they never terminate the walk.
type Resolver struct {
	database string
	schema   string
	logger   *common.Logger
}

// NewResolver creates a resolver scoped to one schema declaration.
func NewResolver(database, schema string) *Resolver {
	return &Resolver{
		database: database,
		schema:   schema,
		logger:   common.GetLogger().WithComponent("resolver").WithDatabase(database).WithSchema(schema),
	}
}

// String returns the first non-blank value in precedence order, or "".
func String(tiers ...string) string {
	return util.FirstNonBlank(tiers...)
}

// List returns the first non-empty list in precedence order, or nil.
// A list whose entries are all blank counts as absent.
func List(tiers ...[]string) []string {
	for _, tier := range tiers {
		for _, v := range tier {
			if strings.TrimSpace(v) != "" {
				return tier
			}
		}
	}
	return nil
}

// Map returns the first non-empty map in precedence order, or nil.
func Map(tiers ...map[string]string) map[string]string {
	for _, tier := range tiers {
		if len(tier) > 0 {
			return tier
		}
	}
	return nil
}

// Bool returns the first declared boolean in precedence order.
// An explicit false is a declared value and terminates the walk.
func Bool(tiers ...*bool) *bool {
	for _, tier := range tiers {
		if tier != nil {
			return tier
		}
	}
	return nil
}

// Int returns the first declared integer in precedence order.
func Int(tiers ...*int) *int {
	for _, tier := range tiers {
		if tier != nil {
			return tier
		}
	}
	return nil
}

// ResolvePrefixes returns the effective versioned and repeatable script
// prefixes. Equal prefixes would leave discovery unable to tell the two
// script kinds apart, so a colliding override is skipped with a warning and
// the system defaults stand.
func (r *Resolver) ResolvePrefixes(versioned, repeatable string) (string, string) {
	versioned = String(versioned, config.DefaultVersionedPrefix)
	repeatable = String(repeatable, config.DefaultRepeatablePrefix)
	if versioned != repeatable {
		return versioned, repeatable
	}
	r.logger.Warn("versioned and repeatable prefixes collide, keeping the defaults",
		"prefix", versioned,
		"versioned_default", config.DefaultVersionedPrefix,
		"repeatable_default", config.DefaultRepeatablePrefix)
	return config.DefaultVersionedPrefix, config.DefaultRepeatablePrefix
}

// DriverSources carries every tier that may supply a driver, in
// precedence order from strongest to weakest.
type DriverSources struct {
	// BindingOverride is forced by the binding context for one invocation.
	BindingOverride string
	// SchemaOverride is the driver declared directly on the schema.
	SchemaOverride string
	// DatabaseDriver is the driver declared on the enclosing database.
	DatabaseDriver string
	// MigrationDriver comes from the schema's migration settings.
	MigrationDriver string
	// JDBCFallback is the driver already configured on the generation target.
	JDBCFallback string
}

// ResolveDriver walks the driver precedence chain and returns the first
// non-blank value. When every tier is absent it fails with a
// MissingDriverError naming the schema and database.
func (r *Resolver) ResolveDriver(src DriverSources) (string, error) {
	driver := String(
		src.BindingOverride,
		src.SchemaOverride,
		src.DatabaseDriver,
		src.MigrationDriver,
		src.JDBCFallback,
	)
	if driver == "" {
		return "", NewMissingDriverError(r.database, r.schema)
	}

	r.logger.Debug("resolved driver", "driver", driver)
	return driver, nil
}

// SchemaSources carries the two independent schema declarations that must
// agree, plus the fallbacks consulted when both are absent.
type SchemaSources struct {
	// MigrationDefaultSchema is the migration tool's default schema setting.
	MigrationDefaultSchema string
	// MigrationSchemas is the migration tool's managed-schema list; its first
	// non-blank entry substitutes for an absent default schema.
	MigrationSchemas []string
	// GeneratorInputSchema is the schema the generation target introspects.
	GeneratorInputSchema string
	// DeclaredName is the schema declaration's own identifier, used as the
	// last fallback when neither tool names a schema.
	DeclaredName string
}

// ResolveSchema reconciles the migration tool's schema with the generator's
// input schema. Both values are normalized before comparison; when both are
// present they must match case-insensitively and the migration value wins,
// keeping its original casing. When neither is present the declared schema
// name stands in; with no fallback left it fails with MissingSchemaError.
func (r *Resolver) ResolveSchema(src SchemaSources) (string, error) {
	migration := normalizeSchema(src.MigrationDefaultSchema)
	if migration == "" {
		for _, candidate := range src.MigrationSchemas {
			if migration = normalizeSchema(candidate); migration != "" {
				break
			}
		}
	}
	generator := normalizeSchema(src.GeneratorInputSchema)

	switch {
	case migration != "" && generator != "":
		if !strings.EqualFold(migration, generator) {
			return "", NewSchemaMismatchError(r.database, r.schema, migration, generator)
		}
		return migration, nil
	case migration != "":
		return migration, nil
	case generator != "":
		return generator, nil
	}

	if declared := strings.TrimSpace(src.DeclaredName); declared != "" {
		r.logger.Debug("no schema declared by either tool, using declaration name", "schema", declared)
		return declared, nil
	}

	return "", NewMissingSchemaError(r.database, r.schema)
}

// normalizeSchema trims whitespace and strips one layer of matching quotes.
// Quoting is a tool-level escaping concern, not part of the schema identity.
func normalizeSchema(s string) string {
	return util.Unquote(strings.TrimSpace(s))
}
