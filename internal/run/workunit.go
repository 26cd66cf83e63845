package run

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/schemaforge/schemaforge/internal/binding"
	"github.com/schemaforge/schemaforge/internal/common"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/dbcontainer"
	"github.com/schemaforge/schemaforge/internal/fingerprint"
	"github.com/schemaforge/schemaforge/internal/generator"
	"github.com/schemaforge/schemaforge/internal/location"
	"github.com/schemaforge/schemaforge/internal/migrate"
	"github.com/schemaforge/schemaforge/internal/resolve"
	"github.com/schemaforge/schemaforge/internal/target"
)

// WorkUnit is one schema/target pairing executed as a whole: provision,
// migrate, introspect, generate. Units are created by binding activation
// and disabled, never deleted, when their claim is withdrawn.
type WorkUnit struct {
	TargetName string
	Schema     binding.SchemaKey
	Disabled   bool

	run *Context
}

// EffectiveContext is the fully resolved, contradiction-free view used to
// do actual work. Derived and read-only; recomputed whenever any
// contributing source changes, never persisted beyond one execution.
type EffectiveContext struct {
	Driver    string
	Schema    string
	Image     string
	Settings  *config.MigrationSettings
	Locations []location.Resolved
	Target    *target.Target
}

// Resolve computes the unit's effective context: the settings tiers are
// merged, the driver and schema walked through their precedence chains, and
// migration locations expanded.
func (w *WorkUnit) Resolve() (*EffectiveContext, error) {
	db, err := w.run.database(w.Schema.Database)
	if err != nil {
		return nil, err
	}
	schemaDecl, err := w.run.schema(w.Schema)
	if err != nil {
		return nil, err
	}
	tgt, ok := w.run.Targets.Get(w.TargetName)
	if !ok {
		return nil, fmt.Errorf("unknown target: %s", w.TargetName)
	}

	settings := config.DefaultSettings()
	settings.Merge(&w.run.Decl.Defaults)
	settings.Merge(&db.Migration)
	settings.Merge(&schemaDecl.Migration)

	resolver := resolve.NewResolver(w.Schema.Database, w.Schema.Schema)

	versionedPrefix, repeatablePrefix := resolver.ResolvePrefixes(
		deref(settings.VersionedPrefix), deref(settings.RepeatablePrefix))
	settings.VersionedPrefix = &versionedPrefix
	settings.RepeatablePrefix = &repeatablePrefix

	driver, err := resolver.ResolveDriver(resolve.DriverSources{
		BindingOverride: w.run.DriverOverride,
		SchemaOverride:  schemaDecl.Driver,
		DatabaseDriver:  db.Driver,
		MigrationDriver: deref(settings.Driver),
		JDBCFallback:    tgt.JDBCDriver,
	})
	if err != nil {
		return nil, err
	}

	schema, err := resolver.ResolveSchema(resolve.SchemaSources{
		MigrationDefaultSchema: deref(settings.DefaultSchema),
		MigrationSchemas:       settings.Schemas,
		GeneratorInputSchema:   tgt.InputSchema,
		DeclaredName:           schemaDecl.Name,
	})
	if err != nil {
		return nil, err
	}

	return &EffectiveContext{
		Driver:    driver,
		Schema:    schema,
		Image:     db.Image,
		Settings:  settings,
		Locations: w.run.Locations.ResolveAll(settings.Locations),
		Target:    tgt,
	}, nil
}

// Fingerprint serializes the effective values that contribute to generated
// output. Connection tuning and diagnostic toggles are deliberately left
// out so changing them never invalidates the cache.
func (w *WorkUnit) Fingerprint(ec *EffectiveContext) string {
	snapshot := fingerprint.New().
		Set("database", w.Schema.Database).
		Set("schema", w.Schema.Schema).
		Set("target", w.TargetName).
		PutString("driver", ec.Driver).
		PutString("resolved_schema", ec.Schema).
		PutString("image", ec.Image)

	paths := make([]string, 0, len(ec.Locations))
	for _, loc := range ec.Locations {
		paths = append(paths, loc.Path)
	}
	snapshot.PutList("locations", paths)

	s := ec.Settings
	snapshot.
		PutStringPtr("table", s.Table).
		PutStringPtr("versioned_prefix", s.VersionedPrefix).
		PutStringPtr("repeatable_prefix", s.RepeatablePrefix).
		PutStringPtr("separator", s.Separator).
		PutList("suffixes", s.Suffixes).
		PutStringPtr("encoding", s.Encoding).
		PutMap("placeholders", s.Placeholders).
		PutBool("placeholder_replacement", s.PlaceholderReplacement).
		PutStringPtr("placeholder_prefix", s.PlaceholderPrefix).
		PutStringPtr("placeholder_suffix", s.PlaceholderSuffix).
		PutStringPtr("target_version", s.TargetVersion).
		PutBool("out_of_order", s.OutOfOrder).
		PutStringPtr("baseline_version", s.BaselineVersion).
		PutStringPtr("init_sql", s.InitSQL).
		PutList("ignore_migration_patterns", s.IgnoreMigrationPatterns).
		PutString("excludes", ec.Target.Excludes).
		PutString("package", ec.Target.Package)

	return snapshot.Build()
}

// Execute runs the unit end to end. The database container acquired here is
// released on every exit path before control returns.
func (w *WorkUnit) Execute(ctx context.Context) error {
	if w.Disabled {
		w.run.Logger.Info("skipping disabled work unit", "target", w.TargetName)
		return nil
	}
	logger := w.run.Logger.WithTarget(w.TargetName).WithDatabase(w.Schema.Database).WithSchema(w.Schema.Schema)

	ec, err := w.Resolve()
	if err != nil {
		return err
	}
	fp := w.Fingerprint(ec)
	migrations, stamps, err := w.discoverInputs(ec)
	if err != nil {
		return err
	}

	if w.run.Cache != nil {
		unchanged, err := w.run.Cache.Unchanged(w.TargetName, fp, stamps)
		if err != nil {
			return err
		}
		if unchanged {
			logger.Info("configuration and inputs unchanged, skipping generation")
			return nil
		}
	}

	provisioner, err := dbcontainer.For(ec.Driver)
	if err != nil {
		return err
	}
	db, err := w.run.database(w.Schema.Database)
	if err != nil {
		return err
	}
	container, err := provisioner.Start(ctx, dbcontainer.Options{Image: ec.Image, Env: db.Env})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if closeErr := container.Close(closeCtx); closeErr != nil {
			logger.Warn("failed to release database container", "error", closeErr)
		}
	}()

	if !dbcontainer.DriverAvailable(container.Driver) {
		return fmt.Errorf("database driver %q is not registered in this binary", container.Driver)
	}
	conn, err := sql.Open(container.Driver, container.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	// One pooled connection so session-level schema settings hold for the
	// whole migrate-then-introspect pass.
	conn.SetMaxOpenConns(1)
	if err := waitReady(ctx, conn); err != nil {
		return fmt.Errorf("database never became ready: %w", err)
	}

	if err := w.migrate(ctx, conn, container.Driver, ec, migrations, logger); err != nil {
		return err
	}
	if w.run.SkipGenerate {
		return nil
	}
	if err := w.generate(ctx, conn, container.Driver, ec, logger); err != nil {
		return err
	}

	if w.run.Cache != nil {
		if err := w.run.Cache.Record(w.TargetName, fp, stamps); err != nil {
			return err
		}
	}
	return nil
}

// discoverInputs lists the unit's migration scripts and stamps each input
// file with its modification time, so edits and additions invalidate the
// cached build even when the configuration fingerprint is unchanged.
func (w *WorkUnit) discoverInputs(ec *EffectiveContext) ([]migrate.Migration, map[string]string, error) {
	migrations, err := migrate.Discover(ec.Locations, migrate.Naming{
		VersionedPrefix:  deref(ec.Settings.VersionedPrefix),
		RepeatablePrefix: deref(ec.Settings.RepeatablePrefix),
		Separator:        deref(ec.Settings.Separator),
		Suffixes:         ec.Settings.Suffixes,
	})
	if err != nil {
		return nil, nil, err
	}

	stamps := make(map[string]string, len(migrations))
	for i := range migrations {
		// Archive-packed scripts share the archive file as their source;
		// the archive's own stamp covers them all.
		source := migrations[i].Source
		if _, done := stamps[source]; done {
			continue
		}
		info, err := os.Stat(source)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to stat migration input %s: %w", source, err)
		}
		stamps[source] = strconv.FormatInt(info.ModTime().UnixNano(), 10)
	}
	return migrations, stamps, nil
}

func (w *WorkUnit) migrate(ctx context.Context, conn *sql.DB, driver string, ec *EffectiveContext, migrations []migrate.Migration, logger *common.Logger) error {
	migrations, err := migrate.FilterIgnored(migrations, ec.Settings.IgnoreMigrationPatterns)
	if err != nil {
		return err
	}

	migrator := migrate.NewMigrator(conn, driver, deref(ec.Settings.Table))
	migrator.OutOfOrder = boolValue(ec.Settings.OutOfOrder)
	migrator.TargetVersion = deref(ec.Settings.TargetVersion)
	migrator.SkipExecuting = boolValue(ec.Settings.SkipExecutingMigrations)
	if ec.Settings.PlaceholderReplacement == nil || *ec.Settings.PlaceholderReplacement {
		migrator.Placeholders = ec.Settings.Placeholders
		migrator.PlaceholderPrefix = deref(ec.Settings.PlaceholderPrefix)
		migrator.PlaceholderSuffix = deref(ec.Settings.PlaceholderSuffix)
	}

	createSchemas := ec.Settings.CreateSchemas == nil || *ec.Settings.CreateSchemas
	if err := migrator.ApplySchema(ctx, ec.Schema, createSchemas); err != nil {
		return err
	}

	if initSQL := deref(ec.Settings.InitSQL); initSQL != "" {
		if _, err := conn.ExecContext(ctx, initSQL); err != nil {
			return fmt.Errorf("init sql failed: %w", err)
		}
	}

	applied, err := migrator.Migrate(ctx, migrations)
	if err != nil {
		return err
	}
	logger.Info("migrations complete", "applied", applied, "discovered", len(migrations))
	return nil
}

func (w *WorkUnit) generate(ctx context.Context, conn *sql.DB, driver string, ec *EffectiveContext, logger *common.Logger) error {
	excludes := ec.Target.Excludes
	if excludes == "" {
		excludes = generator.HistoryTableExclusion(deref(ec.Settings.Table))
	}

	tables, err := generator.Introspect(ctx, conn, driver, ec.Schema, excludes)
	if err != nil {
		return err
	}
	path, err := generator.New(ec.Target).Generate(ec.Schema, tables)
	if err != nil {
		return err
	}
	logger.Info("generation complete", "tables", len(tables), "output", path)
	return nil
}

func waitReady(ctx context.Context, conn *sql.DB) error {
	var lastErr error
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if lastErr = conn.PingContext(ctx); lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return lastErr
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
