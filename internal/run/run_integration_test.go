package run

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/schemaforge/schemaforge/internal/cache"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/dbcontainer"
	"github.com/schemaforge/schemaforge/internal/location"
)

// End-to-end run against a real PostgreSQL container: migrate, introspect,
// generate, and cache the fingerprint.
func TestExecuteEndToEndPostgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	// Check for a container runtime first so CI hosts without one skip.
	warmup, err := (&dbcontainer.PostgresProvisioner{}).Start(ctx, dbcontainer.Options{})
	if err != nil {
		t.Skipf("skipping end-to-end test, no container runtime: %v", err)
		return
	}
	_ = warmup.Close(ctx)

	migrationsDir := t.TempDir()
	script := "CREATE TABLE users (id BIGINT PRIMARY KEY, name TEXT NOT NULL, created_at TIMESTAMP);"
	if err := os.WriteFile(filepath.Join(migrationsDir, "V1__users.sql"), []byte(script), 0o600); err != nil {
		t.Fatalf("write migration: %v", err)
	}

	outDir := filepath.Join(t.TempDir(), "gen")
	decl := &config.Declaration{
		Databases: []config.DatabaseDecl{{
			Name:   "db1",
			Driver: "org.postgresql.Driver",
			Schemas: []config.SchemaDecl{{
				Name:    "public",
				Targets: []string{"core"},
				Migration: config.MigrationSettings{
					DefaultSchema: func() *string { s := "public"; return &s }(),
					Locations:     []string{"filesystem:" + migrationsDir},
				},
			}},
		}},
		Targets: []config.TargetDecl{{
			Name:        "core",
			InputSchema: "public",
			OutputDir:   outDir,
			Package:     "core",
		}},
	}

	buildCache, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("cache open: %v", err)
	}
	defer func() { _ = buildCache.Close() }()

	rc, err := New(decl, location.NewResolver(nil, nil, t.TempDir()), buildCache)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := rc.Execute(ctx); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "models.go"))
	if err != nil {
		t.Fatalf("generated file missing: %v", err)
	}
	// Collapse gofmt's struct-field alignment before matching.
	src := strings.Join(strings.Fields(string(data)), " ")
	if !strings.Contains(src, "type User struct") || !strings.Contains(src, "Name string") {
		t.Fatalf("unexpected generated output:\n%s", data)
	}
	if strings.Contains(src, "SchemaHistory") {
		t.Fatalf("history table must be excluded from generation:\n%s", src)
	}

	// Second run with identical configuration is served from the cache.
	unit, _ := rc.Unit("core")
	ec, err := unit.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	_, stamps, err := unit.discoverInputs(ec)
	if err != nil {
		t.Fatalf("discoverInputs failed: %v", err)
	}
	unchanged, err := buildCache.Unchanged("core", unit.Fingerprint(ec), stamps)
	if err != nil || !unchanged {
		t.Fatalf("fingerprint not cached: %v, %v", unchanged, err)
	}
}
