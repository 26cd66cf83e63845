package schemaforge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Covers the declared-schema lifecycle at the public API surface: agreement,
// case-insensitive agreement, then a hard mismatch.
func TestEvaluateSchemaAgreement(t *testing.T) {
	dir := t.TempDir()

	declare := func(inputSchema string) *Declaration {
		path := filepath.Join(dir, "schemaforge.yaml")
		writeFile(t, path, `
databases:
  - name: db1
    driver: org.postgresql.Driver
    schemas:
      - name: public
        targets: [core]
        migration:
          default_schema: public
targets:
  - name: core
    input_schema: "`+inputSchema+`"
    output_dir: gen/core
    package: core
`)
		decl, err := LoadDeclaration(path)
		if err != nil {
			t.Fatalf("LoadDeclaration failed: %v", err)
		}
		return decl
	}

	resolver := NewLocationResolver([]string{t.TempDir()}, nil, dir)

	// Matching schemas resolve cleanly.
	rc, err := Evaluate(declare("public"), resolver, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	unit, ok := rc.Unit("core")
	if !ok {
		t.Fatalf("work unit missing")
	}
	ec, err := unit.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ec.Schema != "public" {
		t.Fatalf("got %q", ec.Schema)
	}

	// Case differences agree; the migration casing is kept.
	rc, err = Evaluate(declare("PUBLIC"), resolver, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	unit, _ = rc.Unit("core")
	ec, err = unit.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if ec.Schema != "public" {
		t.Fatalf("migration casing must win, got %q", ec.Schema)
	}

	// Disagreement fails, naming both values.
	rc, err = Evaluate(declare("other"), resolver, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	unit, _ = rc.Unit("core")
	_, err = unit.Resolve()
	if err == nil || !strings.Contains(err.Error(), "public") || !strings.Contains(err.Error(), "other") {
		t.Fatalf("expected mismatch naming both schemas, got %v", err)
	}
}

func TestEvaluateRejectsDuplicateTargetClaim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemaforge.yaml")
	writeFile(t, path, `
databases:
  - name: db1
    driver: org.postgresql.Driver
    schemas:
      - name: public
        targets: [core]
      - name: billing
        targets: [core]
targets:
  - name: core
    output_dir: gen/core
`)

	decl, err := LoadDeclaration(path)
	if err != nil {
		t.Fatalf("LoadDeclaration failed: %v", err)
	}
	_, err = Evaluate(decl, NewLocationResolver(nil, nil, dir), nil)
	if err == nil || !strings.Contains(err.Error(), "already claimed") {
		t.Fatalf("expected duplicate claim error, got %v", err)
	}
}

func TestFingerprintRoundTripThroughCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemaforge.yaml")
	writeFile(t, path, `
databases:
  - name: db1
    driver: org.postgresql.Driver
    schemas:
      - name: public
        targets: [core]
targets:
  - name: core
    input_schema: public
    output_dir: gen/core
`)

	decl, err := LoadDeclaration(path)
	if err != nil {
		t.Fatalf("LoadDeclaration failed: %v", err)
	}

	buildCache, err := OpenCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenCache failed: %v", err)
	}
	defer func() { _ = buildCache.Close() }()

	rc, err := Evaluate(decl, NewLocationResolver([]string{t.TempDir()}, nil, dir), buildCache)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	fps, err := rc.Fingerprints()
	if err != nil {
		t.Fatalf("Fingerprints failed: %v", err)
	}
	fp := fps["core"]
	if fp == "" {
		t.Fatalf("missing fingerprint")
	}

	if err := buildCache.Record("core", fp, nil); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	unchanged, err := buildCache.Unchanged("core", fp, nil)
	if err != nil || !unchanged {
		t.Fatalf("expected cache hit, got %v, %v", unchanged, err)
	}
}
