package resolve

import (
	"strings"
	"testing"
)

func TestStringPrecedence(t *testing.T) {
	if got := String("override", "schema", "fallback"); got != "override" {
		t.Fatalf("expected tier-1 value, got %q", got)
	}
	if got := String("", "schema", "fallback"); got != "schema" {
		t.Fatalf("expected tier-2 value, got %q", got)
	}
	if got := String("  ", "\t", "fallback"); got != "fallback" {
		t.Fatalf("blank tiers should be skipped, got %q", got)
	}
	if got := String("", "  "); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}

func TestListPrecedence(t *testing.T) {
	got := List(nil, []string{""}, []string{"a", "b"})
	if len(got) != 2 || got[0] != "a" {
		t.Fatalf("all-blank lists should be skipped, got %v", got)
	}
	if got := List(nil, []string{}); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestBoolPrecedence(t *testing.T) {
	f := false
	tr := true
	if got := Bool(nil, &f, &tr); got == nil || *got != false {
		t.Fatalf("explicit false should terminate the walk, got %v", got)
	}
	if got := Bool(nil, nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestResolveDriverPrecedence(t *testing.T) {
	r := NewResolver("db1", "public")

	cases := []struct {
		name string
		src  DriverSources
		want string
	}{
		{"binding override wins", DriverSources{
			BindingOverride: "org.postgresql.Driver",
			DatabaseDriver:  "com.mysql.cj.jdbc.Driver",
		}, "org.postgresql.Driver"},
		{"schema override beats database", DriverSources{
			SchemaOverride: "org.postgresql.Driver",
			DatabaseDriver: "com.mysql.cj.jdbc.Driver",
		}, "org.postgresql.Driver"},
		{"database beats migration settings", DriverSources{
			DatabaseDriver:  "org.postgresql.Driver",
			MigrationDriver: "com.mysql.cj.jdbc.Driver",
		}, "org.postgresql.Driver"},
		{"migration settings beat jdbc fallback", DriverSources{
			MigrationDriver: "org.postgresql.Driver",
			JDBCFallback:    "com.mysql.cj.jdbc.Driver",
		}, "org.postgresql.Driver"},
		{"jdbc fallback used last", DriverSources{
			JDBCFallback: "com.mysql.cj.jdbc.Driver",
		}, "com.mysql.cj.jdbc.Driver"},
		{"blank tiers skipped", DriverSources{
			BindingOverride: "  ",
			DatabaseDriver:  "org.postgresql.Driver",
		}, "org.postgresql.Driver"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ResolveDriver(tc.src)
			if err != nil {
				t.Fatalf("ResolveDriver failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestResolveDriverMissing(t *testing.T) {
	r := NewResolver("db1", "public")

	_, err := r.ResolveDriver(DriverSources{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsMissingDriver(err) {
		t.Fatalf("expected MissingDriverError, got %v", err)
	}
	for _, fragment := range []string{"public", "db1", "binding override", "JDBC"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("error should mention %q: %v", fragment, err)
		}
	}
}

func TestResolveSchemaAgreement(t *testing.T) {
	r := NewResolver("db1", "public")

	// Both present and equal
	got, err := r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "public",
	})
	if err != nil || got != "public" {
		t.Fatalf("got %q, %v", got, err)
	}

	// Case-insensitive agreement, migration casing wins
	got, err = r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "PUBLIC",
	})
	if err != nil || got != "public" {
		t.Fatalf("expected migration casing to win, got %q, %v", got, err)
	}

	// Disagreement is fatal and names both values
	_, err = r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "other",
	})
	if !IsSchemaMismatch(err) {
		t.Fatalf("expected SchemaMismatchError, got %v", err)
	}
	if !strings.Contains(err.Error(), `"public"`) || !strings.Contains(err.Error(), `"other"`) {
		t.Fatalf("mismatch error should name both values: %v", err)
	}
}

func TestResolveSchemaNormalization(t *testing.T) {
	r := NewResolver("db1", "public")

	// One quote layer stripped, whitespace trimmed
	got, err := r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: ` "billing" `,
		GeneratorInputSchema:   "'BILLING'",
	})
	if err != nil || got != "billing" {
		t.Fatalf("got %q, %v", got, err)
	}

	// Quoted-blank counts as absent on the generator side
	got, err = r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "billing",
		GeneratorInputSchema:   `""`,
	})
	if err != nil || got != "billing" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveSchemaSingleSource(t *testing.T) {
	r := NewResolver("db1", "public")

	got, err := r.ResolveSchema(SchemaSources{MigrationDefaultSchema: "billing"})
	if err != nil || got != "billing" {
		t.Fatalf("got %q, %v", got, err)
	}

	got, err = r.ResolveSchema(SchemaSources{GeneratorInputSchema: "billing"})
	if err != nil || got != "billing" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveSchemaListFallback(t *testing.T) {
	r := NewResolver("db1", "public")

	// First non-blank schema list entry substitutes for the default schema
	got, err := r.ResolveSchema(SchemaSources{
		MigrationSchemas:     []string{"", " ", "billing", "audit"},
		GeneratorInputSchema: "BILLING",
	})
	if err != nil || got != "billing" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestResolveSchemaDeclaredFallback(t *testing.T) {
	r := NewResolver("db1", "public")

	got, err := r.ResolveSchema(SchemaSources{DeclaredName: "public"})
	if err != nil || got != "public" {
		t.Fatalf("got %q, %v", got, err)
	}

	_, err = r.ResolveSchema(SchemaSources{})
	if !IsMissingSchema(err) {
		t.Fatalf("expected MissingSchemaError, got %v", err)
	}
}

// Mirrors the declared-schema lifecycle end to end: agreement, case-insensitive
// agreement with migration casing preserved, then a hard mismatch.
func TestResolveSchemaEndToEnd(t *testing.T) {
	r := NewResolver("db1", "public")

	got, err := r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "public",
		DeclaredName:           "public",
	})
	if err != nil || got != "public" {
		t.Fatalf("step 1: got %q, %v", got, err)
	}

	got, err = r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "PUBLIC",
		DeclaredName:           "public",
	})
	if err != nil || got != "public" {
		t.Fatalf("step 2: got %q, %v", got, err)
	}

	_, err = r.ResolveSchema(SchemaSources{
		MigrationDefaultSchema: "public",
		GeneratorInputSchema:   "other",
		DeclaredName:           "public",
	})
	if !IsSchemaMismatch(err) {
		t.Fatalf("step 3: expected SchemaMismatchError, got %v", err)
	}
	if !strings.Contains(err.Error(), "public") || !strings.Contains(err.Error(), "other") {
		t.Fatalf("step 3: error should mention both schemas: %v", err)
	}
}

func TestResolvePrefixes(t *testing.T) {
	r := NewResolver("db1", "public")

	// Distinct overrides win.
	v, rep := r.ResolvePrefixes("X", "Y")
	if v != "X" || rep != "Y" {
		t.Fatalf("got %q, %q", v, rep)
	}

	// Blanks fall back to the defaults.
	v, rep = r.ResolvePrefixes("", "")
	if v != "V" || rep != "R" {
		t.Fatalf("got %q, %q", v, rep)
	}

	// A colliding override is skipped in favor of the defaults.
	v, rep = r.ResolvePrefixes("R", "R")
	if v != "V" || rep != "R" {
		t.Fatalf("collision must keep the defaults, got %q, %q", v, rep)
	}
	v, rep = r.ResolvePrefixes("V", "V")
	if v != "V" || rep != "R" {
		t.Fatalf("collision must keep the defaults, got %q, %q", v, rep)
	}
}
