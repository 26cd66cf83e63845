package config

import (
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestMergeScalarPrecedence(t *testing.T) {
	base := &MigrationSettings{
		Driver:        strPtr("org.postgresql.Driver"),
		DefaultSchema: strPtr("public"),
	}
	override := &MigrationSettings{
		DefaultSchema: strPtr("billing"),
	}

	base.Merge(override)

	if base.Driver == nil || *base.Driver != "org.postgresql.Driver" {
		t.Fatalf("expected driver to survive merge, got %v", base.Driver)
	}
	if base.DefaultSchema == nil || *base.DefaultSchema != "billing" {
		t.Fatalf("expected default schema to be overridden, got %v", base.DefaultSchema)
	}
}

func TestMergeBlankStringDoesNotOverride(t *testing.T) {
	base := &MigrationSettings{Table: strPtr("schema_history")}
	override := &MigrationSettings{Table: strPtr("")}

	base.Merge(override)

	if base.Table == nil || *base.Table != "schema_history" {
		t.Fatalf("blank string should not override, got %v", base.Table)
	}
}

func TestMergeBoolFalseOverrides(t *testing.T) {
	base := &MigrationSettings{OutOfOrder: boolPtr(true)}
	override := &MigrationSettings{OutOfOrder: boolPtr(false)}

	base.Merge(override)

	if base.OutOfOrder == nil || *base.OutOfOrder != false {
		t.Fatalf("explicit false should override, got %v", base.OutOfOrder)
	}
}

func TestMergeListsReplaceWhenDeclared(t *testing.T) {
	base := &MigrationSettings{Locations: []string{"classpath:db/migration"}}
	override := &MigrationSettings{Locations: []string{"filesystem:/opt/migrations"}}

	base.Merge(override)

	if len(base.Locations) != 1 || base.Locations[0] != "filesystem:/opt/migrations" {
		t.Fatalf("declared list should replace, got %v", base.Locations)
	}

	base.Merge(&MigrationSettings{})
	if len(base.Locations) != 1 || base.Locations[0] != "filesystem:/opt/migrations" {
		t.Fatalf("absent list should not clear, got %v", base.Locations)
	}
}

func TestMergeMapsMergeKeywise(t *testing.T) {
	base := &MigrationSettings{Placeholders: map[string]string{"env": "dev", "region": "eu"}}
	override := &MigrationSettings{Placeholders: map[string]string{"env": "prod"}}

	base.Merge(override)

	if base.Placeholders["env"] != "prod" {
		t.Fatalf("expected env=prod, got %s", base.Placeholders["env"])
	}
	if base.Placeholders["region"] != "eu" {
		t.Fatalf("expected region to survive, got %s", base.Placeholders["region"])
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	base := &MigrationSettings{
		Driver:       strPtr("org.postgresql.Driver"),
		Placeholders: map[string]string{"env": "dev"},
		Locations:    []string{"classpath:db/migration"},
	}

	clone := base.Clone()
	clone.Placeholders["env"] = "prod"
	clone.Locations[0] = "filesystem:/tmp"
	*clone.Driver = "com.mysql.cj.jdbc.Driver"

	if base.Placeholders["env"] != "dev" {
		t.Fatalf("clone aliases placeholder map")
	}
	if base.Locations[0] != "classpath:db/migration" {
		t.Fatalf("clone aliases locations slice")
	}
	if *base.Driver != "org.postgresql.Driver" {
		t.Fatalf("clone aliases driver pointer")
	}
}

func TestDefaultSettings(t *testing.T) {
	defaults := DefaultSettings()

	if defaults.VersionedPrefix == nil || *defaults.VersionedPrefix != "V" {
		t.Fatalf("expected versioned prefix V, got %v", defaults.VersionedPrefix)
	}
	if defaults.RepeatablePrefix == nil || *defaults.RepeatablePrefix != "R" {
		t.Fatalf("expected repeatable prefix R, got %v", defaults.RepeatablePrefix)
	}
	if defaults.Separator == nil || *defaults.Separator != "__" {
		t.Fatalf("expected separator __, got %v", defaults.Separator)
	}
	if defaults.Table == nil || *defaults.Table != "schema_history" {
		t.Fatalf("expected history table schema_history, got %v", defaults.Table)
	}
	if len(defaults.Locations) != 1 || defaults.Locations[0] != "classpath:db/migration" {
		t.Fatalf("expected default location classpath:db/migration, got %v", defaults.Locations)
	}

	// Fresh allocation each call
	other := DefaultSettings()
	other.Locations[0] = "mutated"
	if DefaultSettings().Locations[0] != "classpath:db/migration" {
		t.Fatalf("DefaultSettings shares state across calls")
	}
}
