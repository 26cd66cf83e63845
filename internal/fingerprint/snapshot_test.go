package fingerprint

import (
	"testing"
)

func TestBuildJoinsInInsertionOrder(t *testing.T) {
	s := New().
		Set("database", "db1").
		Set("schema", "public").
		PutString("driver", "org.postgresql.Driver")

	want := "database=db1|schema=public|driver=org.postgresql.Driver"
	if got := s.Build(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestAbsentValuesLeaveNoKey(t *testing.T) {
	s := New().
		Set("database", "db1").
		PutString("driver", "  ").
		PutList("locations", nil).
		PutMap("placeholders", nil).
		PutBool("out_of_order", nil).
		PutInt("connect_retries", nil).
		PutStringPtr("table", nil)

	if got := s.Build(); got != "database=db1" {
		t.Fatalf("absent values must not appear, got %q", got)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 key, got %d", s.Len())
	}
}

func TestSetRecordsBlankValues(t *testing.T) {
	s := New().Set("override", "")
	if got := s.Build(); got != "override=" {
		t.Fatalf("Set must record blanks, got %q", got)
	}
}

func TestListBracketing(t *testing.T) {
	s := New().PutList("locations", []string{"classpath:db/migration", "filesystem:/opt"})
	want := "locations=[classpath:db/migration,filesystem:/opt]"
	if got := s.Build(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestMapSortedKeys(t *testing.T) {
	s := New().PutMap("placeholders", map[string]string{
		"zone": "eu",
		"env":  "dev",
		"app":  "billing",
	})
	want := "placeholders={app:billing,env:dev,zone:eu}"
	if got := s.Build(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestBoolAndIntValues(t *testing.T) {
	f := false
	n := 3
	s := New().PutBool("out_of_order", &f).PutInt("connect_retries", &n)
	want := "out_of_order=false|connect_retries=3"
	if got := s.Build(); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestDeterminismAcrossBuilds(t *testing.T) {
	build := func() string {
		return New().
			Set("database", "db1").
			Set("schema", "public").
			PutMap("placeholders", map[string]string{"b": "2", "a": "1", "c": "3"}).
			PutList("locations", []string{"classpath:db/migration"}).
			Build()
	}

	first := build()
	for i := 0; i < 50; i++ {
		if got := build(); got != first {
			t.Fatalf("iteration %d: got %q want %q", i, got, first)
		}
	}
}

func TestSingleFieldChangeChangesResult(t *testing.T) {
	base := func() *Snapshot {
		return New().
			Set("database", "db1").
			Set("schema", "public").
			PutString("driver", "org.postgresql.Driver").
			PutList("locations", []string{"classpath:db/migration"})
	}

	original := base().Build()

	changed := base().PutMap("placeholders", map[string]string{"env": "dev"}).Build()
	if changed == original {
		t.Fatalf("adding a field must change the fingerprint")
	}

	if got := New().
		Set("database", "db1").
		Set("schema", "PUBLIC").
		PutString("driver", "org.postgresql.Driver").
		PutList("locations", []string{"classpath:db/migration"}).
		Build(); got == original {
		t.Fatalf("changing a value must change the fingerprint")
	}
}

func TestKeyOverwriteKeepsPosition(t *testing.T) {
	s := New().Set("a", "1").Set("b", "2").Set("a", "3")
	if got := s.Build(); got != "a=3|b=2" {
		t.Fatalf("overwrite should keep the original position, got %q", got)
	}
}

func TestSnapshotValuesDoNotAlias(t *testing.T) {
	list := []string{"one"}
	m := map[string]string{"k": "v"}
	s := New().PutList("list", list).PutMap("map", m)

	list[0] = "mutated"
	m["k"] = "mutated"

	if got := s.Build(); got != "list=[one]|map={k:v}" {
		t.Fatalf("snapshot must copy inputs, got %q", got)
	}
}
