package dbcontainer

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Integration test with PostgreSQL via testcontainers
func TestPostgresProvisionerStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	p := &PostgresProvisioner{}
	container, err := p.Start(ctx, Options{})
	if err != nil {
		// Skip on CI envs that cannot run containers, rather than failing whole suite
		t.Skipf("skipping postgres container test: %v", err)
		return
	}
	defer func() { _ = container.Close(ctx) }()

	if container.Driver != "pgx" {
		t.Fatalf("expected pgx driver, got %s", container.Driver)
	}
	if !DriverAvailable(container.Driver) {
		t.Fatalf("driver %s not registered in test binary", container.Driver)
	}

	db, err := sql.Open(container.Driver, container.URL)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = db.Close() }()

	deadline := time.Now().Add(30 * time.Second)
	for {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("postgres not ready: %v", err)
		}
		time.Sleep(500 * time.Millisecond)
	}

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil || one != 1 {
		t.Fatalf("SELECT 1 => %d, %v", one, err)
	}
}
