package dbcontainer

import (
	"context"
	"fmt"
	"strings"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/schemaforge/schemaforge/internal/common"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/util"
)

const (
	postgresUser     = "schemaforge"
	postgresPassword = "schemaforge"
	postgresDatabase = "schemaforge"
)

// PostgresProvisioner starts throwaway PostgreSQL instances.
type PostgresProvisioner struct{}

// Supports recognizes the PostgreSQL JDBC class and the pgx stdlib driver.
func (p *PostgresProvisioner) Supports(driverClass string) bool {
	switch driverClass {
	case "org.postgresql.Driver", "postgres", "postgresql", "pgx":
		return true
	}
	return strings.Contains(util.TrimAndLower(driverClass), "postgresql")
}

// Start provisions a PostgreSQL container and waits until it accepts
// connections.
func (p *PostgresProvisioner) Start(ctx context.Context, opts Options) (*Container, error) {
	image := util.TrimWithDefault(opts.Image, config.DefaultPostgresImage)
	database := util.TrimWithDefault(opts.Database, postgresDatabase)

	env := map[string]string{
		"POSTGRES_USER":     postgresUser,
		"POSTGRES_PASSWORD": postgresPassword,
		"POSTGRES_DB":       database,
	}
	for k, v := range opts.Env {
		env[k] = v
	}

	logger := common.GetLogger().WithComponent("dbcontainer")
	logger.Info("starting postgres container", "image", image)

	req := tc.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"5432/tcp"},
		Env:          env,
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to read postgres container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to read postgres container port: %w", err)
	}

	return &Container{
		Handle: Handle{
			URL: fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
				env["POSTGRES_USER"], env["POSTGRES_PASSWORD"], host, port.Port(), database),
			Username: env["POSTGRES_USER"],
			Password: env["POSTGRES_PASSWORD"],
			Driver:   "pgx",
		},
		terminate: func(ctx context.Context) error { return container.Terminate(ctx) },
	}, nil
}
