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
	mysqlUser     = "schemaforge"
	mysqlPassword = "schemaforge"
	mysqlDatabase = "schemaforge"
)

// MySQLProvisioner starts throwaway MySQL instances.
type MySQLProvisioner struct{}

// Supports recognizes both MySQL JDBC class generations and the Go driver.
func (p *MySQLProvisioner) Supports(driverClass string) bool {
	switch driverClass {
	case "com.mysql.cj.jdbc.Driver", "com.mysql.jdbc.Driver", "mysql":
		return true
	}
	return strings.Contains(util.TrimAndLower(driverClass), "mysql")
}

// Start provisions a MySQL container and waits until it accepts connections.
func (p *MySQLProvisioner) Start(ctx context.Context, opts Options) (*Container, error) {
	image := util.TrimWithDefault(opts.Image, config.DefaultMySQLImage)
	database := util.TrimWithDefault(opts.Database, mysqlDatabase)

	env := map[string]string{
		"MYSQL_USER":                 mysqlUser,
		"MYSQL_PASSWORD":             mysqlPassword,
		"MYSQL_DATABASE":             database,
		"MYSQL_RANDOM_ROOT_PASSWORD": "yes",
	}
	for k, v := range opts.Env {
		env[k] = v
	}

	logger := common.GetLogger().WithComponent("dbcontainer")
	logger.Info("starting mysql container", "image", image)

	req := tc.ContainerRequest{
		Image:        image,
		ExposedPorts: []string{"3306/tcp"},
		Env:          env,
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("3306/tcp"),
			wait.ForLog("ready for connections"),
		),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return nil, fmt.Errorf("failed to start mysql container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to read mysql container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "3306/tcp")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to read mysql container port: %w", err)
	}

	return &Container{
		Handle: Handle{
			URL: fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&multiStatements=true",
				env["MYSQL_USER"], env["MYSQL_PASSWORD"], host, port.Port(), database),
			Username: env["MYSQL_USER"],
			Password: env["MYSQL_PASSWORD"],
			Driver:   "mysql",
		},
		terminate: func(ctx context.Context) error { return container.Terminate(ctx) },
	}, nil
}
