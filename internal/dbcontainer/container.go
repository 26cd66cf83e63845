package dbcontainer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Sentinel error for driver dispatch failures.
var (
	// ErrUnsupportedDriver is returned when no provisioner recognizes a driver.
	ErrUnsupportedDriver = errors.New("schemaforge: unsupported database driver")
)

// UnsupportedDriverError reports a driver class no provisioner recognizes.
type UnsupportedDriverError struct {
	driver string
}

// Error returns the error string listing the supported families.
func (e *UnsupportedDriverError) Error() string {
	return fmt.Sprintf(
		"schemaforge: driver %q is not recognized by any database provisioner (supported: PostgreSQL, MySQL)",
		e.driver)
}

// Is reports whether the target error matches UnsupportedDriverError.
func (e *UnsupportedDriverError) Is(err error) bool {
	return err == ErrUnsupportedDriver
}

// Driver returns the unrecognized driver class name.
func (e *UnsupportedDriverError) Driver() string {
	return e.driver
}

// NewUnsupportedDriverError returns a new UnsupportedDriverError.
func NewUnsupportedDriverError(driver string) *UnsupportedDriverError {
	return &UnsupportedDriverError{driver: driver}
}

// IsUnsupportedDriver returns true if the error is an UnsupportedDriverError.
func IsUnsupportedDriver(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedDriverError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedDriver)
}

// Handle carries the connection facts of one running throwaway database.
// Callers read these four values and nothing else.
type Handle struct {
	// URL is a database/sql DSN for the running instance.
	URL string
	// Username and Password authenticate against the instance.
	Username string
	Password string
	// Driver is the database/sql driver name matching URL.
	Driver string
}

// Container is a running throwaway database. Close must be called on every
// exit path once started.
type Container struct {
	Handle
	terminate func(context.Context) error
}

// Close stops and removes the underlying container.
func (c *Container) Close(ctx context.Context) error {
	if c.terminate == nil {
		return nil
	}
	return c.terminate(ctx)
}

// Options customizes a provisioned database.
type Options struct {
	// Image overrides the provisioner's default container image.
	Image string `mapstructure:"image"`
	// Database names the created database; blank uses the provisioner default.
	Database string `mapstructure:"database"`
	// Env adds or overrides container environment variables.
	Env map[string]string `mapstructure:"env"`
}

// Provisioner starts throwaway databases for one driver family. The set of
// provisioners is fixed at build time; dispatch is a plain list walk, not
// runtime discovery.
type Provisioner interface {
	// Supports reports whether the driver class belongs to this family.
	// Both JDBC class names and database/sql driver names are recognized.
	Supports(driverClass string) bool
	// Start provisions and waits for a database, returning its handle.
	Start(ctx context.Context, opts Options) (*Container, error)
}

var provisioners = []Provisioner{
	&PostgresProvisioner{},
	&MySQLProvisioner{},
}

// For returns the provisioner responsible for the driver class, or an
// UnsupportedDriverError when none recognizes it.
func For(driverClass string) (Provisioner, error) {
	normalized := strings.TrimSpace(driverClass)
	for _, p := range provisioners {
		if p.Supports(normalized) {
			return p, nil
		}
	}
	return nil, NewUnsupportedDriverError(driverClass)
}

// DriverAvailable reports whether a database/sql driver with the given name
// is registered in this binary.
func DriverAvailable(name string) bool {
	for _, registered := range sql.Drivers() {
		if registered == name {
			return true
		}
	}
	return false
}
