package resolve

import (
	"errors"
	"fmt"
)

// Sentinel errors for configuration resolution failures.
var (
	// ErrMissingDriver is returned when no precedence tier supplies a driver.
	ErrMissingDriver = errors.New("schemaforge: no database driver resolvable")

	// ErrMissingSchema is returned when no source supplies a schema name.
	ErrMissingSchema = errors.New("schemaforge: no schema resolvable")

	// ErrSchemaMismatch is returned when the migration tool and the generator
	// declare different schemas for the same work unit.
	ErrSchemaMismatch = errors.New("schemaforge: schema declarations disagree")
)

// MissingDriverError reports that every driver precedence tier was absent.
type MissingDriverError struct {
	database string
	schema   string
}

// Error returns the error string. It enumerates every place the driver could
// have been supplied so the declaration can be fixed without reading source.
func (e *MissingDriverError) Error() string {
	return fmt.Sprintf(
		"schemaforge: no database driver for schema %q in database %q; "+
			"set it via a binding override, the database declaration, the schema's migration settings, or the target's JDBC driver",
		e.schema, e.database)
}

// Is reports whether the target error matches MissingDriverError.
func (e *MissingDriverError) Is(err error) bool {
	return err == ErrMissingDriver
}

// Database returns the logical database name.
func (e *MissingDriverError) Database() string {
	return e.database
}

// Schema returns the logical schema name.
func (e *MissingDriverError) Schema() string {
	return e.schema
}

// NewMissingDriverError returns a new MissingDriverError for the given context.
func NewMissingDriverError(database, schema string) *MissingDriverError {
	return &MissingDriverError{database: database, schema: schema}
}

// IsMissingDriver returns true if the error is a MissingDriverError.
func IsMissingDriver(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingDriverError
	return errors.As(err, &e) || errors.Is(err, ErrMissingDriver)
}

// MissingSchemaError reports that no schema name could be resolved.
type MissingSchemaError struct {
	database string
	schema   string
}

// Error returns the error string.
func (e *MissingSchemaError) Error() string {
	return fmt.Sprintf(
		"schemaforge: no schema name for declaration %q in database %q; "+
			"set the migration default schema, the migration schema list, or the target's input schema",
		e.schema, e.database)
}

// Is reports whether the target error matches MissingSchemaError.
func (e *MissingSchemaError) Is(err error) bool {
	return err == ErrMissingSchema
}

// NewMissingSchemaError returns a new MissingSchemaError for the given context.
func NewMissingSchemaError(database, schema string) *MissingSchemaError {
	return &MissingSchemaError{database: database, schema: schema}
}

// IsMissingSchema returns true if the error is a MissingSchemaError.
func IsMissingSchema(err error) bool {
	if err == nil {
		return false
	}
	var e *MissingSchemaError
	return errors.As(err, &e) || errors.Is(err, ErrMissingSchema)
}

// SchemaMismatchError reports that the migration tool and the generator name
// different schemas. The migration value is reported as the preferred one.
type SchemaMismatchError struct {
	database       string
	schema         string
	migrationValue string
	generatorValue string
}

// Error returns the error string naming both conflicting values.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf(
		"schemaforge: schema declarations disagree for %q in database %q: migration settings name %q but the generator target names %q; "+
			"align both on %q or remove one of the declarations",
		e.schema, e.database, e.migrationValue, e.generatorValue, e.migrationValue)
}

// Is reports whether the target error matches SchemaMismatchError.
func (e *SchemaMismatchError) Is(err error) bool {
	return err == ErrSchemaMismatch
}

// MigrationValue returns the schema named by the migration settings.
func (e *SchemaMismatchError) MigrationValue() string {
	return e.migrationValue
}

// GeneratorValue returns the schema named by the generator target.
func (e *SchemaMismatchError) GeneratorValue() string {
	return e.generatorValue
}

// NewSchemaMismatchError returns a new SchemaMismatchError for the given context.
func NewSchemaMismatchError(database, schema, migrationValue, generatorValue string) *SchemaMismatchError {
	return &SchemaMismatchError{
		database:       database,
		schema:         schema,
		migrationValue: migrationValue,
		generatorValue: generatorValue,
	}
}

// IsSchemaMismatch returns true if the error is a SchemaMismatchError.
func IsSchemaMismatch(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaMismatchError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaMismatch)
}
