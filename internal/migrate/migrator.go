package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	"github.com/schemaforge/schemaforge/internal/common"
)

// Migrator applies discovered migrations to a live database and records
// them in a history table. Script contents are executed verbatim after
// placeholder substitution; no SQL parsing happens here.
type Migrator struct {
	DB     *sql.DB
	Driver string
	Table  string

	Placeholders      map[string]string
	PlaceholderPrefix string
	PlaceholderSuffix string

	// OutOfOrder allows a pending version below the highest applied one;
	// without it such a migration aborts the pass.
	OutOfOrder bool
	// TargetVersion, when set, leaves versions above it pending.
	TargetVersion string
	// SkipExecuting records migrations as applied without running them.
	SkipExecuting bool

	logger *common.Logger
}

// NewMigrator creates a migrator for one open connection.
func NewMigrator(db *sql.DB, driver, table string) *Migrator {
	return &Migrator{
		DB:     db,
		Driver: driver,
		Table:  table,
		logger: common.GetLogger().WithComponent("migrate"),
	}
}

// EnsureHistoryTable creates the migration history table when missing.
func (m *Migrator) EnsureHistoryTable(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		installed_rank INTEGER NOT NULL,
		version VARCHAR(50),
		description VARCHAR(200) NOT NULL,
		script VARCHAR(1000) NOT NULL,
		checksum BIGINT,
		installed_on TIMESTAMP NOT NULL,
		success BOOLEAN NOT NULL,
		PRIMARY KEY (installed_rank)
	)`, m.Table)
	if _, err := m.DB.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create history table %s: %w", m.Table, err)
	}
	return nil
}

// ApplySchema makes schema the session default, creating it first when
// create is set. Dialects without schema support are left untouched. The
// caller must pin the connection pool to a single connection for the
// session setting to cover the whole pass.
func (m *Migrator) ApplySchema(ctx context.Context, schema string, create bool) error {
	if schema == "" {
		return nil
	}
	switch {
	case m.Driver == "pgx" || strings.Contains(m.Driver, "postgres"):
		if create {
			if _, err := m.DB.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schema)); err != nil {
				return fmt.Errorf("failed to create schema %s: %w", schema, err)
			}
		}
		if _, err := m.DB.ExecContext(ctx, fmt.Sprintf("SET search_path TO %q", schema)); err != nil {
			return fmt.Errorf("failed to set search_path to %s: %w", schema, err)
		}
	case m.Driver == "mysql":
		if create {
			if _, err := m.DB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", schema)); err != nil {
				return fmt.Errorf("failed to create database %s: %w", schema, err)
			}
		}
		if _, err := m.DB.ExecContext(ctx, fmt.Sprintf("USE `%s`", schema)); err != nil {
			return fmt.Errorf("failed to select database %s: %w", schema, err)
		}
	}
	return nil
}

// appliedState captures what the history table already holds.
type appliedState struct {
	versions   map[string]bool
	checksums  map[string]int64 // repeatable description -> checksum
	maxVersion string
	nextRank   int
}

func (m *Migrator) applied(ctx context.Context) (*appliedState, error) {
	state := &appliedState{
		versions:  make(map[string]bool),
		checksums: make(map[string]int64),
		nextRank:  1,
	}

	query := fmt.Sprintf(
		"SELECT installed_rank, version, description, checksum FROM %s WHERE success = %s ORDER BY installed_rank",
		m.Table, m.boolLiteral(true))
	rows, err := m.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read history table %s: %w", m.Table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var rank int
		var version sql.NullString
		var description string
		var checksum sql.NullInt64
		if err := rows.Scan(&rank, &version, &description, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if version.Valid && version.String != "" {
			state.versions[version.String] = true
			if state.maxVersion == "" || compareVersions(version.String, state.maxVersion) > 0 {
				state.maxVersion = version.String
			}
		} else if checksum.Valid {
			state.checksums[description] = checksum.Int64
		}
		if rank >= state.nextRank {
			state.nextRank = rank + 1
		}
	}
	return state, rows.Err()
}

// Migrate applies every pending migration in order and returns how many ran.
// Versioned migrations run once; repeatables rerun when their checksum
// changed. The first failure aborts the whole pass.
func (m *Migrator) Migrate(ctx context.Context, migrations []Migration) (int, error) {
	if err := m.EnsureHistoryTable(ctx); err != nil {
		return 0, err
	}
	state, err := m.applied(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for i := range migrations {
		migration := &migrations[i]
		content, err := migration.Read()
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", migration.Script, err)
		}
		script := m.substitute(string(content))
		checksum := int64(crc32.ChecksumIEEE([]byte(script)))

		if migration.Repeatable() {
			if prev, ok := state.checksums[migration.Description]; ok && prev == checksum {
				continue
			}
		} else {
			if m.TargetVersion != "" && compareVersions(migration.Version, m.TargetVersion) > 0 {
				m.logger.Info("skipping migration above target version",
					"script", migration.Script, "target_version", m.TargetVersion)
				continue
			}
			if state.versions[migration.Version] {
				continue
			}
			if state.maxVersion != "" && compareVersions(migration.Version, state.maxVersion) < 0 && !m.OutOfOrder {
				return applied, fmt.Errorf("migration %s is out of order: version %s is below applied version %s",
					migration.Script, migration.Version, state.maxVersion)
			}
		}

		if m.SkipExecuting {
			m.logger.Info("marking migration as applied without executing", "script", migration.Script)
		} else {
			m.logger.Info("applying migration", "script", migration.Script, "version", migration.Version)
			if _, err := m.DB.ExecContext(ctx, script); err != nil {
				if recordErr := m.record(ctx, state.nextRank, migration, checksum, false); recordErr != nil {
					m.logger.Warn("failed to record failed migration", "script", migration.Script, "error", recordErr)
				}
				return applied, fmt.Errorf("migration %s failed: %w", migration.Script, err)
			}
		}
		if err := m.record(ctx, state.nextRank, migration, checksum, true); err != nil {
			return applied, err
		}
		if !migration.Repeatable() && compareVersions(migration.Version, state.maxVersion) > 0 {
			state.maxVersion = migration.Version
		}
		state.nextRank++
		applied++
	}
	return applied, nil
}

func (m *Migrator) record(ctx context.Context, rank int, migration *Migration, checksum int64, success bool) error {
	insert := fmt.Sprintf(
		"INSERT INTO %s (installed_rank, version, description, script, checksum, installed_on, success) VALUES (%s, %s, %s, %s, %s, %s, %s)",
		m.Table,
		m.param(1), m.param(2), m.param(3), m.param(4), m.param(5), m.param(6), m.param(7))

	var version any
	if migration.Version != "" {
		version = migration.Version
	}
	_, err := m.DB.ExecContext(ctx, insert,
		rank, version, migration.Description, migration.Script, checksum, time.Now().UTC(), success)
	if err != nil {
		return fmt.Errorf("failed to record migration %s: %w", migration.Script, err)
	}
	return nil
}

// substitute replaces declared placeholders in the script.
func (m *Migrator) substitute(script string) string {
	if len(m.Placeholders) == 0 {
		return script
	}
	prefix := m.PlaceholderPrefix
	suffix := m.PlaceholderSuffix
	for key, value := range m.Placeholders {
		script = strings.ReplaceAll(script, prefix+key+suffix, value)
	}
	return script
}

// param returns the positional parameter marker for the migrator's driver.
func (m *Migrator) param(i int) string {
	if m.Driver == "pgx" || strings.Contains(m.Driver, "postgres") {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func (m *Migrator) boolLiteral(v bool) string {
	if m.Driver == "mysql" {
		if v {
			return "1"
		}
		return "0"
	}
	if v {
		return "TRUE"
	}
	return "FALSE"
}
