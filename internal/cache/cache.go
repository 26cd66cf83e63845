package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/schemaforge/schemaforge/internal/common"
)

// Cache persists, per target, the fingerprint and the input stamps of the
// last successful build so unchanged work can skip regeneration. A stamp is
// the modification marker of one migration input file; a script added,
// edited, or removed changes the stamp set even when the configuration
// fingerprint stays identical.
type Cache struct {
	db     *sql.DB
	logger *common.Logger
}

// Open opens (or creates) the cache database at dbPath.
func Open(dbPath string) (*Cache, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_fk=1", filepath.Clean(dbPath))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	c := &Cache{
		db:     db,
		logger: common.GetLogger().WithComponent("cache"),
	}
	if err := c.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) ensureSchema() error {
	ddl := `CREATE TABLE IF NOT EXISTS build_cache (
		target TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		inputs_json TEXT,
		updated_at TIMESTAMP NOT NULL
	)`
	if _, err := c.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create build_cache table: %w", err)
	}
	return nil
}

// Unchanged reports whether the target's recorded fingerprint and input
// stamps both equal the given ones. An unknown target is never unchanged.
func (c *Cache) Unchanged(targetName, fp string, inputs map[string]string) (bool, error) {
	var stored string
	var inputsJSON sql.NullString
	err := c.db.QueryRow("SELECT fingerprint, inputs_json FROM build_cache WHERE target = ?", targetName).
		Scan(&stored, &inputsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache for target %s: %w", targetName, err)
	}
	if stored != fp {
		return false, nil
	}
	recorded, err := decodeInputs(targetName, inputsJSON)
	if err != nil {
		return false, err
	}
	return sameInputs(recorded, inputs), nil
}

// Record stores a target's fingerprint and the stamps of the input files
// that produced it.
func (c *Cache) Record(targetName, fp string, inputs map[string]string) error {
	inputsJSON, err := json.Marshal(inputs)
	if err != nil {
		return fmt.Errorf("failed to encode cache inputs: %w", err)
	}
	_, err = c.db.Exec(`INSERT INTO build_cache (target, fingerprint, inputs_json, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(target) DO UPDATE SET fingerprint = excluded.fingerprint,
			inputs_json = excluded.inputs_json, updated_at = excluded.updated_at`,
		targetName, fp, string(inputsJSON), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record cache for target %s: %w", targetName, err)
	}
	c.logger.Debug("recorded fingerprint", "target", targetName)
	return nil
}

// Inputs returns the recorded input stamps for a target, or nil when unknown.
func (c *Cache) Inputs(targetName string) (map[string]string, error) {
	var inputsJSON sql.NullString
	err := c.db.QueryRow("SELECT inputs_json FROM build_cache WHERE target = ?", targetName).Scan(&inputsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache inputs for target %s: %w", targetName, err)
	}
	return decodeInputs(targetName, inputsJSON)
}

func decodeInputs(targetName string, inputsJSON sql.NullString) (map[string]string, error) {
	if !inputsJSON.Valid || inputsJSON.String == "" || inputsJSON.String == "null" {
		return nil, nil
	}
	var inputs map[string]string
	if err := json.Unmarshal([]byte(inputsJSON.String), &inputs); err != nil {
		return nil, fmt.Errorf("failed to decode cache inputs for target %s: %w", targetName, err)
	}
	return inputs, nil
}

func sameInputs(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for path, stamp := range a {
		if b[path] != stamp {
			return false
		}
	}
	return true
}

// Invalidate drops a target's cache entry.
func (c *Cache) Invalidate(targetName string) error {
	if _, err := c.db.Exec("DELETE FROM build_cache WHERE target = ?", targetName); err != nil {
		return fmt.Errorf("failed to invalidate cache for target %s: %w", targetName, err)
	}
	return nil
}
