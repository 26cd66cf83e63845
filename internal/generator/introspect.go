package generator

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// Table is one introspected table with its columns in ordinal order.
type Table struct {
	Name    string
	Columns []Column
}

// Column is one introspected column.
type Column struct {
	Name     string
	DataType string
	Nullable bool
}

// HistoryTableExclusion builds the exclusion pattern that keeps a migration
// history table out of generated output, whether the name appears bare or
// schema-qualified.
func HistoryTableExclusion(table string) string {
	return `(?i)(?:^|.*\.)` + regexp.QuoteMeta(table) + `$`
}

// Introspect reads table and column metadata for one schema through
// information_schema, which both supported databases expose. Tables whose
// names match the exclude pattern are dropped.
func Introspect(ctx context.Context, db *sql.DB, driver, schema, excludePattern string) ([]Table, error) {
	var exclude *regexp.Regexp
	if excludePattern != "" {
		var err error
		exclude, err = regexp.Compile(excludePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", excludePattern, err)
		}
	}

	marker := "?"
	if driver == "pgx" || strings.Contains(driver, "postgres") {
		marker = "$1"
	}
	query := fmt.Sprintf(`SELECT table_name, column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = %s
		ORDER BY table_name, ordinal_position`, marker)

	rows, err := db.QueryContext(ctx, query, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect schema %s: %w", schema, err)
	}
	defer func() { _ = rows.Close() }()

	var tables []Table
	byName := make(map[string]int)
	for rows.Next() {
		var tableName, columnName, dataType, isNullable string
		if err := rows.Scan(&tableName, &columnName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("failed to scan column row: %w", err)
		}
		if exclude != nil && exclude.MatchString(tableName) {
			continue
		}

		idx, ok := byName[tableName]
		if !ok {
			idx = len(tables)
			byName[tableName] = idx
			tables = append(tables, Table{Name: tableName})
		}
		tables[idx].Columns = append(tables[idx].Columns, Column{
			Name:     columnName,
			DataType: dataType,
			Nullable: strings.EqualFold(isNullable, "YES"),
		})
	}
	return tables, rows.Err()
}
