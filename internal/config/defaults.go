package config

// System defaults applied at the last precedence tier. They mirror the
// conventional Flyway layout so declarations only need to state deviations.
const (
	DefaultVersionedPrefix   = "V"
	DefaultRepeatablePrefix  = "R"
	DefaultSeparator         = "__"
	DefaultSuffix            = ".sql"
	DefaultHistoryTable      = "schema_history"
	DefaultLocation          = "classpath:db/migration"
	DefaultPlaceholderPrefix = "${"
	DefaultPlaceholderSuffix = "}"
	DefaultEncoding          = "UTF-8"
	DefaultPostgresImage     = "postgres:17-alpine"
	DefaultMySQLImage        = "mysql:8.4"
)

// DefaultSettings returns the system-default tier as a settings bag.
// Callers merge tiers on top of a fresh copy, so this allocates every time.
func DefaultSettings() *MigrationSettings {
	prefix := DefaultVersionedPrefix
	repeatable := DefaultRepeatablePrefix
	separator := DefaultSeparator
	table := DefaultHistoryTable
	encoding := DefaultEncoding
	phPrefix := DefaultPlaceholderPrefix
	phSuffix := DefaultPlaceholderSuffix

	return &MigrationSettings{
		VersionedPrefix:   &prefix,
		RepeatablePrefix:  &repeatable,
		Separator:         &separator,
		Suffixes:          []string{DefaultSuffix},
		Table:             &table,
		Encoding:          &encoding,
		PlaceholderPrefix: &phPrefix,
		PlaceholderSuffix: &phSuffix,
		Locations:         []string{DefaultLocation},
	}
}
