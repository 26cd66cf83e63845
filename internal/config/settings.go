package config

// MigrationSettings is the schema-scoped bag of migration-tool settings.
// Every field is optional: a nil pointer, empty list, or empty map means the
// value was not declared and the next precedence tier (or the system default)
// should be consulted instead. Zero values are never implied by absence.
type MigrationSettings struct {
	Driver                   *string           `mapstructure:"driver" yaml:"driver"`
	DefaultSchema            *string           `mapstructure:"default_schema" yaml:"default_schema"`
	Schemas                  []string          `mapstructure:"schemas" yaml:"schemas"`
	Locations                []string          `mapstructure:"locations" yaml:"locations"`
	Table                    *string           `mapstructure:"table" yaml:"table"`
	Tablespace               *string           `mapstructure:"tablespace" yaml:"tablespace"`
	BaselineVersion          *string           `mapstructure:"baseline_version" yaml:"baseline_version"`
	BaselineDescription      *string           `mapstructure:"baseline_description" yaml:"baseline_description"`
	BaselineOnMigrate        *bool             `mapstructure:"baseline_on_migrate" yaml:"baseline_on_migrate"`
	VersionedPrefix          *string           `mapstructure:"versioned_prefix" yaml:"versioned_prefix"`
	RepeatablePrefix         *string           `mapstructure:"repeatable_prefix" yaml:"repeatable_prefix"`
	Separator                *string           `mapstructure:"separator" yaml:"separator"`
	Suffixes                 []string          `mapstructure:"suffixes" yaml:"suffixes"`
	Encoding                 *string           `mapstructure:"encoding" yaml:"encoding"`
	Placeholders             map[string]string `mapstructure:"placeholders" yaml:"placeholders"`
	PlaceholderReplacement   *bool             `mapstructure:"placeholder_replacement" yaml:"placeholder_replacement"`
	PlaceholderPrefix        *string           `mapstructure:"placeholder_prefix" yaml:"placeholder_prefix"`
	PlaceholderSuffix        *string           `mapstructure:"placeholder_suffix" yaml:"placeholder_suffix"`
	TargetVersion            *string           `mapstructure:"target_version" yaml:"target_version"`
	OutOfOrder               *bool             `mapstructure:"out_of_order" yaml:"out_of_order"`
	SkipExecutingMigrations  *bool             `mapstructure:"skip_executing_migrations" yaml:"skip_executing_migrations"`
	ValidateMigrationNaming  *bool             `mapstructure:"validate_migration_naming" yaml:"validate_migration_naming"`
	CreateSchemas            *bool             `mapstructure:"create_schemas" yaml:"create_schemas"`
	Mixed                    *bool             `mapstructure:"mixed" yaml:"mixed"`
	Group                    *bool             `mapstructure:"group" yaml:"group"`
	InstalledBy              *string           `mapstructure:"installed_by" yaml:"installed_by"`
	ConnectRetries           *int              `mapstructure:"connect_retries" yaml:"connect_retries"`
	ConnectRetriesInterval   *int              `mapstructure:"connect_retries_interval" yaml:"connect_retries_interval"`
	LockRetryCount           *int              `mapstructure:"lock_retry_count" yaml:"lock_retry_count"`
	InitSQL                  *string           `mapstructure:"init_sql" yaml:"init_sql"`
	IgnoreMigrationPatterns  []string          `mapstructure:"ignore_migration_patterns" yaml:"ignore_migration_patterns"`
	FailOnMissingLocations   *bool             `mapstructure:"fail_on_missing_locations" yaml:"fail_on_missing_locations"`
	OutputQueryResults       *bool             `mapstructure:"output_query_results" yaml:"output_query_results"`
	SkipDefaultCallbacks     *bool             `mapstructure:"skip_default_callbacks" yaml:"skip_default_callbacks"`
	CallbackLocations        []string          `mapstructure:"callback_locations" yaml:"callback_locations"`
	ConnectionProperties     map[string]string `mapstructure:"connection_properties" yaml:"connection_properties"`
	ExtraConfiguration       map[string]string `mapstructure:"extra_configuration" yaml:"extra_configuration"`
}

// Merge folds other into s: fields present on other win, lists are replaced
// when declared, and maps merge key-wise with other taking precedence.
// Supports the "repeated declaration merges, never replaces" contract.
func (s *MigrationSettings) Merge(other *MigrationSettings) {
	if other == nil {
		return
	}

	mergeString(&s.Driver, other.Driver)
	mergeString(&s.DefaultSchema, other.DefaultSchema)
	mergeString(&s.Table, other.Table)
	mergeString(&s.Tablespace, other.Tablespace)
	mergeString(&s.BaselineVersion, other.BaselineVersion)
	mergeString(&s.BaselineDescription, other.BaselineDescription)
	mergeString(&s.VersionedPrefix, other.VersionedPrefix)
	mergeString(&s.RepeatablePrefix, other.RepeatablePrefix)
	mergeString(&s.Separator, other.Separator)
	mergeString(&s.Encoding, other.Encoding)
	mergeString(&s.PlaceholderPrefix, other.PlaceholderPrefix)
	mergeString(&s.PlaceholderSuffix, other.PlaceholderSuffix)
	mergeString(&s.TargetVersion, other.TargetVersion)
	mergeString(&s.InstalledBy, other.InstalledBy)
	mergeString(&s.InitSQL, other.InitSQL)

	mergeBool(&s.BaselineOnMigrate, other.BaselineOnMigrate)
	mergeBool(&s.PlaceholderReplacement, other.PlaceholderReplacement)
	mergeBool(&s.OutOfOrder, other.OutOfOrder)
	mergeBool(&s.SkipExecutingMigrations, other.SkipExecutingMigrations)
	mergeBool(&s.ValidateMigrationNaming, other.ValidateMigrationNaming)
	mergeBool(&s.CreateSchemas, other.CreateSchemas)
	mergeBool(&s.Mixed, other.Mixed)
	mergeBool(&s.Group, other.Group)
	mergeBool(&s.FailOnMissingLocations, other.FailOnMissingLocations)
	mergeBool(&s.OutputQueryResults, other.OutputQueryResults)
	mergeBool(&s.SkipDefaultCallbacks, other.SkipDefaultCallbacks)

	mergeInt(&s.ConnectRetries, other.ConnectRetries)
	mergeInt(&s.ConnectRetriesInterval, other.ConnectRetriesInterval)
	mergeInt(&s.LockRetryCount, other.LockRetryCount)

	if len(other.Schemas) > 0 {
		s.Schemas = append([]string(nil), other.Schemas...)
	}
	if len(other.Locations) > 0 {
		s.Locations = append([]string(nil), other.Locations...)
	}
	if len(other.Suffixes) > 0 {
		s.Suffixes = append([]string(nil), other.Suffixes...)
	}
	if len(other.IgnoreMigrationPatterns) > 0 {
		s.IgnoreMigrationPatterns = append([]string(nil), other.IgnoreMigrationPatterns...)
	}
	if len(other.CallbackLocations) > 0 {
		s.CallbackLocations = append([]string(nil), other.CallbackLocations...)
	}

	s.Placeholders = mergeMap(s.Placeholders, other.Placeholders)
	s.ConnectionProperties = mergeMap(s.ConnectionProperties, other.ConnectionProperties)
	s.ExtraConfiguration = mergeMap(s.ExtraConfiguration, other.ExtraConfiguration)
}

// Clone returns a deep copy so a derived snapshot never aliases declaration state.
func (s *MigrationSettings) Clone() *MigrationSettings {
	if s == nil {
		return nil
	}
	out := &MigrationSettings{}
	out.Merge(s)
	return out
}

func mergeString(dst **string, src *string) {
	if src != nil && *src != "" {
		v := *src
		*dst = &v
	}
}

func mergeBool(dst **bool, src *bool) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeMap(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
