package config

// Declaration is the top-level document describing one generation run:
// logical databases, the schemas inside them, and the named generation
// targets those schemas claim.
type Declaration struct {
	APIVersion string            `mapstructure:"apiVersion" yaml:"apiVersion"`
	Kind       string            `mapstructure:"kind" yaml:"kind"`
	Defaults   MigrationSettings `mapstructure:"defaults" yaml:"defaults"`
	Databases  []DatabaseDecl    `mapstructure:"databases" yaml:"databases"`
	Targets    []TargetDecl      `mapstructure:"targets" yaml:"targets"`
}

// DatabaseDecl declares a logical database and its container provisioning.
type DatabaseDecl struct {
	Name      string            `mapstructure:"name" yaml:"name"`
	Driver    string            `mapstructure:"driver" yaml:"driver"`
	Image     string            `mapstructure:"image" yaml:"image"`
	Env       map[string]string `mapstructure:"env" yaml:"env"`
	Migration MigrationSettings `mapstructure:"migration" yaml:"migration"`
	Schemas   []SchemaDecl      `mapstructure:"schemas" yaml:"schemas"`
}

// SchemaDecl declares one logical schema inside a database along with the
// generation targets it claims. Re-declaring the same schema name merges
// overrides and claims instead of replacing them.
type SchemaDecl struct {
	Name      string            `mapstructure:"name" yaml:"name"`
	Driver    string            `mapstructure:"driver" yaml:"driver"`
	Migration MigrationSettings `mapstructure:"migration" yaml:"migration"`
	Targets   []string          `mapstructure:"targets" yaml:"targets"`
}

// TargetDecl declares a named code-generation target. The name must be
// unique across the run; at most one schema may claim it.
type TargetDecl struct {
	Name        string `mapstructure:"name" yaml:"name"`
	InputSchema string `mapstructure:"input_schema" yaml:"input_schema"`
	JDBCDriver  string `mapstructure:"jdbc_driver" yaml:"jdbc_driver"`
	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	Package     string `mapstructure:"package" yaml:"package"`
	Excludes    string `mapstructure:"excludes" yaml:"excludes"`
	Manifest    string `mapstructure:"manifest" yaml:"manifest"`
}
