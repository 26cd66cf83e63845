package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/schemaforge/schemaforge/internal/common"
	"github.com/schemaforge/schemaforge/internal/target"
)

// Generator emits Go model code for one target from introspected tables.
type Generator struct {
	target *target.Target
	logger *common.Logger
}

// New creates a generator for one registered target.
func New(t *target.Target) *Generator {
	return &Generator{
		target: t,
		logger: common.GetLogger().WithComponent("generator").WithTarget(t.Name),
	}
}

// Generate writes one models.go file into the target's output directory
// containing a struct per table. Returns the written file path.
func (g *Generator) Generate(schema string, tables []Table) (string, error) {
	if g.target.OutputDir == "" {
		return "", fmt.Errorf("target %s has no output directory", g.target.Name)
	}

	pkg := packageName(g.target.Package, g.target.OutputDir)
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by schemaforge. DO NOT EDIT.")
	f.Comment(fmt.Sprintf("Source schema: %s", schema))
	f.Line()

	for _, table := range tables {
		structName := exportedName(inflect.Singularize(table.Name))
		fields := make([]jen.Code, 0, len(table.Columns))
		for _, column := range table.Columns {
			fields = append(fields, fieldFor(column))
		}
		f.Commentf("%s is the model for table %s.", structName, table.Name)
		f.Type().Id(structName).Struct(fields...)
		f.Line()
	}

	if err := os.MkdirAll(g.target.OutputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", g.target.OutputDir, err)
	}
	outPath := filepath.Join(g.target.OutputDir, "models.go")
	if err := f.Save(outPath); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	g.logger.Info("generated models", "tables", len(tables), "path", outPath)
	return outPath, nil
}

func fieldFor(column Column) jen.Code {
	field := jen.Id(exportedName(column.Name))
	field = applyType(field, column)
	return field.Tag(map[string]string{"db": column.Name})
}

func applyType(field *jen.Statement, column Column) *jen.Statement {
	if column.Nullable {
		field = field.Op("*")
	}
	switch normalizeType(column.DataType) {
	case "int":
		return field.Int64()
	case "float":
		return field.Float64()
	case "bool":
		return field.Bool()
	case "time":
		return field.Qual("time", "Time")
	case "bytes":
		return field.Index().Byte()
	default:
		return field.String()
	}
}

func normalizeType(dataType string) string {
	switch strings.ToLower(dataType) {
	case "integer", "int", "smallint", "bigint", "serial", "bigserial", "mediumint", "tinyint":
		return "int"
	case "numeric", "decimal", "real", "double precision", "double", "float":
		return "float"
	case "boolean", "bool":
		return "bool"
	case "date", "time", "timestamp", "timestamp with time zone", "timestamp without time zone", "datetime":
		return "time"
	case "bytea", "blob", "binary", "varbinary", "longblob":
		return "bytes"
	default:
		return "string"
	}
}

// exportedName converts a snake_case identifier to an exported Go name,
// keeping the conventional ID spelling.
func exportedName(name string) string {
	out := inflect.Camelize(name)
	if out == "Id" {
		return "ID"
	}
	if strings.HasSuffix(out, "Id") {
		return strings.TrimSuffix(out, "Id") + "ID"
	}
	return out
}

// packageName derives the emitted package name: the declared package's last
// segment, or the output directory's base name.
func packageName(declared, outputDir string) string {
	name := declared
	if idx := strings.LastIndexAny(name, "./"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		name = filepath.Base(outputDir)
	}
	name = strings.ToLower(strings.ReplaceAll(name, "-", ""))
	if name == "" {
		name = "models"
	}
	return name
}
