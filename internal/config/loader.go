package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadDeclaration loads a generation declaration from a YAML file
func LoadDeclaration(configPath string) (*Declaration, error) {
	cleanPath := filepath.Clean(configPath)

	// #nosec G304 -- path is provided by user configuration
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read declaration file %s: %w", cleanPath, err)
	}

	var decl Declaration
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("failed to parse declaration: %w", err)
	}

	// Set defaults
	if decl.APIVersion == "" {
		decl.APIVersion = "schemaforge/v1"
	}
	if decl.Kind == "" {
		decl.Kind = "Generation"
	}

	if err := validateDeclaration(&decl); err != nil {
		return nil, fmt.Errorf("invalid declaration: %w", err)
	}

	// Resolve relative paths against the declaration's own directory
	baseDir := filepath.Dir(cleanPath)
	resolveDeclarationPaths(&decl, baseDir)

	return &decl, nil
}

// validateDeclaration checks structural requirements before any resolution runs
func validateDeclaration(decl *Declaration) error {
	if len(decl.Databases) == 0 {
		return fmt.Errorf("no databases defined")
	}

	dbNames := make(map[string]bool)
	for i, db := range decl.Databases {
		if db.Name == "" {
			return fmt.Errorf("database %d: name is required", i)
		}
		if dbNames[db.Name] {
			return fmt.Errorf("duplicate database name: %s", db.Name)
		}
		dbNames[db.Name] = true

		schemaNames := make(map[string]bool)
		for j, schema := range db.Schemas {
			if schema.Name == "" {
				return fmt.Errorf("database %s: schema %d: name is required", db.Name, j)
			}
			if schemaNames[schema.Name] {
				return fmt.Errorf("database %s: duplicate schema name: %s", db.Name, schema.Name)
			}
			schemaNames[schema.Name] = true
		}
	}

	targetNames := make(map[string]bool)
	for i, target := range decl.Targets {
		if target.Name == "" {
			return fmt.Errorf("target %d: name is required", i)
		}
		if targetNames[target.Name] {
			return fmt.Errorf("duplicate target name: %s", target.Name)
		}
		targetNames[target.Name] = true
	}

	return nil
}

// resolveDeclarationPaths makes relative output and manifest paths absolute
// relative to the declaration file's directory.
func resolveDeclarationPaths(decl *Declaration, baseDir string) {
	for i := range decl.Targets {
		target := &decl.Targets[i]
		if target.OutputDir != "" && !filepath.IsAbs(target.OutputDir) {
			target.OutputDir = filepath.Join(baseDir, target.OutputDir)
		}
		if target.Manifest != "" && !filepath.IsAbs(target.Manifest) {
			target.Manifest = filepath.Join(baseDir, target.Manifest)
		}
	}
}
