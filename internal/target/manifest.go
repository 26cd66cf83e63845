package target

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Manifest JSON paths. Manifests are generator-tool export files, so the
// shape follows the generator's own configuration document.
const (
	manifestInputSchema = "generator.database.inputSchema"
	manifestExcludes    = "generator.database.excludes"
	manifestJDBCDriver  = "jdbc.driver"
	manifestOutputDir   = "generator.target.directory"
	manifestPackage     = "generator.target.packageName"
)

// applyManifest fills blank target fields from a generator manifest file.
// Values already present on the target are kept.
func applyManifest(t *Target, manifestPath string) error {
	cleanPath := filepath.Clean(manifestPath)

	// #nosec G304 -- path comes from user configuration
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest %s: %w", cleanPath, err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("manifest %s is not valid JSON", cleanPath)
	}

	fill := func(dst *string, path string) {
		if *dst != "" {
			return
		}
		if value := gjson.GetBytes(data, path); value.Exists() {
			*dst = value.String()
		}
	}

	fill(&t.InputSchema, manifestInputSchema)
	fill(&t.Excludes, manifestExcludes)
	fill(&t.JDBCDriver, manifestJDBCDriver)
	fill(&t.Package, manifestPackage)

	if t.OutputDir == "" {
		if value := gjson.GetBytes(data, manifestOutputDir); value.Exists() {
			dir := value.String()
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(filepath.Dir(cleanPath), dir)
			}
			t.OutputDir = dir
		}
	}

	return nil
}
