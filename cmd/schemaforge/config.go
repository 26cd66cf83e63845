package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/schemaforge/schemaforge/internal/cache"
	"github.com/schemaforge/schemaforge/internal/config"
	"github.com/schemaforge/schemaforge/internal/location"
	"github.com/schemaforge/schemaforge/internal/run"
)

// loadDeclaration reads the declaration named by --config and folds any
// --set overrides into its default settings.
func loadDeclaration() (*config.Declaration, string, error) {
	configPath := viper.GetString("config")
	decl, err := config.LoadDeclaration(configPath)
	if err != nil {
		return nil, "", err
	}

	if raw := viper.GetStringMapString("set"); len(raw) > 0 {
		values := make(map[string]any, len(raw))
		for k, val := range raw {
			values[k] = val
		}
		overrides, err := config.SettingsFromMap(values)
		if err != nil {
			return nil, "", err
		}
		decl.Defaults.Merge(overrides)
	}
	return decl, filepath.Dir(filepath.Clean(configPath)), nil
}

// buildLocationResolver assembles the location resolver from flags, with
// the declaration's directory as the base for relative tokens. When no
// resource root is given, the conventional source and processed-resource
// layouts under the base directory stand in, and the base directory itself
// when neither exists.
func buildLocationResolver(baseDir string) *location.Resolver {
	v := viper.GetViper()

	roots := v.GetStringSlice("resource_roots")
	if len(roots) == 0 {
		for _, conventional := range []string{
			filepath.Join(baseDir, "src", "main", "resources"),
			filepath.Join(baseDir, "build", "resources"),
		} {
			if _, err := os.Stat(conventional); err == nil {
				roots = append(roots, conventional)
			}
		}
		if len(roots) == 0 {
			roots = []string{baseDir}
		}
	}
	return location.NewResolver(roots, v.GetStringSlice("classpath"), baseDir)
}

// openCache opens the fingerprint cache unless disabled. The returned
// cleanup is safe to call either way.
func openCache() (*cache.Cache, func(), error) {
	v := viper.GetViper()
	if v.GetBool("no_cache") {
		return nil, func() {}, nil
	}

	cachePath := v.GetString("cache")
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	c, err := cache.Open(cachePath)
	if err != nil {
		return nil, nil, err
	}
	return c, func() { _ = c.Close() }, nil
}

// buildRun evaluates the declaration into a run context.
func buildRun(withCache bool) (*run.Context, func(), error) {
	decl, baseDir, err := loadDeclaration()
	if err != nil {
		return nil, nil, err
	}

	var buildCache *cache.Cache
	cleanup := func() {}
	if withCache {
		buildCache, cleanup, err = openCache()
		if err != nil {
			return nil, nil, err
		}
	}

	rc, err := run.New(decl, buildLocationResolver(baseDir), buildCache)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	rc.DriverOverride = viper.GetString("driver")
	return rc, cleanup, nil
}
