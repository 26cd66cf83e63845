package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemaforge/schemaforge/internal/common"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run generation whenever the declaration or a migration changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := common.GetLogger().WithComponent("watch")

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer func() { _ = watcher.Close() }()

		if err := addWatchPaths(watcher); err != nil {
			return err
		}

		runOnce := func() {
			rc, cleanup, err := buildRun(true)
			if err != nil {
				logger.Error("evaluation failed", "error", err)
				return
			}
			defer cleanup()
			if err := rc.Execute(context.Background()); err != nil {
				logger.Error("generation failed", "error", err)
				return
			}
			logger.Info("generation completed")
		}

		runOnce()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

		// Debounce bursts of filesystem events into one rerun.
		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				logger.Debug("change detected", "path", event.Name, "op", event.Op.String())
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(500*time.Millisecond, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				runOnce()
				// Directories may have appeared since the last pass.
				if err := addWatchPaths(watcher); err != nil {
					logger.Warn("failed to refresh watch paths", "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				logger.Warn("watch error", "error", err)
			case <-sig:
				fmt.Println("stopping watch")
				return nil
			}
		}
	},
}

// addWatchPaths watches the declaration file, every resolvable migration
// location directory, and every resource root. Already-watched paths are
// deduplicated by fsnotify itself.
func addWatchPaths(watcher *fsnotify.Watcher) error {
	configPath := filepath.Clean(viper.GetString("config"))
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", configPath, err)
	}

	rc, cleanup, err := buildRun(false)
	if err != nil {
		// The declaration may be mid-edit and temporarily invalid; the
		// config directory watch will pick up the fix.
		return nil
	}
	defer cleanup()

	for _, unit := range rc.Units() {
		if unit.Disabled {
			continue
		}
		ec, err := unit.Resolve()
		if err != nil {
			continue
		}
		for _, loc := range ec.Locations {
			if loc.FromArchive {
				continue
			}
			if info, err := os.Stat(loc.Path); err == nil && info.IsDir() {
				_ = watcher.Add(loc.Path)
			}
		}
	}
	return nil
}
