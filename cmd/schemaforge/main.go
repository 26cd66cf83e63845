package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schemaforge/schemaforge/internal/common"
)

var rootCmd = &cobra.Command{
	Use:   "schemaforge",
	Short: "Generate database model code from migration-defined schemas",
	Long: "schemaforge provisions a throwaway database, applies the declared " +
		"migrations, introspects the resulting schema, and generates model code " +
		"for every declared target. Unchanged configurations are skipped via a " +
		"fingerprint cache.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func setupLogging() error {
	v := viper.GetViper()

	var level common.LogLevel
	switch v.GetString("log_level") {
	case "error":
		level = common.LogLevelError
	case "warn":
		level = common.LogLevelWarn
	case "debug":
		level = common.LogLevelDebug
	default:
		level = common.LogLevelInfo
	}

	if v.GetString("log_format") == "json" {
		common.SetDefaultLogger(common.NewJSONLogger(level))
	} else {
		common.SetDefaultLogger(common.NewLogger(level))
	}
	return nil
}

func init() {
	// Defaults
	v := viper.GetViper()
	v.SetDefault("config", "./schemaforge.yaml")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("cache", ".schemaforge/cache.db")
	v.SetDefault("no_cache", false)

	// Environment variables support: SCHEMAFORGE_CONFIG, SCHEMAFORGE_LOG_LEVEL, ...
	v.SetEnvPrefix("SCHEMAFORGE")
	v.AutomaticEnv()

	rootCmd.PersistentFlags().String("config", v.GetString("config"), "path to the generation declaration yaml")
	rootCmd.PersistentFlags().String("log-level", v.GetString("log_level"), "log level (error, warn, info, debug)")
	rootCmd.PersistentFlags().String("log-format", v.GetString("log_format"), "log format (text, json)")
	rootCmd.PersistentFlags().StringSlice("resource-root", nil, "resource root directory for classpath locations (repeatable)")
	rootCmd.PersistentFlags().StringSlice("classpath", nil, "runtime classpath entry, directory or archive (repeatable)")
	rootCmd.PersistentFlags().String("cache", v.GetString("cache"), "path to the fingerprint cache database")
	rootCmd.PersistentFlags().Bool("no-cache", v.GetBool("no_cache"), "disable the fingerprint cache")
	rootCmd.PersistentFlags().StringToString("set", nil, "migration setting override, key=value (repeatable)")
	rootCmd.PersistentFlags().String("driver", "", "force one database driver for the whole run")

	_ = v.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = v.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = v.BindPFlag("resource_roots", rootCmd.PersistentFlags().Lookup("resource-root"))
	_ = v.BindPFlag("classpath", rootCmd.PersistentFlags().Lookup("classpath"))
	_ = v.BindPFlag("cache", rootCmd.PersistentFlags().Lookup("cache"))
	_ = v.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = v.BindPFlag("set", rootCmd.PersistentFlags().Lookup("set"))
	_ = v.BindPFlag("driver", rootCmd.PersistentFlags().Lookup("driver"))

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(fingerprintCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("error: %v", err)
		os.Exit(1)
	}
}
