package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply migrations against throwaway databases without generating code",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, cleanup, err := buildRun(false)
		if err != nil {
			return err
		}
		defer cleanup()

		rc.SkipGenerate = true
		if err := rc.Execute(context.Background()); err != nil {
			return err
		}
		fmt.Println("migrations completed successfully")
		return nil
	},
}
