package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Migrate a throwaway database and generate model code for every target",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, cleanup, err := buildRun(true)
		if err != nil {
			return err
		}
		defer cleanup()

		if err := rc.Execute(context.Background()); err != nil {
			return err
		}
		fmt.Println("generation completed successfully")
		return nil
	},
}
