package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the declaration: bindings, drivers, and schema agreement",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Binding validation happens during evaluation; resolving each
		// unit afterwards surfaces driver and schema conflicts without
		// touching a database.
		rc, cleanup, err := buildRun(false)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, unit := range rc.Units() {
			if unit.Disabled {
				continue
			}
			if _, err := unit.Resolve(); err != nil {
				return err
			}
		}

		if unclaimed := rc.Reconciler.Unclaimed(); len(unclaimed) > 0 {
			fmt.Printf("warning: %d target(s) never claimed: %v\n", len(unclaimed), unclaimed)
		}
		fmt.Printf("declaration valid: %d work unit(s)\n", len(rc.Units()))
		return nil
	},
}
