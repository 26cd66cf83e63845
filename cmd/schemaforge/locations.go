package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Print the resolved migration locations of every work unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, cleanup, err := buildRun(false)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, unit := range rc.Units() {
			if unit.Disabled {
				continue
			}
			ec, err := unit.Resolve()
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s):\n", unit.TargetName, unit.Schema.String())
			for _, loc := range ec.Locations {
				if loc.FromArchive {
					fmt.Printf("  %s (archive, %s)\n", loc.Path, loc.Relative)
				} else {
					fmt.Printf("  %s\n", loc.Path)
				}
			}
		}
		return nil
	},
}
