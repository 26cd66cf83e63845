package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print the cache fingerprint of every work unit",
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, cleanup, err := buildRun(false)
		if err != nil {
			return err
		}
		defer cleanup()

		fps, err := rc.Fingerprints()
		if err != nil {
			return err
		}

		names := make([]string, 0, len(fps))
		for name := range fps {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%s\t%s\n", name, fps[name])
		}
		return nil
	},
}
