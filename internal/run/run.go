package run

import (
	"context"
)

// Execute runs every enabled work unit in activation order. The first
// failure aborts the run: a half-resolved configuration is unsafe to act
// on, so there is no partial-completion mode.
func (rc *Context) Execute(ctx context.Context) error {
	for _, unit := range rc.Units() {
		if err := unit.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprints resolves every enabled unit and returns its cache key,
// keyed by target name. Used by the CLI to show what would invalidate.
func (rc *Context) Fingerprints() (map[string]string, error) {
	out := make(map[string]string, len(rc.unitOrder))
	for _, unit := range rc.Units() {
		if unit.Disabled {
			continue
		}
		ec, err := unit.Resolve()
		if err != nil {
			return nil, err
		}
		out[unit.TargetName] = unit.Fingerprint(ec)
	}
	return out, nil
}
