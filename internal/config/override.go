package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// SettingsFromMap decodes a loosely typed settings map, such as values
// collected from repeated --set flags or environment overrides, into
// migration settings. Keys follow the same names as the yaml declaration
// (table, out_of_order, connect_retries, ...). Unknown keys are rejected
// so typos surface instead of being silently dropped.
func SettingsFromMap(values map[string]any) (*MigrationSettings, error) {
	settings := &MigrationSettings{}
	if len(values) == 0 {
		return settings, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           settings,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return nil, fmt.Errorf("failed to decode settings overrides: %w", err)
	}
	return settings, nil
}
