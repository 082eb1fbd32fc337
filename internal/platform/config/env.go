// Package config loads the save-layer configuration. The Save struct is the
// single tunable surface; values come from MONSTERKEEP_SAVE_* environment
// variables or a YAML file.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv populates target from environment variables per its `env` struct
// tags.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
