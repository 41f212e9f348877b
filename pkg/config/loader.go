package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Validator is implemented by config structs that check cross-field rules
// after the environment has been parsed.
type Validator interface {
	Validate() error
}

// Load parses environment variables into cfg using its `env` tags. When
// prefix is non-empty only variables carrying that prefix are considered.
// If cfg implements Validator, Validate runs after parsing.
func Load(cfg any, prefix string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if v, ok := cfg.(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}
	return nil
}
