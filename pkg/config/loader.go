package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env` tags.
//
// Example:
//
//	type Config struct {
//	    HTTPPort        int `env:"WISHLIST_HTTP_PORT" envDefault:"8006"`
//	    CacheTTLSeconds int `env:"WISHLIST_CACHE_TTL_SECONDS" envDefault:"300"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
