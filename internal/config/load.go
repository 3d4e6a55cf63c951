package config

import (
	"fmt"

	"github.com/Skotchmaster/local_market/pkg/config"
)

type ServiceConfig struct {
	config.Config
}

// Load reads the environment and checks the settings the server cannot start without.
func Load() (ServiceConfig, error) {
	cfg := config.Load()

	if err := config.Required(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"JWT_SECRET":   string(cfg.JWTSecret),
	}); err != nil {
		return ServiceConfig{}, err
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateBurst < 1 {
		return ServiceConfig{}, fmt.Errorf("AUTH_RATE_LIMIT must be > 0 and AUTH_RATE_BURST >= 1, got %v/%d", cfg.AuthRateLimit, cfg.AuthRateBurst)
	}

	return ServiceConfig{Config: cfg}, nil
}
