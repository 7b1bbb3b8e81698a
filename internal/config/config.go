// Package config loads process configuration from the environment,
// optionally seeded from a .env file in development — the same
// godotenv-plus-getenv-helpers pattern the teacher's entrypoint and the
// pack's richer config package both use.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the server's full runtime configuration.
type Config struct {
	Port        string
	DatabaseURL string
	GinMode     string

	SimulationWorkers int
}

// Load reads a .env file if present (a missing file is not an error —
// production deployments set real environment variables instead) and
// then resolves every field from the environment, falling back to
// sensible development defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", "postgres://localhost:5432/swiss_engine?sslmode=disable"),
		GinMode:           getEnvOrDefault("GIN_MODE", "release"),
		SimulationWorkers: getIntOrDefault("SIMULATION_WORKERS", 4),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants Load alone can't express as defaults.
func (c *Config) Validate() error {
	if c.SimulationWorkers < 1 {
		return fmt.Errorf("config: SIMULATION_WORKERS must be at least 1, got %d", c.SimulationWorkers)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL must not be empty")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntOrDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
