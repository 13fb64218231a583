package config

import "os"

const (
	defaultDBPath = "./tirecycle.db"
	defaultPort   = "8080"
)

// Config holds application configuration sourced from environment
// variables.
type Config struct {
	DBPath string
	Port   string
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	// Best-effort: local dev environment variables. Missing files are
	// fine; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := Config{
		DBPath: os.Getenv("DB_PATH"),
		Port:   os.Getenv("PORT"),
	}

	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	return cfg
}
