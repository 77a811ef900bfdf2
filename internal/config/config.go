// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment names relevant to the server. Any value other than
// EnvProduction is treated as a non-production mode.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// DatasetSource selects where the dataset is loaded from at startup.
type DatasetSource string

const (
	DatasetSourceEmbedded DatasetSource = "embedded"
	DatasetSourceFile     DatasetSource = "file"
	DatasetSourceSQLite   DatasetSource = "sqlite"
	DatasetSourceGitHub   DatasetSource = "github"
)

// Config holds the application configuration loaded from environment variables.
// It is built once at startup and never mutated.
type Config struct {
	APIToken      string
	ListenAddr    string
	Env           string
	DatasetSource DatasetSource
	DatasetPath   string
	DBPath        string
	GitHubRepo    string
	GitHubPath    string
	GitHubRef     string
	GitHubToken   string
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from environment variables and returns a validated Config.
// POKEDEX_API_TOKEN is required. Optional variables with defaults:
// POKEDEX_LISTEN_ADDR (127.0.0.1:8000), POKEDEX_ENV (development),
// POKEDEX_DATASET_SOURCE (embedded), POKEDEX_DB_PATH (pokedex.db),
// POKEDEX_GITHUB_PATH (pokedex.json).
// POKEDEX_DATASET_PATH is required for the file source and POKEDEX_GITHUB_REPO
// for the github source.
func Load() (*Config, error) {
	token := os.Getenv("POKEDEX_API_TOKEN")
	if token == "" {
		return nil, errors.New("POKEDEX_API_TOKEN is required")
	}
	if strings.ContainsAny(token, " \t\r\n") {
		return nil, errors.New("POKEDEX_API_TOKEN must not contain whitespace")
	}

	cfg := &Config{
		APIToken:      token,
		ListenAddr:    envOr("POKEDEX_LISTEN_ADDR", "127.0.0.1:8000"),
		Env:           envOr("POKEDEX_ENV", EnvDevelopment),
		DatasetSource: DatasetSource(envOr("POKEDEX_DATASET_SOURCE", string(DatasetSourceEmbedded))),
		DatasetPath:   os.Getenv("POKEDEX_DATASET_PATH"),
		DBPath:        envOr("POKEDEX_DB_PATH", "pokedex.db"),
		GitHubRepo:    os.Getenv("POKEDEX_GITHUB_REPO"),
		GitHubPath:    envOr("POKEDEX_GITHUB_PATH", "pokedex.json"),
		GitHubRef:     os.Getenv("POKEDEX_GITHUB_REF"),
		GitHubToken:   os.Getenv("POKEDEX_GITHUB_TOKEN"),
	}

	switch cfg.DatasetSource {
	case DatasetSourceEmbedded, DatasetSourceSQLite:
	case DatasetSourceFile:
		if cfg.DatasetPath == "" {
			return nil, errors.New("POKEDEX_DATASET_PATH is required when POKEDEX_DATASET_SOURCE=file")
		}
	case DatasetSourceGitHub:
		if cfg.GitHubRepo == "" {
			return nil, errors.New("POKEDEX_GITHUB_REPO is required when POKEDEX_DATASET_SOURCE=github")
		}
	default:
		return nil, fmt.Errorf("POKEDEX_DATASET_SOURCE has unknown value %q: want embedded|file|sqlite|github", cfg.DatasetSource)
	}

	return cfg, nil
}

// envOr returns the value of key, or fallback when the variable is unset or empty.
func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
