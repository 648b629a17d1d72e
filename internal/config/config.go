// Package config provides configuration management for recordsearch.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultWorkerPort is the HTTP port of the worker.
	DefaultWorkerPort = 38640
	// DefaultWorkerHost binds the worker to loopback.
	DefaultWorkerHost = "127.0.0.1"

	dataDirName      = ".recordsearch"
	dbFileName       = "recordsearch.db"
	settingsFileName = "settings.json"
	envPrefix        = "RECORDSEARCH_"
)

// Config holds worker and search settings. JSON keys match the environment
// variables that override them.
type Config struct {
	WorkerHost          string   `json:"RECORDSEARCH_WORKER_HOST"`
	DBDriver            string   `json:"RECORDSEARCH_DB_DRIVER"`
	DBPath              string   `json:"RECORDSEARCH_DB_PATH"`
	DatabaseDSN         string   `json:"RECORDSEARCH_DATABASE_DSN"`
	LogLevel            string   `json:"RECORDSEARCH_LOG_LEVEL"`
	AllowedRoles        []string `json:"-"`
	WorkerPort          int      `json:"RECORDSEARCH_WORKER_PORT"`
	MaxConns            int      `json:"RECORDSEARCH_MAX_CONNS"`
	SearchThreshold     float64  `json:"RECORDSEARCH_SEARCH_THRESHOLD"`
	SearchLimit         int      `json:"RECORDSEARCH_SEARCH_LIMIT"`
	SearchMaxLimit      int      `json:"RECORDSEARCH_SEARCH_MAX_LIMIT"`
	RateLimitRPS        float64  `json:"RECORDSEARCH_RATE_LIMIT_RPS"`
	RateLimitBurst      int      `json:"RECORDSEARCH_RATE_LIMIT_BURST"`
	BreakerMinRequests  int      `json:"RECORDSEARCH_BREAKER_MIN_REQUESTS"`
	BreakerFailureRatio float64  `json:"RECORDSEARCH_BREAKER_FAILURE_RATIO"`
	BreakerOpenSeconds  int      `json:"RECORDSEARCH_BREAKER_OPEN_SECONDS"`
}

// DefaultAllowedRoles are the officer roles the worker accepts.
var DefaultAllowedRoles = []string{
	"admin", "inspector", "officer", "io", "sho", "clerk", "malkhana", "forensic", "court",
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		WorkerHost:          DefaultWorkerHost,
		WorkerPort:          DefaultWorkerPort,
		DBDriver:            "sqlite",
		DBPath:              DBPath(),
		LogLevel:            "info",
		MaxConns:            4,
		SearchThreshold:     60,
		SearchLimit:         10,
		SearchMaxLimit:      100,
		RateLimitRPS:        20,
		RateLimitBurst:      40,
		BreakerMinRequests:  5,
		BreakerFailureRatio: 0.6,
		BreakerOpenSeconds:  30,
		AllowedRoles:        append([]string(nil), DefaultAllowedRoles...),
	}
}

// DataDir returns the data directory path.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, dataDirName)
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), dbFileName)
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), settingsFileName)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	cfg := Default()
	out := settingsFile{Config: *cfg, AllowedRoles: strings.Join(cfg.AllowedRoles, ",")}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll creates the data directory and default settings.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// settingsFile is the on-disk form; list settings are comma separated.
type settingsFile struct {
	Config
	AllowedRoles string `json:"RECORDSEARCH_ALLOWED_ROLES,omitempty"`
}

// Load reads settings.json over the defaults and applies environment
// overrides. A missing or malformed file leaves the defaults in place.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	switch {
	case err == nil:
		file := settingsFile{Config: *cfg}
		if jsonErr := json.Unmarshal(data, &file); jsonErr != nil {
			log.Warn().Err(jsonErr).Str("path", SettingsPath()).Msg("Invalid settings file, using defaults")
		} else {
			*cfg = file.Config
			if roles := splitTrim(file.AllowedRoles); len(roles) > 0 {
				cfg.AllowedRoles = roles
			}
		}
	case !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv overrides settings from RECORDSEARCH_* variables. Unparseable
// numbers are ignored.
func applyEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, err := strconv.Atoi(os.Getenv(envPrefix + key)); err == nil && v > 0 {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		if v, err := strconv.ParseFloat(os.Getenv(envPrefix+key), 64); err == nil && v > 0 {
			*dst = v
		}
	}

	str("WORKER_HOST", &cfg.WorkerHost)
	str("DB_DRIVER", &cfg.DBDriver)
	str("DB_PATH", &cfg.DBPath)
	str("DATABASE_DSN", &cfg.DatabaseDSN)
	str("LOG_LEVEL", &cfg.LogLevel)
	num("WORKER_PORT", &cfg.WorkerPort)
	num("MAX_CONNS", &cfg.MaxConns)
	float("SEARCH_THRESHOLD", &cfg.SearchThreshold)
	num("SEARCH_LIMIT", &cfg.SearchLimit)
	num("SEARCH_MAX_LIMIT", &cfg.SearchMaxLimit)
	float("RATE_LIMIT_RPS", &cfg.RateLimitRPS)
	num("RATE_LIMIT_BURST", &cfg.RateLimitBurst)
	num("BREAKER_MIN_REQUESTS", &cfg.BreakerMinRequests)
	float("BREAKER_FAILURE_RATIO", &cfg.BreakerFailureRatio)
	num("BREAKER_OPEN_SECONDS", &cfg.BreakerOpenSeconds)

	if roles := splitTrim(os.Getenv(envPrefix + "ALLOWED_ROLES")); len(roles) > 0 {
		cfg.AllowedRoles = roles
	}
}

var (
	globalMu  sync.Mutex
	globalCfg *Config
)

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCfg == nil {
		cfg, err := Load()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to load settings, using defaults")
			cfg = Default()
		}
		globalCfg = cfg
	}
	return globalCfg
}

// GetWorkerPort returns the worker port, preferring RECORDSEARCH_WORKER_PORT.
func GetWorkerPort() int {
	if v, err := strconv.Atoi(os.Getenv(envPrefix + "WORKER_PORT")); err == nil && v > 0 {
		return v
	}
	return Get().WorkerPort
}

// ZerologLevel parses LogLevel, falling back to info.
func (c *Config) ZerologLevel() zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// BreakerOpenTimeout returns the breaker open period.
func (c *Config) BreakerOpenTimeout() time.Duration {
	return time.Duration(c.BreakerOpenSeconds) * time.Second
}

// RoleAllowed reports whether role is in AllowedRoles.
func (c *Config) RoleAllowed(role string) bool {
	for _, r := range c.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// splitTrim splits a comma separated list, dropping blank entries.
func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
