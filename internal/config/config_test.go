package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.T().Setenv("HOME", s.tempDir)
	for _, key := range []string{
		"RECORDSEARCH_WORKER_PORT", "RECORDSEARCH_DB_DRIVER", "RECORDSEARCH_SEARCH_THRESHOLD",
		"RECORDSEARCH_ALLOWED_ROLES", "RECORDSEARCH_LOG_LEVEL",
	} {
		s.T().Setenv(key, "")
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeSettings(content string) {
	s.Require().NoError(os.MkdirAll(filepath.Join(s.tempDir, dataDirName), 0750))
	s.Require().NoError(os.WriteFile(filepath.Join(s.tempDir, dataDirName, settingsFileName), []byte(content), 0600))
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultWorkerPort, cfg.WorkerPort)
	s.Equal(DefaultWorkerHost, cfg.WorkerHost)
	s.Equal("sqlite", cfg.DBDriver)
	s.Equal(4, cfg.MaxConns)
	s.Equal(60.0, cfg.SearchThreshold)
	s.Equal(10, cfg.SearchLimit)
	s.Equal(100, cfg.SearchMaxLimit)
	s.Equal(DefaultAllowedRoles, cfg.AllowedRoles)
	s.Equal(30*time.Second, cfg.BreakerOpenTimeout())
}

func (s *ConfigSuite) TestPaths() {
	s.Equal(filepath.Join(s.tempDir, ".recordsearch"), DataDir())
	s.Contains(DBPath(), "recordsearch.db")
	s.Contains(SettingsPath(), "settings.json")
}

// TestEnsureAll tests full initialization.
func (s *ConfigSuite) TestEnsureAll() {
	s.Require().NoError(EnsureAll())

	info, err := os.Stat(DataDir())
	s.Require().NoError(err)
	s.True(info.IsDir())
	_, err = os.Stat(SettingsPath())
	s.NoError(err)

	// second call keeps the existing file
	s.NoError(EnsureAll())

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(Default().AllowedRoles, cfg.AllowedRoles)
	s.Equal(DefaultWorkerPort, cfg.WorkerPort)
}

// TestLoad_TableDriven tests configuration loading with various scenarios.
func (s *ConfigSuite) TestLoad_TableDriven() {
	tests := []struct {
		name              string
		settingsJSON      string
		expectedPort      int
		expectedDriver    string
		expectedThreshold float64
	}{
		{
			name:              "no settings file",
			expectedPort:      DefaultWorkerPort,
			expectedDriver:    "sqlite",
			expectedThreshold: 60,
		},
		{
			name:              "custom port",
			settingsJSON:      `{"RECORDSEARCH_WORKER_PORT": 38888}`,
			expectedPort:      38888,
			expectedDriver:    "sqlite",
			expectedThreshold: 60,
		},
		{
			name:              "postgres with threshold",
			settingsJSON:      `{"RECORDSEARCH_DB_DRIVER": "postgres", "RECORDSEARCH_SEARCH_THRESHOLD": 75}`,
			expectedPort:      DefaultWorkerPort,
			expectedDriver:    "postgres",
			expectedThreshold: 75,
		},
		{
			name:              "invalid JSON returns defaults",
			settingsJSON:      `{invalid}`,
			expectedPort:      DefaultWorkerPort,
			expectedDriver:    "sqlite",
			expectedThreshold: 60,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_ = os.Remove(SettingsPath())
			if tt.settingsJSON != "" {
				s.writeSettings(tt.settingsJSON)
			}

			cfg, err := Load()
			s.NoError(err)
			s.Require().NotNil(cfg)
			s.Equal(tt.expectedPort, cfg.WorkerPort)
			s.Equal(tt.expectedDriver, cfg.DBDriver)
			s.Equal(tt.expectedThreshold, cfg.SearchThreshold)
		})
	}
}

func (s *ConfigSuite) TestLoad_AllowedRolesFromFile() {
	s.writeSettings(`{"RECORDSEARCH_ALLOWED_ROLES": " admin , inspector ,,"}`)

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal([]string{"admin", "inspector"}, cfg.AllowedRoles)
	s.True(cfg.RoleAllowed("inspector"))
	s.False(cfg.RoleAllowed("clerk"))
}

func (s *ConfigSuite) TestLoad_EnvOverridesFile() {
	s.writeSettings(`{"RECORDSEARCH_WORKER_PORT": 38888, "RECORDSEARCH_LOG_LEVEL": "warn"}`)
	s.T().Setenv("RECORDSEARCH_WORKER_PORT", "39999")
	s.T().Setenv("RECORDSEARCH_SEARCH_THRESHOLD", "not-a-number")
	s.T().Setenv("RECORDSEARCH_ALLOWED_ROLES", "court")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(39999, cfg.WorkerPort)
	s.Equal(60.0, cfg.SearchThreshold)
	s.Equal([]string{"court"}, cfg.AllowedRoles)
	s.Equal(zerolog.WarnLevel, cfg.ZerologLevel())
}

func TestGetWorkerPort_WithEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Setenv("RECORDSEARCH_WORKER_PORT", "45678")
	assert.Equal(t, 45678, GetWorkerPort())

	t.Setenv("RECORDSEARCH_WORKER_PORT", "not-a-number")
	assert.Greater(t, GetWorkerPort(), 0)

	t.Setenv("RECORDSEARCH_WORKER_PORT", "0")
	assert.Greater(t, GetWorkerPort(), 0)
}

func TestGet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Get()
	require.NotNil(t, cfg)
	assert.Greater(t, cfg.WorkerPort, 0)
	assert.Same(t, cfg, Get())
}

func TestZerologLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
	}{
		{level: "debug", expected: zerolog.DebugLevel},
		{level: "ERROR", expected: zerolog.ErrorLevel},
		{level: "", expected: zerolog.InfoLevel},
		{level: "chatty", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.level}
			assert.Equal(t, tt.expected, cfg.ZerologLevel())
		})
	}
}

// TestSplitTrim tests the splitTrim helper function.
func TestSplitTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: []string{}},
		{name: "single value", input: "admin", expected: []string{"admin"}},
		{name: "multiple values", input: "admin,inspector,io", expected: []string{"admin", "inspector", "io"}},
		{name: "values with spaces", input: " admin , io ", expected: []string{"admin", "io"}},
		{name: "empty values filtered", input: "admin,,io,,", expected: []string{"admin", "io"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitTrim(tt.input))
		})
	}
}
