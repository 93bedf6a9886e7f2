package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Default document paths, kept compatible with the historical data files.
const (
	DefaultRegistryPath = "faces.json"
	DefaultLedgerPath   = "Attendance.csv"
	DefaultAuditPath    = "employ_details.csv"
)

const (
	defaultEmbeddingDim = 128
	defaultThreshold    = 0.5
)

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Matching MatchingConfig `yaml:"matching"`
}

type DataConfig struct {
	RegistryPath string `yaml:"registry_path"` // JSON identity registry
	LedgerPath   string `yaml:"ledger_path"`   // CSV attendance ledger
	AuditPath    string `yaml:"audit_path"`    // append-only enrollment log
}

type MatchingConfig struct {
	Dim       int     `yaml:"dim"`       // embedding dimensionality (default 128)
	Threshold float64 `yaml:"threshold"` // max distance for a match (default 0.5)
}

// envStr reads an environment variable, returning the default when unset.
func envStr(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// Load builds the configuration from an optional YAML file and the
// environment. Environment variables win over file values; built-in
// defaults cover the rest. The file path comes from FACE_ATTENDANCE_CONFIG
// and is only an error when it is set and unreadable.
func Load() (*Config, error) {
	cfg := &Config{
		Data: DataConfig{
			RegistryPath: DefaultRegistryPath,
			LedgerPath:   DefaultLedgerPath,
			AuditPath:    DefaultAuditPath,
		},
		Matching: MatchingConfig{
			Dim:       defaultEmbeddingDim,
			Threshold: defaultThreshold,
		},
	}

	if path := os.Getenv("FACE_ATTENDANCE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		cfg.applyDefaults()
	}

	cfg.Data.RegistryPath = envStr("REGISTRY_PATH", cfg.Data.RegistryPath)
	cfg.Data.LedgerPath = envStr("LEDGER_PATH", cfg.Data.LedgerPath)
	cfg.Data.AuditPath = envStr("AUDIT_LOG_PATH", cfg.Data.AuditPath)
	cfg.Matching.Dim = envInt("EMBEDDING_DIM", cfg.Matching.Dim)
	cfg.Matching.Threshold = envFloat("MATCH_THRESHOLD", cfg.Matching.Threshold)

	return cfg, nil
}

// applyDefaults restores defaults for fields the config file left zero.
func (c *Config) applyDefaults() {
	if c.Data.RegistryPath == "" {
		c.Data.RegistryPath = DefaultRegistryPath
	}
	if c.Data.LedgerPath == "" {
		c.Data.LedgerPath = DefaultLedgerPath
	}
	if c.Data.AuditPath == "" {
		c.Data.AuditPath = DefaultAuditPath
	}
	if c.Matching.Dim == 0 {
		c.Matching.Dim = defaultEmbeddingDim
	}
	if c.Matching.Threshold == 0 {
		c.Matching.Threshold = defaultThreshold
	}
}
