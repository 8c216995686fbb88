// Package config provides configuration loading and defaults for the drivebench-mcp server.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ResourceFilter holds allowlist and denylist entries for a resource category.
type ResourceFilter struct {
	Allowlist []string `yaml:"allowlist"`
	Denylist  []string `yaml:"denylist"`
}

// SafetyConfig groups resource filters. Volumes restricts which mount paths
// may be listed and benchmarked.
type SafetyConfig struct {
	Volumes ResourceFilter `yaml:"volumes"`
}

// SizeConfig is one entry of the ordered benchmark size table.
type SizeConfig struct {
	Label     string `yaml:"label"`
	SizeBytes int64  `yaml:"size_bytes"`
}

// BenchConfig holds the benchmark engine settings.
type BenchConfig struct {
	// Sizes is the ordered (smallest first) table of test file sizes.
	Sizes []SizeConfig `yaml:"sizes"`
	// ChunkSizeBytes is the I/O chunk size for both write and read passes.
	ChunkSizeBytes int64 `yaml:"chunk_size_bytes"`
	// SafetyBufferBytes is added to the largest size when validating free space.
	SafetyBufferBytes uint64 `yaml:"safety_buffer_bytes"`
}

// AuditConfig controls audit logging behaviour.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	LogPath string `yaml:"log_path"`
}

// ServerConfig holds network and authentication settings.
type ServerConfig struct {
	Port      int    `yaml:"port"`
	AuthToken string `yaml:"auth_token"`
}

// Config is the top-level configuration structure for the drivebench-mcp server.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Bench  BenchConfig  `yaml:"bench"`
	Safety SafetyConfig `yaml:"safety"`
	Audit  AuditConfig  `yaml:"audit"`
}

// LoadConfig reads and parses a YAML configuration file from the given path.
// It returns a pointer to the populated Config and any error encountered.
// On error, nil is returned for the config pointer.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateBench(&cfg.Bench); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateBench rejects size tables the sequencer cannot run: empty labels,
// non-positive sizes, or sizes out of ascending order.
func validateBench(b *BenchConfig) error {
	if b.ChunkSizeBytes < 0 {
		return fmt.Errorf("bench.chunk_size_bytes must not be negative, got %d", b.ChunkSizeBytes)
	}
	var prev int64
	for i, s := range b.Sizes {
		if s.Label == "" {
			return fmt.Errorf("bench.sizes[%d]: label must not be empty", i)
		}
		if s.SizeBytes <= 0 {
			return fmt.Errorf("bench.sizes[%d] (%s): size_bytes must be positive, got %d", i, s.Label, s.SizeBytes)
		}
		if s.SizeBytes <= prev {
			return fmt.Errorf("bench.sizes[%d] (%s): sizes must be in ascending order", i, s.Label)
		}
		prev = s.SizeBytes
	}
	return nil
}

// DefaultConfig returns a new Config populated with sensible default values.
// Each call returns a distinct instance.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Bench: BenchConfig{
			Sizes: []SizeConfig{
				{Label: "100MB", SizeBytes: 100 * 1024 * 1024},
				{Label: "1GB", SizeBytes: 1024 * 1024 * 1024},
				{Label: "10GB", SizeBytes: 10 * 1024 * 1024 * 1024},
			},
			ChunkSizeBytes:    8 * 1024 * 1024,
			SafetyBufferBytes: 1024 * 1024 * 1024,
		},
		Audit: AuditConfig{
			Enabled: true,
			LogPath: "/config/audit.log",
		},
	}
}

// ApplyEnvOverrides updates cfg in place with values from environment variables.
// Recognized variables:
//   - DRIVEBENCH_AUTH_TOKEN overrides cfg.Server.AuthToken
//   - DRIVEBENCH_PORT overrides cfg.Server.Port (ignored if not an integer)
func ApplyEnvOverrides(cfg *Config) {
	if token := os.Getenv("DRIVEBENCH_AUTH_TOKEN"); token != "" {
		cfg.Server.AuthToken = token
	}
	if port := os.Getenv("DRIVEBENCH_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
}

// EnsureAuthToken generates a random auth token and sets it on cfg if
// cfg.Server.AuthToken is empty. It returns the token (existing or generated)
// and any error encountered during generation.
func EnsureAuthToken(cfg *Config) (string, error) {
	if cfg.Server.AuthToken != "" {
		return cfg.Server.AuthToken, nil
	}
	token, err := GenerateRandomToken()
	if err != nil {
		return "", fmt.Errorf("generate auth token: %w", err)
	}
	cfg.Server.AuthToken = token
	return token, nil
}

// GenerateRandomToken returns a 32-character hex-encoded cryptographically
// random token string.
func GenerateRandomToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand.Read: %w", err)
	}
	return hex.EncodeToString(b), nil
}
