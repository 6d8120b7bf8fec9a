package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Bangulli/cytomine/internal/domain/search/mode"
)

// EnvCBIRURL overrides cbir.base_url when set.
const EnvCBIRURL = "CBIR_URL"

// DefaultBaseURL is the in-cluster address of the retrieval engine.
const DefaultBaseURL = "http://wsi-cbir:6001/api"

// Config holds the gateway configuration.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	CBIR    CBIRConfig    `yaml:"cbir"`
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CBIRConfig holds the retrieval engine connection settings.
type CBIRConfig struct {
	BaseURL     string          `yaml:"base_url"`
	TimeoutSec  int             `yaml:"timeout_sec"`
	SearchModes []string        `yaml:"search_modes"` // filtered, legacy (default: both)
	LegacyQuery string          `yaml:"legacy_query"` // fixed query image of the legacy search
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	MaxInFlight int64           `yaml:"max_in_flight"` // concurrent engine calls, 0 = unbounded
}

// RateLimitConfig throttles outbound engine calls. Zero disables throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Timeout returns the per-call engine timeout.
func (c CBIRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Modes returns the parsed set of enabled search modes.
func (c CBIRConfig) Modes() (mode.Set, error) {
	return mode.ParseSet(c.SearchModes)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyEnv applies direct environment overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvCBIRURL)); v != "" {
		c.CBIR.BaseURL = v
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.CBIR.BaseURL == "" {
		c.CBIR.BaseURL = DefaultBaseURL
	}
	if c.CBIR.TimeoutSec <= 0 {
		c.CBIR.TimeoutSec = 60
	}
	if c.CBIR.LegacyQuery == "" {
		c.CBIR.LegacyQuery = "query.svs"
	}
	if c.CBIR.RateLimit.RequestsPerSecond > 0 && c.CBIR.RateLimit.Burst <= 0 {
		c.CBIR.RateLimit.Burst = 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := ValidateBaseURL(c.CBIR.BaseURL); err != nil {
		return fmt.Errorf("cbir.base_url: %w", err)
	}
	if c.HTTP.WriteTimeoutSec < c.CBIR.TimeoutSec {
		return fmt.Errorf(
			"http.write_timeout_sec (%d) must not be below cbir.timeout_sec (%d)",
			c.HTTP.WriteTimeoutSec, c.CBIR.TimeoutSec,
		)
	}
	if _, err := c.CBIR.Modes(); err != nil {
		return fmt.Errorf("cbir.search_modes: %w", err)
	}
	if c.CBIR.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("cbir.rate_limit.requests_per_second must not be negative")
	}
	if c.CBIR.RateLimit.Burst < 0 {
		return fmt.Errorf("cbir.rate_limit.burst must not be negative")
	}
	if c.CBIR.MaxInFlight < 0 {
		return fmt.Errorf("cbir.max_in_flight must not be negative")
	}
	return nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL without query or fragment.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required in %q", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("must not carry a query or fragment: %q", raw)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
