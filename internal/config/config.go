package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sigfetch/internal/api"
)

// TokenEnv is the environment variable holding the API credential.
const TokenEnv = "SIGNATURIT_API_TOKEN"

// TokenPlaceholder is the sentinel shipped in the sample config. A token
// still containing it counts as unset.
const TokenPlaceholder = "PASTE_YOUR_TOKEN_HERE"

// ErrMissingToken is returned by Validate when no usable credential is set.
var ErrMissingToken = errors.New("config: no API token set")

// Config defines configuration for the sigfetch CLI.
type Config struct {
	Year       int           `yaml:"year"`
	OutputRoot string        `yaml:"output_root"`
	BaseURL    string        `yaml:"base_url"`
	Sandbox    bool          `yaml:"sandbox"`
	Token      string        `yaml:"token"`
	PageLimit  int           `yaml:"page_limit"`
	Timeout    time.Duration `yaml:"timeout"`
	Retry      RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry behavior for the API client.
type RetryConfig struct {
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	MaxBackoff time.Duration `yaml:"max_backoff"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Year:       time.Now().Year(),
		OutputRoot: "signaturit_downloads",
		PageLimit:  100,
		Timeout:    60 * time.Second,
		Retry: RetryConfig{
			Attempts:   5,
			Backoff:    1500 * time.Millisecond,
			MaxBackoff: 30 * time.Second,
		},
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	Year       int             `yaml:"year"`
	OutputRoot string          `yaml:"output_root"`
	BaseURL    string          `yaml:"base_url"`
	Sandbox    bool            `yaml:"sandbox"`
	Token      string          `yaml:"token"`
	PageLimit  int             `yaml:"page_limit"`
	Timeout    string          `yaml:"timeout"`
	Retry      yamlRetryConfig `yaml:"retry"`
}

type yamlRetryConfig struct {
	Attempts   int    `yaml:"attempts"`
	Backoff    string `yaml:"backoff"`
	MaxBackoff string `yaml:"max_backoff"`
}

// LoadFromFile loads configuration from a YAML file, overlaying defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.Year != 0 {
		cfg.Year = yc.Year
	}
	if yc.OutputRoot != "" {
		cfg.OutputRoot = yc.OutputRoot
	}
	if yc.BaseURL != "" {
		cfg.BaseURL = yc.BaseURL
	}
	cfg.Sandbox = yc.Sandbox
	if yc.Token != "" {
		cfg.Token = yc.Token
	}
	if yc.PageLimit != 0 {
		cfg.PageLimit = yc.PageLimit
	}
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}
	if yc.Retry.Attempts != 0 {
		cfg.Retry.Attempts = yc.Retry.Attempts
	}
	if yc.Retry.Backoff != "" {
		d, err := time.ParseDuration(yc.Retry.Backoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.backoff: %w", err)
		}
		cfg.Retry.Backoff = d
	}
	if yc.Retry.MaxBackoff != "" {
		d, err := time.ParseDuration(yc.Retry.MaxBackoff)
		if err != nil {
			return Config{}, fmt.Errorf("parse retry.max_backoff: %w", err)
		}
		cfg.Retry.MaxBackoff = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables. Settings use
// the SIGFETCH_ prefix; the credential comes from SIGNATURIT_API_TOKEN.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(TokenEnv); v != "" {
		c.Token = v
	}
	if v := os.Getenv("SIGFETCH_YEAR"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_YEAR: %w", err)
		}
		c.Year = n
	}
	if v := os.Getenv("SIGFETCH_OUTPUT_ROOT"); v != "" {
		c.OutputRoot = v
	}
	if v := os.Getenv("SIGFETCH_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("SIGFETCH_SANDBOX"); v != "" {
		c.Sandbox = v == "true" || v == "1"
	}
	if v := os.Getenv("SIGFETCH_PAGE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_PAGE_LIMIT: %w", err)
		}
		c.PageLimit = n
	}
	if v := os.Getenv("SIGFETCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("SIGFETCH_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_RETRY_ATTEMPTS: %w", err)
		}
		c.Retry.Attempts = n
	}
	if v := os.Getenv("SIGFETCH_RETRY_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_RETRY_BACKOFF: %w", err)
		}
		c.Retry.Backoff = d
	}
	if v := os.Getenv("SIGFETCH_RETRY_MAX_BACKOFF"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SIGFETCH_RETRY_MAX_BACKOFF: %w", err)
		}
		c.Retry.MaxBackoff = d
	}

	return nil
}

// Merge merges override values into c, returning a new Config.
// Zero values in override are ignored.
func (c Config) Merge(override Config) Config {
	if override.Year != 0 {
		c.Year = override.Year
	}
	if override.OutputRoot != "" {
		c.OutputRoot = override.OutputRoot
	}
	if override.BaseURL != "" {
		c.BaseURL = override.BaseURL
	}
	if override.Sandbox {
		c.Sandbox = override.Sandbox
	}
	if override.Token != "" {
		c.Token = override.Token
	}
	if override.PageLimit != 0 {
		c.PageLimit = override.PageLimit
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	if override.Retry.Attempts != 0 {
		c.Retry.Attempts = override.Retry.Attempts
	}
	if override.Retry.Backoff != 0 {
		c.Retry.Backoff = override.Retry.Backoff
	}
	if override.Retry.MaxBackoff != 0 {
		c.Retry.MaxBackoff = override.Retry.MaxBackoff
	}
	return c
}

// Validate validates the configuration. It is called before any network
// activity, so a missing credential aborts the run up front.
func (c *Config) Validate() error {
	if !c.HasToken() {
		return ErrMissingToken
	}
	if c.Year < 1 {
		return errors.New("config: year must be positive")
	}
	if c.OutputRoot == "" {
		return errors.New("config: output_root is required")
	}
	if c.PageLimit <= 0 {
		return errors.New("config: page_limit must be positive")
	}
	if c.Retry.Attempts <= 0 {
		return errors.New("config: retry.attempts must be positive")
	}
	return nil
}

// HasToken reports whether a usable credential is configured. A token that
// still contains the placeholder sentinel counts as unset.
func (c *Config) HasToken() bool {
	return c.Token != "" && !strings.Contains(c.Token, TokenPlaceholder)
}

// Endpoint resolves the API base URL: an explicit base_url wins, otherwise
// the sandbox flag picks between the two provider endpoints.
func (c *Config) Endpoint() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Sandbox {
		return api.SandboxBaseURL
	}
	return api.ProductionBaseURL
}

// MaskToken redacts a credential for console output, keeping just enough to
// recognize which token is in use.
func MaskToken(token string) string {
	if token == "" {
		return "<empty>"
	}
	if len(token) <= 12 {
		return token
	}
	return token[:6] + "..." + token[len(token)-4:]
}
