package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for xid
type Config struct {
	// Twitter API credentials
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds the four OAuth 1.0a user-context secrets
type TwitterConfig struct {
	APIKey            string `yaml:"api_key" json:"api_key"`
	APISecret         string `yaml:"api_secret" json:"api_secret"`
	AccessToken       string `yaml:"access_token" json:"access_token"`
	AccessTokenSecret string `yaml:"access_token_secret" json:"access_token_secret"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow and Window describe the client-side pacing budget,
	// kept below the documented API limit so 429 responses stay rare.
	RequestsPerWindow int           `yaml:"requests_per_window" json:"requests_per_window"`
	Window            time.Duration `yaml:"window" json:"window"`
	// ResetMargin is added on top of the API-reported reset time before resuming.
	ResetMargin time.Duration `yaml:"reset_margin" json:"reset_margin"`
	// NetworkRetries is the number of retries for transient network failures.
	NetworkRetries int `yaml:"network_retries" json:"network_retries"`
}

// DownloadConfig holds timeline and image download settings
type DownloadConfig struct {
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	MaxPosts int           `yaml:"max_posts" json:"max_posts"`
	PageSize int           `yaml:"page_size" json:"page_size"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{
			RequestsPerWindow: 15,
			Window:            15 * time.Minute,
			ResetMargin:       2 * time.Second,
			NetworkRetries:    1,
		},
		Download: DownloadConfig{
			Timeout:  30 * time.Second,
			MaxPosts: 200,
			PageSize: 100,
		},
		Output: OutputConfig{
			BaseDirectory: "downloads",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from a .env file (if present) and
// the process environment. Environment values override file values.
func (c *Config) LoadFromEnv() error {
	// Best effort: a missing .env file is not an error
	_ = godotenv.Load()

	if v := os.Getenv("TWITTER_API_KEY"); v != "" {
		c.Twitter.APIKey = v
	}
	if v := os.Getenv("TWITTER_API_SECRET"); v != "" {
		c.Twitter.APISecret = v
	}
	if v := os.Getenv("TWITTER_ACCESS_TOKEN"); v != "" {
		c.Twitter.AccessToken = v
	}
	if v := os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"); v != "" {
		c.Twitter.AccessTokenSecret = v
	}

	if outputDir := os.Getenv("XID_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if maxPosts := os.Getenv("XID_MAX_POSTS"); maxPosts != "" {
		var val int
		fmt.Sscanf(maxPosts, "%d", &val)
		if val > 0 {
			c.Download.MaxPosts = val
		}
	}
	if pageSize := os.Getenv("XID_PAGE_SIZE"); pageSize != "" {
		var val int
		fmt.Sscanf(pageSize, "%d", &val)
		if val > 0 {
			c.Download.PageSize = val
		}
	}
	if logLevel := os.Getenv("XID_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".xid.yaml",
		".xid.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "xid", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "xid", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".xid.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// ApplyFlags overrides configuration values with command line flags
func (c *Config) ApplyFlags(flags map[string]interface{}) {
	for key, value := range flags {
		switch key {
		case "output":
			if v, ok := value.(string); ok && v != "" {
				c.Output.BaseDirectory = v
			}
		case "max-posts":
			if v, ok := value.(int); ok && v > 0 {
				c.Download.MaxPosts = v
			}
		case "page-size":
			if v, ok := value.(int); ok && v > 0 {
				c.Download.PageSize = v
			}
		case "timeout":
			if v, ok := value.(int); ok && v > 0 {
				c.Download.Timeout = time.Duration(v) * time.Second
			}
		case "log-level":
			if v, ok := value.(string); ok && v != "" {
				c.Logging.Level = v
			}
		}
	}
}

// Load builds the effective configuration: defaults, then config file,
// then environment, then command line flags.
func Load(configFile string, flags map[string]interface{}) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configFile); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasCredentials reports whether all four Twitter secrets are present
func (c *Config) HasCredentials() bool {
	return c.Twitter.APIKey != "" &&
		c.Twitter.APISecret != "" &&
		c.Twitter.AccessToken != "" &&
		c.Twitter.AccessTokenSecret != ""
}

// Validate checks if the configuration is valid. Credential presence is
// checked separately so that stored credentials can still be resolved.
func (c *Config) Validate() error {
	var errs []error

	if c.RateLimit.RequestsPerWindow <= 0 {
		errs = append(errs, errors.New("requests per window must be positive"))
	}
	if c.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if c.RateLimit.NetworkRetries < 0 {
		errs = append(errs, errors.New("network retries cannot be negative"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.PageSize < 5 || c.Download.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 5 and 100"))
	}
	if c.Download.MaxPosts <= 0 {
		errs = append(errs, errors.New("max posts must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
	}

	return nil
}
