package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the namespace for all environment variables
const EnvPrefix = "RETAIL"

// Fill policies for feature slots the prediction form does not cover
const (
	FillPolicyZero = "zero"
	FillPolicyMean = "mean"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Inference InferenceConfig `yaml:"inference" envconfig:"INFERENCE"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataRoot  string `yaml:"data_root" envconfig:"DATA_ROOT"`
	ExportDir string `yaml:"export_dir" envconfig:"EXPORT_DIR"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// InferenceConfig controls how the prediction form feeds the churn model
type InferenceConfig struct {
	FillPolicy string  `yaml:"fill_policy" envconfig:"FILL_POLICY"`
	Threshold  float64 `yaml:"threshold" envconfig:"THRESHOLD"`
}

// DashboardConfig contains display limits
type DashboardConfig struct {
	PreviewLimit    int `yaml:"preview_limit" envconfig:"PREVIEW_LIMIT"`
	MaxPreviewLimit int `yaml:"max_preview_limit" envconfig:"MAX_PREVIEW_LIMIT"`
	ForecastLimit   int `yaml:"forecast_limit" envconfig:"FORECAST_LIMIT"`
}

// Load loads configuration from the first config file found in the usual
// locations, then applies environment overrides.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom loads configuration from the given YAML file (may be empty) and
// environment variables. Precedence: env > file > defaults.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if _, err := os.Stat(configFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configFile, err)
		}
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching env var are left untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile decodes a YAML file over the supplied configuration
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes the configured directories absolute
func (c *Config) resolvePaths() error {
	for _, p := range []*string{&c.Paths.DataRoot, &c.Paths.ExportDir, &c.Paths.LogsDir} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// Layout returns the dataset folder layout rooted at the configured data root
func (c *Config) Layout() Layout {
	return NewLayout(c.Paths.DataRoot)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Paths.DataRoot == "" {
		return fmt.Errorf("data root must be set")
	}

	switch c.Inference.FillPolicy {
	case FillPolicyZero, FillPolicyMean:
	default:
		return fmt.Errorf("invalid fill policy %q (want %q or %q)", c.Inference.FillPolicy, FillPolicyZero, FillPolicyMean)
	}

	if c.Inference.Threshold <= 0 || c.Inference.Threshold >= 1 {
		return fmt.Errorf("risk threshold must be in (0, 1), got %v", c.Inference.Threshold)
	}

	if c.Dashboard.PreviewLimit <= 0 || c.Dashboard.MaxPreviewLimit < c.Dashboard.PreviewLimit {
		return fmt.Errorf("invalid preview limits: %d/%d", c.Dashboard.PreviewLimit, c.Dashboard.MaxPreviewLimit)
	}

	if c.Dashboard.ForecastLimit < 0 {
		return fmt.Errorf("forecast limit must not be negative")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, "dashboard.log")
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8501"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     50,
				Burst:   100,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "console",
		},
		Paths: PathsConfig{
			DataRoot:  ".",
			ExportDir: "exports",
			LogsDir:   "logs",
		},
		Inference: InferenceConfig{
			FillPolicy: FillPolicyMean,
			Threshold:  0.5,
		},
		Dashboard: DashboardConfig{
			PreviewLimit:    100,
			MaxPreviewLimit: 1000,
			ForecastLimit:   10,
		},
	}
}
