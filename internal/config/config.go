package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string such as "2s" in config files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server" toml:"server"`
	Database DatabaseConfig `json:"database" yaml:"database" toml:"database"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis" toml:"analysis"`
	Feedback FeedbackConfig `json:"feedback" yaml:"feedback" toml:"feedback"`
	Intake   IntakeConfig   `json:"intake" yaml:"intake" toml:"intake"`
	Auth     AuthConfig     `json:"auth" yaml:"auth" toml:"auth"`
	Log      LogConfig      `json:"log" yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Port            string   `json:"port" yaml:"port" toml:"port"`
	Debug           bool     `json:"debug" yaml:"debug" toml:"debug"`
	ShutdownTimeout Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxUploadBytes  int64    `json:"max_upload_bytes" yaml:"max_upload_bytes" toml:"max_upload_bytes"`
}

type DatabaseConfig struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	CacheSize int64  `json:"cache_size" yaml:"cache_size" toml:"cache_size"` // scans kept in memory
}

type AnalysisConfig struct {
	HealthyProbability float64  `json:"healthy_probability" yaml:"healthy_probability" toml:"healthy_probability"`
	Delay              Duration `json:"delay" yaml:"delay" toml:"delay"`
	CatalogPath        string   `json:"catalog_path" yaml:"catalog_path" toml:"catalog_path"`
	Persist            bool     `json:"persist" yaml:"persist" toml:"persist"`
}

type FeedbackConfig struct {
	Policy string `json:"policy" yaml:"policy" toml:"policy"` // "permissive" or "strict"
}

type IntakeConfig struct {
	SupportEmail string   `json:"support_email" yaml:"support_email" toml:"support_email"`
	Delay        Duration `json:"delay" yaml:"delay" toml:"delay"`
}

type AuthConfig struct {
	Secret   string   `json:"secret" yaml:"secret" toml:"secret"`
	TokenTTL Duration `json:"token_ttl" yaml:"token_ttl" toml:"token_ttl"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"` // "json" or "console"
}

// Default returns the configuration used for every key a file leaves out.
// The port has no default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ShutdownTimeout: Duration{10 * time.Second},
			MaxUploadBytes:  10 << 20,
		},
		Database: DatabaseConfig{
			Path:      "lymegrove.db",
			CacheSize: 1000,
		},
		Analysis: AnalysisConfig{
			HealthyProbability: 0.6,
			Delay:              Duration{2 * time.Second},
		},
		Feedback: FeedbackConfig{
			Policy: "permissive",
		},
		Intake: IntakeConfig{
			SupportEmail: "info@lymegrove.com",
			Delay:        Duration{time.Second},
		},
		Auth: AuthConfig{
			TokenTTL: Duration{24 * time.Hour},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from a YAML, TOML or JSON file, chosen by
// extension. A missing file yields the defaults. Environment overrides are
// applied last.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := decode(configPath, data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnvOverrides()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func decode(path string, data []byte, config *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, config)
	case ".toml":
		_, err := toml.Decode(string(data), config)
		return err
	case ".json":
		return json.Unmarshal(data, config)
	}
	return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LYMEGROVE_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LYMEGROVE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("LYMEGROVE_AUTH_SECRET"); v != "" {
		c.Auth.Secret = v
	}
	if v := os.Getenv("LYMEGROVE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is not set in config file")
	}
	if p := c.Analysis.HealthyProbability; p < 0 || p > 1 {
		return fmt.Errorf("analysis.healthy_probability must be between 0 and 1, got %v", p)
	}
	if c.Analysis.Delay.Duration < 0 || c.Intake.Delay.Duration < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	switch c.Feedback.Policy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("unknown feedback policy %q", c.Feedback.Policy)
	}
	if c.Database.CacheSize < 0 {
		return fmt.Errorf("database.cache_size must not be negative")
	}
	return nil
}

// GetConfigPath returns the path to the configuration file
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("LYMEGROVE_CONFIG"); path != "" {
		return path
	}

	// Then try config directory
	configDir := "config"
	if _, err := os.Stat(configDir); err == nil {
		return filepath.Join(configDir, "config.yaml")
	}

	// Finally, try current directory
	return "config.yaml"
}
