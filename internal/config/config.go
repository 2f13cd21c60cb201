package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/listingcheck/internal/core/model"
)

type ServerConfig struct {
	Port string `toml:"port"`
	// APIKey enables the x-api-key check when non-empty.
	APIKey                 string `toml:"api_key"`
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
	MaxImageBytes          int64  `toml:"max_image_bytes"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type EmbeddingConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	ProjectID string `toml:"project_id"`
	Location  string `toml:"location"`
	// Inline service account; PrivateKey may carry escaped newlines.
	ClientEmail     string `toml:"client_email"`
	PrivateKey      string `toml:"private_key"`
	CredentialsFile string `toml:"credentials_file"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Server     ServerConfig          `toml:"server"`
	LLM        LLMConfig             `toml:"llm"`
	Embedding  EmbeddingConfig       `toml:"embedding"`
	Thresholds model.ThresholdConfig `toml:"thresholds"`
	Logging    LoggingConfig         `toml:"logging"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                   "8000",
			RequestTimeoutSeconds:  120,
			ShutdownTimeoutSeconds: 30,
			MaxImageBytes:          20 << 20,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Embedding: EmbeddingConfig{
			Provider: "vertex",
			Model:    "multimodalembedding@001",
			Location: "us-central1",
		},
		Thresholds: model.DefaultThresholds(),
		Logging:    LoggingConfig{Level: "info"},
	}
}

// Load reads a TOML file on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// ApplyEnv overrides config values with environment variables when present.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}

	setString(&c.Server.Port, "PORT")
	setString(&c.Server.APIKey, "API_KEY")
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.Model, "LLM_MODEL", "GEMINI_MODEL_ID")
	setString(&c.LLM.APIKey, "LLM_API_KEY")
	setString(&c.LLM.BaseURL, "LLM_BASE_URL")
	setString(&c.Embedding.Model, "EMBEDDING_MODEL")
	setString(&c.Embedding.ProjectID, "GOOGLE_CLOUD_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "PROJECT_ID")
	setString(&c.Embedding.Location, "GOOGLE_CLOUD_LOCATION")
	setString(&c.Embedding.ClientEmail, "GOOGLE_CLIENT_EMAIL")
	setString(&c.Embedding.PrivateKey, "GOOGLE_PRIVATE_KEY")
	setString(&c.Embedding.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Logging.Level, "LOG_LEVEL")

	if v := getenv("DEFAULT_SIM_LOW"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_SIM_LOW %q: %w", v, err)
		}
		c.Thresholds.SimLow = f
	}
	if v := getenv("DEFAULT_SIM_HIGH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_SIM_HIGH %q: %w", v, err)
		}
		c.Thresholds.SimHigh = f
	}
	if v := getenv("DEFAULT_EMBEDDING_DIM"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DEFAULT_EMBEDDING_DIM %q: %w", v, err)
		}
		c.Thresholds.EmbeddingDim = n
	}
	if v := getenv("REQUEST_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Server.RequestTimeoutSeconds = n
	}
	if v := getenv("DEBUG"); v == "1" || strings.EqualFold(v, "true") {
		c.Logging.Level = "debug"
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.RequestTimeoutSeconds < 0 {
		return errors.New("request_timeout_seconds must not be negative")
	}
	if c.Server.MaxImageBytes <= 0 {
		return errors.New("max_image_bytes must be positive")
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if c.LLM.Provider == "" {
		return errors.New("llm provider is required")
	}
	if c.LLM.Model == "" {
		return errors.New("llm model is required")
	}
	if c.Embedding.Provider != "vertex" {
		return fmt.Errorf("unsupported embedding provider: %s", c.Embedding.Provider)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.Logging.Level)
	}
	return nil
}

func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// SlogLevel maps the configured level name to a slog level; unknown names are info.
func (l LoggingConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
