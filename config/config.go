package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPort       = 8080
	DefaultModel      = "gemini-2.0-flash"
	DefaultSessionTTL = 30 * time.Minute
	DefaultLanguage   = "tr"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port"`
		AllowOrigins []string      `yaml:"allowOrigins"`
		SessionTTL   time.Duration `yaml:"sessionTTL"`
	} `yaml:"server"`

	Gemini struct {
		ApiKey  string        `yaml:"apiKey"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"baseURL"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"gemini"`

	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`

	Locale struct {
		Default string `yaml:"default"`
	} `yaml:"locale"`
}

// LoadConfig reads the configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Load loads .env (if present), then the YAML file at path (if present), then
// environment overrides. A missing file is not an error; defaults are used.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg *Config
	if path != "" {
		loaded, err := LoadConfig(path)
		switch {
		case err == nil:
			cfg = loaded
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}
	if cfg == nil {
		cfg = &Config{}
		cfg.applyDefaults()
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = DefaultSessionTTL
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = DefaultModel
	}
	// zero leaves model calls to the transport's own limits
	if c.Gemini.Timeout < 0 {
		c.Gemini.Timeout = 0
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Locale.Default == "" {
		c.Locale.Default = DefaultLanguage
	}
}

func (c *Config) applyEnv() error {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		c.Gemini.ApiKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}
	return nil
}
