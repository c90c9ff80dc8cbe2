package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. WEBSCOUT_MCP_PORT.
const EnvPrefix = "WEBSCOUT_"

type ServerConfig struct {
	Host string `yaml:"host" env:"HOST"`
	Port int    `yaml:"port" env:"PORT"`
}

// MCPConfig controls the Model Context Protocol server.
type MCPConfig struct {
	// Transport is "stdio" or "http".
	Transport       string `yaml:"transport" env:"TRANSPORT"`
	Host            string `yaml:"host" env:"HOST"`
	Port            int    `yaml:"port" env:"PORT"`
	MaxContentChars int    `yaml:"maxContentChars" env:"MAX_CONTENT_CHARS"`
}

// SearchConfig controls the browser-driven searcher.
type SearchConfig struct {
	// Headless defaults to true when neither the file nor the environment
	// sets it.
	Headless            bool   `yaml:"headless" env:"HEADLESS"`
	NoSandbox           bool   `yaml:"noSandbox" env:"NO_SANDBOX"`
	BaseURL             string `yaml:"baseURL" env:"BASE_URL"`
	BrowserURL          string `yaml:"browserURL" env:"BROWSER_URL"`
	BrowserBin          string `yaml:"browserBin" env:"BROWSER_BIN"`
	UserAgent           string `yaml:"userAgent" env:"USER_AGENT"`
	RateLimit           int    `yaml:"rateLimit" env:"RATE_LIMIT"`
	RateIntervalMs      int    `yaml:"rateIntervalMs" env:"RATE_INTERVAL_MS"`
	NavigationTimeoutMs int    `yaml:"navigationTimeoutMs" env:"NAVIGATION_TIMEOUT_MS"`
	SelectorTimeoutMs   int    `yaml:"selectorTimeoutMs" env:"SELECTOR_TIMEOUT_MS"`
	CaptchaTimeoutMs    int    `yaml:"captchaTimeoutMs" env:"CAPTCHA_TIMEOUT_MS"`
	MaxResults          int    `yaml:"maxResults" env:"MAX_RESULTS"`
}

// FetchConfig controls the page fetcher and its HTTP client.
type FetchConfig struct {
	UserAgent      string `yaml:"userAgent" env:"USER_AGENT"`
	TimeoutMs      int    `yaml:"timeoutMs" env:"TIMEOUT_MS"`
	RateLimit      int    `yaml:"rateLimit" env:"RATE_LIMIT"`
	RateIntervalMs int    `yaml:"rateIntervalMs" env:"RATE_INTERVAL_MS"`
	RespectRobots  bool   `yaml:"respectRobots" env:"RESPECT_ROBOTS"`
	// UseReadability picks the article body with a readability pass before
	// falling back to main/article/body.
	UseReadability bool `yaml:"useReadability" env:"USE_READABILITY"`
}

type RedisConfig struct {
	URL string `yaml:"url" env:"URL"`
}

// RateLimitConfig limits REST API clients. Limits are shared across
// instances when Redis is configured.
type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute" env:"DEFAULT_PER_MINUTE"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is text or json.
	Format string `yaml:"format" env:"FORMAT"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	MCP       MCPConfig       `yaml:"mcp" envPrefix:"MCP_"`
	Search    SearchConfig    `yaml:"search" envPrefix:"SEARCH_"`
	Fetch     FetchConfig     `yaml:"fetch" envPrefix:"FETCH_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	RateLimit RateLimitConfig `yaml:"ratelimit" envPrefix:"RATELIMIT_"`
	Log       LogConfig       `yaml:"log" envPrefix:"LOG_"`
}

// Load reads the YAML file at path, applies WEBSCOUT_* environment overrides
// (including any found in a local .env file) and fills defaults. An empty
// path or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := newConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("decode config: %w", err)
			}
		}
	}

	// .env is optional; variables already set in the process win.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file or environment is
// present.
func Default() *Config {
	cfg := newConfig()
	cfg.applyDefaults()
	return cfg
}

// newConfig seeds the settings whose zero value is not the default. It runs
// before the file and environment are applied so an explicit false survives.
func newConfig() *Config {
	return &Config{
		Search: SearchConfig{Headless: true},
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	c.MCP.Transport = strings.ToLower(strings.TrimSpace(c.MCP.Transport))
	if c.MCP.Transport == "" {
		c.MCP.Transport = "stdio"
	}
	if c.MCP.Host == "" {
		c.MCP.Host = "localhost"
	}
	if c.MCP.Port == 0 {
		c.MCP.Port = 3000
	}
	if c.MCP.MaxContentChars <= 0 {
		c.MCP.MaxContentChars = 10000
	}

	if c.Search.RateLimit <= 0 {
		c.Search.RateLimit = 1
	}
	if c.Search.RateIntervalMs <= 0 {
		c.Search.RateIntervalMs = 2000
	}

	if c.Fetch.TimeoutMs <= 0 {
		c.Fetch.TimeoutMs = 30000
	}
	if c.Fetch.RateLimit <= 0 {
		c.Fetch.RateLimit = 1
	}
	if c.Fetch.RateIntervalMs <= 0 {
		c.Fetch.RateIntervalMs = 1000
	}

	if c.RateLimit.DefaultPerMinute <= 0 {
		c.RateLimit.DefaultPerMinute = 60
	}

	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.MCP.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid mcp transport %q (expected stdio|http)", c.MCP.Transport)
	}
	if c.MCP.Port < 1 || c.MCP.Port > 65535 {
		return fmt.Errorf("invalid mcp port %d", c.MCP.Port)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text|json)", c.Log.Format)
	}
	return nil
}

// Ms converts a millisecond setting to a duration.
func Ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
