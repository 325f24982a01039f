package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	LLM     LLMConfig     `yaml:"llm"`
	Tracker TrackerConfig `yaml:"tracker"`
	Chat    ChatConfig    `yaml:"chat"`
	Shop    ShopConfig    `yaml:"shop"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
// Generation endpoints must stay excluded: an upstream completion call is
// billed per attempt and is never safe to replay transparently. Intake and
// refill logging append rows before the follow-up status read, so a replay
// after a partial failure would record the event twice.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	Provider       string        `yaml:"provider"`
	APIKey         string        `yaml:"apiKey"`
	BaseURL        string        `yaml:"baseUrl"`
	Model          string        `yaml:"model"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
}

// TrackerConfig controls the drink tracking domain.
type TrackerConfig struct {
	DailyGoalML int            `yaml:"dailyGoalMl"`
	Postgres    PostgresConfig `yaml:"postgres"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ChatConfig controls the coach chat panel.
type ChatConfig struct {
	Prompt       string `yaml:"prompt"`
	HistoryLimit int    `yaml:"historyLimit"`
}

// ShopConfig controls the recommendation snapshot surface.
type ShopConfig struct {
	TTL         time.Duration `yaml:"ttl"`
	MaxProducts int           `yaml:"maxProducts"`
	Valkey      ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for snapshot storage.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("OPENAI_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_REQUEST_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.LLM.RequestTimeout = parsed
		}
	}
	if v := os.Getenv("TRACKER_DAILY_GOAL_ML"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Tracker.DailyGoalML = parsed
		}
	}
	if v := os.Getenv("TRACKER_POSTGRES_DSN"); v != "" {
		cfg.Tracker.Postgres.DSN = v
	}
	if v := os.Getenv("CHAT_PROMPT"); v != "" {
		cfg.Chat.Prompt = v
	}
	if v := os.Getenv("CHAT_HISTORY_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Chat.HistoryLimit = parsed
		}
	}
	if v := os.Getenv("SHOP_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Shop.TTL = parsed
		}
	}
	if v := os.Getenv("SHOP_VALKEY_ENABLED"); v != "" {
		cfg.Shop.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SHOP_VALKEY_ADDR"); v != "" {
		cfg.Shop.Valkey.Addr = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/plan",
					"/api/v1/chat",
					"/api/v1/drinks/log",
					"/api/v1/refills",
				},
			},
		},
		LLM: LLMConfig{
			Provider:       "openai",
			Model:          "gpt-4.1",
			RequestTimeout: 60 * time.Second,
		},
		Tracker: TrackerConfig{
			DailyGoalML: 2500,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
		},
		Chat: ChatConfig{
			HistoryLimit: 50,
		},
		Shop: ShopConfig{
			TTL:         24 * time.Hour,
			MaxProducts: 6,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	switch c.LLM.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("llm.provider must be openai or gemini, got %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if c.LLM.RequestTimeout < 0 {
		return errors.New("llm.requestTimeout cannot be negative")
	}
	if c.Tracker.DailyGoalML <= 0 {
		return errors.New("tracker.dailyGoalMl must be positive")
	}
	if c.Chat.HistoryLimit <= 0 {
		return errors.New("chat.historyLimit must be positive")
	}
	if c.Shop.TTL < 0 {
		return errors.New("shop.ttl cannot be negative")
	}
	if c.Shop.Valkey.Enabled && strings.TrimSpace(c.Shop.Valkey.Addr) == "" {
		return errors.New("shop.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}
