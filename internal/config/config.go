package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Provider names accepted by REPORT_PROVIDER and --provider
const (
	ProviderGHModels = "ghmodels"
	ProviderOpenAI   = "openai"
)

// ModelsConfig selects and configures the completion provider
type ModelsConfig struct {
	Provider    string        `env:"REPORT_PROVIDER" envDefault:"ghmodels"`
	BaseURL     string        `env:"GITHUB_MODELS_BASE_URL" envDefault:"https://models.github.ai"`
	Model       string        `env:"GITHUB_MODELS_MODEL" envDefault:"openai/gpt-4o-mini"`
	Temperature float64       `env:"REPORT_TEMPERATURE" envDefault:"0.7"`
	Timeout     time.Duration `env:"MODELS_TIMEOUT" envDefault:"60s"`

	OpenAIKey     string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo-16k"`
}

// CacheConfig configures the per-item summary cache. An empty RedisURL
// selects the in-process cache.
type CacheConfig struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"SUMMARY_CACHE_TTL" envDefault:"168h"`
	Disabled bool          `env:"DISABLE_SUMMARY_CACHE"`
}

// TelegramConfig configures the bot command
type TelegramConfig struct {
	Token        string  `env:"TELEGRAM_TOKEN"`
	AllowedChats []int64 `env:"TELEGRAM_ALLOWED_CHATS" envSeparator:","`

	// Scheduled weekly posts; disabled when ReportChatID is zero
	ReportChatID int64    `env:"TELEGRAM_REPORT_CHAT_ID"`
	Schedule     string   `env:"REPORT_SCHEDULE" envDefault:"0 9 * * MON"`
	Targets      []string `env:"REPORT_TARGETS" envSeparator:","`
}

// Config holds all configuration for the application
type Config struct {
	GitHubToken string `env:"GITHUB_TOKEN"`
	SinceDays   int    `env:"REPORT_SINCE_DAYS" envDefault:"7"`
	Concurrency int    `env:"REPORT_CONCURRENCY" envDefault:"4"`
	Verbose     bool
	Quiet       bool

	Models   ModelsConfig
	Cache    CacheConfig
	Telegram TelegramConfig
}

// Flags carries command line overrides. Zero values leave the environment
// setting in place.
type Flags struct {
	SinceDays   int
	Concurrency int
	Provider    string
	Verbose     bool
	Quiet       bool
}

// FromEnvAndFlags creates a Config from environment variables and CLI flags
func FromEnvAndFlags(flags Flags) (*Config, error) {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load() // Silently ignore if .env file doesn't exist

	config := &Config{}
	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if flags.SinceDays != 0 {
		config.SinceDays = flags.SinceDays
	}
	if flags.Concurrency != 0 {
		config.Concurrency = flags.Concurrency
	}
	if flags.Provider != "" {
		config.Models.Provider = flags.Provider
	}
	config.Verbose = flags.Verbose && !flags.Quiet // verbose is disabled if quiet is set
	config.Quiet = flags.Quiet

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	// Validate required GitHub token
	if c.GitHubToken == "" {
		return errors.New("GITHUB_TOKEN environment variable is required")
	}
	if c.SinceDays < 1 {
		return fmt.Errorf("since days must be at least 1, got %d", c.SinceDays)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	switch c.Models.Provider {
	case ProviderGHModels:
	case ProviderOpenAI:
		if c.Models.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown provider %q, expected %s or %s", c.Models.Provider, ProviderGHModels, ProviderOpenAI)
	}

	return nil
}

// ValidateBot checks the settings the bot command needs on top of the
// common ones
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return errors.New("TELEGRAM_TOKEN environment variable is required")
	}
	if c.Telegram.ReportChatID != 0 && len(c.Telegram.Targets) == 0 {
		return errors.New("REPORT_TARGETS must list at least one owner/repo when TELEGRAM_REPORT_CHAT_ID is set")
	}
	return nil
}

// ChatAllowed reports whether the bot should answer in chatID. An empty
// allow list admits every chat.
func (c *Config) ChatAllowed(chatID int64) bool {
	if len(c.Telegram.AllowedChats) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedChats {
		if id == chatID {
			return true
		}
	}
	return false
}
