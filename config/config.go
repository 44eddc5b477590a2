package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	AI        AIConfig
	Messaging MessagingConfig
	Cache     CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds web search provider configuration
type SearchConfig struct {
	Provider   string `mapstructure:"provider"` // "exa" or "google"
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	EngineID   string `mapstructure:"engine_id"` // Google Programmable Search cx
	MaxResults int    `mapstructure:"max_results"`
}

// AIConfig holds generative model configuration
type AIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// MessagingConfig holds messaging transport configuration
type MessagingConfig struct {
	Transport     string        `mapstructure:"transport"` // "telegram" or "chatdb"
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	TelegramToken string        `mapstructure:"telegram_token"`
	TelegramAPI   string        `mapstructure:"telegram_api"`
	ChatDBPath    string        `mapstructure:"chatdb_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Pick up a local .env file before binding environment variables
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pennywise/")

	// Environment variable settings, e.g. PENNYWISE_SEARCH_API_KEY
	v.SetEnvPrefix("PENNYWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Search defaults
	v.SetDefault("search.provider", "exa")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.base_url", "")
	v.SetDefault("search.engine_id", "")
	v.SetDefault("search.max_results", 10)

	// AI defaults
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gemini-2.5-flash")
	v.SetDefault("ai.base_url", "")

	// Messaging defaults
	v.SetDefault("messaging.transport", "telegram")
	v.SetDefault("messaging.poll_interval", "2s")
	v.SetDefault("messaging.max_concurrent", 5)
	v.SetDefault("messaging.telegram_token", "")
	v.SetDefault("messaging.telegram_api", "")
	v.SetDefault("messaging.chatdb_path", "~/Library/Messages/chat.db")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "1h")
}

// ValidateSearch checks the settings needed by the search pipeline
func (c *Config) ValidateSearch() error {
	switch c.Search.Provider {
	case "exa":
	case "google":
		if c.Search.EngineID == "" {
			return fmt.Errorf("Google search engine id is required (set PENNYWISE_SEARCH_ENGINE_ID)")
		}
	default:
		return fmt.Errorf("search provider must be 'exa' or 'google', got: %s", c.Search.Provider)
	}

	if c.Search.APIKey == "" {
		return fmt.Errorf("search API key is required (set PENNYWISE_SEARCH_API_KEY)")
	}

	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("search max results must be positive, got: %d", c.Search.MaxResults)
	}

	return c.validateCache()
}

// ValidateAI checks the settings needed by the generative model
func (c *Config) ValidateAI() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI API key is required (set PENNYWISE_AI_API_KEY)")
	}
	if c.AI.Model == "" {
		return fmt.Errorf("AI model is required (set PENNYWISE_AI_MODEL)")
	}
	return nil
}

// ValidateMessaging checks the settings needed by the messaging bot
func (c *Config) ValidateMessaging() error {
	if err := c.ValidateAI(); err != nil {
		return err
	}

	switch c.Messaging.Transport {
	case "telegram":
		if c.Messaging.TelegramToken == "" {
			return fmt.Errorf("Telegram token is required (set PENNYWISE_MESSAGING_TELEGRAM_TOKEN)")
		}
	case "chatdb":
		if c.Messaging.ChatDBPath == "" {
			return fmt.Errorf("chat database path is required (set PENNYWISE_MESSAGING_CHATDB_PATH)")
		}
	default:
		return fmt.Errorf("messaging transport must be 'telegram' or 'chatdb', got: %s", c.Messaging.Transport)
	}

	if c.Messaging.PollInterval <= 0 {
		return fmt.Errorf("messaging poll interval must be positive, got: %s", c.Messaging.PollInterval)
	}

	if c.Messaging.MaxConcurrent <= 0 {
		return fmt.Errorf("messaging max concurrent must be positive, got: %d", c.Messaging.MaxConcurrent)
	}

	return nil
}

// validateCache validates the cache settings
func (c *Config) validateCache() error {
	if c.Cache.Type != "memory" && c.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", c.Cache.Type)
	}

	if c.Cache.Type == "redis" && c.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	return nil
}

// loadEnvFile exports KEY=VALUE pairs from ./.env without overriding variables
// that are already set. A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return gotenv.Load(".env")
}
