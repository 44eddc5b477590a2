package config

import (
	"os"
	"testing"
	"time"
)

var configEnvVars = []string{
	"PENNYWISE_SERVER_PORT",
	"PENNYWISE_SERVER_ENVIRONMENT",
	"PENNYWISE_SEARCH_PROVIDER",
	"PENNYWISE_SEARCH_API_KEY",
	"PENNYWISE_SEARCH_ENGINE_ID",
	"PENNYWISE_SEARCH_MAX_RESULTS",
	"PENNYWISE_AI_API_KEY",
	"PENNYWISE_AI_MODEL",
	"PENNYWISE_MESSAGING_TRANSPORT",
	"PENNYWISE_MESSAGING_POLL_INTERVAL",
	"PENNYWISE_MESSAGING_MAX_CONCURRENT",
	"PENNYWISE_MESSAGING_TELEGRAM_TOKEN",
	"PENNYWISE_MESSAGING_CHATDB_PATH",
	"PENNYWISE_CACHE_TYPE",
	"PENNYWISE_CACHE_REDIS_URL",
	"PENNYWISE_CACHE_TTL",
}

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, name := range configEnvVars {
			os.Unsetenv(name)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Search.Provider != "exa" {
			t.Errorf("Search.Provider = %s, want exa", cfg.Search.Provider)
		}
		if cfg.Search.MaxResults != 10 {
			t.Errorf("Search.MaxResults = %d, want 10", cfg.Search.MaxResults)
		}
		if cfg.AI.Model != "gemini-2.5-flash" {
			t.Errorf("AI.Model = %s, want gemini-2.5-flash", cfg.AI.Model)
		}
		if cfg.Messaging.Transport != "telegram" {
			t.Errorf("Messaging.Transport = %s, want telegram", cfg.Messaging.Transport)
		}
		if cfg.Messaging.PollInterval != 2*time.Second {
			t.Errorf("Messaging.PollInterval = %v, want 2s", cfg.Messaging.PollInterval)
		}
		if cfg.Messaging.MaxConcurrent != 5 {
			t.Errorf("Messaging.MaxConcurrent = %d, want 5", cfg.Messaging.MaxConcurrent)
		}
		if cfg.Cache.Type != "memory" {
			t.Errorf("Cache.Type = %s, want memory", cfg.Cache.Type)
		}
		if cfg.Cache.TTL != time.Hour {
			t.Errorf("Cache.TTL = %v, want 1h", cfg.Cache.TTL)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("PENNYWISE_SERVER_PORT", "9090")
		os.Setenv("PENNYWISE_SEARCH_PROVIDER", "google")
		os.Setenv("PENNYWISE_SEARCH_API_KEY", "search-key")
		os.Setenv("PENNYWISE_SEARCH_ENGINE_ID", "cx-123")
		os.Setenv("PENNYWISE_SEARCH_MAX_RESULTS", "7")
		os.Setenv("PENNYWISE_AI_API_KEY", "ai-key")
		os.Setenv("PENNYWISE_MESSAGING_TRANSPORT", "chatdb")
		os.Setenv("PENNYWISE_MESSAGING_POLL_INTERVAL", "500ms")
		os.Setenv("PENNYWISE_MESSAGING_MAX_CONCURRENT", "3")
		os.Setenv("PENNYWISE_CACHE_TYPE", "redis")
		os.Setenv("PENNYWISE_CACHE_REDIS_URL", "redis://localhost:6379")
		os.Setenv("PENNYWISE_CACHE_TTL", "24h")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Search.Provider != "google" {
			t.Errorf("Search.Provider = %s, want google", cfg.Search.Provider)
		}
		if cfg.Search.APIKey != "search-key" {
			t.Errorf("Search.APIKey = %s, want search-key", cfg.Search.APIKey)
		}
		if cfg.Search.EngineID != "cx-123" {
			t.Errorf("Search.EngineID = %s, want cx-123", cfg.Search.EngineID)
		}
		if cfg.Search.MaxResults != 7 {
			t.Errorf("Search.MaxResults = %d, want 7", cfg.Search.MaxResults)
		}
		if cfg.AI.APIKey != "ai-key" {
			t.Errorf("AI.APIKey = %s, want ai-key", cfg.AI.APIKey)
		}
		if cfg.Messaging.Transport != "chatdb" {
			t.Errorf("Messaging.Transport = %s, want chatdb", cfg.Messaging.Transport)
		}
		if cfg.Messaging.PollInterval != 500*time.Millisecond {
			t.Errorf("Messaging.PollInterval = %v, want 500ms", cfg.Messaging.PollInterval)
		}
		if cfg.Messaging.MaxConcurrent != 3 {
			t.Errorf("Messaging.MaxConcurrent = %d, want 3", cfg.Messaging.MaxConcurrent)
		}
		if cfg.Cache.Type != "redis" {
			t.Errorf("Cache.Type = %s, want redis", cfg.Cache.Type)
		}
		if cfg.Cache.RedisURL != "redis://localhost:6379" {
			t.Errorf("Cache.RedisURL = %s, want redis://localhost:6379", cfg.Cache.RedisURL)
		}
		if cfg.Cache.TTL != 24*time.Hour {
			t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		if err := loadEnvFile(); err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables and skips comments", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_PW_VAR_1=value1
export TEST_PW_VAR_2="value2"

# TEST_PW_COMMENTED=should_not_load
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_PW_VAR_1")
		os.Unsetenv("TEST_PW_VAR_2")
		os.Unsetenv("TEST_PW_COMMENTED")
		defer func() {
			os.Unsetenv("TEST_PW_VAR_1")
			os.Unsetenv("TEST_PW_VAR_2")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_PW_VAR_1") != "value1" {
			t.Errorf("TEST_PW_VAR_1 = %s, want value1", os.Getenv("TEST_PW_VAR_1"))
		}
		if os.Getenv("TEST_PW_VAR_2") != "value2" {
			t.Errorf("TEST_PW_VAR_2 = %s, want value2", os.Getenv("TEST_PW_VAR_2"))
		}
		if os.Getenv("TEST_PW_COMMENTED") != "" {
			t.Errorf("TEST_PW_COMMENTED should not be loaded from comment")
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		originalDir, _ := os.Getwd()
		defer os.Chdir(originalDir)

		os.Chdir(t.TempDir())

		os.Setenv("TEST_PW_OVERRIDE", "existing-value")
		defer os.Unsetenv("TEST_PW_OVERRIDE")

		if err := os.WriteFile(".env", []byte("TEST_PW_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_PW_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_PW_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_PW_OVERRIDE"))
		}
	})
}

func validSearchConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Provider:   "exa",
			APIKey:     "test-key",
			MaxResults: 10,
		},
		Cache: CacheConfig{
			Type: "memory",
		},
	}
}

func TestValidateSearch(t *testing.T) {
	t.Run("validates successfully with all required fields", func(t *testing.T) {
		if err := validSearchConfig().ValidateSearch(); err != nil {
			t.Errorf("ValidateSearch() error = %v, want nil", err)
		}
	})

	t.Run("fails when API key is empty", func(t *testing.T) {
		cfg := validSearchConfig()
		cfg.Search.APIKey = ""
		if err := cfg.ValidateSearch(); err == nil {
			t.Error("ValidateSearch() error = nil, want error for empty API key")
		}
	})

	t.Run("fails for unknown provider", func(t *testing.T) {
		cfg := validSearchConfig()
		cfg.Search.Provider = "altavista"
		if err := cfg.ValidateSearch(); err == nil {
			t.Error("ValidateSearch() error = nil, want error for unknown provider")
		}
	})

	t.Run("requires engine id for google", func(t *testing.T) {
		cfg := validSearchConfig()
		cfg.Search.Provider = "google"
		if err := cfg.ValidateSearch(); err == nil {
			t.Error("ValidateSearch() error = nil, want error for missing engine id")
		}

		cfg.Search.EngineID = "cx"
		if err := cfg.ValidateSearch(); err != nil {
			t.Errorf("ValidateSearch() error = %v, want nil", err)
		}
	})

	t.Run("fails for invalid cache type", func(t *testing.T) {
		cfg := validSearchConfig()
		cfg.Cache.Type = "invalid-type"
		if err := cfg.ValidateSearch(); err == nil {
			t.Error("ValidateSearch() error = nil, want error for invalid cache type")
		}
	})

	t.Run("fails for redis cache without URL", func(t *testing.T) {
		cfg := validSearchConfig()
		cfg.Cache.Type = "redis"
		if err := cfg.ValidateSearch(); err == nil {
			t.Error("ValidateSearch() error = nil, want error for redis without URL")
		}

		cfg.Cache.RedisURL = "redis://localhost:6379"
		if err := cfg.ValidateSearch(); err != nil {
			t.Errorf("ValidateSearch() error = %v, want nil for valid redis config", err)
		}
	})
}

func TestValidateMessaging(t *testing.T) {
	base := func() *Config {
		return &Config{
			AI: AIConfig{APIKey: "ai-key", Model: "gemini-2.5-flash"},
			Messaging: MessagingConfig{
				Transport:     "telegram",
				TelegramToken: "token",
				PollInterval:  time.Second,
				MaxConcurrent: 2,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid telegram", mutate: func(*Config) {}, wantErr: false},
		{name: "missing AI key", mutate: func(c *Config) { c.AI.APIKey = "" }, wantErr: true},
		{name: "missing telegram token", mutate: func(c *Config) { c.Messaging.TelegramToken = "" }, wantErr: true},
		{
			name: "valid chatdb",
			mutate: func(c *Config) {
				c.Messaging.Transport = "chatdb"
				c.Messaging.ChatDBPath = "/tmp/chat.db"
			},
			wantErr: false,
		},
		{name: "unknown transport", mutate: func(c *Config) { c.Messaging.Transport = "carrier-pigeon" }, wantErr: true},
		{name: "zero poll interval", mutate: func(c *Config) { c.Messaging.PollInterval = 0 }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Messaging.MaxConcurrent = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.ValidateMessaging()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessaging() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
