// Package config loads application configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Server  ServerConfig  `mapstructure:"server"`
	AI      AIConfig      `mapstructure:"ai"`
	Images  ImageConfig   `mapstructure:"images"`
	History HistoryConfig `mapstructure:"history"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// AIConfig holds the recipe generation service settings. A missing API key
// is not a startup error; it disables generation with a one-time warning.
type AIConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	APIURL    string        `mapstructure:"api_url"`
	Model     string        `mapstructure:"model"`
	SubsModel string        `mapstructure:"subs_model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

// ImageConfig holds the Unsplash image search settings. A missing access
// key disables image candidates; recipes then finalize without a hero image.
type ImageConfig struct {
	AccessKey string        `mapstructure:"access_key"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// HistoryConfig selects and configures the history backend.
type HistoryConfig struct {
	// Backend is one of "file", "redis", "db".
	Backend string `mapstructure:"backend"`

	FilePath string `mapstructure:"file_path"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	// DatabaseDSN selects the gorm driver: a postgres URL, or anything
	// else treated as a sqlite path.
	DatabaseDSN string `mapstructure:"database_dsn"`
}

// LoadConfig creates a new Config instance with values from environment
// variables, applying defaults and validating the result.
func LoadConfig() (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("PANTRYPAL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// External credentials keep their conventional unprefixed names
	viper.BindEnv("ai.api_key", "DEEPSEEK_API_KEY")
	viper.BindEnv("ai.api_url", "DEEPSEEK_API_URL")
	viper.BindEnv("images.access_key", "UNSPLASH_ACCESS_KEY")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("app.name", "pantrypal")
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("ai.api_url", "https://api.deepseek.com/v1/chat/completions")
	viper.SetDefault("ai.model", "deepseek-chat")
	viper.SetDefault("ai.subs_model", "deepseek-chat")
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.max_tokens", 8192)

	viper.SetDefault("images.cache_ttl", "1h")
	viper.SetDefault("images.timeout", "5s")

	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.file_path", "recipe_history.json")
	viper.SetDefault("history.redis_addr", "localhost:6379")
	viper.SetDefault("history.redis_db", 0)
	viper.SetDefault("history.database_dsn", "pantrypal.db")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", cfg.Server.Port)
	}

	switch cfg.History.Backend {
	case "file", "redis", "db":
	default:
		return fmt.Errorf("unknown history backend %q", cfg.History.Backend)
	}

	if cfg.Images.CacheTTL <= 0 {
		return fmt.Errorf("image cache ttl must be positive")
	}
	return nil
}
