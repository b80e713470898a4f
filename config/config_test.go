package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadClean(t *testing.T) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	return LoadConfig()
}

func TestLoadConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := loadClean(t)

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "file", cfg.History.Backend)
		assert.Equal(t, "recipe_history.json", cfg.History.FilePath)
		assert.Equal(t, "deepseek-chat", cfg.AI.Model)
		assert.Equal(t, float64(3600), cfg.Images.CacheTTL.Seconds())
	})

	t.Run("should read environment overrides", func(t *testing.T) {
		t.Setenv("PANTRYPAL_SERVER_PORT", "9090")
		t.Setenv("PANTRYPAL_HISTORY_BACKEND", "redis")
		t.Setenv("UNSPLASH_ACCESS_KEY", "abc123")

		cfg, err := loadClean(t)

		require.NoError(t, err)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "redis", cfg.History.Backend)
		assert.Equal(t, "abc123", cfg.Images.AccessKey)
	})

	t.Run("should reject an unknown history backend", func(t *testing.T) {
		t.Setenv("PANTRYPAL_HISTORY_BACKEND", "carrier-pigeon")

		_, err := loadClean(t)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown history backend")
	})

	t.Run("should not require service credentials", func(t *testing.T) {
		cfg, err := loadClean(t)

		require.NoError(t, err)
		assert.Empty(t, cfg.AI.APIKey)
		assert.Empty(t, cfg.Images.AccessKey)
	})
}
