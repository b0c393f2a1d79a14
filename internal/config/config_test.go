package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		JWTSecret:      "test-secret",
		Port:           "8480",
		DBPassword:     "password",
		DBSSLMode:      "disable",
		Env:            "test",
		FeedCorpusSize: 500,
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing port", func(t *testing.T) {
		cfg := validConfig()
		cfg.Port = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing jwt secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive feed corpus", func(t *testing.T) {
		cfg := validConfig()
		cfg.FeedCorpusSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects default secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("production rejects short secret", func(t *testing.T) {
		cfg := validConfig()
		cfg.Env = "production"
		cfg.JWTSecret = "short"
		cfg.DBPassword = "something-strong"
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     "5433",
		DBUser:     "devlink",
		DBPassword: "pw",
		DBName:     "devlink",
		DBSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5433 user=devlink password=pw dbname=devlink sslmode=require",
		cfg.DSN())
}
