package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, 48*time.Hour, cfg.Features.DishRetention)
	assert.False(t, cfg.Features.AtomicRSVP)
	assert.Equal(t, int64(10<<20), cfg.Cloudinary.MaxBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "Asia/Kolkata", cfg.Features.TimeZone)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ADMIN_EMAILS", "committee@skyon.org, , secretary@skyon.org")
	t.Setenv("EVENTS_ATOMIC_RSVP", "true")
	t.Setenv("DISH_RETENTION", "24h")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store.Backend)
	assert.Equal(t, []string{"committee@skyon.org", "secretary@skyon.org"}, cfg.Admin.Emails)
	assert.True(t, cfg.Features.AtomicRSVP)
	assert.Equal(t, 24*time.Hour, cfg.Features.DishRetention)
	assert.Equal(t, 2.5, cfg.Server.RateLimitRPS)
	assert.Equal(t, 0, cfg.Redis.DB, "invalid values fall back to the default")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:     ServerConfig{Port: "8080"},
			Store:      StoreConfig{Backend: StoreMemory},
			Cloudinary: CloudinaryConfig{MaxBytes: 1},
		}
	}

	require.NoError(t, valid().Validate())

	c := valid()
	c.Server.Port = ""
	assert.Error(t, c.Validate())

	c = valid()
	c.Store.Backend = StoreFirebase
	assert.Error(t, c.Validate())
	c.Firebase.CredentialsPath = "/secrets/sa.json"
	assert.Error(t, c.Validate())
	c.Firebase.DatabaseURL = "https://skyon.firebaseio.com"
	assert.NoError(t, c.Validate())

	c = valid()
	c.Store.Backend = StoreRedis
	assert.Error(t, c.Validate())

	c = valid()
	c.Store.Backend = "mongo"
	assert.Error(t, c.Validate())

	c = valid()
	c.Cloudinary.MaxBytes = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Features.TimeZone = "Mars/Olympus"
	assert.Error(t, c.Validate())
}
