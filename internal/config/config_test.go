package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_HOST", "")
	t.Setenv("APP_PORT", "")

	c := Load()

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 60, c.AccessTTLMin)
	assert.False(t, c.HasDB())
	assert.Equal(t, "data/questions.json", c.QuestionsPath)
}

func TestLoadRateLimitConfig_Clamps(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "0")
	t.Setenv("RATE_LIMIT_EVERY", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("RATE_LIMIT_KEY", "")

	c := LoadRateLimitConfig()

	assert.Equal(t, 1, c.Burst)
	assert.Equal(t, 2*time.Second, c.Every)
	assert.Equal(t, 10*time.Second, c.TTL, "ttl is at least five refill periods")
	assert.Equal(t, RateKeyVisitorRoute, c.Key)
}

func TestParseRateKey(t *testing.T) {
	assert.Equal(t, RateKeyIP, ParseRateKey(" IP "))
	assert.Equal(t, RateKeyVisitor, ParseRateKey("visitor"))
	assert.Equal(t, RateKeyVisitorRoute, ParseRateKey("user_route"))
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}

func TestRedisOptions(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")

	opts, err := RedisOptions()
	assert.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)

	t.Setenv("REDIS_URL", "redis://:pw@example:6379/3")
	opts, err = RedisOptions()
	assert.NoError(t, err)
	assert.Equal(t, "example:6379", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 3, opts.DB)
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	c := LoadCacheConfig()
	assert.True(t, c.Methods["GET"])
	assert.True(t, c.Methods["HEAD"])
	assert.Equal(t, 5*time.Minute, c.TTL)
}
