package config

import (
	"strings"
	"time"
)

// RateKey selects what a rate-limit bucket is keyed on.
type RateKey string

const (
	// RateKeyIP shares one bucket per client address.
	RateKeyIP RateKey = "ip"
	// RateKeyVisitor keys on the signed-in user, else the visitor session.
	RateKeyVisitor RateKey = "visitor"
	// RateKeyVisitorRoute gives every visitor one bucket per route.
	RateKeyVisitorRoute RateKey = "visitor_route"
)

// ParseRateKey maps a RATE_LIMIT_KEY value to a RateKey.  Unknown values
// fall back to RateKeyVisitorRoute.
func ParseRateKey(s string) RateKey {
	switch k := RateKey(strings.ToLower(strings.TrimSpace(s))); k {
	case RateKeyIP, RateKeyVisitor, RateKeyVisitorRoute:
		return k
	}
	return RateKeyVisitorRoute
}

// RateLimitConfig drives the token bucket in front of auth and checkout.
// Burst tokens are available up front; Refill tokens come back every Every.
type RateLimitConfig struct {
	Enabled bool
	Burst   int
	Refill  int
	Every   time.Duration
	TTL     time.Duration
	Key     RateKey
	Prefix  string
	Debug   bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables.  Bucket state lives for
// at least five refill periods so an idle visitor starts from a full bucket.
func LoadRateLimitConfig() RateLimitConfig {
	c := RateLimitConfig{
		Enabled: envBool("RATE_LIMIT_ENABLED", true),
		Burst:   envInt("RATE_LIMIT_BURST", 20),
		Refill:  envInt("RATE_LIMIT_REFILL", 1),
		Every:   envDur("RATE_LIMIT_EVERY", 3*time.Second),
		TTL:     envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Key:     ParseRateKey(getenv("RATE_LIMIT_KEY", string(RateKeyVisitorRoute))),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "cineverse:rl"),
		Debug:   envBool("RATE_LIMIT_DEBUG", false),
	}
	c.Burst = max(c.Burst, 1)
	c.Refill = max(c.Refill, 1)
	if c.Every <= 0 {
		c.Every = time.Second
	}
	c.TTL = max(c.TTL, 5*c.Every)
	return c
}
