// Package config holds process configuration loaded from the environment.
//
// The WorkBoard base URL is deliberately not configurable. Requests must only
// ever go to the official API host, so the client hardcodes it.
package config

import (
	"log"
	"sync"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Config is the process configuration. A missing WORKBOARD_API_TOKEN is a
// startup failure; everything else has a usable default.
type Config struct {
	Token      string `env:"WORKBOARD_API_TOKEN,required"`
	Port       string `env:"PORT" envDefault:"8089"`
	InstanceID string `env:"INSTANCE_ID" envDefault:"local"`
	RateLimit  int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
}

var (
	mu     sync.Mutex
	loaded *Config
)

// Load parses the environment once and returns the shared config. Subsequent
// calls return the same value.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()
	if loaded != nil {
		return loaded, nil
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	loaded = cfg
	return loaded, nil
}

// Reset clears the cached config so tests can reload with a different
// environment.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	loaded = nil
}

// WarnIfTokenExpired inspects the token as a JWT without verifying its
// signature and logs when it is expired or expires within a day. WorkBoard
// tokens are opaque to us otherwise; a non-JWT token is silently accepted.
func WarnIfTokenExpired(token string) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}
	switch {
	case time.Now().After(exp.Time):
		log.Printf("warning: WORKBOARD_API_TOKEN expired at %s", exp.Time.UTC().Format(time.RFC3339))
	case time.Until(exp.Time) < 24*time.Hour:
		log.Printf("warning: WORKBOARD_API_TOKEN expires at %s", exp.Time.UTC().Format(time.RFC3339))
	}
}
