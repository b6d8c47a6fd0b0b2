package goSession

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type envConfig struct {
	TokenSecret    string        `env:"GOSESSION_TOKEN_SECRET"`
	TokenTTL       time.Duration `env:"GOSESSION_TOKEN_TTL" envDefault:"5m"`
	TokenIssuer    string        `env:"GOSESSION_TOKEN_ISSUER"`
	Lifetime       time.Duration `env:"GOSESSION_SESSION_LIFETIME" envDefault:"720h"`
	Sliding        bool          `env:"GOSESSION_SESSION_SLIDING" envDefault:"true"`
	RedisPrefix    string        `env:"GOSESSION_REDIS_PREFIX" envDefault:"gs"`
	CacheTTL       time.Duration `env:"GOSESSION_CACHE_TTL" envDefault:"2s"`
	CacheSize      int           `env:"GOSESSION_CACHE_SIZE" envDefault:"16384"`
	ThrottleWindow time.Duration `env:"GOSESSION_THROTTLE_WINDOW" envDefault:"10s"`
}

// ConfigFromEnv builds a [Config] from GOSESSION_* environment variables,
// starting from the defaults. Only deployment-tunable knobs are exposed;
// feature toggles (passcode, audit, metrics) stay in code.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	if ec.TokenSecret != "" {
		cfg.Token.PrivateKey = []byte(ec.TokenSecret)
	}
	cfg.Token.TTL = ec.TokenTTL
	cfg.Token.Issuer = ec.TokenIssuer
	cfg.Session.Lifetime = ec.Lifetime
	cfg.Session.Sliding = ec.Sliding
	cfg.Session.RedisPrefix = ec.RedisPrefix
	cfg.Cache.TTL = ec.CacheTTL
	cfg.Cache.Size = ec.CacheSize
	cfg.Throttle.Window = ec.ThrottleWindow

	return cfg, nil
}
