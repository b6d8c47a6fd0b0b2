package goSession

import (
	"errors"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Cache    CacheConfig
	Throttle ThrottleConfig
	Passcode PasscodeConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goSession APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	TTL           time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goSession APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	Lifetime    time.Duration
	// Sliding enables throttled expiry extension on reads. When disabled a
	// session lives exactly Lifetime from login and no touches are issued.
	Sliding       bool
	MaxRecordSize int
}

// CacheConfig tunes the process-local read shield. TTL bounds how long a
// revocation performed elsewhere can remain visible on this process.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Size    int
}

// ThrottleConfig bounds durable writes: at most one expiry-extending touch
// per session reference per Window, regardless of read volume.
type ThrottleConfig struct {
	Window time.Duration
}

// PasscodeConfig defines a public type used by goSession APIs.
//
// PasscodeConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasscodeConfig struct {
	Enabled     bool
	Digits      int
	TTL         time.Duration
	MaxAttempts int
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			TTL:           5 * time.Minute,
			SigningMethod: "hs256",
		},
		Session: SessionConfig{
			RedisPrefix:   "gs",
			Lifetime:      30 * 24 * time.Hour,
			Sliding:       true,
			MaxRecordSize: 4096,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     2 * time.Second,
			Size:    16384,
		},
		Throttle: ThrottleConfig{
			Window: 10 * time.Second,
		},
		Passcode: PasscodeConfig{
			Enabled:     false,
			Digits:      6,
			TTL:         5 * time.Minute,
			MaxAttempts: 5,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the configuration [New] starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

// Validate checks internal consistency. Called by [Builder.Build]; exported
// so callers assembling a [Config] by hand can fail early.
func (c *Config) Validate() error {
	if c.Token.TTL <= 0 {
		return errors.New("Token TTL must be positive")
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("Session Lifetime must be positive")
	}
	if c.Token.TTL >= c.Session.Lifetime {
		return errors.New("Token TTL must be shorter than Session Lifetime")
	}
	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return errors.New("Cache TTL must be positive when cache is enabled")
		}
		if c.Cache.Size <= 0 {
			return errors.New("Cache Size must be positive when cache is enabled")
		}
	}
	if c.Throttle.Window < 0 {
		return errors.New("Throttle Window must not be negative")
	}
	if c.Session.MaxRecordSize < 0 {
		return errors.New("Session MaxRecordSize must not be negative")
	}
	if c.Passcode.Enabled {
		if c.Passcode.Digits < 4 || c.Passcode.Digits > 10 {
			return errors.New("Passcode Digits must be between 4 and 10")
		}
		if c.Passcode.TTL <= 0 {
			return errors.New("Passcode TTL must be positive")
		}
		if c.Passcode.MaxAttempts <= 0 {
			return errors.New("Passcode MaxAttempts must be positive")
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be positive when audit is enabled")
	}
	return nil
}
