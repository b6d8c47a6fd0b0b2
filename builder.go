package goSession

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/internal/cache"
	"github.com/MrEthical07/goSession/internal/throttle"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/token"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  session.Store

	sender    Sender
	auditSink AuditSink
	logger    hclog.Logger

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithStore installs a custom durable store adapter. When set it takes
// precedence over [Builder.WithRedis].
func (b *Builder) WithStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithSecret sets the HMAC signing secret for the default hs256 method.
func (b *Builder) WithSecret(secret []byte) *Builder {
	b.config.Token.PrivateKey = cloneBytes(secret)
	return b
}

// WithSender describes the withsender operation and its observable behavior.
//
// WithSender may return an error when input validation, dependency calls, or security checks fail.
// WithSender does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSender(s Sender) *Builder {
	b.sender = s
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(l hclog.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- DURABLE STORE --------
	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("durable store required: provide WithRedis or WithStore")
		}
		store = session.NewRedisStore(b.redis, cfg.Session.RedisPrefix)
	}

	// -------- TOKEN MANAGER --------
	tm, err := token.NewManager(token.Config{
		TTL:           cfg.Token.TTL,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config: cfg,
		store:  store,
		tokens: tm,
		sender: b.sender,
		logger: b.logger,
	}

	if engine.logger == nil {
		engine.logger = hclog.NewNullLogger()
	}
	if cfg.Cache.Enabled {
		engine.cache = cache.New(cfg.Cache.Size, cfg.Cache.TTL)
	}
	if cfg.Session.Sliding {
		engine.throttle = throttle.New(cfg.Throttle.Window)
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return engine, nil
}
