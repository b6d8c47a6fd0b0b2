package token

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod defines a public type used by goSession APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodHS256 signs with a shared secret (Config.PrivateKey).
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
)

// Outcome classifies a verification result.
type Outcome uint8

const (
	// OutcomeInvalid is a hard failure: bad signature or malformed token.
	OutcomeInvalid Outcome = iota
	// OutcomeValid means signature good and inside the validity window.
	OutcomeValid
	// OutcomeExpired means signature good but the expiry has passed. The
	// decoded session reference remains trustworthy.
	OutcomeExpired
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	TTL           time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// Claims is the minimal claim set a token carries: the session reference
// plus the registered validity window. No principal data, ever.
type Claims struct {
	SID string `json:"sid"`
	jwt.RegisteredClaims
}

// Result is the three-way outcome of [Manager.Verify].
type Result struct {
	Outcome    Outcome
	SessionRef string
	IssuedAt   time.Time
	ExpiresAt  time.Time
}

// Manager mints and verifies tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// NewManager validates the configuration and returns a [Manager].
func NewManager(cfg Config) (*Manager, error) {
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) == 0 {
			return nil, errors.New("hs256 requires private key")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if len(cfg.PublicKey) > 0 {
			if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// Mint issues a fresh token for the session reference using the configured
// TTL. Tokens are disposable and never persisted — one is regenerated on
// demand whenever rotation fires.
func (m *Manager) Mint(sessionRef string) (string, error) {
	if sessionRef == "" {
		return "", errors.New("empty session ref")
	}

	now := time.Now()
	claims := Claims{
		SID: sessionRef,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}
	if m.config.Issuer != "" {
		claims.Issuer = m.config.Issuer
	}

	tok := jwt.NewWithClaims(m.getMethod(), claims)
	signKey, err := m.getSignKey()
	if err != nil {
		return "", err
	}

	return tok.SignedString(signKey)
}

// Verify classifies tokenStr into the three-way [Result]. It never returns
// an error: every failure mode collapses into OutcomeInvalid, which the
// engine treats as terminal without touching the store.
func (m *Manager) Verify(tokenStr string) Result {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.getVerifyKey()
	})

	if err != nil {
		// The parser verifies the signature before validating claims, so an
		// expiry error implies the signature held. Anything else is a hard
		// failure.
		if tok == nil || !errors.Is(err, jwt.ErrTokenExpired) {
			return Result{Outcome: OutcomeInvalid}
		}

		claims, ok := tok.Claims.(*Claims)
		if !ok || claims.SID == "" {
			return Result{Outcome: OutcomeInvalid}
		}
		if m.config.Issuer != "" && claims.Issuer != m.config.Issuer {
			return Result{Outcome: OutcomeInvalid}
		}

		return resultFromClaims(OutcomeExpired, claims)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || claims.SID == "" {
		return Result{Outcome: OutcomeInvalid}
	}

	return resultFromClaims(OutcomeValid, claims)
}

func resultFromClaims(outcome Outcome, claims *Claims) Result {
	r := Result{
		Outcome:    outcome,
		SessionRef: claims.SID,
	}
	if claims.IssuedAt != nil {
		r.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		r.ExpiresAt = claims.ExpiresAt.Time
	}
	return r
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(m.config.PrivateKey)
	default:
		return m.config.PrivateKey, nil
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		if len(m.config.PublicKey) > 0 {
			return parseEdPublicKey(m.config.PublicKey)
		}
		priv, err := parseEdPrivateKey(m.config.PrivateKey)
		if err != nil {
			return nil, err
		}
		return priv.Public(), nil
	default:
		return m.config.PrivateKey, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	if len(key) == ed25519.SeedSize {
		return ed25519.NewKeyFromSeed(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
