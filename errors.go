package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrTokenInvalid is an exported constant or variable used by the session engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrSessionNotFound is returned when the durable record is absent —
	// revoked, expired, or never created. This is the revocation mechanism,
	// not an edge case. Alias of [session.ErrNotFound] so errors.Is holds
	// across layers.
	ErrSessionNotFound = session.ErrNotFound
	// ErrStoreUnavailable is returned when the durable store cannot answer.
	// The engine never retries; retry policy belongs to the store adapter.
	// Alias of [session.ErrStoreUnavailable].
	ErrStoreUnavailable = session.ErrStoreUnavailable
	// ErrPrincipalRequired is an exported constant or variable used by the session engine.
	ErrPrincipalRequired = errors.New("principal id required")
	// ErrRecordTooLarge is an exported constant or variable used by the session engine.
	ErrRecordTooLarge = errors.New("session record exceeds size limit")
	// ErrDeliveryNotConfigured is returned when a passcode send is requested
	// without a delivery transport. Fails at the call, not at construction,
	// so callers who never use the feature are not punished.
	ErrDeliveryNotConfigured = errors.New("passcode delivery transport not configured")
	// ErrPasscodeDisabled is an exported constant or variable used by the session engine.
	ErrPasscodeDisabled = errors.New("passcode login disabled")
	// ErrPasscodeInvalid is an exported constant or variable used by the session engine.
	ErrPasscodeInvalid = errors.New("passcode challenge invalid")
	// ErrPasscodeAttempts is an exported constant or variable used by the session engine.
	ErrPasscodeAttempts = errors.New("passcode attempts exceeded")
)
