package goSession

import "context"

// Principal identifies and describes the authenticated party. ID keys the
// owner index (listing, bulk revocation); Data is an opaque payload the
// engine stores with the session and echoes back on every successful
// authorize. Neither field is ever embedded in a token.
type Principal struct {
	ID   string
	Data []byte
}

// DeviceContext carries the client metadata captured at login. Missing
// fields degrade to the "unknown" sentinel, never to an error; fields left
// empty fall back to values attached via [WithClientIP] and [WithUserAgent].
type DeviceContext struct {
	IP        string
	UserAgent string
}

// LoginResult defines a public type used by goSession APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Token      string
	SessionRef string
}

// Reason strings carried by invalid [AuthResult] values.
const (
	// ReasonBadToken marks a malformed or badly signed token. Terminal;
	// the durable store is never consulted.
	ReasonBadToken = "bad token"
	// ReasonSessionRevoked marks a well-formed token whose durable session
	// record is gone — revoked, expired, or never created.
	ReasonSessionRevoked = "session revoked or expired"
)

// AuthResult is returned by [Engine.Authorize]. Invalid outcomes are values
// (Valid false plus a Reason), not errors: only a durable-store failure is
// reported as an error.
//
// NewToken is set when the presented token was expired but the underlying
// session is still live. Callers are expected to surface it to the client
// (for example via a response header) so the session extends transparently.
type AuthResult struct {
	Valid      bool
	Reason     string
	SessionRef string
	Principal  Principal
	NewToken   string
}

// DeviceView is the safe listing view for a session. It intentionally
// excludes the session reference so a display surface never holds a usable
// revocation target.
type DeviceView struct {
	IP        string
	UserAgent string
	LoginAt   int64
}

// Sender delivers one-time passcodes. Implementations wrap an e-mail (or
// comparable) transport; the engine treats delivery as a black box that
// either succeeds or fails.
type Sender interface {
	Send(ctx context.Context, recipient, code string) error
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
