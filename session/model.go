package session

// UnknownDeviceField is the sentinel stored when a device context field
// was not supplied at login. Missing context degrades to this value, never
// to an error.
const UnknownDeviceField = "unknown"

// Device captures the client metadata recorded at login time.
type Device struct {
	IP        string
	UserAgent string
	LoginAt   int64
}

// Record defines a public type used by goSession APIs.
//
// Record instances are immutable after creation: the engine publishes only
// defensive copies, and no caller may mutate a record another caller can
// observe. Destroyed by logout, logout-all, or durable expiry.
type Record struct {
	SessionRef string
	OwnerID    string
	Principal  []byte
	Device     Device

	CreatedAt int64
	ExpiresAt int64
}

// Clone returns a deep copy of the record. Every publish into and read out
// of a shared structure goes through Clone so published records stay
// effectively frozen.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	out := *r
	if r.Principal != nil {
		out.Principal = make([]byte, len(r.Principal))
		copy(out.Principal, r.Principal)
	}
	return &out
}
