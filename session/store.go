package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when no live record exists for the
// reference. Deleting the durable record is the revocation mechanism, so
// callers treat this as "revoked or expired", not as a transport failure.
var ErrNotFound = errors.New("session not found")

// ErrStoreUnavailable is returned when the backing store cannot be reached
// or fails mid-operation. Adapters may retry internally; the engine never
// does.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the durable-store contract every backing adapter must implement.
// Values are opaque serialized blobs; (de)serialization belongs to the
// engine. All operations are idempotent and safe for concurrent use.
type Store interface {
	// Set writes a record blob under sessionRef with the given lifetime and
	// registers the reference in ownerID's index.
	Set(ctx context.Context, ownerID, sessionRef string, data []byte, ttl time.Duration) error

	// Get returns the blob for sessionRef, or ErrNotFound.
	Get(ctx context.Context, sessionRef string) ([]byte, error)

	// Delete removes the record. Deleting an absent key is not an error.
	// The owner-index entry may be left behind for lazy cleanup.
	Delete(ctx context.Context, sessionRef string) error

	// Touch extends the record's lifetime without rewriting the blob, and
	// keeps ownerID's index alive at least as long as the touched member.
	// Touching an absent key returns ErrNotFound.
	Touch(ctx context.Context, ownerID, sessionRef string, ttl time.Duration) error

	// FindAllByOwner returns the blobs of the owner's indexed sessions.
	// The result may include entries that are about to expire; entries the
	// adapter can passively detect as dead are pruned and excluded.
	FindAllByOwner(ctx context.Context, ownerID string) ([][]byte, error)

	// DeleteAllByOwner removes every indexed session of the owner along
	// with the index itself.
	DeleteAllByOwner(ctx context.Context, ownerID string) error
}
