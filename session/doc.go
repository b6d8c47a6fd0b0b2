// Package session defines the durable session record, its compact binary
// codec, and the Store contract every backing adapter must satisfy.
//
// # Architecture boundaries
//
// The record and codec are owned by the engine layer; stores only ever see
// opaque encoded blobs. A Store implementation must never decode, inspect,
// or rewrite a blob.
//
// # Owner index contract
//
// FindAllByOwner may return blobs for sessions that are about to expire and
// may silently drop references it can passively detect as dead. Callers must
// not assume the index is perfect — the engine filters a second time.
package session
