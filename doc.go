// Package goSession provides a low-latency session validation engine with
// short-lived signed bearer tokens, a durable revocable session store, a
// process-local read cache, and throttled expiry extension.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (AuthResult, DeviceView, MetricsSnapshot, etc.). Token
// encoding lives in token/, the durable-store contract and adapters in
// session/, and the cache/throttle primitives under internal/ where they are
// never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, cache internals, or blob encoding details in its
//     public API.
//   - Embed principal data in tokens. A token carries only the session
//     reference; deleting the durable record is the revocation mechanism.
//   - Treat the local cache or write throttle as correctness state. Both are
//     rebuildable from the durable store at any time.
//
// # Performance contract
//
// Authorize is the hot path. A cache hit completes without any durable-store
// round-trip, and an actively polled session generates at most one durable
// write per throttle window regardless of read volume.
package goSession
