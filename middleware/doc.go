// Package middleware exposes an HTTP middleware adapter enforcing session
// authorization on top of goSession.Engine.
//
// # Guard
//
// [Guard] reads the Authorization header, calls Engine.Authorize, and
// injects the result into the request context. When the engine rotates an
// expired token over a live session, the replacement is surfaced on the
// response via the X-Refreshed-Token header so clients can adopt it.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement session logic itself — all decisions are delegated to
// Engine.Authorize.
//
// # What this package must NOT do
//
//   - Parse or create tokens directly (delegates to Engine).
//   - Access the durable store (Engine handles I/O).
//   - Make authorization decisions beyond pass/reject from Engine.Authorize.
package middleware
