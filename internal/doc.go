// Package internal holds helpers shared by the goSession engine that must
// not leak into the public API: passcode generation and the cache/throttle
// subpackages backing the hot validation path.
package internal
