package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session engine.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLoginSuccess, Name: "gosession_login_success_total", Help: "Successful logins."},
	{ID: goSession.MetricLoginFailure, Name: "gosession_login_failure_total", Help: "Failed logins."},
	{ID: goSession.MetricAuthorizeSuccess, Name: "gosession_authorize_success_total", Help: "Authorize calls answered valid."},
	{ID: goSession.MetricAuthorizeInvalid, Name: "gosession_authorize_invalid_total", Help: "Authorize calls answered invalid."},
	{ID: goSession.MetricSessionRevoked, Name: "gosession_session_revoked_total", Help: "Authorize rejections due to a missing durable record."},
	{ID: goSession.MetricCacheHit, Name: "gosession_cache_hit_total", Help: "Session reads served from the local cache."},
	{ID: goSession.MetricCacheMiss, Name: "gosession_cache_miss_total", Help: "Session reads that fell through to the durable store."},
	{ID: goSession.MetricTokenRotated, Name: "gosession_token_rotated_total", Help: "Transparently reissued tokens."},
	{ID: goSession.MetricStoreTouch, Name: "gosession_store_touch_total", Help: "Durable expiry extensions actually issued."},
	{ID: goSession.MetricTouchSuppressed, Name: "gosession_touch_suppressed_total", Help: "Expiry extensions absorbed by the write throttle."},
	{ID: goSession.MetricTouchFailed, Name: "gosession_touch_failed_total", Help: "Expiry extensions that failed at the store."},
	{ID: goSession.MetricLogout, Name: "gosession_logout_total", Help: "Single-session logout operations."},
	{ID: goSession.MetricLogoutAll, Name: "gosession_logout_all_total", Help: "Logout-all operations."},
	{ID: goSession.MetricPasscodeRequested, Name: "gosession_passcode_requested_total", Help: "One-time passcode challenges issued."},
	{ID: goSession.MetricPasscodeSuccess, Name: "gosession_passcode_success_total", Help: "Successful passcode redemptions."},
	{ID: goSession.MetricPasscodeFailure, Name: "gosession_passcode_failure_total", Help: "Failed passcode redemptions."},
}

// HistogramDefs is an exported constant or variable used by the session engine.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricAuthorizeLatency, Name: "gosession_authorize_latency_seconds", Help: "Authorize latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session engine.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session engine.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
