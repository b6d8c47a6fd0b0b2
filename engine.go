package goSession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/MrEthical07/goSession/internal/cache"
	"github.com/MrEthical07/goSession/internal/throttle"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/token"
)

// Engine defines a public type used by goSession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config   Config
	store    session.Store
	cache    *cache.Cache
	throttle *throttle.Throttle
	tokens   *token.Manager
	sender   Sender
	audit    *auditDispatcher
	metrics  *Metrics
	logger   hclog.Logger
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login creates a durable session for principal, records the device
// metadata, and mints the first short-lived token bound to the new session
// reference. Missing device fields fall back to context values and then to
// the "unknown" sentinel; device capture never fails a login.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, principal Principal, device DeviceContext) (*LoginResult, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	if principal.ID == "" {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrPrincipalRequired, nil)
		return nil, ErrPrincipalRequired
	}

	now := time.Now()
	rec := &session.Record{
		SessionRef: uuid.NewString(),
		OwnerID:    principal.ID,
		Principal:  cloneBytes(principal.Data),
		Device:     e.deviceFromInput(ctx, device, now),
		CreatedAt:  now.Unix(),
		ExpiresAt:  now.Add(e.config.Session.Lifetime).Unix(),
	}

	blob, err := session.Encode(rec)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		return nil, err
	}
	if e.config.Session.MaxRecordSize > 0 && len(blob) > e.config.Session.MaxRecordSize {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, principal.ID, "", ErrRecordTooLarge, nil)
		return nil, ErrRecordTooLarge
	}

	if err := e.store.Set(ctx, rec.OwnerID, rec.SessionRef, blob, e.config.Session.Lifetime); err != nil {
		e.metricInc(MetricLoginFailure)
		e.logger.Error("session write failed", "error", err)
		e.emitAudit(ctx, auditEventLoginFailure, false, principal.ID, "", ErrStoreUnavailable, nil)
		return nil, wrapStoreErr(err)
	}
	e.cache.Add(rec)

	tok, err := e.tokens.Mint(rec.SessionRef)
	if err != nil {
		// The durable record exists but no token can reference it yet.
		// Roll it back so a failed login leaves no orphan session.
		_ = e.store.Delete(ctx, rec.SessionRef)
		e.cache.Remove(rec.SessionRef)
		e.metricInc(MetricLoginFailure)
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLogin, true, principal.ID, rec.SessionRef, nil, nil)

	return &LoginResult{
		Token:      tok,
		SessionRef: rec.SessionRef,
	}, nil
}

// Authorize is the hot path: it verifies the bearer token locally, then
// resolves the referenced session (cache first, durable store on miss). An
// expired token over a live session rotates: the result is valid and carries
// a replacement token in NewToken.
//
// Invalid outcomes are values, not errors. An error is returned only when
// the durable store could not answer, which is the one condition the caller
// cannot treat as a clean deny.
func (e *Engine) Authorize(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if e == nil || e.store == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			e.metrics.Observe(MetricAuthorizeLatency, time.Since(start))
		}()
	}

	verdict := e.tokens.Verify(tokenStr)

	switch verdict.Outcome {
	case token.OutcomeValid:
		return e.resolveSession(ctx, verdict.SessionRef, false)
	case token.OutcomeExpired:
		if verdict.SessionRef == "" {
			break
		}
		return e.resolveSession(ctx, verdict.SessionRef, true)
	}

	e.metricInc(MetricAuthorizeInvalid)
	e.emitAudit(ctx, auditEventAuthorizeInvalid, false, "", "", ErrTokenInvalid, nil)
	return &AuthResult{Valid: false, Reason: ReasonBadToken}, nil
}

// resolveSession owns everything past signature verification: the cache
// lookup, the durable read, sliding-expiry touches, and rotation. rotate is
// set when the presented token was expired but proved knowledge of a
// session reference.
func (e *Engine) resolveSession(ctx context.Context, sessionRef string, rotate bool) (*AuthResult, error) {
	rec, ok := e.cache.Get(sessionRef)
	if ok {
		e.metricInc(MetricCacheHit)
	} else {
		e.metricInc(MetricCacheMiss)

		blob, err := e.store.Get(ctx, sessionRef)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				e.metricInc(MetricSessionRevoked)
				e.metricInc(MetricAuthorizeInvalid)
				e.emitAudit(ctx, auditEventAuthorizeInvalid, false, "", sessionRef, ErrSessionNotFound, nil)
				return &AuthResult{Valid: false, Reason: ReasonSessionRevoked}, nil
			}
			e.logger.Error("session read failed", "session_ref", sessionRef, "error", err)
			return nil, wrapStoreErr(err)
		}

		rec, err = session.Decode(blob)
		if err != nil {
			// A blob this process cannot decode is unusable by every
			// process; treat it as revoked and clear it out.
			e.logger.Warn("corrupt session record", "session_ref", sessionRef, "error", err)
			_ = e.store.Delete(ctx, sessionRef)
			e.metricInc(MetricSessionRevoked)
			e.metricInc(MetricAuthorizeInvalid)
			return &AuthResult{Valid: false, Reason: ReasonSessionRevoked}, nil
		}
		e.cache.Add(rec)
	}

	e.touchSession(ctx, rec.OwnerID, sessionRef)

	result := &AuthResult{
		Valid:      true,
		SessionRef: sessionRef,
		Principal: Principal{
			ID:   rec.OwnerID,
			Data: cloneBytes(rec.Principal),
		},
	}

	if rotate {
		fresh, err := e.tokens.Mint(sessionRef)
		if err != nil {
			// The session is live; failing the request over a mint error
			// would revoke it from the caller's point of view. Log and
			// let the client retry with the expired token.
			e.logger.Error("token rotation failed", "session_ref", sessionRef, "error", err)
		} else {
			result.NewToken = fresh
			e.metricInc(MetricTokenRotated)
			e.emitAudit(ctx, auditEventTokenRotated, true, rec.OwnerID, sessionRef, nil, nil)
		}
	}

	e.metricInc(MetricAuthorizeSuccess)
	return result, nil
}

// touchSession extends durable expiry under sliding mode, at most once per
// throttle window per session reference. Touch failures never fail the
// read: the worst case is an expiry that extends a window later.
func (e *Engine) touchSession(ctx context.Context, ownerID, sessionRef string) {
	if !e.config.Session.Sliding {
		return
	}
	if !e.throttle.Allow(sessionRef) {
		e.metricInc(MetricTouchSuppressed)
		return
	}

	err := e.store.Touch(ctx, ownerID, sessionRef, e.config.Session.Lifetime)
	switch {
	case err == nil:
		e.metricInc(MetricStoreTouch)
	case errors.Is(err, session.ErrNotFound):
		// Revoked between read and touch. The next cold read resolves it.
	default:
		e.metricInc(MetricTouchFailed)
		e.logger.Warn("session touch failed", "session_ref", sessionRef, "error", err)
	}
}

// Logout revokes one session by deleting its durable record. It is
// idempotent: revoking an already-revoked or unknown reference succeeds.
// Other processes observe the revocation once their cache entry expires.
func (e *Engine) Logout(ctx context.Context, sessionRef string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if sessionRef == "" {
		return nil
	}

	e.cache.Remove(sessionRef)
	if e.throttle != nil {
		e.throttle.Forget(sessionRef)
	}

	if err := e.store.Delete(ctx, sessionRef); err != nil {
		e.logger.Error("session delete failed", "session_ref", sessionRef, "error", err)
		return wrapStoreErr(err)
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogoutSession, true, "", sessionRef, nil, nil)
	return nil
}

// LogoutByToken revokes the session referenced by a presented token. Unlike
// [Engine.Authorize] it accepts expired tokens, since a client holding an
// expired token for a live session should still be able to end it.
func (e *Engine) LogoutByToken(ctx context.Context, tokenStr string) error {
	if e == nil || e.tokens == nil {
		return ErrEngineNotReady
	}

	verdict := e.tokens.Verify(tokenStr)
	if verdict.Outcome == token.OutcomeInvalid || verdict.SessionRef == "" {
		return ErrTokenInvalid
	}
	return e.Logout(ctx, verdict.SessionRef)
}

// LogoutAll revokes every durable session owned by ownerID. There is no
// cross-process broadcast: peers converge as their cache entries expire.
func (e *Engine) LogoutAll(ctx context.Context, ownerID string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if ownerID == "" {
		return ErrPrincipalRequired
	}

	if err := e.store.DeleteAllByOwner(ctx, ownerID); err != nil {
		e.logger.Error("bulk session delete failed", "owner_id", ownerID, "error", err)
		return wrapStoreErr(err)
	}

	// The local cache may still hold this owner's sessions under their
	// references. Purging everything is the only owner-blind option and
	// keeps revocation visibility on this process immediate.
	e.cache.Purge()

	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, ownerID, "", nil, nil)
	return nil
}

// ListActiveSessions returns the device views of every live session owned
// by ownerID, for "manage my devices" surfaces. Views carry no session
// reference. Undecodable records are skipped.
func (e *Engine) ListActiveSessions(ctx context.Context, ownerID string) ([]DeviceView, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if ownerID == "" {
		return nil, ErrPrincipalRequired
	}

	blobs, err := e.store.FindAllByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	now := time.Now().Unix()
	views := make([]DeviceView, 0, len(blobs))
	for _, blob := range blobs {
		rec, err := session.Decode(blob)
		if err != nil {
			e.logger.Warn("skipping corrupt session record", "owner_id", ownerID, "error", err)
			continue
		}
		// Under sliding expiry touches extend the store TTL without
		// rewriting the blob, so the encoded ExpiresAt understates the
		// real one and presence in the store is authoritative.
		if !e.config.Session.Sliding && rec.ExpiresAt <= now {
			continue
		}
		views = append(views, DeviceView{
			IP:        rec.Device.IP,
			UserAgent: rec.Device.UserAgent,
			LoginAt:   rec.Device.LoginAt,
		})
	}
	return views, nil
}

// ActiveSessionCount reports how many live sessions ownerID currently has.
func (e *Engine) ActiveSessionCount(ctx context.Context, ownerID string) (int, error) {
	views, err := e.ListActiveSessions(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	return len(views), nil
}

func (e *Engine) deviceFromInput(ctx context.Context, device DeviceContext, now time.Time) session.Device {
	ip := device.IP
	if ip == "" {
		ip = clientIPFromContext(ctx)
	}
	if ip == "" {
		ip = session.UnknownDeviceField
	}
	ua := device.UserAgent
	if ua == "" {
		ua = userAgentFromContext(ctx)
	}
	if ua == "" {
		ua = session.UnknownDeviceField
	}
	return session.Device{
		IP:        ip,
		UserAgent: ua,
		LoginAt:   now.Unix(),
	}
}

func wrapStoreErr(err error) error {
	if err == nil || errors.Is(err, session.ErrStoreUnavailable) {
		return err
	}
	return errors.Join(ErrStoreUnavailable, err)
}
