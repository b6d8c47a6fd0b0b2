package goSession

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/internal"
	"github.com/MrEthical07/goSession/session"
)

// passcodeKeyPrefix namespaces challenge blobs away from session records in
// the shared durable store.
const passcodeKeyPrefix = "pc:"

type passcodeChallenge struct {
	CodeHash  []byte `json:"code_hash"`
	Attempts  int    `json:"attempts"`
	OwnerID   string `json:"owner_id"`
	Principal []byte `json:"principal,omitempty"`
	Recipient string `json:"recipient"`
	ExpiresAt int64  `json:"expires_at"`
}

// RequestPasscode generates a one-time numeric code, stores its hash as a
// pending challenge, and delivers the code to recipient via the configured
// [Sender]. A later [Engine.LoginWithPasscode] with the matching code turns
// the challenge into a real session for principal.
//
// Requesting again for the same recipient replaces any pending challenge.
func (e *Engine) RequestPasscode(ctx context.Context, principal Principal, recipient string) error {
	if e == nil || e.store == nil {
		return ErrEngineNotReady
	}
	if !e.config.Passcode.Enabled {
		return ErrPasscodeDisabled
	}
	if e.sender == nil {
		return ErrDeliveryNotConfigured
	}
	if principal.ID == "" {
		return ErrPrincipalRequired
	}
	if recipient == "" {
		return ErrPasscodeInvalid
	}

	code, err := internal.NewPasscode(e.config.Passcode.Digits)
	if err != nil {
		return err
	}
	digest := internal.HashPasscode(code)

	challenge := passcodeChallenge{
		CodeHash:  digest[:],
		OwnerID:   principal.ID,
		Principal: cloneBytes(principal.Data),
		Recipient: recipient,
		ExpiresAt: time.Now().Add(e.config.Passcode.TTL).Unix(),
	}
	if err := e.writeChallenge(ctx, recipient, &challenge, e.config.Passcode.TTL); err != nil {
		return err
	}

	if err := e.sender.Send(ctx, recipient, code); err != nil {
		// Undeliverable challenges are unguessable but also unusable;
		// remove the pending state so the caller can retry cleanly.
		_ = e.store.Delete(ctx, passcodeKeyPrefix+recipient)
		e.metricInc(MetricPasscodeFailure)
		e.emitAudit(ctx, auditEventPasscodeRequest, false, principal.ID, "", err, nil)
		return fmt.Errorf("passcode delivery failed: %w", err)
	}

	e.metricInc(MetricPasscodeRequested)
	e.emitAudit(ctx, auditEventPasscodeRequest, true, principal.ID, "", nil, func() map[string]string {
		return map[string]string{"recipient": recipient}
	})
	return nil
}

// LoginWithPasscode redeems a pending challenge. On a correct code the
// challenge is consumed and a full session is created exactly as by
// [Engine.Login]. Wrong codes burn an attempt; once MaxAttempts are burned
// the challenge is destroyed and a fresh request is required.
func (e *Engine) LoginWithPasscode(ctx context.Context, recipient, code string, device DeviceContext) (*LoginResult, error) {
	if e == nil || e.store == nil {
		return nil, ErrEngineNotReady
	}
	if !e.config.Passcode.Enabled {
		return nil, ErrPasscodeDisabled
	}
	if recipient == "" || code == "" {
		e.metricInc(MetricPasscodeFailure)
		return nil, ErrPasscodeInvalid
	}

	key := passcodeKeyPrefix + recipient

	blob, err := e.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			e.metricInc(MetricPasscodeFailure)
			e.emitAudit(ctx, auditEventPasscodeLogin, false, "", "", ErrPasscodeInvalid, nil)
			return nil, ErrPasscodeInvalid
		}
		return nil, wrapStoreErr(err)
	}

	var challenge passcodeChallenge
	if err := json.Unmarshal(blob, &challenge); err != nil {
		_ = e.store.Delete(ctx, key)
		e.metricInc(MetricPasscodeFailure)
		return nil, ErrPasscodeInvalid
	}

	now := time.Now()
	if challenge.ExpiresAt <= now.Unix() {
		_ = e.store.Delete(ctx, key)
		e.metricInc(MetricPasscodeFailure)
		e.emitAudit(ctx, auditEventPasscodeLogin, false, challenge.OwnerID, "", ErrPasscodeInvalid, nil)
		return nil, ErrPasscodeInvalid
	}

	if !internal.PasscodeEqual(code, challenge.CodeHash) {
		// Read-modify-write through the store: concurrent wrong guesses
		// can overwrite each other's count and burn a single attempt, and
		// two simultaneous correct redemptions can both pass before the
		// Delete below lands. The attempt cap plus the short challenge TTL
		// bound the exposure, so the window is accepted rather than paid
		// for with a store-side conditional update.
		challenge.Attempts++
		if challenge.Attempts >= e.config.Passcode.MaxAttempts {
			_ = e.store.Delete(ctx, key)
			e.metricInc(MetricPasscodeFailure)
			e.emitAudit(ctx, auditEventPasscodeLogin, false, challenge.OwnerID, "", ErrPasscodeAttempts, nil)
			return nil, ErrPasscodeAttempts
		}
		remaining := time.Until(time.Unix(challenge.ExpiresAt, 0))
		if err := e.writeChallenge(ctx, recipient, &challenge, remaining); err != nil {
			return nil, err
		}
		e.metricInc(MetricPasscodeFailure)
		e.emitAudit(ctx, auditEventPasscodeLogin, false, challenge.OwnerID, "", ErrPasscodeInvalid, nil)
		return nil, ErrPasscodeInvalid
	}

	// Consume before minting so the code is single-use even if login fails.
	_ = e.store.Delete(ctx, key)

	result, err := e.Login(ctx, Principal{ID: challenge.OwnerID, Data: challenge.Principal}, device)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricPasscodeSuccess)
	e.emitAudit(ctx, auditEventPasscodeLogin, true, challenge.OwnerID, result.SessionRef, nil, nil)
	return result, nil
}

func (e *Engine) writeChallenge(ctx context.Context, recipient string, challenge *passcodeChallenge, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	blob, err := json.Marshal(challenge)
	if err != nil {
		return err
	}
	key := passcodeKeyPrefix + recipient
	// The challenge key doubles as its own owner so pending challenges
	// never appear in any principal's session index.
	if err := e.store.Set(ctx, key, key, blob, ttl); err != nil {
		e.logger.Error("passcode challenge write failed", "error", err)
		return wrapStoreErr(err)
	}
	return nil
}
