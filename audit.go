package goSession

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

type AuditEvent struct {
	Timestamp  time.Time         `json:"timestamp"`
	EventType  string            `json:"event_type"`
	OwnerID    string            `json:"owner_id,omitempty"`
	SessionRef string            `json:"session_ref,omitempty"`
	IP         string            `json:"ip,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

const (
	auditEventLogin            = "login"
	auditEventLoginFailure     = "login_failure"
	auditEventAuthorizeInvalid = "authorize_invalid"
	auditEventTokenRotated     = "token_rotated"
	auditEventLogoutSession    = "logout_session"
	auditEventLogoutAll        = "logout_all"
	auditEventPasscodeRequest  = "passcode_request"
	auditEventPasscodeLogin    = "passcode_login"
)

// AuditErrorCode defines a public type used by goSession APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrInvalidToken      AuditErrorCode = "invalid_token"
	auditErrSessionNotFound   AuditErrorCode = "session_not_found"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrPrincipalRequired AuditErrorCode = "principal_required"
	auditErrRecordTooLarge    AuditErrorCode = "record_too_large"
	auditErrDeliveryMissing   AuditErrorCode = "delivery_not_configured"
	auditErrPasscodeInvalid   AuditErrorCode = "passcode_invalid"
	auditErrAttemptsExceeded  AuditErrorCode = "attempts_exceeded"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	ownerID string,
	sessionRef string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp:  time.Now().UTC(),
		EventType:  eventType,
		OwnerID:    ownerID,
		SessionRef: sessionRef,
		IP:         clientIPFromContext(ctx),
		Success:    success,
		Metadata:   metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrTokenInvalid):
		return auditErrInvalidToken
	case errors.Is(err, ErrSessionNotFound):
		return auditErrSessionNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrUnavailable
	case errors.Is(err, ErrPrincipalRequired):
		return auditErrPrincipalRequired
	case errors.Is(err, ErrRecordTooLarge):
		return auditErrRecordTooLarge
	case errors.Is(err, ErrDeliveryNotConfigured):
		return auditErrDeliveryMissing
	case errors.Is(err, ErrPasscodeInvalid),
		errors.Is(err, ErrPasscodeDisabled):
		return auditErrPasscodeInvalid
	case errors.Is(err, ErrPasscodeAttempts):
		return auditErrAttemptsExceeded
	default:
		return auditErrInternal
	}
}
