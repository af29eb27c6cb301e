package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// DispatchRecord is the ledger entry for one inbound Slack event. It holds
// identifiers and the outcome only; message text is never stored.
type DispatchRecord struct {
	EventID     string     `dynamodbav:"event_id"`
	DispatchID  string     `dynamodbav:"dispatch_id"`
	Kind        EventKind  `dynamodbav:"kind"`
	ChannelID   string     `dynamodbav:"channel_id"`
	Status      string     `dynamodbav:"status"` // claimed, replied, skipped, failed, duplicate
	Reason      string     `dynamodbav:"reason,omitempty"`
	Error       string     `dynamodbav:"error,omitempty"`
	CreatedAt   time.Time  `dynamodbav:"created_at"`
	CompletedAt *time.Time `dynamodbav:"completed_at,omitempty"`
	TTL         int64      `dynamodbav:"ttl"` // Unix timestamp
}

// Dispatch status constants
const (
	StatusClaimed   = "claimed"
	StatusReplied   = "replied"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
	StatusDuplicate = "duplicate"
)

// Outcome is the result of dispatching one InboundEvent
type Outcome struct {
	DispatchID string
	Event      InboundEvent
	Status     string
	Reason     string
	Reply      string
	Err        error
	Duration   time.Duration
}

// ErrorString returns the outcome error text, or "" when there is none
func (o Outcome) ErrorString() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}

// DefaultRecordTTL is how long a ledger entry is kept when no TTL is configured
const DefaultRecordTTL = 7 * 24 * time.Hour

// NewDispatchRecord creates a claimed ledger entry for an event
func NewDispatchRecord(dispatchID string, event InboundEvent, ttl time.Duration) *DispatchRecord {
	if ttl <= 0 {
		ttl = DefaultRecordTTL
	}
	now := time.Now()

	return &DispatchRecord{
		EventID:    event.EventID,
		DispatchID: dispatchID,
		Kind:       event.Kind,
		ChannelID:  event.ChannelID,
		Status:     StatusClaimed,
		CreatedAt:  now,
		TTL:        now.Add(ttl).Unix(),
	}
}

// IsTerminal reports whether no further work follows the given status
func IsTerminal(status string) bool {
	switch status {
	case StatusReplied, StatusSkipped, StatusFailed, StatusDuplicate:
		return true
	}
	return false
}

// NewDispatchID creates a unique identifier for a single dispatch
func NewDispatchID() string {
	return "dsp-" + generateULID()
}

// generateULID generates a ULID string for unique identifiers
func generateULID() string {
	id, _ := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	return id.String()
}
