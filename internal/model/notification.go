package model

import "time"

// Status is a state of the delivery state machine
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusRetry      Status = "RETRY"
	StatusFailed     Status = "FAILED"
)

// Eligible reports whether a notification in this status may be picked up for delivery.
func (s Status) Eligible() bool {
	return s == StatusPending || s == StatusRetry
}

// Terminal reports whether no further transition can leave this status.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Channel is the transport a notification is delivered through
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelSMS   Channel = "SMS"
	ChannelPush  Channel = "PUSH"
)

// Valid reports whether c is one of the supported channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

// Notification is the unit of work persisted by the store.
// Payload fields are immutable after creation; only the delivery
// processor mutates Status, RetryCount, ErrorMessage and UpdatedAt.
type Notification struct {
	ID           string    `json:"id" db:"id"`
	Recipient    string    `json:"recipient" db:"recipient"`
	Subject      string    `json:"subject" db:"subject"`
	Body         string    `json:"body" db:"body"`
	Channel      Channel   `json:"channel" db:"channel"`
	Status       Status    `json:"status" db:"status"`
	RetryCount   int       `json:"retry_count" db:"retry_count"`
	ErrorMessage *string   `json:"error_message" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Observed is the state a conditional update expects to find.
// Every eligible-to-eligible cycle increments RetryCount, so the pair never repeats.
type Observed struct {
	Status     Status
	RetryCount int
}

// Observed returns the guard for a transition away from n's current state.
func (n Notification) Observed() Observed {
	return Observed{Status: n.Status, RetryCount: n.RetryCount}
}

// Transition carries the mutable fields written by a conditional update.
// A nil ErrorMessage clears the stored message.
type Transition struct {
	Status       Status
	RetryCount   int
	ErrorMessage *string
}
