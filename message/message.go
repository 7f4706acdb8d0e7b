package message

import (
	"fmt"
	"time"
)

// Status represents the delivery state of a message. The numeric order of
// the constants is the advancement order: a status never moves backward.
type Status uint8

const (
	// StatusSending is the local, not-yet-acknowledged placeholder state.
	// It exists only on optimistic messages and is never persisted
	// remotely.
	StatusSending Status = iota
	// StatusSent means the server acknowledged the message.
	StatusSent
	// StatusDelivered means the message reached the recipient's device.
	StatusDelivered
	// StatusSeen means the recipient viewed the message.
	StatusSeen
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSending:
		return "sending"
	case StatusSent:
		return "sent"
	case StatusDelivered:
		return "delivered"
	case StatusSeen:
		return "seen"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus converts a wire status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "sending":
		return StatusSending, nil
	case "sent":
		return StatusSent, nil
	case "delivered":
		return StatusDelivered, nil
	case "seen":
		return StatusSeen, nil
	default:
		return StatusSending, fmt.Errorf("unknown message status %q", s)
	}
}

// Message is a single entry in a conversation log.
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	CreatedAt      time.Time
	Status         Status

	// Local marks an optimistic placeholder that has not been
	// acknowledged by the server. Local messages are reconciled or
	// removed, never persisted.
	Local bool
}
