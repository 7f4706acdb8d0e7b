package conversation

import (
	"fmt"
	"time"

	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// Type distinguishes direct and group conversations. It is a closed
// enumeration dispatched by explicit switch, never by probing optional
// fields.
type Type uint8

const (
	// TypeDirect is a two-party conversation.
	TypeDirect Type = iota
	// TypeGroup is a named multi-party conversation.
	TypeGroup
)

// String returns the wire representation of the type.
func (t Type) String() string {
	switch t {
	case TypeDirect:
		return "DIRECT"
	case TypeGroup:
		return "GROUP"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType converts a wire type string into a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "DIRECT":
		return TypeDirect, nil
	case "GROUP":
		return TypeGroup, nil
	default:
		return TypeDirect, fmt.Errorf("unknown conversation type %q", s)
	}
}

// Status reflects whether the local user's membership in the conversation
// has been accepted or is still an unconsented message request. It is
// independent of any participant's friendship status.
type Status uint8

const (
	// StatusAccepted means the membership is confirmed.
	StatusAccepted Status = iota
	// StatusPending means the conversation is still a message request.
	StatusPending
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "ACCEPTED"
	case StatusPending:
		return "PENDING"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus converts a wire status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "ACCEPTED":
		return StatusAccepted, nil
	case "PENDING":
		return StatusPending, nil
	default:
		return StatusAccepted, fmt.Errorf("unknown conversation status %q", s)
	}
}

// ParticipationStatus is a single participant's membership state.
type ParticipationStatus uint8

const (
	// ParticipationAccepted means the participant accepted membership.
	ParticipationAccepted ParticipationStatus = iota
	// ParticipationPending means the participant has not acted on the
	// membership request yet.
	ParticipationPending
)

// String returns the wire representation of the participation status.
func (p ParticipationStatus) String() string {
	switch p {
	case ParticipationAccepted:
		return "ACCEPTED"
	case ParticipationPending:
		return "PENDING"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(p))
	}
}

// ParseParticipationStatus converts a wire string into a
// ParticipationStatus.
func ParseParticipationStatus(s string) (ParticipationStatus, error) {
	switch s {
	case "ACCEPTED":
		return ParticipationAccepted, nil
	case "PENDING":
		return ParticipationPending, nil
	default:
		return ParticipationAccepted, fmt.Errorf("unknown participation status %q", s)
	}
}

// Participant is a member of a conversation.
type Participant struct {
	User   user.User
	Status ParticipationStatus
}

// Conversation is one entry in the user's inbox.
type Conversation struct {
	ID           string
	Type         Type
	Name         string
	Participants []Participant
	LastMessage  *message.Message
	Status       Status
	UnreadCount  int
	CreatedAt    time.Time
}

// Other returns the participant that is not the local user. Meaningful only
// for direct conversations.
func (c Conversation) Other(localUserID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.User.ID != localUserID {
			return p, true
		}
	}
	return Participant{}, false
}

// Participant returns the entry for the given user id.
func (c Conversation) Participant(userID string) (Participant, bool) {
	for _, p := range c.Participants {
		if p.User.ID == userID {
			return p, true
		}
	}
	return Participant{}, false
}

// DisplayName returns the name to show for the conversation from the local
// user's perspective.
func (c Conversation) DisplayName(localUserID string) string {
	switch c.Type {
	case TypeGroup:
		if c.Name != "" {
			return c.Name
		}
		return "Group Chat"
	case TypeDirect:
		if other, ok := c.Other(localUserID); ok {
			return other.User.Label()
		}
		return "Unknown"
	default:
		return "Unknown"
	}
}
