package inboxcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// Session is the authenticated identity the core operates under.
type Session struct {
	UserID string
	Token  string
}

// SessionProvider supplies the current session. Implementations live outside
// the core; an error (or empty token) fails the calling operation with
// ErrUnauthenticated.
type SessionProvider interface {
	Session() (Session, error)
}

// SendTarget addresses a message send: exactly one of the two ids must be
// set. ConversationID sends into an existing conversation; ReceiverID starts
// a conversation with a user none exists with yet.
type SendTarget struct {
	ConversationID string
	ReceiverID     string
}

// validate checks that exactly one id is set.
func (t SendTarget) validate() error {
	if (t.ConversationID == "") == (t.ReceiverID == "") {
		return errors.New("send target must set exactly one of conversation id or receiver id")
	}
	return nil
}

// key returns the in-flight serialization key for the target.
func (t SendTarget) key() string {
	if t.ConversationID != "" {
		return "send:conv:" + t.ConversationID
	}
	return "send:recv:" + t.ReceiverID
}

// SendResult is the remote acknowledgment of a message send.
type SendResult struct {
	ConversationID string
	Message        message.Message
}

// RemoteAPI abstracts the remote operations the core consumes. The concrete
// transport is an external collaborator; implementations must honor the
// context and surface transport problems as *NetworkError.
type RemoteAPI interface {
	SearchUsers(ctx context.Context, query, token string) ([]user.User, error)
	GetFriendshipStatus(ctx context.Context, userID, token string) (friendship.Status, error)
	SendFriendRequest(ctx context.Context, userID, token string) error
	CancelFriendRequest(ctx context.Context, userID, token string) error
	AcceptFriendRequest(ctx context.Context, userID, token string) error
	IgnoreFriendRequest(ctx context.Context, userID, token string) error
	SendMessage(ctx context.Context, target SendTarget, content, token string) (SendResult, error)
	ListConversations(ctx context.Context, token string) ([]conversation.Conversation, error)
	LoadMessages(ctx context.Context, conversationID, cursor, token string) (message.Page, error)
}

// OutcomeKind classifies a terminal operation outcome surfaced to the
// presentation layer.
type OutcomeKind uint8

const (
	OutcomeFriendRequestSent OutcomeKind = iota
	OutcomeFriendRequestCancelled
	OutcomeFriendRequestAccepted
	OutcomeFriendRequestIgnored
	OutcomeMessageSent
	OutcomeMessageFailed
	OutcomeConversationCreated
)

// String returns a stable identifier for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFriendRequestSent:
		return "friend_request_sent"
	case OutcomeFriendRequestCancelled:
		return "friend_request_cancelled"
	case OutcomeFriendRequestAccepted:
		return "friend_request_accepted"
	case OutcomeFriendRequestIgnored:
		return "friend_request_ignored"
	case OutcomeMessageSent:
		return "message_sent"
	case OutcomeMessageFailed:
		return "message_failed"
	case OutcomeConversationCreated:
		return "conversation_created"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Outcome is a structured terminal result. Detail carries an id relevant to
// the kind (user id, conversation id), never a presentation string.
type Outcome struct {
	Kind   OutcomeKind
	Detail string
}

// Notifier surfaces terminal outcomes to the presentation layer.
type Notifier interface {
	Notify(Outcome)
}
