package inboxcore

import (
	"context"
	"errors"
	"sync"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// errRemote is the generic failure used by scripted mock calls.
var errRemote = errors.New("remote call failed")

// mockSession implements SessionProvider for testing.
type mockSession struct {
	session Session
	err     error
}

func (m *mockSession) Session() (Session, error) {
	return m.session, m.err
}

func authedSession() *mockSession {
	return &mockSession{session: Session{UserID: "self", Token: "tok"}}
}

// recordingNotifier captures outcomes for assertions.
type recordingNotifier struct {
	outcomes []Outcome
	mu       sync.Mutex
}

func (n *recordingNotifier) Notify(o Outcome) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.outcomes = append(n.outcomes, o)
}

func (n *recordingNotifier) kinds() []OutcomeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]OutcomeKind, 0, len(n.outcomes))
	for _, o := range n.outcomes {
		out = append(out, o.Kind)
	}
	return out
}

// mockRemote implements RemoteAPI for testing. Behavior is scripted through
// the function fields; unset fields use a permissive default. calls records
// the operation names in invocation order.
type mockRemote struct {
	searchUsersFn         func(ctx context.Context, query string) ([]user.User, error)
	getFriendshipStatusFn func(ctx context.Context, userID string) (friendship.Status, error)
	sendFriendRequestFn   func(ctx context.Context, userID string) error
	cancelFriendRequestFn func(ctx context.Context, userID string) error
	acceptFriendRequestFn func(ctx context.Context, userID string) error
	ignoreFriendRequestFn func(ctx context.Context, userID string) error
	sendMessageFn         func(ctx context.Context, target SendTarget, content string) (SendResult, error)
	listConversationsFn   func(ctx context.Context) ([]conversation.Conversation, error)
	loadMessagesFn        func(ctx context.Context, conversationID, cursor string) (message.Page, error)

	calls []string
	mu    sync.Mutex
}

func (m *mockRemote) record(op string) {
	m.mu.Lock()
	m.calls = append(m.calls, op)
	m.mu.Unlock()
}

func (m *mockRemote) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *mockRemote) SearchUsers(ctx context.Context, query, token string) ([]user.User, error) {
	m.record("searchUsers")
	if m.searchUsersFn != nil {
		return m.searchUsersFn(ctx, query)
	}
	return nil, nil
}

func (m *mockRemote) GetFriendshipStatus(ctx context.Context, userID, token string) (friendship.Status, error) {
	m.record("getFriendshipStatus")
	if m.getFriendshipStatusFn != nil {
		return m.getFriendshipStatusFn(ctx, userID)
	}
	return friendship.StatusNone, nil
}

func (m *mockRemote) SendFriendRequest(ctx context.Context, userID, token string) error {
	m.record("sendFriendRequest")
	if m.sendFriendRequestFn != nil {
		return m.sendFriendRequestFn(ctx, userID)
	}
	return nil
}

func (m *mockRemote) CancelFriendRequest(ctx context.Context, userID, token string) error {
	m.record("cancelFriendRequest")
	if m.cancelFriendRequestFn != nil {
		return m.cancelFriendRequestFn(ctx, userID)
	}
	return nil
}

func (m *mockRemote) AcceptFriendRequest(ctx context.Context, userID, token string) error {
	m.record("acceptFriendRequest")
	if m.acceptFriendRequestFn != nil {
		return m.acceptFriendRequestFn(ctx, userID)
	}
	return nil
}

func (m *mockRemote) IgnoreFriendRequest(ctx context.Context, userID, token string) error {
	m.record("ignoreFriendRequest")
	if m.ignoreFriendRequestFn != nil {
		return m.ignoreFriendRequestFn(ctx, userID)
	}
	return nil
}

func (m *mockRemote) SendMessage(ctx context.Context, target SendTarget, content, token string) (SendResult, error) {
	m.record("sendMessage")
	if m.sendMessageFn != nil {
		return m.sendMessageFn(ctx, target, content)
	}
	return SendResult{}, errRemote
}

func (m *mockRemote) ListConversations(ctx context.Context, token string) ([]conversation.Conversation, error) {
	m.record("listConversations")
	if m.listConversationsFn != nil {
		return m.listConversationsFn(ctx)
	}
	return nil, nil
}

func (m *mockRemote) LoadMessages(ctx context.Context, conversationID, cursor, token string) (message.Page, error) {
	m.record("loadMessages")
	if m.loadMessagesFn != nil {
		return m.loadMessagesFn(ctx, conversationID, cursor)
	}
	return message.Page{}, nil
}

// newTestClient builds a Client on the given mock remote with an
// authenticated session and a recording notifier.
func newTestClient(remote *mockRemote) (*Client, *recordingNotifier) {
	notifier := &recordingNotifier{}
	opts := NewOptions()
	opts.Notifier = notifier
	c, err := New(remote, authedSession(), opts)
	if err != nil {
		panic(err)
	}
	return c, notifier
}
