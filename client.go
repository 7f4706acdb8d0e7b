package inboxcore

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/message"
)

// Options contains configuration for creating a Client.
type Options struct {
	// SearchConcurrency bounds the fan-out of friendship-status lookups
	// performed for search results.
	SearchConcurrency int
	// Notifier receives terminal operation outcomes. Optional.
	Notifier Notifier
	// TimeProvider injects the clock used for optimistic timestamps.
	// Optional; defaults to the system clock.
	TimeProvider message.TimeProvider
	// Savedata is a snapshot previously produced by GetSavedata, used to
	// warm-start the stores. Optional.
	Savedata []byte
}

// NewOptions creates Options with default values.
func NewOptions() *Options {
	return &Options{
		SearchConcurrency: 4,
	}
}

// Client coordinates the stores against the remote source of truth. It is
// the composition root's single handle to the core: views reach the stores
// only through it.
type Client struct {
	opts          *Options
	remote        RemoteAPI
	session       SessionProvider
	friendships   *friendship.Store
	conversations *conversation.Store
	messages      *message.Store
	inflight      *inflightTable

	foreground   string
	foregroundMu sync.Mutex
}

// New creates a Client with the given collaborators. remote and session are
// required; opts may be nil for defaults.
func New(remote RemoteAPI, session SessionProvider, opts *Options) (*Client, error) {
	if remote == nil {
		return nil, errors.New("remote API is required")
	}
	if session == nil {
		return nil, errors.New("session provider is required")
	}
	if opts == nil {
		opts = NewOptions()
	}
	if opts.SearchConcurrency <= 0 {
		opts.SearchConcurrency = NewOptions().SearchConcurrency
	}

	c := &Client{
		opts:          opts,
		remote:        remote,
		session:       session,
		friendships:   friendship.NewStore(),
		conversations: conversation.NewStore(),
		messages:      message.NewStoreWithTimeProvider(opts.TimeProvider),
		inflight:      newInflightTable(),
	}

	if len(opts.Savedata) > 0 {
		if err := c.loadFromSavedata(opts.Savedata); err != nil {
			return nil, fmt.Errorf("failed to load savedata: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":           "New",
		"search_concurrency": opts.SearchConcurrency,
		"has_savedata":       len(opts.Savedata) > 0,
	}).Info("Client created")

	return c, nil
}

// Friendships returns the friendship state machine for read access and
// subscription by views.
func (c *Client) Friendships() *friendship.Store {
	return c.friendships
}

// Conversations returns the conversation store for read access and
// subscription by views.
func (c *Client) Conversations() *conversation.Store {
	return c.conversations
}

// Messages returns the message store for read access by views.
func (c *Client) Messages() *message.Store {
	return c.messages
}

// requireSession resolves the current session, failing uniformly with
// ErrUnauthenticated when none is available.
func (c *Client) requireSession() (Session, error) {
	sess, err := c.session.Session()
	if err != nil || sess.Token == "" {
		return Session{}, ErrUnauthenticated
	}
	return sess, nil
}

// notify forwards an outcome to the configured notifier, if any.
func (c *Client) notify(outcome Outcome) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Notify(outcome)
	}
}

// OpenConversation marks a conversation as the foreground one: it is marked
// read immediately and incoming messages for it stop incrementing the unread
// count while it stays open.
func (c *Client) OpenConversation(conversationID string) error {
	if _, err := c.conversations.Get(conversationID); err != nil {
		return err
	}

	c.foregroundMu.Lock()
	c.foreground = conversationID
	c.foregroundMu.Unlock()

	return c.conversations.MarkRead(conversationID)
}

// CloseConversation clears the foreground conversation.
func (c *Client) CloseConversation() {
	c.foregroundMu.Lock()
	c.foreground = ""
	c.foregroundMu.Unlock()
}

// ForegroundConversation returns the id of the conversation currently open
// in the foreground, or the empty string.
func (c *Client) ForegroundConversation() string {
	c.foregroundMu.Lock()
	defer c.foregroundMu.Unlock()
	return c.foreground
}
