package conversation

import (
	"errors"
	"iter"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Skbonde05/inboxcore/message"
)

// ErrNotFound indicates the referenced conversation id is not present,
// typically because a list refresh removed it.
var ErrNotFound = errors.New("conversation not found")

// ErrPendingParticipation indicates the local user has not accepted their
// membership in the conversation yet, so sending into it is refused.
var ErrPendingParticipation = errors.New("participation in conversation is pending")

// Partition is the result of List: accepted and pending conversations as
// lazy, restartable ordered sequences.
type Partition struct {
	Accepted iter.Seq[Conversation]
	Pending  iter.Seq[Conversation]
}

// Store owns the conversation collection visible to the user.
type Store struct {
	conversations map[string]*Conversation
	subscribers   map[int]func()
	nextSub       int
	mu            sync.RWMutex
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		subscribers:   make(map[int]func()),
	}
}

// Subscribe registers a change listener and returns its cancel function.
// Listeners are invoked after the triggering mutation has fully applied and
// the store's lock is released, so they may call back into the store.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// notify invokes every subscriber. Callers must not hold the lock.
func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Get returns a copy of the conversation with the given id.
func (s *Store) Get(id string) (Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[id]
	if !ok {
		return Conversation{}, ErrNotFound
	}
	return *c, nil
}

// Upsert merges a remote conversation record into the store. Every field is
// last-write-wins except UnreadCount, which stays locally owned for known
// conversations so a refresh racing with MarkRead cannot resurrect a stale
// count.
func (s *Store) Upsert(conv Conversation) {
	s.mu.Lock()
	existing, known := s.conversations[conv.ID]
	if known {
		conv.UnreadCount = existing.UnreadCount
	}
	c := conv
	s.conversations[conv.ID] = &c
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":        "Upsert",
		"conversation_id": conv.ID,
		"status":          conv.Status.String(),
		"known":           known,
	}).Debug("Conversation upserted")

	s.notify()
}

// RecordIncomingMessage appends an incoming message as the conversation's
// denormalized last message and bumps the unread count, unless the
// conversation is the one currently open in the foreground.
func (s *Store) RecordIncomingMessage(id string, msg message.Message, foregroundOpen bool) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	m := msg
	c.LastMessage = &m
	if !foregroundOpen {
		c.UnreadCount++
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// SetLastMessage updates the denormalized last message without touching the
// unread count. Used for the local user's own confirmed sends.
func (s *Store) SetLastMessage(id string, msg message.Message) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	m := msg
	c.LastMessage = &m
	s.mu.Unlock()

	s.notify()
	return nil
}

// MarkRead resets the conversation's unread count to zero. Idempotent; a
// second call is a no-op and does not notify.
func (s *Store) MarkRead(id string) error {
	s.mu.Lock()
	c, ok := s.conversations[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	changed := c.UnreadCount != 0
	c.UnreadCount = 0
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return nil
}

// PendingCount returns the number of pending conversations, for badge
// display.
func (s *Store) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.conversations {
		if c.Status == StatusPending {
			n++
		}
	}
	return n
}

// UnreadTotal returns the sum of unread counts across accepted
// conversations.
func (s *Store) UnreadTotal() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, c := range s.conversations {
		if c.Status == StatusAccepted {
			n += c.UnreadCount
		}
	}
	return n
}

// sorted returns copies of all conversations in inbox order: most recent
// last message first; conversations without a last message after all that
// have one, ordered by creation.
func (s *Store) sorted() []Conversation {
	s.mu.RLock()
	out := make([]Conversation, 0, len(s.conversations))
	for _, c := range s.conversations {
		out = append(out, *c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.LastMessage != nil && b.LastMessage != nil:
			if !a.LastMessage.CreatedAt.Equal(b.LastMessage.CreatedAt) {
				return a.LastMessage.CreatedAt.After(b.LastMessage.CreatedAt)
			}
			return a.ID < b.ID
		case a.LastMessage != nil:
			return true
		case b.LastMessage != nil:
			return false
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		}
	})
	return out
}

// List partitions the conversations into accepted and pending subsets, each
// as a lazy, restartable sequence in inbox order. Each restart observes the
// state current at that moment.
func (s *Store) List() Partition {
	filtered := func(status Status) iter.Seq[Conversation] {
		return func(yield func(Conversation) bool) {
			for _, c := range s.sorted() {
				if c.Status != status {
					continue
				}
				if !yield(c) {
					return
				}
			}
		}
	}
	return Partition{
		Accepted: filtered(StatusAccepted),
		Pending:  filtered(StatusPending),
	}
}

// Snapshot returns copies of all conversations, for persistence.
func (s *Store) Snapshot() []Conversation {
	return s.sorted()
}

// Restore replaces the store's contents with a previously taken snapshot.
func (s *Store) Restore(conversations []Conversation) {
	s.mu.Lock()
	s.conversations = make(map[string]*Conversation, len(conversations))
	for _, conv := range conversations {
		c := conv
		s.conversations[c.ID] = &c
	}
	s.mu.Unlock()

	s.notify()
}
