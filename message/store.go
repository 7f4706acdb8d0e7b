package message

import (
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// defaultTimeProvider is the package-level default time provider.
var defaultTimeProvider TimeProvider = DefaultTimeProvider{}

// Page is one page of remotely loaded history.
type Page struct {
	Messages []Message
	// NextCursor addresses the page of messages older than this one.
	// Empty means no older history remains.
	NextCursor string
}

// entry pairs a message with its insertion counter, which breaks ordering
// ties between messages with identical timestamps.
type entry struct {
	msg   Message
	order uint64
}

// log is the per-conversation state.
type log struct {
	entries    []entry
	index      map[string]int // message id -> position in entries
	seq        uint64
	nextOrder  uint64
	nextCursor string
	cursorSet  bool
}

// Store owns one ordered message log per conversation id.
//
// Within a conversation, order is CreatedAt ascending with ties broken by
// insertion order. Optimistic messages sort after confirmed messages with an
// earlier-or-equal timestamp, so the timeline does not jump when the real
// timestamp arrives.
type Store struct {
	logs map[string]*log
	byID map[string]string // message id -> conversation id
	tp   TimeProvider
	mu   sync.RWMutex
}

// NewStore creates an empty message store.
func NewStore() *Store {
	return NewStoreWithTimeProvider(defaultTimeProvider)
}

// NewStoreWithTimeProvider creates a message store with an injected clock.
func NewStoreWithTimeProvider(tp TimeProvider) *Store {
	if tp == nil {
		tp = defaultTimeProvider
	}
	return &Store{
		logs: make(map[string]*log),
		byID: make(map[string]string),
		tp:   tp,
	}
}

// less reports whether a sorts before b. Confirmed messages win ties so a
// placeholder never appears above the confirmed message it races with.
func less(a, b entry) bool {
	if !a.msg.CreatedAt.Equal(b.msg.CreatedAt) {
		return a.msg.CreatedAt.Before(b.msg.CreatedAt)
	}
	if a.msg.Local != b.msg.Local {
		return !a.msg.Local
	}
	return a.order < b.order
}

// getLog returns the log for a conversation, creating it on first use.
// Callers hold the write lock.
func (s *Store) getLog(conversationID string) *log {
	l, ok := s.logs[conversationID]
	if !ok {
		l = &log{index: make(map[string]int)}
		s.logs[conversationID] = l
	}
	return l
}

// insert places a message into the log preserving order. Callers hold the
// write lock.
func (s *Store) insert(conversationID string, l *log, msg Message) {
	e := entry{msg: msg, order: l.nextOrder}
	l.nextOrder++

	pos := sort.Search(len(l.entries), func(i int) bool {
		return less(e, l.entries[i])
	})
	l.entries = append(l.entries, entry{})
	copy(l.entries[pos+1:], l.entries[pos:])
	l.entries[pos] = e

	for i := pos; i < len(l.entries); i++ {
		l.index[l.entries[i].msg.ID] = i
	}
	s.byID[msg.ID] = conversationID
}

// remove deletes a message from the log by id. Callers hold the write lock.
func (s *Store) remove(l *log, msgID string) bool {
	pos, ok := l.index[msgID]
	if !ok {
		return false
	}
	l.entries = append(l.entries[:pos], l.entries[pos+1:]...)
	delete(l.index, msgID)
	delete(s.byID, msgID)
	for i := pos; i < len(l.entries); i++ {
		l.index[l.entries[i].msg.ID] = i
	}
	return true
}

// Seq returns the conversation's current sequence counter. Loads capture it
// before issuing the remote call and pass it back to Merge, so a page that
// raced with a local mutation is recognized as stale.
func (s *Store) Seq(conversationID string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.logs[conversationID]; ok {
		return l.seq
	}
	return 0
}

// Merge folds a remotely loaded page into the conversation's log,
// deduplicating by message id. The page is applied only if seq still matches
// the conversation's sequence counter; a stale page is discarded entirely and
// Merge returns false.
func (s *Store) Merge(conversationID string, page Page, seq uint64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.getLog(conversationID)
	if l.seq != seq {
		logrus.WithFields(logrus.Fields{
			"function":        "Merge",
			"conversation_id": conversationID,
			"page_seq":        seq,
			"current_seq":     l.seq,
		}).Debug("Discarding stale message page")
		return 0, false
	}

	added := 0
	for _, msg := range page.Messages {
		if _, exists := l.index[msg.ID]; exists {
			continue
		}
		msg.ConversationID = conversationID
		msg.Local = false
		s.insert(conversationID, l, msg)
		added++
	}
	l.nextCursor = page.NextCursor
	l.cursorSet = true

	return added, true
}

// Append inserts a single confirmed message, typically one pushed by the
// server. Duplicated ids are ignored; the call reports whether the message
// was added.
func (s *Store) Append(conversationID string, msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.getLog(conversationID)
	if _, exists := l.index[msg.ID]; exists {
		return false
	}
	msg.ConversationID = conversationID
	msg.Local = false
	s.insert(conversationID, l, msg)
	l.seq++
	return true
}

// InsertOptimistic adds a local placeholder with a generated temporary id,
// StatusSending, and the current timestamp. The placeholder is replaced by
// ConfirmOptimistic or rolled back by RemoveOptimistic.
func (s *Store) InsertOptimistic(conversationID, senderID, content string) Message {
	msg := Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      s.tp.Now(),
		Status:         StatusSending,
		Local:          true,
	}

	s.mu.Lock()
	l := s.getLog(conversationID)
	s.insert(conversationID, l, msg)
	l.seq++
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":        "InsertOptimistic",
		"conversation_id": conversationID,
		"temp_id":         msg.ID,
	}).Debug("Inserted optimistic message")

	return msg
}

// ConfirmOptimistic replaces the placeholder identified by tempID with the
// server-confirmed message. The confirmed message may belong to a different
// conversation id than the placeholder (first send addressed by receiver id);
// in that case the placeholder's log is drained and the confirmed message
// lands in its real conversation. The replacement never duplicates: if the
// confirmed id is already present (raced with a merge), the placeholder is
// simply dropped.
func (s *Store) ConfirmOptimistic(tempConversationID, tempID string, confirmed Message) {
	confirmed.Local = false
	if confirmed.Status == StatusSending {
		confirmed.Status = StatusSent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.logs[tempConversationID]; ok {
		s.remove(l, tempID)
		l.seq++
	}

	target := s.getLog(confirmed.ConversationID)
	if _, exists := target.index[confirmed.ID]; !exists {
		s.insert(confirmed.ConversationID, target, confirmed)
	}
	target.seq++

	logrus.WithFields(logrus.Fields{
		"function":        "ConfirmOptimistic",
		"conversation_id": confirmed.ConversationID,
		"temp_id":         tempID,
		"message_id":      confirmed.ID,
	}).Debug("Optimistic message confirmed")
}

// RemoveOptimistic rolls back a placeholder after a failed send. The log
// length returns to its pre-send value; no partial state is left behind.
func (s *Store) RemoveOptimistic(conversationID, tempID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[conversationID]
	if !ok {
		return
	}
	if s.remove(l, tempID) {
		l.seq++
		logrus.WithFields(logrus.Fields{
			"function":        "RemoveOptimistic",
			"conversation_id": conversationID,
			"temp_id":         tempID,
		}).Debug("Rolled back optimistic message")
	}
}

// ApplyStatusUpdate advances a message's delivery status. Backward
// transitions indicate a stale, out-of-order update and are dropped
// silently; the call reports whether the update was applied.
func (s *Store) ApplyStatusUpdate(messageID string, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	convID, ok := s.byID[messageID]
	if !ok {
		return false
	}
	l := s.logs[convID]
	pos := l.index[messageID]
	if status <= l.entries[pos].msg.Status {
		return false
	}
	l.entries[pos].msg.Status = status
	l.seq++
	return true
}

// Messages returns a lazy, restartable sequence over the conversation's log
// in timeline order. Each restart observes the state current at that moment.
func (s *Store) Messages(conversationID string) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		s.mu.RLock()
		snapshot := make([]Message, 0)
		if l, ok := s.logs[conversationID]; ok {
			for _, e := range l.entries {
				snapshot = append(snapshot, e.msg)
			}
		}
		s.mu.RUnlock()

		for _, msg := range snapshot {
			if !yield(msg) {
				return
			}
		}
	}
}

// Len returns the number of messages held for a conversation.
func (s *Store) Len(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.logs[conversationID]; ok {
		return len(l.entries)
	}
	return 0
}

// NextCursor returns the cursor for the page older than what is loaded, and
// whether any history load has completed for this conversation yet.
func (s *Store) NextCursor(conversationID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if l, ok := s.logs[conversationID]; ok {
		return l.nextCursor, l.cursorSet
	}
	return "", false
}
