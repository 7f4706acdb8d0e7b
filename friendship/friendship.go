package friendship

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Status represents the relationship between the local user and another
// user, keyed by the other user's id from the local user's perspective.
type Status uint8

const (
	// StatusNone means no relationship exists. Unknown ids answer
	// StatusNone; it is the default, not an error.
	StatusNone Status = iota
	// StatusPendingSent means the local user sent a request that the
	// other user has not acted on yet.
	StatusPendingSent
	// StatusPendingReceived means the other user sent a request that the
	// local user has not acted on yet.
	StatusPendingReceived
	// StatusFriends means both sides confirmed the relationship.
	StatusFriends
	// StatusIgnored means the local user ignored a received request.
	// There is no local transition out of StatusIgnored; only a remote
	// sync pull may overwrite it.
	StatusIgnored
)

// String returns the wire representation of the status.
func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusPendingSent:
		return "pending_sent"
	case StatusPendingReceived:
		return "pending_received"
	case StatusFriends:
		return "friends"
	case StatusIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ParseStatus converts a wire status string into a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "none":
		return StatusNone, nil
	case "pending_sent":
		return StatusPendingSent, nil
	case "pending_received":
		return StatusPendingReceived, nil
	case "friends":
		return StatusFriends, nil
	case "ignored":
		return StatusIgnored, nil
	default:
		return StatusNone, fmt.Errorf("unknown friendship status %q", s)
	}
}

// ErrInvalidTransition indicates the requested change is impossible from the
// current status. It is returned as a value, never panicked, and callers are
// expected to log it rather than retry.
var ErrInvalidTransition = errors.New("invalid friendship transition")

// Store tracks one Status per other-user id.
//
// Transitions are applied by the sync layer only after the corresponding
// remote call succeeded, so the Store itself holds no in-flight state.
type Store struct {
	statuses map[string]Status
	mu       sync.RWMutex
}

// NewStore creates an empty friendship store.
func NewStore() *Store {
	return &Store{
		statuses: make(map[string]Status),
	}
}

// Status returns the current status for the given user id. Ids never
// observed answer StatusNone.
func (s *Store) Status(otherID string) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.statuses[otherID]
}

// CanSendRequest reports whether a friend request to the given user would be
// a valid transition right now.
func (s *Store) CanSendRequest(otherID string) bool {
	return s.Status(otherID) == StatusNone
}

// ApplySendRequest records a successfully sent friend request. Valid only
// from StatusNone.
func (s *Store) ApplySendRequest(otherID string) error {
	return s.transition(otherID, StatusPendingSent, StatusNone)
}

// ApplyCancelRequest records a successfully cancelled outgoing request.
// Valid only from StatusPendingSent.
func (s *Store) ApplyCancelRequest(otherID string) error {
	return s.transition(otherID, StatusNone, StatusPendingSent)
}

// ApplyAcceptRequest records acceptance of a received request. Valid only
// from StatusPendingReceived.
func (s *Store) ApplyAcceptRequest(otherID string) error {
	return s.transition(otherID, StatusFriends, StatusPendingReceived)
}

// ApplyIgnoreRequest records ignoring a received request. Valid only from
// StatusPendingReceived.
func (s *Store) ApplyIgnoreRequest(otherID string) error {
	return s.transition(otherID, StatusIgnored, StatusPendingReceived)
}

// ApplyRequestReceived records a request observed through a sync pull.
// Valid only from StatusNone.
func (s *Store) ApplyRequestReceived(otherID string) error {
	return s.transition(otherID, StatusPendingReceived, StatusNone)
}

// ApplyRemote overwrites the status with a remotely observed value,
// last-write-wins. The remote is the source of truth, so no precondition is
// checked here.
func (s *Store) ApplyRemote(otherID string, status Status) {
	s.mu.Lock()
	old := s.statuses[otherID]
	s.set(otherID, status)
	s.mu.Unlock()

	if old != status {
		logrus.WithFields(logrus.Fields{
			"function":   "ApplyRemote",
			"other_id":   otherID,
			"old_status": old.String(),
			"new_status": status.String(),
		}).Debug("Friendship status updated from remote")
	}
}

// transition moves otherID to the target status if the current status is one
// of the allowed source states.
func (s *Store) transition(otherID string, to Status, from ...Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.statuses[otherID]
	for _, f := range from {
		if current == f {
			s.set(otherID, to)
			logrus.WithFields(logrus.Fields{
				"function":   "transition",
				"other_id":   otherID,
				"old_status": current.String(),
				"new_status": to.String(),
			}).Info("Friendship transition applied")
			return nil
		}
	}

	logrus.WithFields(logrus.Fields{
		"function":       "transition",
		"other_id":       otherID,
		"current_status": current.String(),
		"target_status":  to.String(),
	}).Warn("Rejected invalid friendship transition")

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
}

// set stores a status, removing the entry entirely when it returns to the
// default so Snapshot stays minimal. Callers hold the write lock.
func (s *Store) set(otherID string, status Status) {
	if status == StatusNone {
		delete(s.statuses, otherID)
		return
	}
	s.statuses[otherID] = status
}

// Snapshot returns a copy of every non-default status, for persistence.
func (s *Store) Snapshot() map[string]Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Status, len(s.statuses))
	for id, st := range s.statuses {
		out[id] = st
	}
	return out
}

// Restore replaces the store's contents with a previously taken snapshot.
func (s *Store) Restore(statuses map[string]Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses = make(map[string]Status, len(statuses))
	for id, st := range statuses {
		if st != StatusNone {
			s.statuses[id] = st
		}
	}
}
