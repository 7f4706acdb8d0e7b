package friendship

import (
	"errors"
	"sync"
	"testing"
)

func TestStore_DefaultStatus(t *testing.T) {
	s := NewStore()

	if got := s.Status("never-seen"); got != StatusNone {
		t.Errorf("Expected StatusNone for unknown id, got %v", got)
	}
}

func TestStore_Transitions(t *testing.T) {
	testCases := []struct {
		name      string
		setup     func(s *Store)
		apply     func(s *Store) error
		expect    Status
		expectErr bool
	}{
		{
			name:   "send request from none",
			setup:  func(s *Store) {},
			apply:  func(s *Store) error { return s.ApplySendRequest("bob") },
			expect: StatusPendingSent,
		},
		{
			name: "send request while pending sent",
			setup: func(s *Store) {
				_ = s.ApplySendRequest("bob")
			},
			apply:     func(s *Store) error { return s.ApplySendRequest("bob") },
			expect:    StatusPendingSent,
			expectErr: true,
		},
		{
			name: "send request while friends",
			setup: func(s *Store) {
				s.ApplyRemote("bob", StatusFriends)
			},
			apply:     func(s *Store) error { return s.ApplySendRequest("bob") },
			expect:    StatusFriends,
			expectErr: true,
		},
		{
			name: "cancel request from pending sent",
			setup: func(s *Store) {
				_ = s.ApplySendRequest("bob")
			},
			apply:  func(s *Store) error { return s.ApplyCancelRequest("bob") },
			expect: StatusNone,
		},
		{
			name:      "cancel request from none",
			setup:     func(s *Store) {},
			apply:     func(s *Store) error { return s.ApplyCancelRequest("bob") },
			expect:    StatusNone,
			expectErr: true,
		},
		{
			name: "accept request from pending received",
			setup: func(s *Store) {
				_ = s.ApplyRequestReceived("bob")
			},
			apply:  func(s *Store) error { return s.ApplyAcceptRequest("bob") },
			expect: StatusFriends,
		},
		{
			name:      "accept request from none",
			setup:     func(s *Store) {},
			apply:     func(s *Store) error { return s.ApplyAcceptRequest("bob") },
			expect:    StatusNone,
			expectErr: true,
		},
		{
			name: "ignore request from pending received",
			setup: func(s *Store) {
				_ = s.ApplyRequestReceived("bob")
			},
			apply:  func(s *Store) error { return s.ApplyIgnoreRequest("bob") },
			expect: StatusIgnored,
		},
		{
			name:   "request received from none",
			setup:  func(s *Store) {},
			apply:  func(s *Store) error { return s.ApplyRequestReceived("bob") },
			expect: StatusPendingReceived,
		},
		{
			name: "request received while friends",
			setup: func(s *Store) {
				s.ApplyRemote("bob", StatusFriends)
			},
			apply:     func(s *Store) error { return s.ApplyRequestReceived("bob") },
			expect:    StatusFriends,
			expectErr: true,
		},
		{
			name: "ignored is terminal locally",
			setup: func(s *Store) {
				_ = s.ApplyRequestReceived("bob")
				_ = s.ApplyIgnoreRequest("bob")
			},
			apply:     func(s *Store) error { return s.ApplySendRequest("bob") },
			expect:    StatusIgnored,
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore()
			tc.setup(s)

			err := tc.apply(s)
			if tc.expectErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Expected ErrInvalidTransition, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}

			if got := s.Status("bob"); got != tc.expect {
				t.Errorf("Expected status %v, got %v", tc.expect, got)
			}
		})
	}
}

func TestStore_SendThenCancelReturnsToNone(t *testing.T) {
	s := NewStore()

	if err := s.ApplySendRequest("bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.ApplyCancelRequest("bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := s.Status("bob"); got != StatusNone {
		t.Errorf("Expected StatusNone after send+cancel, got %v", got)
	}

	// The id must also be gone from snapshots, not kept as an explicit none.
	if _, ok := s.Snapshot()["bob"]; ok {
		t.Error("Expected snapshot to omit default statuses")
	}
}

func TestStore_PendingDirectionsAreExclusive(t *testing.T) {
	// For one ordered pair, at most one of pending_sent/pending_received
	// can be observed: each excludes the transition into the other.
	s := NewStore()

	if err := s.ApplySendRequest("bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.ApplyRequestReceived("bob"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}

	s = NewStore()
	if err := s.ApplyRequestReceived("bob"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.ApplySendRequest("bob"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestStore_ApplyRemoteOverwrites(t *testing.T) {
	s := NewStore()
	_ = s.ApplyRequestReceived("bob")
	_ = s.ApplyIgnoreRequest("bob")

	// Sync pulls are last-write-wins even out of ignored.
	s.ApplyRemote("bob", StatusFriends)
	if got := s.Status("bob"); got != StatusFriends {
		t.Errorf("Expected StatusFriends, got %v", got)
	}

	s.ApplyRemote("bob", StatusNone)
	if got := s.Status("bob"); got != StatusNone {
		t.Errorf("Expected StatusNone, got %v", got)
	}
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := NewStore()
	_ = s.ApplySendRequest("bob")
	s.ApplyRemote("carol", StatusFriends)

	restored := NewStore()
	restored.Restore(s.Snapshot())

	if got := restored.Status("bob"); got != StatusPendingSent {
		t.Errorf("Expected StatusPendingSent, got %v", got)
	}
	if got := restored.Status("carol"); got != StatusFriends {
		t.Errorf("Expected StatusFriends, got %v", got)
	}
}

func TestStore_ConcurrentQueries(t *testing.T) {
	s := NewStore()
	_ = s.ApplySendRequest("bob")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := s.Status("bob"); got != StatusPendingSent {
					t.Errorf("Expected StatusPendingSent, got %v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseStatus_RoundTrip(t *testing.T) {
	for _, status := range []Status{StatusNone, StatusPendingSent, StatusPendingReceived, StatusFriends, StatusIgnored} {
		parsed, err := ParseStatus(status.String())
		if err != nil {
			t.Fatalf("Unexpected error for %v: %v", status, err)
		}
		if parsed != status {
			t.Errorf("Expected %v, got %v", status, parsed)
		}
	}

	if _, err := ParseStatus("blocked"); err == nil {
		t.Error("Expected error for unknown status string")
	}
}
