// Package friendship implements the relationship state machine between the
// local user and other users.
//
// Each other-user id carries exactly one Status at a time. All transitions
// are driven by a successful remote acknowledgment; the Store never applies a
// transition optimistically, because incorrect relationship state has a much
// higher blast radius than an unconfirmed message.
//
// Example:
//
//	s := friendship.NewStore()
//	if err := s.ApplySendRequest(bobID); err != nil {
//	    log.Fatal(err)
//	}
//	s.Status(bobID) // friendship.StatusPendingSent
package friendship
