package inboxcore

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Skbonde05/inboxcore/friendship"
)

// friendKey is the in-flight serialization key for friendship actions
// toward one user.
func friendKey(otherID string) string {
	return "friend:" + otherID
}

// remoteFriendCall is one of the remote friendship mutations.
type remoteFriendCall func(ctx context.Context, userID, token string) error

// friendAction runs one friendship transition end to end: reserve the
// per-user key, validate the transition locally, perform the remote call,
// and apply the state machine transition only on remote success. On any
// failure the in-memory status is left unchanged.
func (c *Client) friendAction(ctx context.Context, otherID string, kind opKind, call remoteFriendCall, apply func(string) error, outcome OutcomeKind, validFrom ...friendship.Status) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}

	release, err := c.inflight.begin(ctx, friendKey(otherID), kind)
	if err != nil {
		return err
	}
	defer release()

	current := c.friendships.Status(otherID)
	valid := false
	for _, v := range validFrom {
		if current == v {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: current status %s", friendship.ErrInvalidTransition, current)
	}

	if err := call(ctx, otherID, sess.Token); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "friendAction",
			"other_id": otherID,
			"outcome":  outcome.String(),
			"error":    err,
		}).Warn("Remote friendship call failed")
		return err
	}

	if err := apply(otherID); err != nil {
		return err
	}

	c.notify(Outcome{Kind: outcome, Detail: otherID})
	return nil
}

// SendFriendRequest sends a friend request to the given user. Valid only
// while no relationship exists; serialized per other-user id.
func (c *Client) SendFriendRequest(ctx context.Context, otherID string) error {
	return c.friendAction(ctx, otherID, opFriendSend,
		c.remote.SendFriendRequest, c.friendships.ApplySendRequest,
		OutcomeFriendRequestSent, friendship.StatusNone)
}

// CancelFriendRequest withdraws an outgoing friend request. A cancel issued
// while the send is still in flight coalesces: it waits for the send's
// resolution and then issues the cancel.
func (c *Client) CancelFriendRequest(ctx context.Context, otherID string) error {
	return c.friendAction(ctx, otherID, opFriendCancel,
		c.remote.CancelFriendRequest, c.friendships.ApplyCancelRequest,
		OutcomeFriendRequestCancelled, friendship.StatusPendingSent)
}

// AcceptFriendRequest accepts a received friend request.
func (c *Client) AcceptFriendRequest(ctx context.Context, otherID string) error {
	return c.friendAction(ctx, otherID, opFriendAccept,
		c.remote.AcceptFriendRequest, c.friendships.ApplyAcceptRequest,
		OutcomeFriendRequestAccepted, friendship.StatusPendingReceived)
}

// IgnoreFriendRequest ignores a received friend request. There is no
// transition back out of the ignored state from this side.
func (c *Client) IgnoreFriendRequest(ctx context.Context, otherID string) error {
	return c.friendAction(ctx, otherID, opFriendIgnore,
		c.remote.IgnoreFriendRequest, c.friendships.ApplyIgnoreRequest,
		OutcomeFriendRequestIgnored, friendship.StatusPendingReceived)
}

// HandleFriendRequestReceived records a friend request observed through a
// sync pull. This path originates remotely, so no remote call is issued.
func (c *Client) HandleFriendRequestReceived(otherID string) error {
	return c.friendships.ApplyRequestReceived(otherID)
}
