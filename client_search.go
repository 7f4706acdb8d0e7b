package inboxcore

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/user"
)

// SearchResult pairs a discovered user with the current friendship status
// toward them.
type SearchResult struct {
	User   user.User
	Status friendship.Status
}

// SearchUsers queries the remote directory and resolves the friendship
// status for every result with a bounded concurrent fan-out. Nothing is
// published until all statuses resolved: the results and the state machine
// update together at the join point, so no partially-applied intermediate
// state is observable. A cancelled context discards the eventual result.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]SearchResult, error) {
	sess, err := c.requireSession()
	if err != nil {
		return nil, err
	}

	users, err := c.remote.SearchUsers(ctx, query, sess.Token)
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.SearchConcurrency)
	for i, u := range users {
		g.Go(func() error {
			status, err := c.remote.GetFriendshipStatus(gctx, u.ID, sess.Token)
			if err != nil {
				return err
			}
			results[i] = SearchResult{User: u, Status: status}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	for _, r := range results {
		c.friendships.ApplyRemote(r.User.ID, r.Status)
	}

	logrus.WithFields(logrus.Fields{
		"function": "SearchUsers",
		"query":    query,
		"results":  len(results),
	}).Debug("User search completed")

	return results, nil
}

// RefreshFriendshipStatus re-fetches the status toward one user and folds it
// into the state machine, last-write-wins.
func (c *Client) RefreshFriendshipStatus(ctx context.Context, otherID string) (friendship.Status, error) {
	sess, err := c.requireSession()
	if err != nil {
		return friendship.StatusNone, err
	}

	status, err := c.remote.GetFriendshipStatus(ctx, otherID, sess.Token)
	if err != nil {
		return friendship.StatusNone, err
	}
	if ctx.Err() != nil {
		return friendship.StatusNone, ctx.Err()
	}

	c.friendships.ApplyRemote(otherID, status)
	return status, nil
}
