package inboxcore

import (
	"context"
	"errors"
	"iter"

	"github.com/sirupsen/logrus"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// pendingConversationKey is the local log key used for the optimistic
// message of a receiver-addressed send, before the conversation id exists.
func pendingConversationKey(receiverID string) string {
	return "pending:" + receiverID
}

// SendMessage sends a message to an existing conversation or, via a
// receiver-addressed target, to a user no conversation exists with yet. The
// message is inserted optimistically and reconciled against the remote
// acknowledgment: replaced by the confirmed message on success, removed
// entirely on failure. The resolved conversation id is returned so the UI
// can navigate to a newly created conversation.
//
// Sends are serialized per conversation (per receiver for first sends); a
// second send on the same key while one is in flight fails with
// ErrOperationInProgress.
func (c *Client) SendMessage(ctx context.Context, target SendTarget, content string) (string, message.Message, error) {
	if err := target.validate(); err != nil {
		return "", message.Message{}, err
	}
	if content == "" {
		return "", message.Message{}, errors.New("message content cannot be empty")
	}

	sess, err := c.requireSession()
	if err != nil {
		return "", message.Message{}, err
	}

	localConvID := target.ConversationID
	if target.ConversationID != "" {
		conv, err := c.conversations.Get(target.ConversationID)
		if err != nil {
			return "", message.Message{}, err
		}
		if p, ok := conv.Participant(sess.UserID); ok && p.Status == conversation.ParticipationPending {
			return "", message.Message{}, conversation.ErrPendingParticipation
		}
	} else {
		localConvID = pendingConversationKey(target.ReceiverID)
	}

	release, err := c.inflight.begin(ctx, target.key(), opMessageSend)
	if err != nil {
		return "", message.Message{}, err
	}
	defer release()

	tmp := c.messages.InsertOptimistic(localConvID, sess.UserID, content)

	res, err := c.remote.SendMessage(ctx, target, content, sess.Token)
	if err != nil {
		c.messages.RemoveOptimistic(localConvID, tmp.ID)
		c.notify(Outcome{Kind: OutcomeMessageFailed, Detail: localConvID})
		logrus.WithFields(logrus.Fields{
			"function":        "SendMessage",
			"conversation_id": localConvID,
			"temp_id":         tmp.ID,
			"error":           err,
		}).Warn("Message send failed, optimistic message rolled back")
		return "", message.Message{}, err
	}

	confirmed := res.Message
	if confirmed.ConversationID == "" {
		confirmed.ConversationID = res.ConversationID
	}
	c.messages.ConfirmOptimistic(localConvID, tmp.ID, confirmed)

	if _, err := c.conversations.Get(res.ConversationID); errors.Is(err, conversation.ErrNotFound) {
		c.conversations.Upsert(c.synthesizeConversation(sess.UserID, target.ReceiverID, res))
		c.notify(Outcome{Kind: OutcomeConversationCreated, Detail: res.ConversationID})
	}
	if err := c.conversations.SetLastMessage(res.ConversationID, confirmed); err != nil {
		logrus.WithFields(logrus.Fields{
			"function":        "SendMessage",
			"conversation_id": res.ConversationID,
			"error":           err,
		}).Warn("Could not record last message")
	}

	c.notify(Outcome{Kind: OutcomeMessageSent, Detail: res.ConversationID})
	return res.ConversationID, confirmed, nil
}

// synthesizeConversation builds the minimal direct conversation implied by a
// successful first send to a receiver. The next list refresh overwrites it
// with the authoritative record.
func (c *Client) synthesizeConversation(localUserID, receiverID string, res SendResult) conversation.Conversation {
	status := conversation.StatusPending
	participation := conversation.ParticipationPending
	if c.friendships.Status(receiverID) == friendship.StatusFriends {
		status = conversation.StatusAccepted
		participation = conversation.ParticipationAccepted
	}
	return conversation.Conversation{
		ID:   res.ConversationID,
		Type: conversation.TypeDirect,
		Participants: []conversation.Participant{
			{User: user.User{ID: localUserID}, Status: conversation.ParticipationAccepted},
			{User: user.User{ID: receiverID}, Status: participation},
		},
		Status:    status,
		CreatedAt: res.Message.CreatedAt,
	}
}

// RefreshConversations re-fetches the conversation list and folds every
// record into the store. A cancelled context discards the result instead of
// applying it.
func (c *Client) RefreshConversations(ctx context.Context) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}

	convs, err := c.remote.ListConversations(ctx, sess.Token)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, conv := range convs {
		c.conversations.Upsert(conv)
	}

	logrus.WithFields(logrus.Fields{
		"function":      "RefreshConversations",
		"conversations": len(convs),
	}).Debug("Conversation list refreshed")

	return nil
}

// LoadMessages fetches the most recent page of history for a conversation
// and merges it into the log, deduplicating by id. A page that raced with a
// local mutation is discarded by the store's sequence guard; a cancelled
// context discards the result before it is applied.
func (c *Client) LoadMessages(ctx context.Context, conversationID string) error {
	return c.loadPage(ctx, conversationID, "")
}

// LoadOlderMessages fetches the page older than what is currently loaded,
// on demand. It reports false when no older history remains.
func (c *Client) LoadOlderMessages(ctx context.Context, conversationID string) (bool, error) {
	cursor, loaded := c.messages.NextCursor(conversationID)
	if !loaded {
		return true, c.loadPage(ctx, conversationID, "")
	}
	if cursor == "" {
		return false, nil
	}
	return true, c.loadPage(ctx, conversationID, cursor)
}

func (c *Client) loadPage(ctx context.Context, conversationID, cursor string) error {
	sess, err := c.requireSession()
	if err != nil {
		return err
	}

	seq := c.messages.Seq(conversationID)
	page, err := c.remote.LoadMessages(ctx, conversationID, cursor, sess.Token)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	added, applied := c.messages.Merge(conversationID, page, seq)
	logrus.WithFields(logrus.Fields{
		"function":        "loadPage",
		"conversation_id": conversationID,
		"added":           added,
		"applied":         applied,
	}).Debug("Message page processed")

	return nil
}

// History returns the conversation's message log as a lazy, restartable
// sequence in timeline order. Older pages are fetched separately through
// LoadOlderMessages; iteration itself never blocks on the network.
func (c *Client) History(conversationID string) iter.Seq[message.Message] {
	return c.messages.Messages(conversationID)
}

// HandleIncomingMessage folds a server-pushed message into the stores. The
// unread count is not incremented when the message belongs to the
// conversation currently open in the foreground.
func (c *Client) HandleIncomingMessage(msg message.Message) error {
	foreground := c.ForegroundConversation() == msg.ConversationID
	c.messages.Append(msg.ConversationID, msg)
	return c.conversations.RecordIncomingMessage(msg.ConversationID, msg, foreground)
}

// HandleMessageStatusUpdate advances a message's delivery status from a
// server-pushed update. Backward transitions are stale and dropped.
func (c *Client) HandleMessageStatusUpdate(messageID string, status message.Status) {
	c.messages.ApplyStatusUpdate(messageID, status)
}
