package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Skbonde05/inboxcore"
	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// DefaultTimeout bounds a single API request.
const DefaultTimeout = 15 * time.Second

// Client talks to the extension backend. It implements
// inboxcore.RemoteAPI.
type Client struct {
	baseURL string
	http    *http.Client
}

// statically assert the interface.
var _ inboxcore.RemoteAPI = (*Client)(nil)

// NewClient creates an API client for the given base URL. httpClient may be
// nil for a default client with DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// do issues a request and decodes the JSON response into out (when out is
// non-nil). Transport failures map to *inboxcore.NetworkError and a 401 to
// inboxcore.ErrUnauthenticated.
func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &inboxcore.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return inboxcore.ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logrus.WithFields(logrus.Fields{
			"function": "do",
			"op":       op,
			"status":   resp.StatusCode,
		}).Warn("API request rejected")
		return fmt.Errorf("%s failed with status %d", op, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

// SearchUsers queries the user directory.
func (c *Client) SearchUsers(ctx context.Context, query, token string) ([]user.User, error) {
	var resp struct {
		Data []userDTO `json:"data"`
	}
	path := "/api/users/search?query=" + url.QueryEscape(query)
	if err := c.do(ctx, "searchUsers", http.MethodGet, path, token, nil, &resp); err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(resp.Data))
	for _, d := range resp.Data {
		users = append(users, d.toUser())
	}
	return users, nil
}

// GetFriendshipStatus fetches the relationship status toward one user.
func (c *Client) GetFriendshipStatus(ctx context.Context, userID, token string) (friendship.Status, error) {
	var resp struct {
		Status string `json:"status"`
	}
	path := "/api/friends/status/" + url.PathEscape(userID)
	if err := c.do(ctx, "getFriendshipStatus", http.MethodGet, path, token, nil, &resp); err != nil {
		return friendship.StatusNone, err
	}
	return friendship.ParseStatus(resp.Status)
}

// SendFriendRequest sends a friend request.
func (c *Client) SendFriendRequest(ctx context.Context, userID, token string) error {
	path := "/api/friends/requests/" + url.PathEscape(userID)
	return c.do(ctx, "sendFriendRequest", http.MethodPost, path, token, nil, nil)
}

// CancelFriendRequest withdraws an outgoing friend request.
func (c *Client) CancelFriendRequest(ctx context.Context, userID, token string) error {
	path := "/api/friends/requests/" + url.PathEscape(userID)
	return c.do(ctx, "cancelFriendRequest", http.MethodDelete, path, token, nil, nil)
}

// AcceptFriendRequest accepts a received friend request.
func (c *Client) AcceptFriendRequest(ctx context.Context, userID, token string) error {
	path := "/api/friends/requests/" + url.PathEscape(userID) + "/accept"
	return c.do(ctx, "acceptFriendRequest", http.MethodPost, path, token, nil, nil)
}

// IgnoreFriendRequest ignores a received friend request.
func (c *Client) IgnoreFriendRequest(ctx context.Context, userID, token string) error {
	path := "/api/friends/requests/" + url.PathEscape(userID) + "/ignore"
	return c.do(ctx, "ignoreFriendRequest", http.MethodPost, path, token, nil, nil)
}

// SendMessage posts a message, addressed by conversation or receiver id.
// On failure the backend reuses the message field as a string reason, so it
// is decoded lazily.
func (c *Client) SendMessage(ctx context.Context, target inboxcore.SendTarget, content, token string) (inboxcore.SendResult, error) {
	body := struct {
		ConversationID string `json:"conversationId,omitempty"`
		ReceiverID     string `json:"receiverId,omitempty"`
		Content        string `json:"content"`
	}{
		ConversationID: target.ConversationID,
		ReceiverID:     target.ReceiverID,
		Content:        content,
	}

	var resp struct {
		Success        bool            `json:"success"`
		ConversationID string          `json:"conversationId"`
		Message        json.RawMessage `json:"message"`
	}
	if err := c.do(ctx, "sendMessage", http.MethodPost, "/api/messages", token, body, &resp); err != nil {
		return inboxcore.SendResult{}, err
	}

	if !resp.Success {
		var reason string
		_ = json.Unmarshal(resp.Message, &reason)
		if reason == "" {
			reason = "send rejected"
		}
		return inboxcore.SendResult{}, fmt.Errorf("sendMessage failed: %s", reason)
	}

	var dto messageDTO
	if err := json.Unmarshal(resp.Message, &dto); err != nil {
		return inboxcore.SendResult{}, fmt.Errorf("failed to decode sent message: %w", err)
	}
	msg, err := dto.toMessage()
	if err != nil {
		return inboxcore.SendResult{}, err
	}
	return inboxcore.SendResult{
		ConversationID: resp.ConversationID,
		Message:        msg,
	}, nil
}

// ListConversations fetches the inbox.
func (c *Client) ListConversations(ctx context.Context, token string) ([]conversation.Conversation, error) {
	var resp struct {
		Data []inboxItemDTO `json:"data"`
	}
	if err := c.do(ctx, "listConversations", http.MethodGet, "/api/conversations", token, nil, &resp); err != nil {
		return nil, err
	}

	convs := make([]conversation.Conversation, 0, len(resp.Data))
	for _, d := range resp.Data {
		conv, err := d.toConversation()
		if err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// LoadMessages fetches one page of history, older than cursor when set.
func (c *Client) LoadMessages(ctx context.Context, conversationID, cursor, token string) (message.Page, error) {
	path := "/api/conversations/" + url.PathEscape(conversationID) + "/messages"
	if cursor != "" {
		path += "?cursor=" + url.QueryEscape(cursor)
	}

	var resp struct {
		Messages   []messageDTO `json:"messages"`
		NextCursor string       `json:"nextCursor"`
	}
	if err := c.do(ctx, "loadMessages", http.MethodGet, path, token, nil, &resp); err != nil {
		return message.Page{}, err
	}

	page := message.Page{NextCursor: resp.NextCursor}
	for _, d := range resp.Messages {
		msg, err := d.toMessage()
		if err != nil {
			return message.Page{}, err
		}
		page.Messages = append(page.Messages, msg)
	}
	return page, nil
}
