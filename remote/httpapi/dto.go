package httpapi

import (
	"fmt"
	"time"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/message"
	"github.com/Skbonde05/inboxcore/user"
)

// userDTO is the wire form of a user record.
type userDTO struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

func (d userDTO) toUser() user.User {
	return user.User{
		ID:          d.ID,
		Username:    d.Username,
		DisplayName: d.DisplayName,
	}
}

// messageDTO is the wire form of a message. Depending on the endpoint the
// sender arrives as a flat senderId or an embedded user object.
type messageDTO struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Sender         *userDTO  `json:"sender"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	Status         string    `json:"status"`
}

func (d messageDTO) toMessage() (message.Message, error) {
	senderID := d.SenderID
	if senderID == "" && d.Sender != nil {
		senderID = d.Sender.ID
	}

	status := message.StatusSent
	if d.Status != "" {
		parsed, err := message.ParseStatus(d.Status)
		if err != nil {
			return message.Message{}, fmt.Errorf("message %s: %w", d.ID, err)
		}
		status = parsed
	}

	return message.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		SenderID:       senderID,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
		Status:         status,
	}, nil
}

// participantDTO is the wire form of a conversation member.
type participantDTO struct {
	Status string  `json:"status"`
	User   userDTO `json:"user"`
}

// conversationDTO is the wire form of the conversation record itself.
type conversationDTO struct {
	ID           string           `json:"id"`
	Type         string           `json:"type"`
	Name         string           `json:"name"`
	Participants []participantDTO `json:"participants"`
	LastMessage  *messageDTO      `json:"lastMessage"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// inboxItemDTO is one entry of the conversation list: the conversation plus
// the local user's membership status and unread count.
type inboxItemDTO struct {
	ID           string          `json:"id"`
	Conversation conversationDTO `json:"conversation"`
	Status       string          `json:"status"`
	UnreadCount  int             `json:"unreadCount"`
}

func (d inboxItemDTO) toConversation() (conversation.Conversation, error) {
	typ, err := conversation.ParseType(d.Conversation.Type)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("conversation %s: %w", d.Conversation.ID, err)
	}
	status, err := conversation.ParseStatus(d.Status)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("conversation %s: %w", d.Conversation.ID, err)
	}

	conv := conversation.Conversation{
		ID:          d.Conversation.ID,
		Type:        typ,
		Name:        d.Conversation.Name,
		Status:      status,
		UnreadCount: d.UnreadCount,
		CreatedAt:   d.Conversation.CreatedAt,
	}

	for _, p := range d.Conversation.Participants {
		ps, err := conversation.ParseParticipationStatus(p.Status)
		if err != nil {
			return conversation.Conversation{}, fmt.Errorf("conversation %s: %w", d.Conversation.ID, err)
		}
		conv.Participants = append(conv.Participants, conversation.Participant{
			User:   p.User.toUser(),
			Status: ps,
		})
	}

	if d.Conversation.LastMessage != nil {
		msg, err := d.Conversation.LastMessage.toMessage()
		if err != nil {
			return conversation.Conversation{}, err
		}
		conv.LastMessage = &msg
	}

	return conv, nil
}
