package inboxcore

import (
	"encoding/json"
	"time"

	"github.com/Skbonde05/inboxcore/conversation"
	"github.com/Skbonde05/inboxcore/friendship"
)

// SaveData is the serializable snapshot of the stores, used to warm-start
// the UI on the next popup open. Message logs are deliberately excluded:
// offline message queuing across restarts is out of scope, and logs are
// re-fetched per conversation on demand.
type SaveData struct {
	Friendships   map[string]friendship.Status
	Conversations []conversation.Conversation
	Timestamp     int64
}

// Serialize converts SaveData to a byte slice using JSON.
func (s *SaveData) Serialize() []byte {
	data, _ := json.Marshal(s)
	return data
}

// LoadSaveData deserializes a byte slice into SaveData.
func LoadSaveData(data []byte) (*SaveData, error) {
	var saveData SaveData
	if err := json.Unmarshal(data, &saveData); err != nil {
		return nil, err
	}
	return &saveData, nil
}

// GetSavedata returns the current store state as a byte slice for
// persistence.
func (c *Client) GetSavedata() []byte {
	saveData := &SaveData{
		Friendships:   c.friendships.Snapshot(),
		Conversations: c.conversations.Snapshot(),
		Timestamp:     time.Now().Unix(),
	}
	return saveData.Serialize()
}

// loadFromSavedata restores the stores from a snapshot taken by
// GetSavedata.
func (c *Client) loadFromSavedata(data []byte) error {
	saveData, err := LoadSaveData(data)
	if err != nil {
		return err
	}
	c.friendships.Restore(saveData.Friendships)
	c.conversations.Restore(saveData.Conversations)
	return nil
}
