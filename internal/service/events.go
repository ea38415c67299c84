package service

import "github.com/YasiruRavidith/Chat-Room/internal/models"

// Outbound event payloads published on broker topics and written to
// websocket clients as-is.

// ChatMessageEvent carries a committed message to its group's topic.
type ChatMessageEvent struct {
	Type    string                 `json:"type"`
	Message models.MessageResponse `json:"message"`
}

func NewChatMessageEvent(message *models.Message) ChatMessageEvent {
	return ChatMessageEvent{Type: "chat_message", Message: message.ToResponse()}
}

// NewMessageNotification pings a member's personal topic so clients can
// bump unread counters for groups they are not actively viewing.
type NewMessageNotification struct {
	Type      string `json:"type"`
	GroupID   uint   `json:"group_id"`
	MessageID uint   `json:"message_id"`
	SenderID  uint   `json:"sender_id"`
	Preview   string `json:"preview"`
}

// MessageStatusEvent reports a delivery-state transition to the group topic.
// Count is set on bulk read receipts only.
type MessageStatusEvent struct {
	Type      string               `json:"type"`
	GroupID   uint                 `json:"group_id"`
	MessageID uint                 `json:"message_id,omitempty"`
	UserID    uint                 `json:"user_id"`
	State     models.DeliveryState `json:"state"`
	Count     int64                `json:"count,omitempty"`
}

// TypingEvent is ephemeral and never persisted.
type TypingEvent struct {
	Type     string `json:"type"`
	GroupID  uint   `json:"group_id"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Typing   bool   `json:"typing"`
}

// MessageDeletedEvent tells group members to blank out a message in place.
type MessageDeletedEvent struct {
	Type      string `json:"type"`
	GroupID   uint   `json:"group_id"`
	MessageID uint   `json:"message_id"`
	UserID    uint   `json:"user_id"`
}

// UserStatusEvent announces an online/offline transition to every group
// the user belongs to.
type UserStatusEvent struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
	LastSeen string `json:"last_seen,omitempty"`
}

const previewLimit = 120

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit])
}
