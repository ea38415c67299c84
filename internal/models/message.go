package models

import (
	"time"
)

type MessageType string

const (
	TextMessage     MessageType = "text"
	ImageMessage    MessageType = "image"
	FileMessage     MessageType = "file"
	SystemMessage   MessageType = "system"
	DelegateReply   MessageType = "delegate_reply"
)

// Attachment describes a file stored in the object store. The key references
// the object; this core never writes the object itself.
type Attachment struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name,omitempty"`
	Size        int64  `json:"size,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

func (a Attachment) Empty() bool {
	return a.Key == ""
}

// Message is immutable after creation except for the soft-delete flag.
// CreatedAt (with ID as tiebreaker) assigns total order within a group.
type Message struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Client-supplied UUID used for send deduplication.
	ClientID string `gorm:"type:varchar(36);uniqueIndex:idx_client_sender;not null" json:"client_id"`

	GroupID  uint `gorm:"not null;index" json:"group_id"`
	SenderID uint `gorm:"not null;uniqueIndex:idx_client_sender;index" json:"sender_id"`
	Sender   User `gorm:"foreignKey:SenderID" json:"sender"`

	Kind       MessageType `gorm:"type:varchar(20);default:'text'" json:"kind"`
	Content    string      `gorm:"type:text" json:"content"`
	Attachment Attachment  `gorm:"embedded;embeddedPrefix:attachment_" json:"attachment"`

	Deleted   bool       `gorm:"default:false;index" json:"deleted"`
	DeletedOn *time.Time `json:"deleted_on,omitempty"`
}

type MessageResponse struct {
	ID         uint          `json:"id"`
	ClientID   string        `json:"client_id"`
	GroupID    uint          `json:"group_id"`
	SenderID   uint          `json:"sender_id"`
	Sender     UserResponse  `json:"sender"`
	Kind       MessageType   `json:"kind"`
	Content    string        `json:"content"`
	Attachment *Attachment   `json:"attachment,omitempty"`
	Status     DeliveryState `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (m *Message) ToResponse() MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		ClientID:  m.ClientID,
		GroupID:   m.GroupID,
		SenderID:  m.SenderID,
		Sender:    m.Sender.ToResponse(),
		Kind:      m.Kind,
		Content:   m.Content,
		Status:    StateSent,
		CreatedAt: m.CreatedAt,
	}
	if !m.Attachment.Empty() {
		a := m.Attachment
		resp.Attachment = &a
	}
	return resp
}
