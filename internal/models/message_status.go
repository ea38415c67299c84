package models

import (
	"time"
)

// DeliveryState is the per-recipient delivery state of one message. States
// only move forward: sent < delivered < read.
type DeliveryState string

const (
	StateSent      DeliveryState = "sent"
	StateDelivered DeliveryState = "delivered"
	StateRead      DeliveryState = "read"
)

// Rank orders states for the monotonic merge. Unknown states rank lowest so
// they can never overwrite a stored one.
func (s DeliveryState) Rank() int {
	switch s {
	case StateRead:
		return 2
	case StateDelivered:
		return 1
	case StateSent:
		return 0
	}
	return -1
}

func (s DeliveryState) Valid() bool {
	return s.Rank() >= 0
}

// MessageStatus holds one row per (message, user). Writers race from
// different connections; the repository merges with rank comparison so the
// state never regresses.
type MessageStatus struct {
	MessageID uint          `gorm:"primaryKey" json:"message_id"`
	UserID    uint          `gorm:"primaryKey" json:"user_id"`
	State     DeliveryState `gorm:"type:varchar(10);not null;default:'sent'" json:"state"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
