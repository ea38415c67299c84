package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultDelegatePrompt is used as the stand-in persona instruction when a
// user enables delegate mode without writing their own.
const DefaultDelegatePrompt = "I'm currently offline. I'll get back to you soon! For now, you can chat with my AI assistant."

type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Role     string `gorm:"not null;default:user" json:"role"`

	IsOnline bool       `gorm:"default:false" json:"is_online"`
	LastSeen *time.Time `json:"last_seen"`

	// Delegate mode: when enabled and the user is offline, incoming private
	// messages get an automatically generated stand-in reply.
	DelegateEnabled bool   `gorm:"default:false" json:"delegate_enabled"`
	DelegatePrompt  string `gorm:"type:text" json:"delegate_prompt"`
}

type UserResponse struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Avatar   string     `json:"avatar"`
	IsOnline bool       `json:"is_online"`
	LastSeen *time.Time `json:"last_seen"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
		IsOnline: u.IsOnline,
		LastSeen: u.LastSeen,
	}
}

// PersonaPrompt returns the instruction handed to the generation service when
// this user's delegate answers on their behalf.
func (u *User) PersonaPrompt() string {
	if u.DelegatePrompt != "" {
		return u.DelegatePrompt
	}
	return DefaultDelegatePrompt
}
