package models

import (
	"time"

	"gorm.io/gorm"
)

type GroupKind string

const (
	PrivateGroup GroupKind = "private"
	MultiGroup   GroupKind = "multi"
)

type GroupRole string

const (
	RoleOwner  GroupRole = "owner"
	RoleAdmin  GroupRole = "admin"
	RoleMember GroupRole = "member"
)

// Group membership is the source of truth for topic membership; joins are
// re-checked against it every time, never cached.
type Group struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string    `gorm:"size:100" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Kind        GroupKind `gorm:"type:varchar(10);default:'private'" json:"kind"`
	CreatorID   uint      `gorm:"not null" json:"creator_id"`

	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members"`
}

type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey" json:"group_id"`
	UserID   uint      `gorm:"primaryKey" json:"user_id"`
	Role     GroupRole `gorm:"type:varchar(20);default:'member'" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}

// IsPrivate reports whether the group is a two-member private chat, the only
// shape that can trigger a delegate reply.
func (g *Group) IsPrivate() bool {
	return g.Kind == PrivateGroup
}
