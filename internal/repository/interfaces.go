package repository

import (
	"github.com/YasiruRavidith/Chat-Room/internal/models"
)

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	UpdateOnlineStatus(userID uint, isOnline bool) error
	UpdateDelegateSettings(userID uint, enabled bool, prompt string) error
}

// GroupRepositoryInterface defines the contract for group repository operations
type GroupRepositoryInterface interface {
	FindByID(id uint) (*models.Group, error)
	IsMember(groupID, userID uint) (bool, error)
	GetMembers(groupID uint) ([]models.User, error)
	MemberIDs(groupID uint) ([]uint, error)
	GroupIDsForUser(userID uint) ([]uint, error)
}

// MessageRepositoryInterface defines the contract for message repository operations
type MessageRepositoryInterface interface {
	Create(message *models.Message) error
	FindByID(id uint) (*models.Message, error)
	FindByClientID(clientID string, senderID uint) (*models.Message, error)
	// RecentInGroup returns the newest non-deleted messages of a group in
	// chronological (oldest-first) order.
	RecentInGroup(groupID uint, limit int) ([]models.Message, error)
	SoftDelete(messageID, senderID uint) error
}

// MessageStatusRepositoryInterface defines the contract for per-(message, user)
// delivery state. All writes are monotonic merges; see models.DeliveryState.
type MessageStatusRepositoryInterface interface {
	// Upsert applies state to the (message, user) row if it ranks at or above
	// the stored state. Reports whether the row actually changed.
	Upsert(messageID, userID uint, state models.DeliveryState) (bool, error)
	// MarkGroupRead upserts read for every message in the group not authored
	// by the user, atomically, and reports the newly-affected row count.
	MarkGroupRead(groupID, userID uint) (int64, error)
	// Aggregate computes the sender-facing rollup over all non-sender rows.
	Aggregate(messageID, senderID uint) (models.DeliveryState, error)
}
