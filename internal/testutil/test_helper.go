// Package testutil provides model factories shared by the service and
// delegate test fixtures.
package testutil

import (
	"time"

	"github.com/YasiruRavidith/Chat-Room/internal/models"
)

// User builds a user with sensible defaults.
func User(id uint, username string) *models.User {
	if id == 0 {
		id = 1
	}
	if username == "" {
		username = "testuser"
	}
	return &models.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		Name:      "Test User",
		Role:      "user",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// Group builds a group of the given kind with the given member IDs.
func Group(id uint, kind models.GroupKind, memberIDs ...uint) *models.Group {
	if id == 0 {
		id = 1
	}
	group := &models.Group{
		ID:        id,
		Name:      "Test Group",
		Kind:      kind,
		CreatorID: 1,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, userID := range memberIDs {
		group.Members = append(group.Members, models.GroupMember{
			GroupID: id,
			UserID:  userID,
			Role:    models.RoleMember,
		})
	}
	return group
}

// Message builds a text message with sensible defaults.
func Message(id, senderID, groupID uint, content string) *models.Message {
	if id == 0 {
		id = 1
	}
	if senderID == 0 {
		senderID = 1
	}
	if groupID == 0 {
		groupID = 1
	}
	if content == "" {
		content = "Test message"
	}
	return &models.Message{
		ID:        id,
		ClientID:  "11111111-1111-1111-1111-111111111111",
		GroupID:   groupID,
		SenderID:  senderID,
		Kind:      models.TextMessage,
		Content:   content,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}
