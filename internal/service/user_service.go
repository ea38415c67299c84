package service

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/broker"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
)

type UserService struct {
	userRepo  repository.UserRepositoryInterface
	groupRepo repository.GroupRepositoryInterface
	broker    broker.Broker
}

func NewUserService(userRepo repository.UserRepositoryInterface, groupRepo repository.GroupRepositoryInterface, b broker.Broker) *UserService {
	return &UserService{userRepo: userRepo, groupRepo: groupRepo, broker: b}
}

func (s *UserService) GetUserByID(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

type DelegateSettingsInput struct {
	Enabled bool   `json:"enabled"`
	Prompt  string `json:"prompt"`
}

func (s *UserService) UpdateDelegateSettings(userID uint, input DelegateSettingsInput) (*models.User, error) {
	if err := s.userRepo.UpdateDelegateSettings(userID, input.Enabled, input.Prompt); err != nil {
		return nil, err
	}
	return s.GetUserByID(userID)
}

// UpdateOnlineStatus records a client-reported presence change (foreground /
// background transitions) and fans it out like a connection-driven one.
func (s *UserService) UpdateOnlineStatus(userID uint, online bool) error {
	if err := s.userRepo.UpdateOnlineStatus(userID, online); err != nil {
		return err
	}
	s.NotifyPresence(userID, online)
	return nil
}

// NotifyPresence fans a user's online/offline transition out to every group
// they belong to. Called by the presence tracker on edge transitions only.
func (s *UserService) NotifyPresence(userID uint, online bool) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		zap.L().Warn("presence notify lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	event := UserStatusEvent{
		Type:     "user_status",
		UserID:   user.ID,
		Username: user.Username,
		Online:   online,
	}
	if !online {
		event.LastSeen = time.Now().UTC().Format(time.RFC3339)
	}

	groupIDs, err := s.groupRepo.GroupIDsForUser(userID)
	if err != nil {
		zap.L().Warn("presence notify group lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		return
	}
	for _, groupID := range groupIDs {
		if err := s.broker.Publish(broker.GroupTopic(groupID), event); err != nil {
			zap.L().Warn("presence broadcast failed", zap.Uint("group_id", groupID), zap.Error(err))
		}
	}
}
