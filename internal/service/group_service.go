package service

import (
	"errors"

	"gorm.io/gorm"

	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
)

type GroupService struct {
	groupRepo repository.GroupRepositoryInterface
}

func NewGroupService(groupRepo repository.GroupRepositoryInterface) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

func (s *GroupService) GetGroup(userID, groupID uint) (*models.Group, error) {
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAMember
	}
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

func (s *GroupService) IsMember(groupID, userID uint) (bool, error) {
	return s.groupRepo.IsMember(groupID, userID)
}

func (s *GroupService) GetMembers(userID, groupID uint) ([]models.User, error) {
	member, err := s.groupRepo.IsMember(groupID, userID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotAMember
	}
	return s.groupRepo.GetMembers(groupID)
}
