package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/YasiruRavidith/Chat-Room/internal/httpx"
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

type GroupHandler struct {
	groupService *service.GroupService
	presence     service.PresenceChecker
}

func NewGroupHandler(groupService *service.GroupService, presence service.PresenceChecker) *GroupHandler {
	return &GroupHandler{groupService: groupService, presence: presence}
}

func (h *GroupHandler) GetGroup(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group", "Invalid group id")
	}

	group, err := h.groupService.GetGroup(userID, groupID)
	if err != nil {
		return serviceError(c, err, "get_group_failed")
	}
	return c.JSON(group)
}

// GetMembers lists a group's members with live presence overlaid on the
// stored profile.
func (h *GroupHandler) GetMembers(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group", "Invalid group id")
	}

	members, err := h.groupService.GetMembers(userID, groupID)
	if err != nil {
		return serviceError(c, err, "get_members_failed")
	}

	responses := make([]models.UserResponse, 0, len(members))
	for i := range members {
		resp := members[i].ToResponse()
		if h.presence != nil {
			resp.IsOnline = h.presence.IsOnline(resp.ID)
		}
		responses = append(responses, resp)
	}
	return c.JSON(fiber.Map{"members": responses})
}
