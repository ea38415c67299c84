package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/YasiruRavidith/Chat-Room/internal/httpx"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
	"github.com/YasiruRavidith/Chat-Room/internal/validation"
)

type UserHandler struct {
	userService *service.UserService
	presence    service.PresenceChecker
}

func NewUserHandler(userService *service.UserService, presence service.PresenceChecker) *UserHandler {
	return &UserHandler{userService: userService, presence: presence}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return serviceError(c, err, "get_user_failed")
	}
	return c.JSON(user.ToResponse())
}

func (h *UserHandler) GetDelegateSettings(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		return serviceError(c, err, "get_user_failed")
	}
	return c.JSON(fiber.Map{
		"enabled": user.DelegateEnabled,
		"prompt":  user.PersonaPrompt(),
	})
}

func (h *UserHandler) UpdateDelegateSettings(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input service.DelegateSettingsInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	input.Prompt = validation.TrimAndLimit(input.Prompt, validation.MaxPromptLength())

	user, err := h.userService.UpdateDelegateSettings(userID, input)
	if err != nil {
		return serviceError(c, err, "update_delegate_failed")
	}
	return c.JSON(fiber.Map{
		"enabled": user.DelegateEnabled,
		"prompt":  user.PersonaPrompt(),
	})
}

// UpdateStatus lets a client report its own presence explicitly, for
// foreground/background transitions the socket lifecycle cannot see.
func (h *UserHandler) UpdateStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	var input struct {
		Online bool `json:"is_online"`
	}
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.userService.UpdateOnlineStatus(userID, input.Online); err != nil {
		return serviceError(c, err, "update_status_failed")
	}
	return c.JSON(fiber.Map{"status": "updated"})
}

// GetStatus reports live presence for one user: the in-process counter is
// the authority because this node holds the connections.
func (h *UserHandler) GetStatus(c *fiber.Ctx) error {
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	targetID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_user", "Invalid user id")
	}
	user, err := h.userService.GetUserByID(targetID)
	if err != nil {
		return serviceError(c, err, "get_user_failed")
	}
	online := user.IsOnline
	if h.presence != nil {
		online = h.presence.IsOnline(targetID)
	}
	return c.JSON(fiber.Map{
		"user_id":   user.ID,
		"online":    online,
		"last_seen": user.LastSeen,
	})
}
