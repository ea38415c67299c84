package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/YasiruRavidith/Chat-Room/internal/httpx"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) SendGroupMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group", "Invalid group id")
	}

	var input service.SubmitMessageInput
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}
	message, err := h.messageService.Submit(userID, groupID, input)
	if err != nil {
		return serviceError(c, err, "send_message_failed")
	}
	return c.Status(fiber.StatusCreated).JSON(message.ToResponse())
}

func (h *MessageHandler) GetGroupMessages(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group", "Invalid group id")
	}

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return httpx.BadRequest(c, "invalid_limit", "Invalid limit")
		}
	}

	messages, err := h.messageService.RecentMessages(userID, groupID, limit)
	if err != nil {
		return serviceError(c, err, "get_messages_failed")
	}

	responses := make([]interface{}, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return c.JSON(fiber.Map{"messages": responses})
}

func (h *MessageHandler) MarkGroupRead(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	groupID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_group", "Invalid group id")
	}

	count, err := h.messageService.MarkGroupRead(userID, groupID)
	if err != nil {
		return serviceError(c, err, "mark_read_failed")
	}
	return c.JSON(fiber.Map{"marked": count})
}

func (h *MessageHandler) UpdateMessageStatus(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	messageID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_message", "Invalid message id")
	}

	var input struct {
		State string `json:"state"`
	}
	if err := c.BodyParser(&input); err != nil {
		return httpx.BadRequest(c, "invalid_request_body", "Invalid request body")
	}

	if err := h.messageService.SetStatus(userID, messageID, deliveryState(input.State)); err != nil {
		return serviceError(c, err, "update_status_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	userID, err := httpx.LocalUint(c, "userID")
	if err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}
	messageID, err := paramUint(c, "id")
	if err != nil {
		return httpx.BadRequest(c, "invalid_message", "Invalid message id")
	}

	if err := h.messageService.DeleteMessage(userID, messageID); err != nil {
		return serviceError(c, err, "delete_message_failed")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
