package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/YasiruRavidith/Chat-Room/internal/handlers/ws"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

type WebSocketHandler struct {
	messageService *service.MessageService
	userService    *service.UserService
	hub            *ws.Hub
	sendBuffer     int
}

func NewWebSocketHandler(messageService *service.MessageService, userService *service.UserService, hub *ws.Hub, sendBuffer int) *WebSocketHandler {
	return &WebSocketHandler{
		messageService: messageService,
		userService:    userService,
		hub:            hub,
		sendBuffer:     sendBuffer,
	}
}

func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// HandleWebSocket runs the read loop for one connection. Malformed frames
// get an error event and the loop continues; only transport errors end it.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	userID, ok := c.Locals("userID").(uint)
	if !ok || userID == 0 {
		c.Close()
		return
	}
	username, _ := c.Locals("username").(string)

	// The account can disappear between the upgrade and here; never
	// register a connection for a user record that no longer resolves.
	if _, err := h.userService.GetUserByID(userID); err != nil {
		c.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unauthorized"))
		c.Close()
		return
	}

	conn := ws.NewConn(c, userID, username, h.sendBuffer)
	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	// Optional immediate group join, so clients can open a conversation
	// with a single round trip.
	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		if groupID, err := strconv.ParseUint(groupIDStr, 10, 32); err == nil && groupID > 0 {
			if err := h.hub.JoinGroup(conn, uint(groupID)); err != nil {
				ws.SendError(conn, "join_failed", "Could not join group", "")
			}
		}
	}

	ctx := &ws.MessageContext{
		Conn:     conn,
		Hub:      h.hub,
		Messages: h.messageService,
		Users:    h.userService,
	}

	for {
		_, payload, err := c.ReadMessage()
		if err != nil {
			return
		}

		msg, err := ws.Deserialize(payload)
		if err != nil {
			ws.SendError(conn, "malformed_message", "Could not parse message", "")
			continue
		}

		if err := msg.Process(ctx); err != nil {
			ws.SendError(conn, processErrorCode(err), "Could not process message", "")
		}
	}
}

func processErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrMalformed):
		return "malformed_input"
	case errors.Is(err, service.ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, service.ErrNotFound):
		return "not_found"
	default:
		zap.L().Warn("message processing failed", zap.Error(err))
		return "internal_error"
	}
}
