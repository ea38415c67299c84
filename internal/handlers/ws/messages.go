package ws

import (
	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

// MessageChat submits a new message to a group. The client-generated
// ClientID makes resends after a reconnect idempotent.
type MessageChat struct {
	GroupID    uint               `json:"group_id"`
	ClientID   string             `json:"client_id"`
	Content    string             `json:"content"`
	Kind       models.MessageType `json:"kind"`
	Attachment models.Attachment  `json:"attachment"`
}

func (msg *MessageChat) GetType() string {
	return "chat_message"
}

func (msg *MessageChat) Process(ctx *MessageContext) error {
	_, err := ctx.Messages.Submit(ctx.Conn.UserID(), msg.GroupID, service.SubmitMessageInput{
		ClientID:   msg.ClientID,
		Content:    msg.Content,
		Kind:       msg.Kind,
		Attachment: msg.Attachment,
	})
	return err
}

// MessageTyping relays a typing indicator to the group.
type MessageTyping struct {
	GroupID uint `json:"group_id"`
	Typing  bool `json:"typing"`
}

func (msg *MessageTyping) GetType() string {
	return "typing"
}

func (msg *MessageTyping) Process(ctx *MessageContext) error {
	return ctx.Messages.Typing(ctx.Conn.UserID(), ctx.Conn.Username(), msg.GroupID, msg.Typing)
}

// MessageStatus records a delivered/read receipt for one message.
type MessageStatus struct {
	MessageID uint                 `json:"message_id"`
	State     models.DeliveryState `json:"state"`
}

func (msg *MessageStatus) GetType() string {
	return "message_status"
}

func (msg *MessageStatus) Process(ctx *MessageContext) error {
	return ctx.Messages.SetStatus(ctx.Conn.UserID(), msg.MessageID, msg.State)
}

// MessageGroupRead marks every message in the group as read, typically
// sent when the client opens the conversation.
type MessageGroupRead struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageGroupRead) GetType() string {
	return "group_read"
}

func (msg *MessageGroupRead) Process(ctx *MessageContext) error {
	_, err := ctx.Messages.MarkGroupRead(ctx.Conn.UserID(), msg.GroupID)
	return err
}

// MessageJoin subscribes this connection to a group's broadcast topic.
type MessageJoin struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageJoin) GetType() string {
	return "join"
}

func (msg *MessageJoin) Process(ctx *MessageContext) error {
	return ctx.Hub.JoinGroup(ctx.Conn, msg.GroupID)
}

// MessageLeave drops a group topic subscription. Always allowed.
type MessageLeave struct {
	GroupID uint `json:"group_id"`
}

func (msg *MessageLeave) GetType() string {
	return "leave"
}

func (msg *MessageLeave) Process(ctx *MessageContext) error {
	ctx.Hub.LeaveGroup(ctx.Conn, msg.GroupID)
	return nil
}
