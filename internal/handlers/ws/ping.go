package ws

// MessagePing is an application-level keepalive for clients that cannot
// send protocol pings.
type MessagePing struct {
}

func (msg *MessagePing) GetType() string {
	return "ping"
}

func (msg *MessagePing) Process(ctx *MessageContext) error {
	ctx.Conn.touchPong()
	if ctx.Hub.presence != nil {
		ctx.Hub.presence.Heartbeat(ctx.Conn.UserID())
	}
	ctx.Conn.SendEvent(map[string]string{"type": "pong"})
	return nil
}
