package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// Conn is one websocket connection. A user may hold several at once, so
// each gets its own identity, send queue and topic set. Outbound frames go
// through the buffered send channel and a single writer goroutine, which
// keeps per-connection delivery ordered without blocking publishers.
type Conn struct {
	id       string
	userID   uint
	username string
	ws       *websocket.Conn

	send   chan []byte
	closed chan struct{}
	once   sync.Once

	mu       sync.Mutex
	topics   map[string]struct{}
	lastPong time.Time
}

func NewConn(ws *websocket.Conn, userID uint, username string, sendBuffer int) *Conn {
	if sendBuffer < 1 {
		sendBuffer = 64
	}
	return &Conn{
		id:       uuid.NewString(),
		userID:   userID,
		username: username,
		ws:       ws,
		send:     make(chan []byte, sendBuffer),
		closed:   make(chan struct{}),
		topics:   make(map[string]struct{}),
		lastPong: time.Now(),
	}
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) UserID() uint {
	return c.userID
}

func (c *Conn) Username() string {
	return c.username
}

// Deliver queues a frame for the writer. When the queue is full the frame
// is dropped; the client catches up from message history on its own.
func (c *Conn) Deliver(payload []byte) {
	select {
	case <-c.closed:
	case c.send <- payload:
	default:
		zap.L().Warn("send queue full, dropping frame",
			zap.Uint("user_id", c.userID),
			zap.String("conn_id", c.id))
	}
}

// SendEvent marshals event and queues it.
func (c *Conn) SendEvent(event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("event marshal failed", zap.Error(err))
		return
	}
	c.Deliver(payload)
}

func (c *Conn) touchPong() {
	c.mu.Lock()
	c.lastPong = time.Now()
	c.mu.Unlock()
}

func (c *Conn) sincePong() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return time.Since(c.lastPong)
}

func (c *Conn) trackTopic(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

func (c *Conn) untrackTopic(topic string) {
	c.mu.Lock()
	delete(c.topics, topic)
	c.mu.Unlock()
}

func (c *Conn) trackedTopics() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := make([]string, 0, len(c.topics))
	for topic := range c.topics {
		topics = append(topics, topic)
	}
	return topics
}

// close shuts the writer down. Safe to call more than once.
func (c *Conn) close() {
	c.once.Do(func() {
		close(c.closed)
	})
}

// writePump is the only goroutine that writes to the socket. It drains the
// send queue and keeps the connection alive with protocol pings.
func (c *Conn) writePump(pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.closed:
			c.ws.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(writeWait))
			return
		case payload := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				zap.L().Debug("write failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				zap.L().Debug("ping failed", zap.String("conn_id", c.id), zap.Error(err))
				return
			}
		}
	}
}
