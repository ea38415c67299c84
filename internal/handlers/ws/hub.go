package ws

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/YasiruRavidith/Chat-Room/internal/broker"
	"github.com/YasiruRavidith/Chat-Room/internal/presence"
	"github.com/YasiruRavidith/Chat-Room/internal/repository"
	"github.com/YasiruRavidith/Chat-Room/internal/service"
)

// Hub tracks live connections and joins them to broker topics. Every
// connection is auto-subscribed to its user's personal topic; group topics
// are joined on request after a fresh membership check.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Conn
	byUser map[uint]map[string]*Conn

	broker   broker.Broker
	presence *presence.Tracker
	groups   repository.GroupRepositoryInterface

	pingInterval time.Duration
	pongTimeout  time.Duration

	stop chan struct{}
}

func NewHub(b broker.Broker, tracker *presence.Tracker, groups repository.GroupRepositoryInterface, pingInterval, pongTimeout time.Duration) *Hub {
	h := &Hub{
		conns:        make(map[string]*Conn),
		byUser:       make(map[uint]map[string]*Conn),
		broker:       b,
		presence:     tracker,
		groups:       groups,
		pingInterval: pingInterval,
		pongTimeout:  pongTimeout,
		stop:         make(chan struct{}),
	}
	go h.reaper()
	return h
}

// Register wires a connection in: personal topic subscription, presence
// count, pong tracking and the writer goroutine.
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn.ID()] = conn
	set, ok := h.byUser[conn.UserID()]
	if !ok {
		set = make(map[string]*Conn)
		h.byUser[conn.UserID()] = set
	}
	set[conn.ID()] = conn
	total := len(h.conns)
	h.mu.Unlock()

	topic := broker.UserTopic(conn.UserID())
	h.broker.Subscribe(topic, conn)
	conn.trackTopic(topic)

	conn.ws.SetReadDeadline(time.Now().Add(h.pongTimeout))
	conn.ws.SetPongHandler(func(string) error {
		conn.touchPong()
		conn.ws.SetReadDeadline(time.Now().Add(h.pongTimeout))
		if h.presence != nil {
			h.presence.Heartbeat(conn.UserID())
		}
		return nil
	})

	go conn.writePump(h.pingInterval)

	if h.presence != nil {
		h.presence.Connect(conn.UserID())
	}
	zap.L().Info("connection registered",
		zap.Uint("user_id", conn.UserID()),
		zap.String("conn_id", conn.ID()),
		zap.Int("total", total))
}

// Unregister tears a connection down: topic subscriptions, presence count,
// writer. Safe to call for a connection that was never registered.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	_, known := h.conns[conn.ID()]
	delete(h.conns, conn.ID())
	if set, ok := h.byUser[conn.UserID()]; ok {
		delete(set, conn.ID())
		if len(set) == 0 {
			delete(h.byUser, conn.UserID())
		}
	}
	total := len(h.conns)
	h.mu.Unlock()

	if !known {
		return
	}

	for _, topic := range conn.trackedTopics() {
		h.broker.Unsubscribe(topic, conn)
	}
	conn.close()

	if h.presence != nil {
		h.presence.Disconnect(conn.UserID())
	}
	zap.L().Info("connection unregistered",
		zap.Uint("user_id", conn.UserID()),
		zap.String("conn_id", conn.ID()),
		zap.Int("total", total))
}

// JoinGroup subscribes the connection to a group topic. Membership is
// checked fresh on every join.
func (h *Hub) JoinGroup(conn *Conn, groupID uint) error {
	member, err := h.groups.IsMember(groupID, conn.UserID())
	if err != nil {
		return err
	}
	if !member {
		return service.ErrNotAMember
	}
	topic := broker.GroupTopic(groupID)
	h.broker.Subscribe(topic, conn)
	conn.trackTopic(topic)
	return nil
}

// LeaveGroup drops a group topic subscription. Leaving a topic the
// connection never joined is a no-op.
func (h *Hub) LeaveGroup(conn *Conn, groupID uint) {
	topic := broker.GroupTopic(groupID)
	h.broker.Unsubscribe(topic, conn)
	conn.untrackTopic(topic)
}

// ConnectionCount reports live connections, for the health endpoint.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) Close() {
	close(h.stop)
	h.mu.Lock()
	conns := make([]*Conn, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()
	for _, conn := range conns {
		h.Unregister(conn)
	}
}

// reaper drops connections whose client stopped answering pings. The read
// deadline usually gets there first; this catches writers wedged before
// the read loop notices.
func (h *Hub) reaper() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			h.mu.RLock()
			var dead []*Conn
			for _, conn := range h.conns {
				if conn.sincePong() > h.pongTimeout {
					dead = append(dead, conn)
				}
			}
			h.mu.RUnlock()

			for _, conn := range dead {
				zap.L().Info("reaping unresponsive connection",
					zap.Uint("user_id", conn.UserID()),
					zap.String("conn_id", conn.ID()))
				h.Unregister(conn)
			}
		}
	}
}
