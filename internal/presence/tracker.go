// Package presence tracks who is online. Each user has a connection counter;
// the user is online iff the counter is above zero, so concurrent connects
// and disconnects from several devices never flap the flag.
package presence

import (
	"sync"

	"go.uber.org/zap"
)

// StatusStore persists the online flag (last seen is stamped by the store on
// the offline transition).
type StatusStore interface {
	UpdateOnlineStatus(userID uint, isOnline bool) error
}

// StatusCache mirrors presence into shared state with a TTL backstop.
type StatusCache interface {
	SetUserOnline(userID uint) error
	SetUserOffline(userID uint) error
	RefreshUserOnline(userID uint) error
}

// Notifier is invoked after an online/offline transition, outside the
// counter lock.
type Notifier func(userID uint, online bool)

type Tracker struct {
	mu     sync.Mutex
	counts map[uint]int

	store  StatusStore
	cache  StatusCache
	notify Notifier
}

func NewTracker(store StatusStore, cache StatusCache) *Tracker {
	return &Tracker{
		counts: make(map[uint]int),
		store:  store,
		cache:  cache,
	}
}

// SetNotifier installs the transition hook; wiring happens after
// construction because the notifier needs the broker.
func (t *Tracker) SetNotifier(n Notifier) {
	t.notify = n
}

// Connect records one more open connection for the user. The first
// connection marks the user online.
func (t *Tracker) Connect(userID uint) {
	t.mu.Lock()
	t.counts[userID]++
	first := t.counts[userID] == 1
	t.mu.Unlock()

	if t.cache != nil {
		if err := t.cache.SetUserOnline(userID); err != nil {
			zap.L().Warn("presence cache update failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	if !first {
		return
	}
	if err := t.store.UpdateOnlineStatus(userID, true); err != nil {
		zap.L().Error("presence store update failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	if t.notify != nil {
		t.notify(userID, true)
	}
}

// Disconnect records one closed connection. The last one marks the user
// offline and stamps last seen. Extra disconnects are ignored.
func (t *Tracker) Disconnect(userID uint) {
	t.mu.Lock()
	c, ok := t.counts[userID]
	if !ok || c == 0 {
		t.mu.Unlock()
		return
	}
	c--
	last := c == 0
	if last {
		delete(t.counts, userID)
	} else {
		t.counts[userID] = c
	}
	t.mu.Unlock()

	if !last {
		return
	}
	if t.cache != nil {
		if err := t.cache.SetUserOffline(userID); err != nil {
			zap.L().Warn("presence cache update failed", zap.Uint("user_id", userID), zap.Error(err))
		}
	}
	if err := t.store.UpdateOnlineStatus(userID, false); err != nil {
		zap.L().Error("presence store update failed", zap.Uint("user_id", userID), zap.Error(err))
	}
	if t.notify != nil {
		t.notify(userID, false)
	}
}

// Heartbeat extends the TTL backstop; called on every pong.
func (t *Tracker) Heartbeat(userID uint) {
	if t.cache == nil {
		return
	}
	if err := t.cache.RefreshUserOnline(userID); err != nil {
		zap.L().Warn("presence heartbeat refresh failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func (t *Tracker) IsOnline(userID uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[userID] > 0
}

func (t *Tracker) OnlineUsers() []uint {
	t.mu.Lock()
	defer t.mu.Unlock()
	users := make([]uint, 0, len(t.counts))
	for userID, c := range t.counts {
		if c > 0 {
			users = append(users, userID)
		}
	}
	return users
}
