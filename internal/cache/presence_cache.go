package cache

import (
	"fmt"
	"strconv"
	"time"
)

// OnlineUserTTL bounds how long a crashed instance can leave a user marked
// online; it matches the WS pong timeout.
const OnlineUserTTL = 90 * time.Second

// PresenceCache mirrors the in-process presence counters into Redis so other
// consumers (and other instances) can read online state. All methods are
// nil-safe: a missing Redis degrades to no cache.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Set(userKey(userID), []byte("1"), OnlineUserTTL)
}

func (pc *PresenceCache) SetUserOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("online:users", userID); err != nil {
		return err
	}
	return pc.redis.Delete(userKey(userID))
}

// RefreshUserOnline extends the TTL; called on every pong.
func (pc *PresenceCache) RefreshUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(userKey(userID), []byte("1"), OnlineUserTTL)
}

func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(userKey(userID))
}

func (pc *PresenceCache) GetOnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("online:users")
	if err != nil {
		return nil, err
	}
	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}

func userKey(userID uint) string {
	return fmt.Sprintf("online:%d", userID)
}
