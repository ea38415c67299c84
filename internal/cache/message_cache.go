package cache

import (
	"fmt"
	"time"

	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

const GroupRecentTTL = 2 * time.Minute

// MessageCache caches the recent-message window of a group, serving both the
// read endpoint and delegate context assembly. Invalidated on every ingest.
type MessageCache struct {
	redis *RedisCache
}

func NewMessageCache(redis *RedisCache) *MessageCache {
	return &MessageCache{redis: redis}
}

func groupRecentKey(groupID uint) string {
	return fmt.Sprintf("group:recent:%d", groupID)
}

func (mc *MessageCache) GetGroupRecent(groupID uint) ([]models.Message, bool) {
	if mc == nil || mc.redis == nil {
		return nil, false
	}
	data, err := mc.redis.Get(groupRecentKey(groupID))
	if err != nil || data == nil {
		return nil, false
	}

	var messages []models.Message
	if err := msgpack.Unmarshal(data, &messages); err != nil {
		return nil, false
	}
	return messages, true
}

func (mc *MessageCache) SetGroupRecent(groupID uint, messages []models.Message) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(messages)
	if err != nil {
		return err
	}
	return mc.redis.Set(groupRecentKey(groupID), data, GroupRecentTTL)
}

func (mc *MessageCache) InvalidateGroup(groupID uint) error {
	if mc == nil || mc.redis == nil {
		return nil
	}
	return mc.redis.Delete(groupRecentKey(groupID))
}
