package broker

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker backs topics with Redis pub/sub so several instances form one
// logical broadcast domain. Local subscribers are kept in a MemoryBroker;
// publishes go through Redis and come back via the subscription loop, so a
// locally published event reaches local and remote subscribers the same way.
type RedisBroker struct {
	client *redis.Client
	local  *MemoryBroker
	pubsub *redis.PubSub

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

func NewRedisBroker(client *redis.Client) *RedisBroker {
	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBroker{
		client: client,
		local:  NewMemoryBroker(),
		ctx:    ctx,
		cancel: cancel,
	}
	b.pubsub = client.Subscribe(ctx)
	go b.receiveLoop()
	return b
}

func (b *RedisBroker) Publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.client.Publish(b.ctx, topic, payload).Err()
}

func (b *RedisBroker) Subscribe(topic string, sub Subscriber) {
	b.local.Subscribe(topic, sub)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.pubsub.Subscribe(b.ctx, topic); err != nil {
		zap.L().Warn("redis topic subscribe failed",
			zap.String("topic", topic), zap.Error(err))
	}
}

func (b *RedisBroker) Unsubscribe(topic string, sub Subscriber) {
	b.local.Unsubscribe(topic, sub)

	if b.local.subscriberCount(topic) > 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.pubsub.Unsubscribe(b.ctx, topic); err != nil {
		zap.L().Warn("redis topic unsubscribe failed",
			zap.String("topic", topic), zap.Error(err))
	}
}

func (b *RedisBroker) Close() error {
	b.cancel()
	return b.pubsub.Close()
}

func (b *RedisBroker) receiveLoop() {
	for msg := range b.pubsub.Channel() {
		b.local.deliver(msg.Channel, []byte(msg.Payload))
	}
}
