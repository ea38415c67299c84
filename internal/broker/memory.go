package broker

import (
	"encoding/json"
	"sync"
)

// MemoryBroker is the single-instance backend: an in-process map from topic
// to subscriber set. The subscriber map is mutated only by join/leave and
// read under RLock at publish time; a publish racing a leave may or may not
// reach that subscriber.
type MemoryBroker struct {
	mu     sync.RWMutex
	topics map[string]map[string]Subscriber
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{topics: make(map[string]map[string]Subscriber)}
}

func (b *MemoryBroker) Subscribe(topic string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[string]Subscriber)
		b.topics[topic] = subs
	}
	subs[sub.ID()] = sub
}

func (b *MemoryBroker) Unsubscribe(topic string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.topics[topic]
	if !ok {
		return
	}
	delete(subs, sub.ID())
	if len(subs) == 0 {
		delete(b.topics, topic)
	}
}

func (b *MemoryBroker) Publish(topic string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	b.deliver(topic, payload)
	return nil
}

func (b *MemoryBroker) Close() error {
	return nil
}

// deliver pushes an already-marshaled payload to the snapshot of current
// subscribers. Also the entry point for payloads arriving off an external bus.
func (b *MemoryBroker) deliver(topic string, payload []byte) {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.topics[topic]))
	for _, s := range b.topics[topic] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		s.Deliver(payload)
	}
}

func (b *MemoryBroker) subscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}
