// Package broker provides the topic abstraction behind the fan-out path: a
// named broadcast channel that connections subscribe to. A publish reaches
// exactly the subscriber set at the instant of publish; delivery to each
// subscriber is independent and best-effort, durability lives in the Message
// rows, never here.
package broker

import (
	"fmt"
)

// Subscriber receives published events. Deliver must not block: slow
// consumers drop, they never stall the topic.
type Subscriber interface {
	ID() string
	Deliver(payload []byte)
}

type Broker interface {
	// Publish marshals event once and hands it to every current subscriber
	// of topic. Per-topic publish order is preserved per subscriber.
	Publish(topic string, event interface{}) error
	Subscribe(topic string, sub Subscriber)
	Unsubscribe(topic string, sub Subscriber)
	Close() error
}

// GroupTopic names the broadcast channel shared by a group's members.
func GroupTopic(groupID uint) string {
	return fmt.Sprintf("group:%d", groupID)
}

// UserTopic names a user's personal notification channel.
func UserTopic(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
