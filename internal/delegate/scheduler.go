package delegate

import (
	"context"
	"time"

	"github.com/YasiruRavidith/Chat-Room/internal/models"
	"github.com/YasiruRavidith/Chat-Room/internal/worker"
)

const respondTimeout = 60 * time.Second

// Scheduler queues a delayed reply attempt for each candidate message. The
// delay gives the recipient a moment to reconnect and lets the triggering
// message settle before the context window is read.
type Scheduler struct {
	pool      *worker.Pool
	responder *Responder
	delay     time.Duration
}

func NewScheduler(pool *worker.Pool, responder *Responder, delay time.Duration) *Scheduler {
	return &Scheduler{pool: pool, responder: responder, delay: delay}
}

func (s *Scheduler) MessageCreated(message *models.Message) {
	messageID := message.ID
	s.pool.Submit(s.delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), respondTimeout)
		defer cancel()
		s.responder.Respond(ctx, messageID)
	})
}
