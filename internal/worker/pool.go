package worker

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of deferred work executed on a pool goroutine.
type Task func()

// Pool runs tasks on a fixed set of workers. Tasks may be submitted
// with a delay; delayed tasks are held by timers and enqueued when
// they fire.
type Pool struct {
	tasks chan Task
	wg    sync.WaitGroup

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
	closed bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{
		tasks:  make(chan Task, queueSize),
		timers: make(map[*time.Timer]struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

// Submit schedules task to run after delay. A delay of zero or less
// enqueues immediately. Tasks submitted after Close are dropped.
func (p *Pool) Submit(delay time.Duration, task Task) {
	if task == nil {
		return
	}
	if delay <= 0 {
		p.enqueue(task)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		p.mu.Lock()
		delete(p.timers, timer)
		p.mu.Unlock()
		p.enqueue(task)
	})
	p.timers[timer] = struct{}{}
	p.mu.Unlock()
}

func (p *Pool) enqueue(task Task) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	select {
	case p.tasks <- task:
	default:
		zap.L().Warn("worker queue full, dropping task")
	}
	p.mu.Unlock()
}

func (p *Pool) run() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.execute(task)
	}
}

func (p *Pool) execute(task Task) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("worker task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

// Close stops accepting work, cancels pending timers and waits for
// in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	for timer := range p.timers {
		timer.Stop()
	}
	p.timers = nil
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
