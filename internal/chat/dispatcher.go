package chat

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/navyasetu/varunnetra/internal/config"
)

// Dispatcher delays assistant replies to simulate thinking time.
//
// In fifo mode each session has one queue drained by one goroutine: a reply
// is due at submit time plus its delay, and is never applied before the
// replies submitted ahead of it. In independent mode every reply runs on its
// own timer, so replies with differing delays can land out of order.
//
// Scheduled work always runs; Close stops intake and waits for it.
type Dispatcher struct {
	ordering string
	delay    func() time.Duration
	onTyping func(sessionID string, typing bool)

	mu      sync.Mutex
	closed  bool
	pending map[string]int
	queues  map[string][]*replyJob
	wg      sync.WaitGroup
}

type replyJob struct {
	due time.Time
	run func()
}

// NewDispatcher builds a dispatcher. onTyping is called, under the
// dispatcher's lock, when a session goes from idle to busy and back; it must
// not call into the Dispatcher.
func NewDispatcher(ordering string, delay func() time.Duration, onTyping func(sessionID string, typing bool)) *Dispatcher {
	if delay == nil {
		delay = func() time.Duration { return 0 }
	}
	if onTyping == nil {
		onTyping = func(string, bool) {}
	}
	return &Dispatcher{
		ordering: ordering,
		delay:    delay,
		onTyping: onTyping,
		pending:  make(map[string]int),
		queues:   make(map[string][]*replyJob),
	}
}

// JitteredDelay returns base plus a uniform random extra in [0, jitter].
func JitteredDelay(base, jitter time.Duration) func() time.Duration {
	return func() time.Duration {
		if jitter <= 0 {
			return base
		}
		return base + rand.N(jitter+1)
	}
}

// Schedule runs fn after the next delay for sessionID.
func (d *Dispatcher) Schedule(sessionID string, fn func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	job := &replyJob{due: time.Now().Add(d.delay()), run: fn}
	d.wg.Add(1)
	d.pending[sessionID]++
	if d.pending[sessionID] == 1 {
		d.onTyping(sessionID, true)
	}

	if d.ordering == config.OrderingIndependent {
		time.AfterFunc(time.Until(job.due), func() { d.finish(sessionID, job) })
		return nil
	}

	q := d.queues[sessionID]
	d.queues[sessionID] = append(q, job)
	if len(q) == 0 {
		go d.drain(sessionID, job)
	}
	return nil
}

// drain runs the session's queue head first. The head stays queued while it
// runs, so a queue entry exists exactly as long as its drainer does.
func (d *Dispatcher) drain(sessionID string, job *replyJob) {
	for {
		if wait := time.Until(job.due); wait > 0 {
			time.Sleep(wait)
		}
		d.finish(sessionID, job)

		d.mu.Lock()
		q := d.queues[sessionID][1:]
		if len(q) == 0 {
			delete(d.queues, sessionID)
			d.mu.Unlock()
			return
		}
		d.queues[sessionID] = q
		job = q[0]
		d.mu.Unlock()
	}
}

func (d *Dispatcher) finish(sessionID string, job *replyJob) {
	defer d.wg.Done()
	job.run()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending[sessionID]--
	if d.pending[sessionID] <= 0 {
		delete(d.pending, sessionID)
		d.onTyping(sessionID, false)
	}
}

// Pending returns the number of replies not yet applied for sessionID.
func (d *Dispatcher) Pending(sessionID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending[sessionID]
}

// Close stops accepting work and waits for scheduled replies, or for ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
