package chat

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/navyasetu/varunnetra/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// delaySequence hands out the given delays in order.
func delaySequence(delays ...time.Duration) func() time.Duration {
	var mu sync.Mutex
	i := 0
	return func() time.Duration {
		mu.Lock()
		defer mu.Unlock()
		d := delays[i%len(delays)]
		i++
		return d
	}
}

type recorder struct {
	mu     sync.Mutex
	order  []int
	typing []bool
}

func (r *recorder) add(n int) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.order = append(r.order, n)
	}
}

func (r *recorder) onTyping(_ string, typing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typing = append(r.typing, typing)
}

func (r *recorder) snapshot() ([]int, []bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.order...), append([]bool(nil), r.typing...)
}

func TestDispatcherFIFOKeepsSubmissionOrder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(config.OrderingFIFO, delaySequence(80*time.Millisecond, 5*time.Millisecond), rec.onTyping)

	require.NoError(t, d.Schedule("s1", rec.add(1)))
	require.NoError(t, d.Schedule("s1", rec.add(2)))
	assert.Equal(t, 2, d.Pending("s1"))

	require.NoError(t, d.Close(context.Background()))

	order, typing := rec.snapshot()
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, []bool{true, false}, typing)
	assert.Equal(t, 0, d.Pending("s1"))
}

func TestDispatcherIndependentCanReorder(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(config.OrderingIndependent, delaySequence(80*time.Millisecond, 5*time.Millisecond), rec.onTyping)

	require.NoError(t, d.Schedule("s1", rec.add(1)))
	require.NoError(t, d.Schedule("s1", rec.add(2)))
	require.NoError(t, d.Close(context.Background()))

	order, typing := rec.snapshot()
	assert.Equal(t, []int{2, 1}, order)
	// Typing stays on until the last pending reply lands.
	assert.Equal(t, []bool{true, false}, typing)
}

func TestDispatcherFIFOSessionsAreIndependent(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(config.OrderingFIFO, delaySequence(80*time.Millisecond, 5*time.Millisecond), nil)

	require.NoError(t, d.Schedule("slow", rec.add(1)))
	require.NoError(t, d.Schedule("fast", rec.add(2)))
	require.NoError(t, d.Close(context.Background()))

	order, _ := rec.snapshot()
	assert.Equal(t, []int{2, 1}, order)
}

func TestDispatcherWaitsForDelay(t *testing.T) {
	d := NewDispatcher(config.OrderingFIFO, JitteredDelay(30*time.Millisecond, 0), nil)

	start := time.Now()
	var ranAt time.Time
	require.NoError(t, d.Schedule("s1", func() { ranAt = time.Now() }))
	require.NoError(t, d.Close(context.Background()))

	assert.GreaterOrEqual(t, ranAt.Sub(start), 30*time.Millisecond)
}

func TestDispatcherFIFOScheduleWhileDrainerWindsDown(t *testing.T) {
	d := NewDispatcher(config.OrderingFIFO, nil, nil)
	const jobs = 500
	var runs [jobs]atomic.Int32

	for i := 0; i < jobs; i++ {
		ran := make(chan struct{})
		require.NoError(t, d.Schedule("s1", func() {
			runs[i].Add(1)
			close(ran)
		}))
		// The drainer is still finishing this job when the next is queued.
		<-ran
	}
	require.NoError(t, d.Close(context.Background()))

	for i := range runs {
		assert.Equal(t, int32(1), runs[i].Load(), "job %d", i)
	}
	assert.Equal(t, 0, d.Pending("s1"))
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(config.OrderingFIFO, nil, nil)
	require.NoError(t, d.Close(context.Background()))
	assert.ErrorIs(t, d.Schedule("s1", func() {}), ErrClosed)
}

func TestDispatcherCloseHonorsContext(t *testing.T) {
	d := NewDispatcher(config.OrderingFIFO, JitteredDelay(time.Second, 0), nil)
	require.NoError(t, d.Schedule("s1", func() {}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Close(ctx), context.DeadlineExceeded)
}

func TestJitteredDelayBounds(t *testing.T) {
	f := JitteredDelay(100*time.Millisecond, 50*time.Millisecond)
	for i := 0; i < 200; i++ {
		d := f()
		assert.GreaterOrEqual(t, d, 100*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
