package viewport

import (
	"context"
	"sync"
	"time"
)

// Bus is an in-process EventSource. Emit calls subscribers synchronously in
// subscription order.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Event]map[int]func()
	order  map[Event][]int
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{
		subs:  make(map[Event]map[int]func()),
		order: make(map[Event][]int),
	}
}

// Subscribe registers fn for ev.
func (b *Bus) Subscribe(ev Event, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[ev] == nil {
		b.subs[ev] = make(map[int]func())
	}
	b.subs[ev][id] = fn
	b.order[ev] = append(b.order[ev], id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[ev], id)
		})
	}
}

// Emit notifies the current subscribers of ev.
func (b *Bus) Emit(ev Event) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.subs[ev]))
	live := b.order[ev][:0]
	for _, id := range b.order[ev] {
		if fn, ok := b.subs[ev][id]; ok {
			fns = append(fns, fn)
			live = append(live, id)
		}
	}
	b.order[ev] = live
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Subscribers returns the number of live subscriptions for ev.
func (b *Bus) Subscribers(ev Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[ev])
}

// DefaultFrameInterval approximates a 60Hz display.
const DefaultFrameInterval = 16 * time.Millisecond

// TickerScheduler is a FrameScheduler that queues callbacks and runs them on
// the next tick, the way a browser runs animation-frame callbacks before
// painting.
type TickerScheduler struct {
	interval time.Duration

	mu    sync.Mutex
	queue []func()
}

// NewTickerScheduler creates a scheduler that flushes every interval.
// A non-positive interval selects DefaultFrameInterval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &TickerScheduler{interval: interval}
}

// RequestFrame queues fn for the next frame.
func (s *TickerScheduler) RequestFrame(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	s.mu.Unlock()
}

// Flush runs every queued callback and returns how many ran. Callbacks
// requested during Flush run on the following frame.
func (s *TickerScheduler) Flush() int {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

// Pending returns the number of queued callbacks.
func (s *TickerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Run flushes the queue on every tick until ctx is cancelled.
func (s *TickerScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Flush()
		}
	}
}
