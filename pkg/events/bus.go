package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Bus is an in-process emitter: a buffered channel drained by one goroutine
// that fans out to subscribers. Emit never blocks; when the buffer is full the
// event is dropped with a warning, which is acceptable for a side channel.
type Bus struct {
	log *zap.SugaredLogger
	ch  chan Event

	mu   sync.RWMutex
	subs []func(Event)

	done chan struct{}
}

func NewBus(buffer int, log *zap.SugaredLogger) *Bus {
	b := &Bus{log: log, ch: make(chan Event, buffer), done: make(chan struct{})}
	go b.run()
	return b
}

// Subscribe registers a handler for all future events. Handlers run on the
// bus goroutine and should return quickly.
func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Emit(_ context.Context, ev Event) {
	select {
	case b.ch <- ev:
	default:
		b.log.Warnw("event dropped, bus saturated", "kind", ev.Kind())
	}
}

func (b *Bus) run() {
	defer close(b.done)
	for ev := range b.ch {
		b.mu.RLock()
		subs := b.subs
		b.mu.RUnlock()
		for _, fn := range subs {
			fn(ev)
		}
	}
}

// Close stops the bus after draining buffered events.
func (b *Bus) Close() {
	close(b.ch)
	<-b.done
}
