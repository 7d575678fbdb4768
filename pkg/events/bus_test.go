package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	b := NewBus(8, zap.NewNop().Sugar())

	var mu sync.Mutex
	var got []string
	b.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.Kind())
	})

	b.Emit(context.Background(), ApplicationCreated{Key: "k1", Label: "Acme"})
	b.Emit(context.Background(), TokenCreated{ApplicationKey: "k1", TokenKey: "t1"})
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"application.created", "token.created"}, got)
}

func TestBusEmitNeverBlocks(t *testing.T) {
	b := NewBus(1, zap.NewNop().Sugar())

	// Stall the bus goroutine so the buffer fills up.
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b.Subscribe(func(Event) {
		entered <- struct{}{}
		<-release
	})

	b.Emit(context.Background(), ApplicationCreated{Key: "k1"})
	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("bus goroutine never picked up the first event")
	}
	b.Emit(context.Background(), ApplicationCreated{Key: "k2"}) // fills the buffer

	done := make(chan struct{})
	go func() {
		b.Emit(context.Background(), ApplicationCreated{Key: "k3"}) // dropped
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked on a saturated bus")
	}

	close(release)
	b.Close()
}

func TestBusCloseDrainsBufferedEvents(t *testing.T) {
	b := NewBus(16, zap.NewNop().Sugar())

	var mu sync.Mutex
	count := 0
	b.Subscribe(func(Event) {
		mu.Lock()
		defer mu.Unlock()
		count++
	})

	for i := 0; i < 10; i++ {
		b.Emit(context.Background(), ApplicationCreated{Key: "k"})
	}
	b.Close()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 10, count)
}
