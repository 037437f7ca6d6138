package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShutdownRunsComponentsInReverseOrder(t *testing.T) {
	m := NewManager(nil)

	var mu sync.Mutex
	var order []string
	record := func(name string) Func {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}

	m.Register("first", record("first"))
	m.Register("second", record("second"))
	m.Register("third", record("third"))

	m.Shutdown()

	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewManager(nil)
	calls := 0
	m.Register("counter", Func(func() { calls++ }))

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, 1, calls)
}

func TestShutdownSkipsSlowComponent(t *testing.T) {
	m := NewManager(nil)
	m.SetTimeout(20 * time.Millisecond)

	release := make(chan struct{})
	defer close(release)
	fastRan := false

	m.Register("fast", Func(func() { fastRan = true }))
	m.Register("slow", Func(func() { <-release }))

	start := time.Now()
	m.Shutdown()

	assert.True(t, fastRan)
	assert.Less(t, time.Since(start), time.Second)
}
