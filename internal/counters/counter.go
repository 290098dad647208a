// Package counters holds the unread counter stores read by the UI.
package counters

import (
	"sync"

	"islandmarket/internal/observability"
)

// Counter is a non-negative unread count mutated only through Set,
// Increment, Add and Clear. Observers are called synchronously after each
// mutation in subscription order. Deliveries are serialized in mutation
// order, so the last value an observer sees is the counter's value.
// Observers may read the counter but must not mutate it.
type Counter struct {
	name string
	log  *observability.CounterLogger

	// notifyMu is held from a write until its observers return.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	value     int
	nextID    int
	observers []observer
}

type observer struct {
	id int
	fn func(int)
}

// NewCounter returns a counter starting at zero.
func NewCounter(name string) *Counter {
	c := &Counter{
		name: name,
		log:  observability.NewCounterLogger(name),
	}
	observability.UnreadCount.WithLabelValues(name).Set(0)
	return c
}

// Name returns the counter's name.
func (c *Counter) Name() string { return c.name }

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set overwrites the count. Negative values are clamped to zero.
func (c *Counter) Set(n int) {
	if n < 0 {
		c.log.LogClamp(n)
		n = 0
	}
	c.apply("set", func(int) int { return n })
}

// Increment adds one to the count.
func (c *Counter) Increment() {
	c.apply("increment", func(v int) int { return v + 1 })
}

// Add adds delta to the count. A result below zero is clamped to zero.
func (c *Counter) Add(delta int) {
	if delta == 0 {
		return
	}
	c.apply("add", func(v int) int {
		if v+delta < 0 {
			c.log.LogClamp(v + delta)
			return 0
		}
		return v + delta
	})
}

// Clear resets the count to zero.
func (c *Counter) Clear() {
	c.apply("clear", func(int) int { return 0 })
}

// Subscribe registers fn to receive the new value after every mutation.
// The returned function removes the subscription.
func (c *Counter) Subscribe(fn func(int)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.observers = append(c.observers, observer{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *Counter) apply(operation string, next func(int) int) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	from := c.value
	c.value = next(from)
	to := c.value
	observers := make([]observer, len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	observability.UnreadCount.WithLabelValues(c.name).Set(float64(to))
	observability.CounterOperations.WithLabelValues(c.name, operation).Inc()
	c.log.LogChange(operation, from, to)

	for _, o := range observers {
		o.fn(to)
	}
}
