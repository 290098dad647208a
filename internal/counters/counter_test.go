package counters

import (
	"context"
	"sync"
	"testing"

	"islandmarket/internal/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter_Operations(t *testing.T) {
	c := NewCounter("test")
	assert.Equal(t, 0, c.Value())

	c.Increment()
	c.Increment()
	c.Clear()
	assert.Equal(t, 0, c.Value())

	c.Set(5)
	c.Increment()
	assert.Equal(t, 6, c.Value())
}

func TestCounter_SetNegativeClamps(t *testing.T) {
	c := NewCounter("test")
	c.Set(3)
	c.Set(-4)
	assert.Equal(t, 0, c.Value())
}

func TestCounter_Add(t *testing.T) {
	c := NewCounter("test")
	c.Set(3)

	c.Add(2)
	assert.Equal(t, 5, c.Value())
	c.Add(-4)
	assert.Equal(t, 1, c.Value())
	c.Add(-7)
	assert.Equal(t, 0, c.Value())
}

func TestCounter_Observers(t *testing.T) {
	c := NewCounter("test")

	var seen []int
	unsubscribe := c.Subscribe(func(v int) { seen = append(seen, v) })

	c.Increment()
	c.Set(7)
	c.Clear()
	assert.Equal(t, []int{1, 7, 0}, seen)

	unsubscribe()
	c.Increment()
	assert.Equal(t, []int{1, 7, 0}, seen)
}

func TestCounter_ObserverReadsUpdatedValue(t *testing.T) {
	c := NewCounter("test")
	var observed int
	c.Subscribe(func(int) { observed = c.Value() })

	c.Set(2)
	assert.Equal(t, 2, observed)
}

func TestCounter_UnsubscribeKeepsOthers(t *testing.T) {
	c := NewCounter("test")
	var a, b int
	unsubA := c.Subscribe(func(v int) { a = v })
	c.Subscribe(func(v int) { b = v })

	unsubA()
	unsubA()
	c.Set(4)
	assert.Equal(t, 0, a)
	assert.Equal(t, 4, b)
}

func TestCounter_ConcurrentIncrements(t *testing.T) {
	c := NewCounter("test")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Increment()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Value())
}

func TestCounter_ObserversSeeWritesInOrder(t *testing.T) {
	c := NewCounter("test")

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	c.Subscribe(func(int) {
		once.Do(func() {
			close(entered)
			<-release
		})
	})

	var mu sync.Mutex
	var last int
	c.Subscribe(func(v int) {
		mu.Lock()
		last = v
		mu.Unlock()
	})

	setDone := make(chan struct{})
	go func() {
		defer close(setDone)
		c.Set(5)
	}()
	<-entered

	clearDone := make(chan struct{})
	go func() {
		defer close(clearDone)
		c.Clear()
	}()

	close(release)
	<-setDone
	<-clearDone

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, c.Value())
	assert.Equal(t, c.Value(), last)
}

func TestCounter_MirrorsGauge(t *testing.T) {
	c := NewCounter("gauge_test")
	c.Set(9)
	assert.Equal(t, float64(9), testutil.ToFloat64(observability.UnreadCount.WithLabelValues("gauge_test")))
}

func TestStore_IndependentCounters(t *testing.T) {
	s := NewStore()
	s.Notification.Set(2)
	s.Chat.Increment()

	assert.Equal(t, Snapshot{Notification: 2, Chat: 1, Noti: 0}, s.Snapshot())

	s.Reset()
	assert.Equal(t, Snapshot{}, s.Snapshot())
}

func TestStore_IsolatedInstances(t *testing.T) {
	a, b := NewStore(), NewStore()
	a.Chat.Set(3)
	assert.Equal(t, 0, b.Chat.Value())
}

func TestStore_CounterByName(t *testing.T) {
	s := NewStore()
	for _, name := range []string{NameNotification, NameChat, NameNoti} {
		c, ok := s.Counter(name)
		require.True(t, ok)
		assert.Equal(t, name, c.Name())
	}
	_, ok := s.Counter("likes")
	assert.False(t, ok)
}

func TestStore_Context(t *testing.T) {
	s := NewStore()
	ctx := WithStore(context.Background(), s)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = FromContext(context.Background())
	assert.False(t, ok)
}
