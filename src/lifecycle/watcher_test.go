package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, now func() time.Time) *CountdownWatcher {
	t.Helper()
	s, err := gocron.NewScheduler()
	require.NoError(t, err)
	s.Start()
	t.Cleanup(func() { _ = s.Shutdown() })

	w := NewCountdownWatcher(s)
	w.interval = 10 * time.Millisecond
	w.now = now
	return w
}

func TestWatchStopsAtDeparture(t *testing.T) {
	departure := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	var calls atomic.Int64
	// each tick advances the clock by one second, reaching departure on the fourth
	w := newTestWatcher(t, func() time.Time {
		n := calls.Add(1)
		return departure.Add(time.Duration(n-4) * time.Second)
	})

	var (
		mu    sync.Mutex
		ticks []Countdown
	)
	_, err := w.Watch(context.Background(), departure, func(c Countdown) {
		mu.Lock()
		ticks = append(ticks, c)
		mu.Unlock()
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(ticks) > 0 && ticks[len(ticks)-1].Departed
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, ticks, 4)
	assert.Equal(t, Countdown{Seconds: 3}, ticks[0])
	assert.Equal(t, Countdown{Seconds: 1}, ticks[2])
	assert.True(t, ticks[3].Departed)
}

func TestWatchCancelledStopsTicks(t *testing.T) {
	departure := time.Now().Add(time.Hour)
	w := newTestWatcher(t, time.Now)

	var ticks atomic.Int64
	ctx, cancel := context.WithCancel(context.Background())
	stop, err := w.Watch(ctx, departure, func(Countdown) { ticks.Add(1) })
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)
	seen := ticks.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, seen, ticks.Load())

	assert.NotPanics(t, func() {
		stop()
		stop()
	})
}

func TestWatchStopFromCallback(t *testing.T) {
	departure := time.Now().Add(time.Hour)
	w := newTestWatcher(t, time.Now)

	var (
		ticks atomic.Int64
		stop  func()
		ready = make(chan struct{})
	)
	stop, err := w.Watch(context.Background(), departure, func(Countdown) {
		<-ready
		ticks.Add(1)
		stop()
	})
	require.NoError(t, err)
	close(ready)

	assert.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, ticks.Load())
}

func TestWatchNoTickAfterStopReturns(t *testing.T) {
	departure := time.Now().Add(time.Hour)
	var (
		calls   atomic.Int64
		checked = make(chan struct{})
		release = make(chan struct{})
	)
	// the second tick parks after its stopped check, before onTick
	w := newTestWatcher(t, func() time.Time {
		if calls.Add(1) == 2 {
			close(checked)
			<-release
		}
		return time.Now()
	})

	var (
		stopReturned atomic.Bool
		late         atomic.Int64
	)
	stop, err := w.Watch(context.Background(), departure, func(Countdown) {
		if stopReturned.Load() {
			late.Add(1)
		}
	})
	require.NoError(t, err)

	select {
	case <-checked:
	case <-time.After(time.Second):
		t.Fatal("second tick never ran")
	}
	done := make(chan struct{})
	go func() {
		stop()
		stopReturned.Store(true)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("stop returned while a tick was pending")
	case <-time.After(30 * time.Millisecond):
	}
	close(release)
	<-done

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, late.Load())
	assert.EqualValues(t, 2, calls.Load())
}

func TestWatchAlreadyDeparted(t *testing.T) {
	w := newTestWatcher(t, time.Now)
	got := make(chan Countdown, 4)
	_, err := w.Watch(context.Background(), time.Now().Add(-time.Minute), func(c Countdown) { got <- c })
	require.NoError(t, err)

	select {
	case c := <-got:
		assert.True(t, c.Departed)
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, got)
}
