package lifecycle

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// CountdownWatcher recomputes a booking's countdown on a recurring job and
// removes the job once the countdown is terminal or the watch is cancelled.
type CountdownWatcher struct {
	scheduler gocron.Scheduler
	interval  time.Duration
	now       func() time.Time
}

func NewCountdownWatcher(s gocron.Scheduler) *CountdownWatcher {
	return &CountdownWatcher{scheduler: s, interval: time.Second, now: time.Now}
}

// Watch calls onTick right away and then once per interval. The returned stop
// func is idempotent and may be called from inside onTick. Once stop returns no
// further onTick call begins: a tick caught between its stopped check and
// onTick is waited for. Ticks stop on their own after the departed value.
func (w *CountdownWatcher) Watch(ctx context.Context, departure time.Time, onTick func(Countdown)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)

	var (
		mu       sync.Mutex
		job      gocron.Job
		stopped  atomic.Bool
		stopOnce sync.Once
		// tickMu is held from the stopped check until onTick returns
		tickMu sync.Mutex
		inTick atomic.Bool
	)
	stop := func() {
		stopOnce.Do(func() {
			stopped.Store(true)
			cancel()
			// called from inside onTick, the tick already holds tickMu
			if !inTick.Load() {
				tickMu.Lock()
				tickMu.Unlock()
			}
			mu.Lock()
			j := job
			mu.Unlock()
			if j != nil {
				w.remove(j)
			}
		})
	}

	task := func() {
		tickMu.Lock()
		if stopped.Load() {
			tickMu.Unlock()
			return
		}
		c := ComputeCountdown(departure, w.now())
		inTick.Store(true)
		onTick(c)
		inTick.Store(false)
		if c.Departed {
			stopped.Store(true)
		}
		tickMu.Unlock()
		if c.Departed {
			stop()
		}
	}

	j, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(task),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		log.Printf("[Countdown] error scheduling job: %s\n", err.Error())
		return nil, err
	}
	mu.Lock()
	job = j
	mu.Unlock()
	// the first tick may already have reached the terminal state
	if stopped.Load() {
		w.remove(j)
	}

	go func() {
		<-ctx.Done()
		stop()
	}()
	return stop, nil
}

func (w *CountdownWatcher) remove(j gocron.Job) {
	if err := w.scheduler.RemoveJob(j.ID()); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		log.Printf("[Countdown] error removing job %s: %s\n", j.ID().String(), err.Error())
	}
}
