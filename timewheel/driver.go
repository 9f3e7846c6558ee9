// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import (
	"context"
	"sync"
	"time"

	"github.com/cascadewheel/timewheel/pkg/log"
)

// submission is a caller's arrangement request, queued until the driver
// next drains the inbound queue.
type submission[T any] struct {
	data     T
	deadline time.Time
}

// driver is the dedicated goroutine that owns the wheel. Only the driver
// goroutine ever touches w: this is what lets Scheduler.submit avoid
// serialising every arrangement through the wheel's own locking.
type driver[T any] struct {
	interval      time.Duration
	intervalNanos int64
	startAt       time.Time // monotonic reference instant
	startWall     time.Time // wall-clock reference, for translating deadlines

	w      *wheel[T]
	logger *log.Logger
	check  bool

	mu      sync.Mutex
	pending []submission[T]
	wake    chan struct{}

	schedulerClosed chan struct{}
	receiverClosed  chan struct{}

	sendIn  chan<- T
	recvOut <-chan T

	fatal error
}

// Scheduler is the public handle for arranging deliveries. It never touches
// the wheel directly; every arrangement is handed to the driver goroutine
// through the inbound submission queue.
type Scheduler[T any] struct {
	d         *driver[T]
	closeOnce sync.Once
}

// PendingSchedule is the fluent continuation returned by Arrange.
type PendingSchedule[T any] struct {
	s    *Scheduler[T]
	data T
}

// Receiver is the public handle for consuming deliveries.
type Receiver[T any] struct {
	d         *driver[T]
	closeOnce sync.Once
}

// NewTimeWheel starts a driver goroutine and returns the Scheduler/Receiver
// pair used to arrange and consume deliveries. interval must be at least a
// nanosecond; it is clamped up to that floor rather than rejected, since a
// zero or negative interval is almost always a construction-time mistake
// rather than a value the caller meant literally.
func NewTimeWheel[T any](interval time.Duration, opts ...Option) (*Scheduler[T], *Receiver[T]) {
	if interval < time.Nanosecond {
		interval = time.Nanosecond
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sendIn, recvOut := newOutboundChan[T]()

	d := &driver[T]{
		interval:        interval,
		intervalNanos:   interval.Nanoseconds(),
		startAt:         time.Now(),
		startWall:       time.Now(),
		logger:          cfg.logger,
		check:           cfg.ringCheck,
		wake:            make(chan struct{}, 1),
		schedulerClosed: make(chan struct{}),
		receiverClosed:  make(chan struct{}),
		sendIn:          sendIn,
		recvOut:         recvOut,
	}
	d.w = newWheel[T](d.notify)

	go d.run()

	return &Scheduler[T]{d: d}, &Receiver[T]{d: d}
}

// Arrange begins a fluent scheduling call for entity.
func (s *Scheduler[T]) Arrange(entity T) PendingSchedule[T] {
	return PendingSchedule[T]{s: s, data: entity}
}

// Close signals the driver to stop. Idempotent; pending entities are
// dropped without being delivered.
func (s *Scheduler[T]) Close() {
	s.closeOnce.Do(func() {
		close(s.d.schedulerClosed)
	})
}

// At arranges data to be delivered at the absolute instant when. An instant
// already in the past is delivered at the driver's next advance, not
// rejected.
func (p PendingSchedule[T]) At(when time.Time) {
	p.s.submit(p.data, when)
}

// After arranges data to be delivered after d elapses from now.
func (p PendingSchedule[T]) After(d time.Duration) {
	p.s.submit(p.data, time.Now().Add(d))
}

func (s *Scheduler[T]) submit(data T, when time.Time) {
	d := s.d
	d.mu.Lock()
	d.pending = append(d.pending, submission[T]{data: data, deadline: when})
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Recv blocks until the next delivery, ctx cancellation, or driver
// shutdown.
func (r *Receiver[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v, ok := <-r.d.recvOut:
		if !ok {
			var zero T
			return zero, &RecvError{}
		}
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Close marks the receiver as gone. Any delivery attempted after this is a
// fatal SendError from the driver's perspective, and the driver exits.
func (r *Receiver[T]) Close() {
	r.closeOnce.Do(func() {
		close(r.d.receiverClosed)
	})
}

// notify is the wheel's expire callback. A failed delivery is recorded on
// d.fatal so the run loop can stop and log it after the current cascade
// finishes (the callback signature itself has no way to report failure).
func (d *driver[T]) notify(data T) {
	if d.fatal != nil {
		return
	}
	select {
	case <-d.receiverClosed:
		d.fatal = &SendError{}
		return
	default:
	}
	select {
	case d.sendIn <- data:
	case <-d.receiverClosed:
		d.fatal = &SendError{}
	}
}

func (d *driver[T]) run() {
	defer close(d.sendIn)

	d.logger.Info("timewheel: driver started, interval=%s", d.interval)
	defer d.logger.Info("timewheel: driver stopped")

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		loopStart := time.Now()

		shouldTicks := uint64(loopStart.Sub(d.startAt).Nanoseconds() / d.intervalNanos)
		if shouldTicks > d.w.ticks {
			d.w.tickTo(shouldTicks)
		}
		if d.check && !d.w.checkInvariants() {
			d.logger.Error("timewheel: occupancy bitmap invariant violated at tick %d", d.w.ticks)
		}

		d.ingest(loopStart)

		if d.fatal != nil {
			d.logger.Error("timewheel: %v", d.fatal)
			return
		}

		select {
		case <-d.schedulerClosed:
			return
		default:
		}

		nextTicks := d.w.nextTicks()
		sleepFor := time.Duration(d.intervalNanos*int64(nextTicks)) - time.Since(loopStart)
		if sleepFor <= 0 {
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(sleepFor)

		select {
		case <-timer.C:
		case <-d.wake:
		case <-d.schedulerClosed:
			return
		}
	}
}

// ingest drains the inbound submission queue. Entries within one interval
// of their deadline bypass the wheel entirely and are delivered right away;
// everything else is converted to a tick offset and scheduled.
func (d *driver[T]) ingest(now time.Time) {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	elapsed := now.Sub(d.startAt)
	for _, sub := range pending {
		pureOffset := sub.deadline.Sub(d.startWall) - elapsed
		if pureOffset < 0 {
			pureOffset = 0
		}

		if pureOffset <= d.interval {
			d.notify(sub.data)
			if d.fatal != nil {
				return
			}
			continue
		}

		offsetTicks := uint64(pureOffset.Nanoseconds() / d.intervalNanos)
		d.w.schedule(sub.data, offsetTicks, sub.deadline)
	}
}
