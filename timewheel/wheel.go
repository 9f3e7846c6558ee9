// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import (
	"math"
	"time"
)

// levelCount is the number of cascaded buckets. levelCount levels of a
// ringSize-wide ring give a representable horizon of ringSize^levelCount
// ticks (~6.87e10 at ringSize=64).
const levelCount = 6

// maxHorizon is the first tick offset no longer representable by any level;
// entities requesting an offset at or beyond this go to the homeless list.
const maxHorizon = uint64(1) << (ringBits * levelCount)

// wheel is the hierarchical cascading-bucket timer core. It owns every
// entity currently scheduled; on expiry an entity's data is moved out and
// handed to expire exactly once.
type wheel[T any] struct {
	buckets [levelCount]*bucket[T]

	// ticks is the wheel's absolute, monotonically non-decreasing clock.
	ticks uint64

	// homeless holds entities whose offset was at or beyond maxHorizon at
	// insertion time. Drained back into the buckets once a full level-5
	// cascade completes without itself wrapping.
	homeless []entity[T]

	expire func(T)
}

func newWheel[T any](expire func(T)) *wheel[T] {
	w := &wheel[T]{expire: expire}
	for level := range w.buckets {
		w.buckets[level] = newBucket[T](uint32(level))
	}
	return w
}

// schedule places data to fire offset ticks from the wheel's current clock.
// offset must be > 0: a zero offset means immediate delivery, which is the
// driver's job to detect and route around the wheel entirely.
func (w *wheel[T]) schedule(data T, offset uint64, target time.Time) {
	if offset == 0 {
		panic("timewheel: wheel does not accept zero-offset scheduling")
	}

	e := entity[T]{data: data, fireTick: w.ticks + offset, target: target}
	w.place(e, offset)
}

// place routes e into the level whose horizon covers offset, or into the
// homeless list if none does.
func (w *wheel[T]) place(e entity[T], offset uint64) {
	level, ok := toLevel(offset)
	if !ok {
		w.homeless = append(w.homeless, e)
		return
	}
	w.buckets[level].add(e, offset)
}

// tickTo advances the wheel's clock to target, dispatching every entity
// whose fireTick falls at or before target along the way. It is a no-op if
// target has already been reached.
func (w *wheel[T]) tickTo(target uint64) {
	if target <= w.ticks {
		return
	}

	remaining := target - w.ticks
	for remaining > 0 {
		step := remaining
		if step > math.MaxUint32 {
			step = math.MaxUint32
		}

		w.ticks += step
		w.advance(uint32(step))
		remaining -= step
	}
}

// advance runs a single cascade for t ticks: level 0 always ticks; each
// subsequent level ticks only if its child reported a wrap (cascadeTicks >
// 0). The homeless list is drained only once the cascade reaches level 5
// and level 5 itself reports no further wrap — a full level-5 cascade.
func (w *wheel[T]) advance(t uint32) {
	ticksForLevel := t
	fullTopCascade := false

	for level := 0; level < levelCount; level++ {
		expired, cascadeTicks := w.buckets[level].tick(ticksForLevel)
		for _, e := range expired {
			w.disposeOf(e)
		}

		if cascadeTicks == 0 {
			fullTopCascade = level == levelCount-1
			break
		}
		if level == levelCount-1 {
			break
		}
		ticksForLevel = cascadeTicks
	}

	if fullTopCascade {
		w.drainHomeless()
	}
}

// disposeOf either fires an entity whose fireTick has been reached, or
// re-inserts it at the finer resolution its remaining offset now affords.
// This re-insertion is how a higher-level bucket decants into lower
// resolution as a cascade reaches it.
func (w *wheel[T]) disposeOf(e entity[T]) {
	if e.fireTick <= w.ticks {
		w.expire(e.data)
		return
	}
	w.place(e, e.fireTick-w.ticks)
}

func (w *wheel[T]) drainHomeless() {
	if len(w.homeless) == 0 {
		return
	}
	pending := w.homeless
	w.homeless = nil
	for _, e := range pending {
		w.disposeOf(e)
	}
}

// nextTicks returns a safe upper bound on how many level-0 ticks the driver
// may sleep through before it must re-check the wheel. Never returns 0.
func (w *wheel[T]) nextTicks() uint32 {
	l0 := w.buckets[0].nonStopTicks()
	if l0 == ringSize {
		l1 := w.buckets[1].nonStopTicks()
		if l1 > l0 {
			return l1
		}
		return l0
	}
	if l0 < 1 {
		return 1
	}
	return l0
}

// checkInvariants verifies every bucket's occupancy bitmap against its
// slots. Only ever called when a Scheduler opts into WithRingCheck(true).
func (w *wheel[T]) checkInvariants() bool {
	for _, b := range w.buckets {
		if !b.checkInvariant() {
			return false
		}
	}
	return true
}

// toLevel returns the level whose horizon covers offset, or false if offset
// is at or beyond maxHorizon (the caller should route it to homeless).
func toLevel(offset uint64) (level int, ok bool) {
	for lvl := 0; lvl < levelCount; lvl++ {
		if offset < uint64(1)<<(ringBits*(lvl+1)) {
			return lvl, true
		}
	}
	return 0, false
}
