// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import "time"

// entity is the wheel's unit of scheduled work. It is never exposed outside
// the package: callers only ever see the payload they handed to Arrange.
type entity[T any] struct {
	data T

	// fireTick is the absolute wheel tick at which this entity must expire.
	fireTick uint64

	// target is the wall-clock instant this entity was arranged for. It is
	// retained for diagnostics only and never consulted by scheduling logic.
	target time.Time
}
