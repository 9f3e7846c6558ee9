// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

// slot is a bucket cell holding zero or more entities that expire at the
// same coarse offset. A nil items slice means empty; a non-nil, possibly
// zero-length slice is never produced by push, so "empty" and
// "present-but-zero" stay distinguishable for callers that care.
type slot[T any] struct {
	items []entity[T]
}

// push appends an entity to the slot. It reports whether the slot was empty
// before the push, so the parent bucket can maintain its occupancy bitmap.
func (s *slot[T]) push(e entity[T]) (wasEmpty bool) {
	wasEmpty = s.items == nil
	s.items = append(s.items, e)
	return wasEmpty
}

// take atomically returns the slot's items and resets it to empty.
func (s *slot[T]) take() []entity[T] {
	items := s.items
	s.items = nil
	return items
}

func (s *slot[T]) empty() bool {
	return len(s.items) == 0
}
