// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerAfterDeliversRoughlyOnTime(t *testing.T) {
	s, r := NewTimeWheel[string](time.Millisecond)
	defer s.Close()

	start := time.Now()
	s.Arrange("hello").After(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestSchedulerAtPastInstantDeliversImmediately(t *testing.T) {
	s, r := NewTimeWheel[int](time.Millisecond)
	defer s.Close()

	s.Arrange(7).At(time.Now().Add(-time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	v, err := r.Recv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestSchedulerDeliversManyWithStaggeredDeadlines(t *testing.T) {
	s, r := NewTimeWheel[int](time.Millisecond)
	defer s.Close()

	const n = 50
	for i := 0; i < n; i++ {
		s.Arrange(i).After(time.Duration(n-i) * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := map[int]bool{}
	for i := 0; i < n; i++ {
		v, err := r.Recv(ctx)
		require.NoError(t, err)
		received[v] = true
	}
	assert.Len(t, received, n)
}

func TestSchedulerCloseStopsDriver(t *testing.T) {
	s, r := NewTimeWheel[int](time.Millisecond)
	s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := r.Recv(ctx)
	require.Error(t, err)
	var recvErr *RecvError
	assert.ErrorAs(t, err, &recvErr)
}

func TestSchedulerReceiverCloseSurfacesSendError(t *testing.T) {
	s, r := NewTimeWheel[int](time.Millisecond)
	defer s.Close()

	r.Close()
	s.Arrange(1).After(10 * time.Millisecond)

	// The delivery attempt after Receiver.Close is a SendError, on which the
	// driver logs and exits; its exit closes the outbound channel, so Recv
	// then reports a RecvError instead of the value.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := r.Recv(ctx)
	var recvErr *RecvError
	assert.ErrorAs(t, err, &recvErr)
}

func TestWithRingCheckOptionIsAccepted(t *testing.T) {
	s, r := NewTimeWheel[int](time.Millisecond, WithRingCheck(true))
	defer s.Close()
	defer r.Close()

	s.Arrange(1).After(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := r.Recv(ctx)
	require.NoError(t, err)
}
