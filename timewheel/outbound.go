// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

// newOutboundChan builds an unbounded, single-consumer delivery channel: a
// forwarding goroutine buffers sends into a growable slice so the driver
// never blocks handing off an expired entity, and the receive side only
// ever sees a plain, close-terminated channel. Closing in signals the
// forwarder to drain whatever remains and then close out.
func newOutboundChan[T any]() (in chan<- T, out <-chan T) {
	inCh := make(chan T)
	outCh := make(chan T)

	go func() {
		defer close(outCh)

		var queue []T
		for {
			if len(queue) == 0 {
				v, ok := <-inCh
				if !ok {
					return
				}
				queue = append(queue, v)
				continue
			}

			select {
			case v, ok := <-inCh:
				if !ok {
					for _, q := range queue {
						outCh <- q
					}
					return
				}
				queue = append(queue, v)
			case outCh <- queue[0]:
				queue = queue[1:]
			}
		}
	}()

	return inCh, outCh
}
