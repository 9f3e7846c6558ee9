// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import "fmt"

// RecvError reports that the outbound delivery channel was closed while a
// receiver was waiting on it, i.e. the driver has shut down.
type RecvError struct {
	cause error
}

func (e *RecvError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("timewheel: receiver closed: %v", e.cause)
	}
	return "timewheel: receiver closed"
}

func (e *RecvError) Unwrap() error { return e.cause }

// SendError reports that the driver could not deliver an expired entity to
// the outbound channel because it has no remaining receivers. The driver
// treats this as fatal and exits.
type SendError struct {
	cause error
}

func (e *SendError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("timewheel: send failed: %v", e.cause)
	}
	return "timewheel: send failed"
}

func (e *SendError) Unwrap() error { return e.cause }
