// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timewheel

import "github.com/cascadewheel/timewheel/pkg/log"

// config holds the optional, non-required knobs for a Scheduler. The only
// required configuration remains NewTimeWheel's interval argument; every
// Option has a sane default.
type config struct {
	logger    *log.Logger
	ringCheck bool
}

func defaultConfig() config {
	return config{logger: log.Default()}
}

// Option customizes a Scheduler at construction time.
type Option func(*config)

// WithLogger overrides the logger a Scheduler's driver uses. Defaults to
// the package-level log.Default() logger.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRingCheck enables a check of every bucket's occupancy bitmap after
// each advance of the driver loop; a violation is logged as an error. It is
// intended for development and testing — it is not free, and is off by
// default.
func WithRingCheck(enabled bool) Option {
	return func(c *config) {
		c.ringCheck = enabled
	}
}
