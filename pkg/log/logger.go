// Copyright 2024 The Cascadewheel Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log provides leveled logging with the same package-level call
// shape as a plain *log.Logger wrapper, backed by zerolog so that output is
// structured and allocation-aware instead of hand-formatted strings.
package log

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Level represents the log level.
type Level int

const (
	LevelDebug Level = iota
	LevelVerbose
	LevelNotice
	LevelWarning
	LevelError
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelVerbose:
		return zerolog.TraceLevel
	case LevelNotice:
		return zerolog.InfoLevel
	case LevelWarning:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger is a leveled logger instance. The zero value is not usable; use
// New or Default.
type Logger struct {
	level atomic.Int32
	z     zerolog.Logger
}

// New creates a Logger writing to w at the given level.
func New(level Level, w io.Writer) *Logger {
	l := &Logger{z: zerolog.New(w).With().Timestamp().Logger()}
	l.level.Store(int32(level))
	return l
}

func (l *Logger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

func (l *Logger) SetLevelString(s string) {
	switch s {
	case "debug":
		l.SetLevel(LevelDebug)
	case "verbose":
		l.SetLevel(LevelVerbose)
	case "notice":
		l.SetLevel(LevelNotice)
	case "warning":
		l.SetLevel(LevelWarning)
	case "error":
		l.SetLevel(LevelError)
	default:
		l.SetLevel(LevelNotice)
	}
}

func (l *Logger) enabled(level Level) bool {
	return level >= l.Level()
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	l.z.WithLevel(level.zerolog()).Msg(msg)
}

func (l *Logger) Debug(format string, args ...interface{})   { l.log(LevelDebug, format, args...) }
func (l *Logger) Verbose(format string, args ...interface{}) { l.log(LevelVerbose, format, args...) }
func (l *Logger) Info(format string, args ...interface{})    { l.log(LevelNotice, format, args...) }
func (l *Logger) Warning(format string, args ...interface{}) { l.log(LevelWarning, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})    { l.Warning(format, args...) }
func (l *Logger) Error(format string, args ...interface{})   { l.log(LevelError, format, args...) }

var std = New(LevelNotice, os.Stdout)

// Default returns the package-global logger backing the package-level
// functions below.
func Default() *Logger { return std }

// SetLevel sets the default logger's level.
func SetLevel(l Level) { std.SetLevel(l) }

// SetLevelString sets the default logger's level from a string.
func SetLevelString(s string) { std.SetLevelString(s) }

// SetOutput redirects the default logger's output.
func SetOutput(w io.Writer) {
	std.z = std.z.Output(w)
}

func Debug(format string, args ...interface{})   { std.Debug(format, args...) }
func Verbose(format string, args ...interface{}) { std.Verbose(format, args...) }
func Info(format string, args ...interface{})    { std.Info(format, args...) }
func Warning(format string, args ...interface{}) { std.Warning(format, args...) }
func Warn(format string, args ...interface{})    { std.Warn(format, args...) }
func Error(format string, args ...interface{})   { std.Error(format, args...) }

func GetLevel() Level        { return std.Level() }
func IsDebugEnabled() bool   { return std.enabled(LevelDebug) }
func IsVerboseEnabled() bool { return std.enabled(LevelVerbose) }
