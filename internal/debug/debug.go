/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package debug is the internal leveled logger shared by the shmemdev packages.
package debug

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

var (
	level atomic.Int32

	baseMu sync.RWMutex
	base   logrus.FieldLogger
)

func init() {
	l := logrus.New()
	// gating is done by level so that SHMEMDEV_LOG_LEVEL works with any backend
	l.SetLevel(logrus.TraceLevel)
	base = l

	level.Store(LevelWarn)
	if s := os.Getenv("SHMEMDEV_LOG_LEVEL"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			SetLogLevel(n)
		}
	}
}

// SetLogLevel changes the level of every logger; the default is Warn.
// The process env `SHMEMDEV_LOG_LEVEL` also sets it (0=Trace ... 5=silent).
func SetLogLevel(l int) {
	if l >= LevelTrace && l <= LevelNoPrint {
		level.Store(int32(l))
	}
}

// LogLevel returns the current level.
func LogLevel() int {
	return int(level.Load())
}

// SetLogger replaces the backend of every logger without its own override.
func SetLogger(l logrus.FieldLogger) {
	if l == nil {
		return
	}
	baseMu.Lock()
	base = l
	baseMu.Unlock()
}

// Logger writes through logrus with a fixed set of fields.
type Logger struct {
	name   string
	fields logrus.Fields
	out    logrus.FieldLogger
}

// New returns a logger tagged with name.
func New(name string) *Logger {
	return &Logger{name: name, fields: logrus.Fields{"logger": name}}
}

// With returns a copy carrying an extra field.
func (l *Logger) With(key string, value interface{}) *Logger {
	fields := make(logrus.Fields, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Logger{name: l.name, fields: fields, out: l.out}
}

// WithBackend returns a copy writing to out instead of the package backend.
// A nil out keeps the package backend.
func (l *Logger) WithBackend(out logrus.FieldLogger) *Logger {
	return &Logger{name: l.name, fields: l.fields, out: out}
}

func (l *Logger) entry() *logrus.Entry {
	out := l.out
	if out == nil {
		baseMu.RLock()
		out = base
		baseMu.RUnlock()
	}
	return out.WithFields(l.fields)
}

func enabled(lv int) bool {
	return int(level.Load()) <= lv
}

func (l *Logger) Errorf(format string, a ...interface{}) {
	if !enabled(LevelError) {
		return
	}
	l.entry().Errorf(format, a...)
}

func (l *Logger) Warnf(format string, a ...interface{}) {
	if !enabled(LevelWarn) {
		return
	}
	l.entry().Warnf(format, a...)
}

func (l *Logger) Infof(format string, a ...interface{}) {
	if !enabled(LevelInfo) {
		return
	}
	l.entry().Infof(format, a...)
}

func (l *Logger) Debugf(format string, a ...interface{}) {
	if !enabled(LevelDebug) {
		return
	}
	l.entry().Debugf(format, a...)
}

func (l *Logger) Tracef(format string, a ...interface{}) {
	if !enabled(LevelTrace) {
		return
	}
	l.entry().Tracef(format, a...)
}
