// Package api defines the public contracts shared by the shmemdev packages:
// the error taxonomy and the health contract used by adapters.
package api

import (
	"errors"
	"strings"
)

var (
	// ErrConfiguration is returned when geometry, rate or paths are unusable.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrKeyDerivation is returned when the rendezvous path cannot be turned into an IPC key.
	ErrKeyDerivation = errors.New("rendezvous key derivation failed")
	// ErrRegionCreate is returned when the shared segment cannot be created or looked up.
	ErrRegionCreate = errors.New("shared region create failed")
	// ErrRegionAttach is returned when the shared segment cannot be mapped into the process.
	ErrRegionAttach = errors.New("shared region attach failed")
	// ErrSync is returned for any semaphore failure other than a timeout.
	ErrSync = errors.New("semaphore operation failed")
	// ErrTimedOut means no signal arrived in time. It is control flow, not a failure.
	ErrTimedOut = errors.New("timed out waiting for frame")
	// ErrWouldBlock means the operation would have suspended in non-blocking mode.
	ErrWouldBlock = errors.New("resource temporarily unavailable, try again")
	// ErrUnsupportedStreamShape is returned when a sink is opened with anything
	// other than exactly one video or audio stream.
	ErrUnsupportedStreamShape = errors.New("only a single video or audio stream is supported")
	// ErrAllocation is returned when a result list cannot be allocated.
	ErrAllocation = errors.New("allocation failed")
	// ErrClosed is returned by operations on a closed or failed session.
	ErrClosed = errors.New("transport closed")
	// ErrUnsupportedPlatform is returned where SysV IPC is not available.
	ErrUnsupportedPlatform = errors.New("shared memory transport is not supported on this platform")
)

// Error carries the failure kind together with the operation, the rendezvous
// path and the underlying OS error, so fatal errors can be diagnosed from the
// message alone.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

// NewError builds an *Error. err may be nil.
func NewError(kind error, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsTemporary reports whether err is recoverable control flow
// (ErrWouldBlock or ErrTimedOut) that must not end a session.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrWouldBlock) || errors.Is(err, ErrTimedOut)
}
