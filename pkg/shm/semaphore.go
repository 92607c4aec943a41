package shm

import (
	"context"
	"errors"
	"io/fs"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmemdev/api"
	internalshm "github.com/srediag/shmemdev/internal/shm"
)

// Forever makes Wait block until a signal arrives.
const Forever time.Duration = -1

// WaitResult is the outcome of a successful Wait call.
type WaitResult int

const (
	// WaitAcquired means a signal was consumed.
	WaitAcquired WaitResult = iota
	// WaitTimedOut means no signal arrived in time. It is not an error.
	WaitTimedOut
)

func (r WaitResult) String() string {
	if r == WaitAcquired {
		return "acquired"
	}
	return "timed out"
}

// SemaphoreOptions defines how a semaphore is opened.
type SemaphoreOptions struct {
	// Path is the rendezvous path shared with the region.
	Path string
	// Tracer is optional.
	Tracer trace.Tracer
}

// Semaphore is the frame-ready signal between producer and consumer.
type Semaphore struct {
	path    string
	key     Key
	set     *internalshm.SemSet
	created bool
	closed  atomic.Bool
}

// OpenSemaphore opens the semaphore for opts.Path, creating it with a count
// of zero when it does not exist.
func OpenSemaphore(ctx context.Context, opts SemaphoreOptions) (s *Semaphore, err error) {
	_, span := startSpan(ctx, opts.Tracer, "shm.OpenSemaphore", opts.Path)
	defer func() { endSpan(span, err) }()

	key, err := DeriveKey(opts.Path)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		set, err := internalshm.LookupSemSet(int(key))
		if err == nil {
			span.SetAttributes(attribute.Bool("shm.created", false))
			return &Semaphore{path: opts.Path, key: key, set: set}, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, api.NewError(api.ErrSync, "shm.OpenSemaphore", opts.Path, err)
		}
		set, err = internalshm.CreateSemSet(int(key))
		if err == nil {
			span.SetAttributes(attribute.Bool("shm.created", true))
			return &Semaphore{path: opts.Path, key: key, set: set, created: true}, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, api.NewError(api.ErrSync, "shm.OpenSemaphore", opts.Path, err)
		}
		lastErr = err
	}
	return nil, api.NewError(api.ErrSync, "shm.OpenSemaphore", opts.Path, lastErr)
}

// Created reports whether this instance created the semaphore.
func (s *Semaphore) Created() bool { return s.created }

// Key returns the derived IPC key.
func (s *Semaphore) Key() Key { return s.key }

func (s *Semaphore) check(op string) error {
	if s.closed.Load() {
		return api.NewError(api.ErrClosed, op, s.path, nil)
	}
	return nil
}

// Reset sets the count to zero. Only the owner calls it, once, while
// opening. A signal posted before the reset is dropped; the
// consumer only cares about frames written after it arrived.
func (s *Semaphore) Reset() error {
	if err := s.check("shm.Reset"); err != nil {
		return err
	}
	if err := s.set.SetValue(0); err != nil {
		return api.NewError(api.ErrSync, "shm.Reset", s.path, err)
	}
	return nil
}

// Signal tells waiters that a new frame is ready.
func (s *Semaphore) Signal() error {
	if err := s.check("shm.Signal"); err != nil {
		return err
	}
	if err := s.set.Post(); err != nil {
		return api.NewError(api.ErrSync, "shm.Signal", s.path, err)
	}
	return nil
}

// Wait consumes one signal. With timeout Forever it blocks until a signal
// arrives; otherwise it returns WaitTimedOut once timeout has elapsed.
func (s *Semaphore) Wait(timeout time.Duration) (WaitResult, error) {
	if err := s.check("shm.Wait"); err != nil {
		return WaitTimedOut, err
	}
	ok, err := s.set.TimedWait(timeout)
	if err != nil {
		return WaitTimedOut, api.NewError(api.ErrSync, "shm.Wait", s.path, err)
	}
	if !ok {
		return WaitTimedOut, nil
	}
	return WaitAcquired, nil
}

// TryWait consumes one signal if one is pending, without suspending.
func (s *Semaphore) TryWait() (bool, error) {
	if err := s.check("shm.TryWait"); err != nil {
		return false, err
	}
	ok, err := s.set.TryWait()
	if err != nil {
		return false, api.NewError(api.ErrSync, "shm.TryWait", s.path, err)
	}
	return ok, nil
}

// Value returns the number of pending signals.
func (s *Semaphore) Value() (int, error) {
	if err := s.check("shm.Value"); err != nil {
		return 0, err
	}
	v, err := s.set.Value()
	if err != nil {
		return 0, api.NewError(api.ErrSync, "shm.Value", s.path, err)
	}
	return v, nil
}

// Close forgets the handle; the semaphore persists. Callers must make sure
// no Wait is outstanding on this handle.
func (s *Semaphore) Close() error {
	s.closed.Store(true)
	return nil
}

// RemoveSemaphore destroys the semaphore for path. Waiters in other
// processes fail with ErrSync. It is never called by the transport itself.
func RemoveSemaphore(path string) error {
	key, err := DeriveKey(path)
	if err != nil {
		return err
	}
	set, err := internalshm.LookupSemSet(int(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return api.NewError(api.ErrSync, "shm.RemoveSemaphore", path, err)
	}
	if err := set.Remove(); err != nil {
		return api.NewError(api.ErrSync, "shm.RemoveSemaphore", path, err)
	}
	return nil
}
