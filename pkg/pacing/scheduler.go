// Package pacing spaces frame production and consumption to a target rate.
//
// The scheduler keeps an origin and a count of frames let through; the
// deadline of frame n is origin + n*Den/Num seconds, computed exactly in
// integer nanoseconds. Rounding never accumulates, so after any number of
// frames the deadline is within one nanosecond of the ideal one.
package pacing

import (
	"context"
	"math"
	"math/bits"
	"time"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

// Kind is what the caller must do after a tick.
type Kind int

const (
	// Proceed means the frame is due; the deadline has moved one period on.
	Proceed Kind = iota
	// SleepFor means the caller sleeps for Action.Delay and ticks again.
	SleepFor
	// Reject means the frame is not due and the caller must not block.
	Reject
)

func (k Kind) String() string {
	switch k {
	case Proceed:
		return "proceed"
	case SleepFor:
		return "sleep"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Action is the result of Tick.
type Action struct {
	Kind  Kind
	Delay time.Duration
}

// Clock abstracts time for the scheduler.
type Clock interface {
	Now() time.Time
	// Sleep returns early with ctx.Err() when ctx is done.
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// Scheduler holds the pacing state of one producer or consumer. It is not
// safe for concurrent use.
type Scheduler struct {
	rate    frame.Rational
	clock   Clock
	started bool
	origin  time.Time
	frames  uint64
	next    time.Time
}

// New returns a scheduler for rate. A zero or invalid rate disables pacing.
func New(rate frame.Rational, opts ...Option) *Scheduler {
	s := &Scheduler{rate: rate, clock: SystemClock}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tick checks the deadline once. The first call sets the deadline to now.
func (s *Scheduler) Tick(nonBlocking bool) Action {
	now := s.clock.Now()
	if !s.started {
		s.started = true
		s.origin = now
		s.next = now
	}
	if !s.rate.Valid() {
		return Action{Kind: Proceed}
	}
	delay := s.next.Sub(now)
	if delay <= 0 {
		s.frames++
		s.next = s.origin.Add(s.offset(s.frames))
		return Action{Kind: Proceed}
	}
	if nonBlocking {
		return Action{Kind: Reject, Delay: delay}
	}
	return Action{Kind: SleepFor, Delay: delay}
}

// Wait ticks until the frame is due, sleeping in between. Waking before the
// deadline just leads to another tick. In non-blocking mode a frame that is
// not due yet yields api.ErrWouldBlock without sleeping.
func (s *Scheduler) Wait(ctx context.Context, nonBlocking bool) error {
	for {
		a := s.Tick(nonBlocking)
		switch a.Kind {
		case Proceed:
			return nil
		case Reject:
			return api.ErrWouldBlock
		}
		if err := s.clock.Sleep(ctx, a.Delay); err != nil {
			return err
		}
	}
}

// offset is floor(n * Den * 1e9 / Num) nanoseconds, saturating.
func (s *Scheduler) offset(n uint64) time.Duration {
	num := uint64(s.rate.Num)
	hi, lo := bits.Mul64(n, uint64(s.rate.Den)*uint64(time.Second))
	if hi >= num {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, num)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(q)
}

// NextDeadline is the time the next frame is due; zero before the first tick.
func (s *Scheduler) NextDeadline() time.Time {
	return s.next
}

// Origin is the time of the first tick.
func (s *Scheduler) Origin() time.Time {
	return s.origin
}

// Frames is the number of frames let through so far.
func (s *Scheduler) Frames() uint64 {
	return s.frames
}

// Rate returns the configured rate.
func (s *Scheduler) Rate() frame.Rational {
	return s.rate
}
