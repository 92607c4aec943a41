package pacing

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

// fakeClock advances only when told to; Sleep moves it forward by the
// requested duration, or by less to imitate an early wake-up.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
	short  time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	if c.short > 0 && d > c.short {
		c.now = c.now.Add(d - c.short)
		c.short = 0
		return nil
	}
	c.now = c.now.Add(d)
	return nil
}

type SchedulerTestSuite struct {
	suite.Suite
	clock *fakeClock
}

func (s *SchedulerTestSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Unix(1700000000, 0)}
}

func (s *SchedulerTestSuite) TestFirstTickProceeds() {
	sc := New(frame.Rational{Num: 25, Den: 1}, WithClock(s.clock))
	s.True(sc.NextDeadline().IsZero())

	a := sc.Tick(false)
	s.Equal(Proceed, a.Kind)
	s.Equal(s.clock.now, sc.Origin())
	s.Equal(s.clock.now.Add(40*time.Millisecond), sc.NextDeadline())
}

func (s *SchedulerTestSuite) TestSleepUntilDeadline() {
	sc := New(frame.Rational{Num: 25, Den: 1}, WithClock(s.clock))
	sc.Tick(false)

	s.clock.now = s.clock.now.Add(10 * time.Millisecond)
	a := sc.Tick(false)
	s.Equal(SleepFor, a.Kind)
	s.Equal(30*time.Millisecond, a.Delay)
	// sleeping does not move the deadline
	s.Equal(uint64(1), sc.Frames())
}

func (s *SchedulerTestSuite) TestNonBlockingRejects() {
	sc := New(frame.Rational{Num: 25, Den: 1}, WithClock(s.clock))
	sc.Tick(true)
	deadline := sc.NextDeadline()

	a := sc.Tick(true)
	s.Equal(Reject, a.Kind)
	s.Equal(40*time.Millisecond, a.Delay)
	s.Equal(deadline, sc.NextDeadline())

	err := sc.Wait(context.Background(), true)
	s.True(errors.Is(err, api.ErrWouldBlock))
	s.Empty(s.clock.sleeps)
	s.Equal(deadline, sc.NextDeadline())
}

func (s *SchedulerTestSuite) TestWaitSleepsThenProceeds() {
	sc := New(frame.Rational{Num: 50, Den: 1}, WithClock(s.clock))
	s.Require().NoError(sc.Wait(context.Background(), false))
	s.Require().NoError(sc.Wait(context.Background(), false))
	s.Equal([]time.Duration{20 * time.Millisecond}, s.clock.sleeps)
	s.Equal(uint64(2), sc.Frames())
}

func (s *SchedulerTestSuite) TestEarlyWakeIsRetried() {
	sc := New(frame.Rational{Num: 50, Den: 1}, WithClock(s.clock))
	s.Require().NoError(sc.Wait(context.Background(), false))

	s.clock.short = 5 * time.Millisecond
	s.Require().NoError(sc.Wait(context.Background(), false))
	s.Equal([]time.Duration{20 * time.Millisecond, 5 * time.Millisecond}, s.clock.sleeps)
}

func (s *SchedulerTestSuite) TestWaitHonorsContext() {
	sc := New(frame.Rational{Num: 1, Den: 1}, WithClock(s.clock))
	sc.Tick(false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ErrorIs(sc.Wait(ctx, false), context.Canceled)
}

func (s *SchedulerTestSuite) TestZeroRateIsUnpaced() {
	sc := New(frame.Rational{}, WithClock(s.clock))
	for i := 0; i < 10; i++ {
		s.Equal(Proceed, sc.Tick(true).Kind)
	}
	s.Equal(uint64(0), sc.Frames())
}

func (s *SchedulerTestSuite) TestBehindScheduleCatchesUp() {
	sc := New(frame.Rational{Num: 10, Den: 1}, WithClock(s.clock))
	sc.Tick(false)
	s.clock.now = s.clock.now.Add(350 * time.Millisecond)
	// deadlines at 100, 200, 300 ms are already due
	for i := 0; i < 3; i++ {
		s.Equal(Proceed, sc.Tick(true).Kind)
	}
	s.Equal(Reject, sc.Tick(true).Kind)
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}

// N ticks move the deadline by exactly N periods: the error stays below a
// nanosecond instead of growing with N.
func TestDeadlineHasNoDrift(t *testing.T) {
	for _, rate := range []frame.Rational{{Num: 30000, Den: 1001}, {Num: 25, Den: 1}, {Num: 60, Den: 7}} {
		clock := &fakeClock{now: time.Unix(0, 0)}
		sc := New(rate, WithClock(clock))
		sc.Tick(false)
		origin := sc.Origin()

		// always late, so every tick proceeds
		clock.now = clock.now.Add(24 * time.Hour * 365)
		const n = 1_000_000
		for i := 1; i < n; i++ {
			require.Equal(t, Proceed, sc.Tick(false).Kind)
		}
		got := sc.NextDeadline().Sub(origin)

		want := new(big.Rat).SetFrac64(int64(n)*rate.Den*int64(time.Second), rate.Num)
		diff := new(big.Rat).Sub(want, new(big.Rat).SetInt64(int64(got)))
		f, _ := diff.Float64()
		assert.GreaterOrEqual(t, f, 0.0, "rate %s", rate)
		assert.Less(t, f, 1.0, "rate %s", rate)

		// a truncated per-frame period would have drifted by up to n ns
		naive := time.Duration(n) * rate.Period()
		assert.LessOrEqual(t, naive, got)
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "proceed", Proceed.String())
	assert.Equal(t, "sleep", SleepFor.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "unknown", Kind(9).String())
}
