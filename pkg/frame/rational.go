package frame

import (
	"fmt"
	"time"
)

// Rational is a frame rate expressed as Num/Den frames per second,
// e.g. 30000/1001 for NTSC.
type Rational struct {
	Num int64
	Den int64
}

// maxDen keeps Den*1e9 inside a uint64 for the pacing arithmetic.
const maxDen = 1 << 32

// IsZero reports whether the rate is unset.
func (r Rational) IsZero() bool {
	return r.Num == 0 && r.Den == 0
}

// Valid reports whether the rate is a usable positive fraction.
func (r Rational) Valid() bool {
	return r.Num > 0 && r.Den > 0 && r.Den <= maxDen && r.Num <= maxDen
}

// Float64 returns the rate as frames per second, 0 when invalid.
func (r Rational) Float64() float64 {
	if !r.Valid() {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Period returns the duration of one frame, truncated to the nanosecond.
// Long-running schedules must not accumulate this value; see pacing.
func (r Rational) Period() time.Duration {
	if !r.Valid() {
		return 0
	}
	return time.Duration(r.Den * int64(time.Second) / r.Num)
}

func (r Rational) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%d", r.Num)
	}
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
