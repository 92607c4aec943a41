package transport

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
	"github.com/srediag/shmemdev/pkg/pacing"
)

// StallPolicy decides what a blocking Reader does when the producer has not
// signalled within 1/MinFrameRate.
type StallPolicy int

const (
	// StallRepeat delivers the current region contents again, marked
	// Repeated, so consumers keep receiving at least MinFrameRate frames.
	StallRepeat StallPolicy = iota
	// StallWait keeps waiting; each expired timeout is counted as a stall.
	StallWait
)

func (p StallPolicy) String() string {
	switch p {
	case StallRepeat:
		return "repeat"
	case StallWait:
		return "wait"
	}
	return fmt.Sprintf("StallPolicy(%d)", int(p))
}

const (
	defaultWidth  = 1280
	defaultHeight = 720
)

var (
	defaultFrameRate    = frame.Rational{Num: 25, Den: 1}
	defaultMinFrameRate = frame.Rational{Num: 25, Den: 1}
)

// Config is the already-parsed configuration of a Reader or Writer.
type Config struct {
	// Path is the rendezvous path; producer and consumer must use the same
	// existing file. Required.
	Path string
	// Width and Height in pixels, 1..frame.MaxDimension. Default 1280x720.
	Width  int
	Height int
	// PixelFormat of the region contents. Default NV12.
	PixelFormat frame.PixelFormat
	// FrameRate is the pacing target. Zero disables pacing. Default 25.
	FrameRate frame.Rational
	// MinFrameRate sets the semaphore timeout of a blocking Reader to one
	// period. Zero makes the Reader wait indefinitely. Default 25.
	MinFrameRate frame.Rational
	// StallPolicy applies when that timeout expires. Default StallRepeat.
	StallPolicy StallPolicy
	// NonBlocking makes reads return api.ErrWouldBlock instead of sleeping
	// or waiting.
	NonBlocking bool
	// Owner resets the semaphore once while opening. The consumer is the
	// owner by default; writers normally set Owner to false.
	Owner bool

	// Meter and Tracer are optional OpenTelemetry providers.
	Meter  metric.Meter
	Tracer trace.Tracer
	// Logger overrides the package logger. Optional.
	Logger logrus.FieldLogger
	// Clock overrides the wall clock used for pacing. Optional.
	Clock pacing.Clock
}

// DefaultConfig returns the defaults of the shmemdev input device. Path must
// still be set.
func DefaultConfig() *Config {
	return &Config{
		Width:        defaultWidth,
		Height:       defaultHeight,
		PixelFormat:  frame.PixelFormatNV12,
		FrameRate:    defaultFrameRate,
		MinFrameRate: defaultMinFrameRate,
		StallPolicy:  StallRepeat,
		Owner:        true,
	}
}

// Geometry returns the frame geometry described by c.
func (c *Config) Geometry() frame.Geometry {
	return frame.Geometry{Width: c.Width, Height: c.Height, Format: c.PixelFormat}
}

// FrameSize returns the size of one frame in bytes.
func (c *Config) FrameSize() (int, error) {
	return c.Geometry().FrameSize()
}

// StallTimeout is one period at MinFrameRate, or zero when disabled.
func (c *Config) StallTimeout() time.Duration {
	return c.MinFrameRate.Period()
}

// VerifyConfig checks c and returns an api.ErrConfiguration error describing
// the first problem found.
func VerifyConfig(c *Config) error {
	fail := func(format string, a ...interface{}) error {
		return api.NewError(api.ErrConfiguration, "transport.VerifyConfig", c.Path, fmt.Errorf(format, a...))
	}
	if c.Path == "" {
		return fail("rendezvous path is required")
	}
	if _, err := c.FrameSize(); err != nil {
		return err
	}
	if !c.FrameRate.IsZero() && !c.FrameRate.Valid() {
		return fail("invalid frame rate %s", c.FrameRate)
	}
	if !c.MinFrameRate.IsZero() && !c.MinFrameRate.Valid() {
		return fail("invalid minimum frame rate %s", c.MinFrameRate)
	}
	if c.StallPolicy != StallRepeat && c.StallPolicy != StallWait {
		return fail("unknown stall policy %s", c.StallPolicy)
	}
	return nil
}
