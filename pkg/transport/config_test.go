package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, 1280, c.Width)
	assert.Equal(t, 720, c.Height)
	assert.Equal(t, frame.PixelFormatNV12, c.PixelFormat)
	assert.Equal(t, frame.Rational{Num: 25, Den: 1}, c.FrameRate)
	assert.Equal(t, StallRepeat, c.StallPolicy)
	assert.True(t, c.Owner)
	assert.False(t, c.NonBlocking)
	assert.Equal(t, 40*time.Millisecond, c.StallTimeout())

	size, err := c.FrameSize()
	assert.NoError(t, err)
	assert.Equal(t, 1382400, size)

	// a path is the only thing the defaults leave out
	assert.True(t, errors.Is(VerifyConfig(c), api.ErrConfiguration))
	c.Path = "/tmp/rendezvous"
	assert.NoError(t, VerifyConfig(c))
}

func TestVerifyConfig(t *testing.T) {
	cases := []struct {
		name   string
		modify func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"unpaced", func(c *Config) { c.FrameRate = frame.Rational{} }, true},
		{"no stall timeout", func(c *Config) { c.MinFrameRate = frame.Rational{} }, true},
		{"ntsc", func(c *Config) { c.FrameRate = frame.Rational{Num: 30000, Den: 1001} }, true},
		{"zero width", func(c *Config) { c.Width = 0 }, false},
		{"negative height", func(c *Config) { c.Height = -1 }, false},
		{"too wide", func(c *Config) { c.Width = frame.MaxDimension + 1 }, false},
		{"no format", func(c *Config) { c.PixelFormat = frame.PixelFormatNone }, false},
		{"negative rate", func(c *Config) { c.FrameRate = frame.Rational{Num: -25, Den: 1} }, false},
		{"zero denominator", func(c *Config) { c.MinFrameRate = frame.Rational{Num: 25} }, false},
		{"unknown policy", func(c *Config) { c.StallPolicy = StallPolicy(7) }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := DefaultConfig()
			c.Path = "/tmp/rendezvous"
			tc.modify(c)
			err := VerifyConfig(c)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, api.ErrConfiguration), "got %v", err)
		})
	}
}

func TestStallPolicyString(t *testing.T) {
	assert.Equal(t, "repeat", StallRepeat.String())
	assert.Equal(t, "wait", StallWait.String())
	assert.Equal(t, "StallPolicy(9)", StallPolicy(9).String())
}
