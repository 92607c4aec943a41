package frame

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srediag/shmemdev/api"
)

func TestFrameSize(t *testing.T) {
	cases := []struct {
		name string
		g    Geometry
		want int
	}{
		{"nv12 720p", Geometry{1280, 720, PixelFormatNV12}, 1382400},
		{"yuv420p 1080p", Geometry{1920, 1080, PixelFormatYUV420P}, 1920 * 1080 * 3 / 2},
		{"nv21 odd", Geometry{3, 3, PixelFormatNV21}, 9 + 2*2*2},
		{"yuyv", Geometry{640, 480, PixelFormatYUYV422}, 640 * 480 * 2},
		{"uyvy odd width", Geometry{5, 2, PixelFormatUYVY422}, 4 * 3 * 2},
		{"rgb24", Geometry{2, 2, PixelFormatRGB24}, 12},
		{"bgra", Geometry{2, 2, PixelFormatBGRA}, 16},
		{"gray", Geometry{7, 3, PixelFormatGray8}, 21},
		{"gray16", Geometry{7, 3, PixelFormatGray16LE}, 42},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.g.FrameSize()
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestFrameSizeIsDeterministic(t *testing.T) {
	// producer and consumer compute the size independently
	for _, f := range []PixelFormat{PixelFormatNV12, PixelFormatRGBA, PixelFormatYUYV422} {
		for _, wh := range [][2]int{{1, 1}, {641, 479}, {1280, 720}, {MaxDimension, 2}} {
			a, errA := Geometry{wh[0], wh[1], f}.FrameSize()
			b, errB := Geometry{wh[0], wh[1], f}.FrameSize()
			require.NoError(t, errA)
			require.NoError(t, errB)
			assert.Equal(t, a, b)
		}
	}
}

func TestFrameSizeRejectsBadGeometry(t *testing.T) {
	for _, g := range []Geometry{
		{0, 720, PixelFormatNV12},
		{1280, -1, PixelFormatNV12},
		{MaxDimension + 1, 1, PixelFormatNV12},
		{1280, 720, PixelFormatNone},
		{1280, 720, PixelFormat(99)},
	} {
		_, err := g.FrameSize()
		assert.True(t, errors.Is(err, api.ErrConfiguration), "%v: %v", g, err)
	}
}

func TestParsePixelFormat(t *testing.T) {
	f, err := ParsePixelFormat(" NV12 ")
	require.NoError(t, err)
	assert.Equal(t, PixelFormatNV12, f)
	assert.Equal(t, "nv12", f.String())

	for want := range pixelFormatNames {
		got, err := ParsePixelFormat(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = ParsePixelFormat("p010")
	assert.ErrorIs(t, err, api.ErrConfiguration)
	assert.Equal(t, "PixelFormat(99)", PixelFormat(99).String())
}

func TestRational(t *testing.T) {
	r := Rational{30000, 1001}
	assert.True(t, r.Valid())
	assert.InDelta(t, 29.97, r.Float64(), 0.001)
	assert.Equal(t, "30000/1001", r.String())
	assert.Equal(t, time.Duration(33366666), r.Period())

	assert.Equal(t, "25", Rational{25, 1}.String())
	assert.Equal(t, 40*time.Millisecond, Rational{25, 1}.Period())

	assert.True(t, Rational{}.IsZero())
	assert.False(t, Rational{}.Valid())
	assert.False(t, Rational{-1, 1}.Valid())
	assert.False(t, Rational{1, 0}.Valid())
	assert.Equal(t, time.Duration(0), Rational{}.Period())
	assert.Equal(t, 0.0, Rational{}.Float64())
}

func TestPacket(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB}, 4096)
	p := CopyPacket(src)
	assert.Equal(t, 4096, p.Len())
	assert.Equal(t, src, p.Data)

	// the packet owns a copy
	src[0] = 0
	assert.Equal(t, byte(0xAB), p.Data[0])

	now := time.Now()
	p.Stamp(now)
	assert.Equal(t, p.PTS, p.DTS)
	assert.Equal(t, now.UnixMicro(), p.Time().UnixMicro())

	p.Release()
	assert.Nil(t, p.Data)
	p.Release()

	raw := NewPacket([]byte{1, 2, 3})
	raw.Release()
	assert.Equal(t, []byte{1, 2, 3}, raw.Data)
}
