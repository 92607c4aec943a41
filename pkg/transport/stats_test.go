package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFPSMeter(t *testing.T) {
	m := newFPSMeter(fpsWindow)
	start := time.Unix(1700000000, 0)
	for i := 0; i < fpsWindow; i++ {
		m.observe(start.Add(time.Duration(i) * 40 * time.Millisecond))
	}
	// the window is not full until one more frame arrives
	assert.Zero(t, m.fps)

	last := start.Add(fpsWindow * 40 * time.Millisecond)
	m.observe(last)
	assert.InDelta(t, 25.0, m.fps, 1e-9)

	for i := 1; i <= 2*fpsWindow; i++ {
		m.observe(last.Add(time.Duration(i) * 20 * time.Millisecond))
	}
	assert.InDelta(t, 50.0, m.fps, 1e-9)
}

func TestStatsRepeatedFramesKeepLastFrame(t *testing.T) {
	st := newStats("/tmp/rendezvous", 100)
	t0 := time.Unix(1700000000, 0)
	st.read(t0, false)
	st.read(t0.Add(time.Second), true)
	st.stall()
	st.wouldBlock()

	s := st.snapshot()
	assert.Equal(t, "/tmp/rendezvous", s.Path)
	assert.Equal(t, 100, s.FrameSize)
	assert.Equal(t, uint64(2), s.FramesRead)
	assert.Equal(t, uint64(1), s.FramesRepeated)
	assert.Equal(t, uint64(1), s.Stalls)
	assert.Equal(t, uint64(1), s.WouldBlock)
	assert.Equal(t, t0, s.LastFrame)
	assert.False(t, s.Closed)

	st.closed()
	assert.True(t, st.snapshot().Closed)
}
