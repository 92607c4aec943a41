package transport

import (
	"sync"
	"time"

	"github.com/Workiva/go-datastructures/queue"
)

// fpsWindow is the number of frames the measured rate is averaged over.
const fpsWindow = 32

// Stats is a snapshot of the counters of a Reader or Writer.
type Stats struct {
	// Path is the rendezvous path of the session.
	Path string
	// FrameSize is the number of bytes moved per frame.
	FrameSize int
	// FramesRead counts packets returned by ReadFrame, repeated ones included.
	FramesRead uint64
	// FramesRepeated counts packets delivered after a stall.
	FramesRepeated uint64
	// FramesWritten counts frames published by a Writer.
	FramesWritten uint64
	// Stalls counts semaphore waits that timed out.
	Stalls uint64
	// WouldBlock counts non-blocking calls that found nothing to do.
	WouldBlock uint64
	// LastFrame is when the last fresh frame was moved.
	LastFrame time.Time
	// FPS is the measured rate of fresh frames over the last frames.
	FPS float64
	// Closed is set once the session is closed or failed.
	Closed bool
}

// fpsMeter measures the rate over a sliding window of frame times.
type fpsMeter struct {
	ring *queue.RingBuffer
	fps  float64
}

func newFPSMeter(window uint64) *fpsMeter {
	return &fpsMeter{ring: queue.NewRingBuffer(window)}
}

// observe records a frame at t. Once the window is full, the frame evicted
// from it is exactly Cap frames older than t.
func (m *fpsMeter) observe(t time.Time) {
	if m.ring.Len() == m.ring.Cap() {
		item, err := m.ring.Get()
		if err == nil {
			if oldest, ok := item.(time.Time); ok {
				if span := t.Sub(oldest); span > 0 {
					m.fps = float64(m.ring.Cap()) / span.Seconds()
				}
			}
		}
	}
	_, _ = m.ring.Offer(t)
}

// stats is shared with adapters polling from other goroutines.
type stats struct {
	mu  sync.Mutex
	s   Stats
	fps *fpsMeter
}

func newStats(path string, frameSize int) *stats {
	return &stats{
		s:   Stats{Path: path, FrameSize: frameSize},
		fps: newFPSMeter(fpsWindow),
	}
}

func (st *stats) read(t time.Time, repeated bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.FramesRead++
	if repeated {
		st.s.FramesRepeated++
		return
	}
	st.s.LastFrame = t
	st.fps.observe(t)
	st.s.FPS = st.fps.fps
}

func (st *stats) written(t time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.FramesWritten++
	st.s.LastFrame = t
	st.fps.observe(t)
	st.s.FPS = st.fps.fps
}

func (st *stats) stall() {
	st.mu.Lock()
	st.s.Stalls++
	st.mu.Unlock()
}

func (st *stats) wouldBlock() {
	st.mu.Lock()
	st.s.WouldBlock++
	st.mu.Unlock()
}

func (st *stats) closed() {
	st.mu.Lock()
	st.s.Closed = true
	st.mu.Unlock()
}

func (st *stats) snapshot() Stats {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}
