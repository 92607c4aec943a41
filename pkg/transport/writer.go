package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
)

// Writer is the producer end of the transport.
type Writer struct {
	*session
}

// OpenWriter attaches to the region and semaphore for cfg.Path, creating
// them when no consumer has done so yet.
func OpenWriter(ctx context.Context, cfg *Config) (*Writer, error) {
	s, err := openSession(ctx, cfg, "writer")
	if err != nil {
		return nil, err
	}
	return &Writer{session: s}, nil
}

// WriteFrame paces to the configured rate, copies data into the region and
// signals the consumer. data must be exactly FrameSize bytes.
func (w *Writer) WriteFrame(ctx context.Context, data []byte) error {
	if w.closed {
		return w.errClosed("transport.WriteFrame")
	}
	if len(data) != w.frameSize {
		return api.NewError(api.ErrConfiguration, "transport.WriteFrame", w.cfg.Path,
			fmt.Errorf("frame is %d bytes, want %d", len(data), w.frameSize))
	}
	if err := w.pacer.Wait(ctx, w.cfg.NonBlocking); err != nil {
		if errors.Is(err, api.ErrWouldBlock) {
			w.stats.wouldBlock()
			w.tel.wouldBlock.Add(ctx, 1, w.tel.attrs)
		}
		return err
	}
	copy(w.Frame(), data)
	return w.publish(ctx)
}

// WritePacket implements FrameSink with a blocking WriteFrame.
func (w *Writer) WritePacket(pkt *frame.Packet) error {
	if pkt == nil {
		return api.NewError(api.ErrConfiguration, "transport.WritePacket", w.cfg.Path, errors.New("nil packet"))
	}
	return w.WriteFrame(context.Background(), pkt.Data)
}

// Frame returns the pixel area of the region for in-place rendering,
// followed by Publish. It is nil once the Writer is closed.
func (w *Writer) Frame() []byte {
	view := w.region.View()
	if view == nil {
		return nil
	}
	return view[:w.frameSize]
}

// Publish signals the consumer that the region holds a new frame, without
// pacing.
func (w *Writer) Publish() error {
	if w.closed {
		return w.errClosed("transport.Publish")
	}
	return w.publish(context.Background())
}

func (w *Writer) publish(ctx context.Context) error {
	if err := w.sem.Signal(); err != nil {
		w.fail("transport.Publish", err)
		return err
	}
	w.stats.written(w.now())
	w.tel.framesWritten.Add(ctx, 1, w.tel.attrs)
	return nil
}

// FrameSize is the number of bytes in every frame.
func (w *Writer) FrameSize() int { return w.frameSize }

// Stats returns a snapshot of the counters.
func (w *Writer) Stats() Stats { return w.stats.snapshot() }

// LastFrame implements api.Health.
func (w *Writer) LastFrame() time.Time { return w.stats.snapshot().LastFrame }

// IsClosed implements api.Health.
func (w *Writer) IsClosed() bool { return w.stats.snapshot().Closed }

// Close detaches from the region. The region keeps the last frame.
func (w *Writer) Close() error { return w.close() }
