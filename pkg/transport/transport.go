// Package transport moves raw frames between processes through a shared
// region and a semaphore.
//
// A Reader is the consumer side: it paces itself to the configured rate,
// waits for the producer's signal and copies the frame out of the region.
// A Writer is the producer side. A CallbackSink hands packets produced in
// this process to a registered FrameConsumer.
//
// The region is not locked. A frame copied while the producer is writing
// may be torn; the semaphore only guarantees that a read follows a write.
// Each Reader and Writer is meant to be driven by a single goroutine, and
// Close must not race an outstanding ReadFrame.
package transport

import (
	"context"

	"github.com/srediag/shmemdev/pkg/frame"
)

// FrameSource is implemented by the consumer side.
type FrameSource interface {
	// ReadFrame returns the next frame. api.ErrWouldBlock is returned in
	// non-blocking mode when no frame is available yet.
	ReadFrame(ctx context.Context) (*frame.Packet, error)
	Close() error
}

// FrameSink is implemented by producer-side endpoints.
type FrameSink interface {
	WritePacket(pkt *frame.Packet) error
	Close() error
}

var (
	_ FrameSource = (*Reader)(nil)
	_ FrameSink   = (*Writer)(nil)
	_ FrameSink   = (*CallbackSink)(nil)
)
