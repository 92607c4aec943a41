package transport

import (
	"context"
	"errors"
	"time"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/pkg/frame"
	"github.com/srediag/shmemdev/pkg/shm"
)

// Reader is the consumer end of the transport.
type Reader struct {
	*session
	stallTimeout time.Duration
}

// OpenReader attaches to the region and semaphore for cfg.Path, creating
// them when the producer has not done so yet. With cfg.Owner set, pending
// signals are discarded so the first frame read is one written afterwards.
func OpenReader(ctx context.Context, cfg *Config) (*Reader, error) {
	s, err := openSession(ctx, cfg, "reader")
	if err != nil {
		return nil, err
	}
	r := &Reader{session: s}
	if !cfg.NonBlocking {
		r.stallTimeout = cfg.StallTimeout()
	}
	return r, nil
}

// ReadFrame returns the next frame as a packet of exactly FrameSize bytes,
// stamped with the current time.
//
// In non-blocking mode it returns api.ErrWouldBlock without sleeping when the
// frame is not due yet or the producer has not signalled. A producer stall
// in blocking mode is handled according to the StallPolicy; under StallWait a
// ctx that ends after a stall yields api.ErrTimedOut wrapping ctx.Err(). These
// are recoverable, as is a cancelled ctx. Any other error closes the Reader.
func (r *Reader) ReadFrame(ctx context.Context) (*frame.Packet, error) {
	if r.closed {
		return nil, r.errClosed("transport.ReadFrame")
	}
	if err := r.pacer.Wait(ctx, r.cfg.NonBlocking); err != nil {
		if errors.Is(err, api.ErrWouldBlock) {
			r.blocked(ctx)
		}
		return nil, err
	}
	repeated, err := r.acquire(ctx)
	if err != nil {
		if errors.Is(err, api.ErrWouldBlock) {
			r.blocked(ctx)
		}
		if !recoverable(err) {
			r.fail("transport.ReadFrame", err)
		}
		return nil, err
	}

	pkt := frame.CopyPacket(r.region.View()[:r.frameSize])
	now := r.now()
	pkt.Stamp(now)
	pkt.Repeated = repeated

	r.stats.read(now, repeated)
	r.tel.framesRead.Add(ctx, 1, r.tel.attrs)
	r.log.Tracef("frame pts=%d repeated=%v", pkt.PTS, repeated)
	return pkt, nil
}

func (r *Reader) blocked(ctx context.Context) {
	r.stats.wouldBlock()
	r.tel.wouldBlock.Add(ctx, 1, r.tel.attrs)
}

// acquire consumes one producer signal. It reports repeated=true when the
// stall timeout expired under StallRepeat.
func (r *Reader) acquire(ctx context.Context) (repeated bool, err error) {
	if r.cfg.NonBlocking {
		ok, err := r.sem.TryWait()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, api.ErrWouldBlock
		}
		return false, nil
	}
	timeout := r.stallTimeout
	if timeout <= 0 {
		timeout = shm.Forever
	}
	for {
		start := time.Now()
		res, err := r.sem.Wait(timeout)
		r.tel.wait(ctx, time.Since(start))
		if err != nil {
			return false, err
		}
		if res == shm.WaitAcquired {
			return false, nil
		}
		r.stats.stall()
		r.tel.stalls.Add(ctx, 1, r.tel.attrs)
		r.log.Debugf("no frame signalled within %s", timeout)
		if r.cfg.StallPolicy == StallRepeat {
			return true, nil
		}
		if err := ctx.Err(); err != nil {
			return false, api.NewError(api.ErrTimedOut, "transport.ReadFrame", r.cfg.Path, err)
		}
	}
}

// FrameSize is the number of bytes in every packet.
func (r *Reader) FrameSize() int { return r.frameSize }

// Stats returns a snapshot of the counters.
func (r *Reader) Stats() Stats { return r.stats.snapshot() }

// LastFrame implements api.Health.
func (r *Reader) LastFrame() time.Time { return r.stats.snapshot().LastFrame }

// IsClosed implements api.Health.
func (r *Reader) IsClosed() bool { return r.stats.snapshot().Closed }

// Close detaches from the region and forgets the semaphore. Neither is
// destroyed. Close must not be called while ReadFrame is running.
func (r *Reader) Close() error { return r.close() }

var _ api.Health = (*Reader)(nil)
