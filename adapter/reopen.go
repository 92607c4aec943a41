package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/internal/debug"
	"github.com/srediag/shmemdev/pkg/frame"
	"github.com/srediag/shmemdev/pkg/transport"
)

var reopenLogger = debug.New("adapter")

// pollInterval is how long RunReader backs off after api.ErrWouldBlock.
const pollInterval = 2 * time.Millisecond

// NewReopenBackOff is the default policy: exponential from 50ms, capped at
// 2s between attempts, never giving up.
func NewReopenBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 0
	return b
}

func loggerFor(cfg *transport.Config) *debug.Logger {
	if cfg == nil {
		return reopenLogger
	}
	return reopenLogger.WithBackend(cfg.Logger).With("path", cfg.Path)
}

// permanent errors are not worth another open attempt.
func permanent(err error) bool {
	return errors.Is(err, api.ErrConfiguration) ||
		errors.Is(err, api.ErrUnsupportedPlatform) ||
		errors.Is(err, api.ErrKeyDerivation)
}

// OpenReaderWithBackOff retries transport.OpenReader according to b until it
// succeeds, ctx is done or the error cannot go away by retrying.
func OpenReaderWithBackOff(ctx context.Context, cfg *transport.Config, b backoff.BackOff) (*transport.Reader, error) {
	if b == nil {
		b = NewReopenBackOff()
	}
	op := func() (*transport.Reader, error) {
		r, err := transport.OpenReader(ctx, cfg)
		if err != nil && permanent(err) {
			return nil, backoff.Permanent(err)
		}
		return r, err
	}
	log := loggerFor(cfg)
	notify := func(err error, next time.Duration) {
		log.Warnf("open reader failed, retrying in %s: %v", next, err)
	}
	return backoff.RetryNotifyWithData(op, backoff.WithContext(b, ctx), notify)
}

// RunReader feeds every frame of a Reader to handle until ctx is done or
// handle fails. A session that fails is closed and reopened with b. Packets
// are released after handle returns.
func RunReader(ctx context.Context, cfg *transport.Config, b backoff.BackOff, handle func(*frame.Packet) error) error {
	return RunReaderNotify(ctx, cfg, b, nil, handle)
}

// RunReaderNotify is RunReader with opened called on every new session,
// for callers that export the stats or health of the current Reader.
func RunReaderNotify(ctx context.Context, cfg *transport.Config, b backoff.BackOff,
	opened func(*transport.Reader), handle func(*frame.Packet) error) error {
	if b == nil {
		b = NewReopenBackOff()
	}
	for {
		r, err := OpenReaderWithBackOff(ctx, cfg, b)
		if err != nil {
			return err
		}
		if opened != nil {
			opened(r)
		}
		err = drain(ctx, r, handle)
		_ = r.Close()
		if err != nil {
			return err
		}
		loggerFor(cfg).Warnf("reader session ended, reopening")
	}
}

// drain returns nil when the session failed and should be reopened.
func drain(ctx context.Context, r *transport.Reader, handle func(*frame.Packet) error) error {
	for {
		pkt, err := r.ReadFrame(ctx)
		switch {
		case err == nil:
			herr := handle(pkt)
			pkt.Release()
			if herr != nil {
				return herr
			}
		case errors.Is(err, api.ErrWouldBlock):
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollInterval):
			}
		case ctx.Err() != nil:
			return ctx.Err()
		case r.IsClosed():
			return nil
		default:
			return err
		}
	}
}
