package transport

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/srediag/shmemdev/api"
	"github.com/srediag/shmemdev/internal/debug"
	"github.com/srediag/shmemdev/pkg/pacing"
	"github.com/srediag/shmemdev/pkg/shm"
)

var transportLogger = debug.New("transport")

// session is the state shared by Reader and Writer: the region, the
// semaphore and the pacing state of one open transport.
type session struct {
	cfg       Config
	id        string
	log       *debug.Logger
	region    *shm.Region
	sem       *shm.Semaphore
	pacer     *pacing.Scheduler
	frameSize int
	stats     *stats
	tel       *telemetry
	closed    bool
}

// openSession acquires everything or nothing: on failure every resource
// acquired so far is released before returning.
func openSession(ctx context.Context, cfg *Config, role string) (s *session, err error) {
	if cfg == nil {
		return nil, api.NewError(api.ErrConfiguration, "transport.Open", "", errors.New("nil config"))
	}
	if err := VerifyConfig(cfg); err != nil {
		return nil, err
	}
	frameSize, _ := cfg.FrameSize()
	tel, err := newTelemetry(cfg.Meter, cfg.Tracer, cfg.Path)
	if err != nil {
		return nil, api.NewError(api.ErrConfiguration, "transport.Open", cfg.Path, err)
	}
	ctx, span := tel.startOpen(ctx, "transport.Open"+role, cfg.Path)
	defer func() { endSpan(span, err) }()

	id := uuid.NewString()
	log := transportLogger.WithBackend(cfg.Logger).With("session", id).With("role", role)

	region, err := shm.OpenRegion(ctx, shm.RegionOptions{
		Path:   cfg.Path,
		Size:   shm.RegionSize(frameSize),
		Tracer: tel.tracer,
	})
	if err != nil {
		log.Errorf("open region failed: %v", err)
		return nil, err
	}
	sem, err := shm.OpenSemaphore(ctx, shm.SemaphoreOptions{Path: cfg.Path, Tracer: tel.tracer})
	if err != nil {
		log.Errorf("open semaphore failed: %v", err)
		_ = region.Close()
		return nil, err
	}
	if cfg.Owner {
		if err = sem.Reset(); err != nil {
			log.Errorf("reset semaphore failed: %v", err)
			_ = sem.Close()
			_ = region.Close()
			return nil, err
		}
	}

	var opts []pacing.Option
	if cfg.Clock != nil {
		opts = append(opts, pacing.WithClock(cfg.Clock))
	}
	log.Infof("open path=%s key=%s geometry=%s frame_size=%d rate=%s min_rate=%s owner=%v created=%v",
		cfg.Path, region.Key(), cfg.Geometry(), frameSize, cfg.FrameRate, cfg.MinFrameRate,
		cfg.Owner, region.Owned())

	return &session{
		cfg:       *cfg,
		id:        id,
		log:       log,
		region:    region,
		sem:       sem,
		pacer:     pacing.New(cfg.FrameRate, opts...),
		frameSize: frameSize,
		stats:     newStats(cfg.Path, frameSize),
		tel:       tel,
	}, nil
}

func (s *session) errClosed(op string) error {
	return api.NewError(api.ErrClosed, op, s.cfg.Path, nil)
}

// recoverable errors leave the session open.
func recoverable(err error) bool {
	return api.IsTemporary(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// fail closes the session after a fatal per-frame error.
func (s *session) fail(op string, err error) {
	s.log.Errorf("%s failed, closing session: %v", op, err)
	_ = s.close()
}

func (s *session) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.stats.closed()
	_ = s.sem.Close()
	err := s.region.Close()
	st := s.stats.snapshot()
	s.log.Infof("close path=%s read=%d written=%d repeated=%d stalls=%d",
		s.cfg.Path, st.FramesRead, st.FramesWritten, st.FramesRepeated, st.Stalls)
	return err
}

func (s *session) now() time.Time {
	if s.cfg.Clock != nil {
		return s.cfg.Clock.Now()
	}
	return time.Now()
}
