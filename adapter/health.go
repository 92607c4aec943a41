package adapter

import (
	"errors"
	"fmt"
	"time"

	"github.com/heptiolabs/healthcheck"

	"github.com/srediag/shmemdev/api"
)

var (
	errNoFrame       = errors.New("no frame received yet")
	errSessionClosed = errors.New("transport session is closed")
)

// FrameAgeCheck fails when the last fresh frame of h is older than maxAge,
// or when none has arrived yet.
func FrameAgeCheck(h api.Health, maxAge time.Duration) healthcheck.Check {
	return func() error {
		last := h.LastFrame()
		if last.IsZero() {
			return errNoFrame
		}
		if age := time.Since(last); age > maxAge {
			return fmt.Errorf("last frame is %s old, limit %s", age.Truncate(time.Millisecond), maxAge)
		}
		return nil
	}
}

// SessionOpenCheck fails once h is closed.
func SessionOpenCheck(h api.Health) healthcheck.Check {
	return func() error {
		if h.IsClosed() {
			return errSessionClosed
		}
		return nil
	}
}

// NewHealthHandler serves /live and /ready for one endpoint. Liveness
// follows the producer: it fails when no fresh frame arrived within maxAge.
// Readiness fails once the session is closed.
func NewHealthHandler(h api.Health, maxAge time.Duration) healthcheck.Handler {
	handler := healthcheck.NewHandler()
	handler.AddLivenessCheck("producer-alive", FrameAgeCheck(h, maxAge))
	handler.AddReadinessCheck("session-open", SessionOpenCheck(h))
	return handler
}
