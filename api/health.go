package api

import "time"

// Health defines what a transport endpoint exposes for liveness monitoring.
type Health interface {
	// LastFrame is the time the last fresh (non-repeated) frame was moved.
	// The zero time means no frame has been seen yet.
	LastFrame() time.Time
	// IsClosed reports whether the session has been closed or has failed.
	IsClosed() bool
}
