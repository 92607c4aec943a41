package transport

import (
	"github.com/sirupsen/logrus"

	"github.com/srediag/shmemdev/internal/debug"
)

// SetLogger replaces the logrus backend used by every endpoint without a
// Config.Logger of its own. Levels are still gated by SHMEMDEV_LOG_LEVEL.
// A nil l is ignored.
func SetLogger(l logrus.FieldLogger) {
	debug.SetLogger(l)
}
