package shm

import (
	"fmt"

	"github.com/srediag/shmemdev/api"
	internalshm "github.com/srediag/shmemdev/internal/shm"
)

const (
	// ProjectID is the ftok project byte. Every producer and consumer build
	// must use the same value to rendezvous.
	ProjectID byte = 65

	// ReservedMargin is the number of bytes kept after the pixel data. They
	// are reserved for future metadata and never read or written today.
	ReservedMargin = 1024
)

// Key is a SysV IPC key.
type Key int32

func (k Key) String() string {
	return fmt.Sprintf("0x%08x", uint32(k))
}

// DeriveKey maps path to the same key in every process, like ftok(path, 65).
// The path must exist; it is usually a file created by the producer.
func DeriveKey(path string) (Key, error) {
	if path == "" {
		return 0, api.NewError(api.ErrKeyDerivation, "shm.DeriveKey", path, fmt.Errorf("empty path"))
	}
	k, err := internalshm.DeriveKey(path, ProjectID)
	if err != nil {
		return 0, api.NewError(api.ErrKeyDerivation, "shm.DeriveKey", path, err)
	}
	return Key(k), nil
}

// RegionSize is the segment size needed for frames of frameSize bytes.
func RegionSize(frameSize int) int {
	return frameSize + ReservedMargin
}

// Supported reports whether this build can open regions and semaphores.
func Supported() bool {
	return internalshm.Supported
}
