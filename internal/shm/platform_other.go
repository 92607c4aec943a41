//go:build !linux || !(amd64 || arm64 || riscv64 || loong64)

package shm

import (
	"time"

	"github.com/srediag/shmemdev/api"
)

// Supported reports whether SysV IPC is implemented for this platform.
const Supported = false

func DeriveKey(path string, projID byte) (int, error) { return -1, api.ErrUnsupportedPlatform }

func LookupSegment(key, size int) (int, error) { return -1, api.ErrUnsupportedPlatform }

func CreateSegment(key, size int) (int, error) { return -1, api.ErrUnsupportedPlatform }

func AttachSegment(id int) ([]byte, error) { return nil, api.ErrUnsupportedPlatform }

func DetachSegment(mem []byte) error { return nil }

func StatSegment(id int) (SegmentStat, error) { return SegmentStat{}, api.ErrUnsupportedPlatform }

func RemoveSegment(id int) error { return api.ErrUnsupportedPlatform }

func LookupSemSet(key int) (*SemSet, error) { return nil, api.ErrUnsupportedPlatform }

func CreateSemSet(key int) (*SemSet, error) { return nil, api.ErrUnsupportedPlatform }

func (s *SemSet) SetValue(v int) error { return api.ErrUnsupportedPlatform }

func (s *SemSet) Value() (int, error) { return 0, api.ErrUnsupportedPlatform }

func (s *SemSet) Post() error { return api.ErrUnsupportedPlatform }

func (s *SemSet) TimedWait(timeout time.Duration) (bool, error) {
	return false, api.ErrUnsupportedPlatform
}

func (s *SemSet) TryWait() (bool, error) { return false, api.ErrUnsupportedPlatform }

func (s *SemSet) Remove() error { return api.ErrUnsupportedPlatform }
