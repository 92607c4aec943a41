//go:build linux && (amd64 || arm64 || riscv64 || loong64)

package shm

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Supported reports whether SysV IPC is implemented for this platform.
const Supported = true

// DeriveKey computes the same key as ftok(3): the low 16 bits of the inode,
// the low 8 bits of the device and the project id in the top byte.
func DeriveKey(path string, projID byte) (int, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return -1, fmt.Errorf("stat: %w", err)
	}
	k := uint32(st.Ino&0xffff) | uint32(st.Dev&0xff)<<16 | uint32(projID)<<24
	return int(int32(k)), nil
}

// LookupSegment returns the id of an existing segment of at least size bytes.
func LookupSegment(key, size int) (int, error) {
	id, err := unix.SysvShmGet(key, size, Mode)
	if err != nil {
		return -1, fmt.Errorf("shmget: %w", err)
	}
	return id, nil
}

// CreateSegment creates a new segment and fails with EEXIST if one exists.
func CreateSegment(key, size int) (int, error) {
	id, err := unix.SysvShmGet(key, size, unix.IPC_CREAT|unix.IPC_EXCL|Mode)
	if err != nil {
		return -1, fmt.Errorf("shmget: %w", err)
	}
	return id, nil
}

// AttachSegment maps the whole segment into the address space.
func AttachSegment(id int) ([]byte, error) {
	mem, err := unix.SysvShmAttach(id, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("shmat: %w", err)
	}
	return mem, nil
}

// DetachSegment unmaps a segment obtained from AttachSegment.
func DetachSegment(mem []byte) error {
	if mem == nil {
		return nil
	}
	if err := unix.SysvShmDetach(mem); err != nil {
		return fmt.Errorf("shmdt: %w", err)
	}
	return nil
}

// StatSegment reads the segment descriptor.
func StatSegment(id int) (SegmentStat, error) {
	var desc unix.SysvShmDesc
	if _, err := unix.SysvShmCtl(id, unix.IPC_STAT, &desc); err != nil {
		return SegmentStat{}, fmt.Errorf("shmctl(IPC_STAT): %w", err)
	}
	return SegmentStat{
		ID:          id,
		Size:        int(desc.Segsz),
		Attachments: int(desc.Nattch),
		CreatorPID:  int(desc.Cpid),
		LastPID:     int(desc.Lpid),
	}, nil
}

// RemoveSegment marks the segment for destruction once the last process detaches.
func RemoveSegment(id int) error {
	if _, err := unix.SysvShmCtl(id, unix.IPC_RMID, nil); err != nil {
		return fmt.Errorf("shmctl(IPC_RMID): %w", err)
	}
	return nil
}
