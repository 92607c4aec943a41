// Package shm contains the platform-specific SysV IPC primitives behind the
// shared region and the frame semaphore.
//
// Errors are returned as raw errno values (wrapped with the syscall name) so
// that callers can classify them; this package does not log.
package shm

// Mode is the permission mode used for segments and semaphores. Producers and
// consumers may run as different users, so it is world read/write like the
// devices this transport interoperates with.
const Mode = 0o666

// SegmentStat is the subset of shmid_ds exposed for diagnostics.
type SegmentStat struct {
	ID          int
	Size        int
	Attachments int
	CreatorPID  int
	LastPID     int
}

// SemSet is a one-member SysV semaphore set.
type SemSet struct {
	ID  int
	Key int
}
