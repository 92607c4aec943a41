//go:build linux && (amd64 || arm64 || riscv64 || loong64)

package shm

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// semctl commands from <linux/sem.h>
const (
	semGetVal = 12
	semSetVal = 16
)

// sembuf mirrors struct sembuf.
type sembuf struct {
	num uint16
	op  int16
	flg int16
}

func semget(key, nsems, flag int) (int, error) {
	r, _, errno := unix.Syscall(unix.SYS_SEMGET, uintptr(key), uintptr(nsems), uintptr(flag))
	if errno != 0 {
		return -1, errno
	}
	return int(r), nil
}

func semctl(id, num, cmd int, arg uintptr) (int, error) {
	r, _, errno := unix.Syscall6(unix.SYS_SEMCTL, uintptr(id), uintptr(num), uintptr(cmd), arg, 0, 0)
	if errno != 0 {
		return -1, errno
	}
	return int(r), nil
}

func semtimedop(id int, op *sembuf, timeout *unix.Timespec) error {
	_, _, errno := unix.Syscall6(unix.SYS_SEMTIMEDOP, uintptr(id),
		uintptr(unsafe.Pointer(op)), 1, uintptr(unsafe.Pointer(timeout)), 0, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// LookupSemSet opens an existing one-member semaphore set.
func LookupSemSet(key int) (*SemSet, error) {
	id, err := semget(key, 1, Mode)
	if err != nil {
		return nil, fmt.Errorf("semget: %w", err)
	}
	return &SemSet{ID: id, Key: key}, nil
}

// CreateSemSet creates a new one-member set and fails with EEXIST if one exists.
// The kernel initializes the count to zero.
func CreateSemSet(key int) (*SemSet, error) {
	id, err := semget(key, 1, unix.IPC_CREAT|unix.IPC_EXCL|Mode)
	if err != nil {
		return nil, fmt.Errorf("semget: %w", err)
	}
	return &SemSet{ID: id, Key: key}, nil
}

// SetValue overwrites the count (SETVAL).
func (s *SemSet) SetValue(v int) error {
	if _, err := semctl(s.ID, 0, semSetVal, uintptr(v)); err != nil {
		return fmt.Errorf("semctl(SETVAL): %w", err)
	}
	return nil
}

// Value reads the count (GETVAL).
func (s *SemSet) Value() (int, error) {
	v, err := semctl(s.ID, 0, semGetVal, 0)
	if err != nil {
		return 0, fmt.Errorf("semctl(GETVAL): %w", err)
	}
	return v, nil
}

// Post increments the count by one.
func (s *SemSet) Post() error {
	op := sembuf{num: 0, op: 1}
	for {
		err := semtimedop(s.ID, &op, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("semop: %w", err)
		}
		return nil
	}
}

// TimedWait decrements the count, suspending for at most timeout.
// A negative timeout waits forever. It returns false when the timeout elapsed.
// Interrupted waits are resumed with the remaining time.
func (s *SemSet) TimedWait(timeout time.Duration) (bool, error) {
	op := sembuf{num: 0, op: -1}
	if timeout < 0 {
		for {
			err := semtimedop(s.ID, &op, nil)
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if err != nil {
				return false, fmt.Errorf("semtimedop: %w", err)
			}
			return true, nil
		}
	}
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		ts := unix.NsecToTimespec(remaining.Nanoseconds())
		err := semtimedop(s.ID, &op, &ts)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, unix.EAGAIN):
			return false, nil
		case errors.Is(err, unix.EINTR):
			if remaining == 0 {
				return false, nil
			}
			continue
		default:
			return false, fmt.Errorf("semtimedop: %w", err)
		}
	}
}

// TryWait decrements the count only if it is positive.
func (s *SemSet) TryWait() (bool, error) {
	op := sembuf{num: 0, op: -1, flg: unix.IPC_NOWAIT}
	for {
		err := semtimedop(s.ID, &op, nil)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, unix.EAGAIN):
			return false, nil
		case errors.Is(err, unix.EINTR):
			continue
		default:
			return false, fmt.Errorf("semop: %w", err)
		}
	}
}

// Remove destroys the set immediately, waking any waiter with EIDRM.
func (s *SemSet) Remove() error {
	if _, err := semctl(s.ID, 0, unix.IPC_RMID, 0); err != nil {
		return fmt.Errorf("semctl(IPC_RMID): %w", err)
	}
	return nil
}
