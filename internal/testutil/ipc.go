// Package testutil provides helpers for tests that need real SysV IPC objects.
package testutil

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/srediag/shmemdev/pkg/shm"
)

// RendezvousPath returns a fresh path usable as a rendezvous key. The
// segment and semaphore keyed on it are removed when the test ends. The
// test is skipped when SysV IPC is not available, which is common in
// sandboxes.
func RendezvousPath(t testing.TB) string {
	t.Helper()
	if !shm.Supported() {
		t.Skip("SysV IPC is not supported on this platform")
	}
	path := filepath.Join(t.TempDir(), "rendezvous")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("create rendezvous file: %v", err)
	}
	t.Cleanup(func() {
		_ = shm.RemoveRegion(path)
		_ = shm.RemoveSemaphore(path)
	})

	sem, err := shm.OpenSemaphore(context.Background(), shm.SemaphoreOptions{Path: path})
	if err != nil {
		if errors.Is(err, syscall.ENOSYS) || errors.Is(err, fs.ErrPermission) {
			t.Skipf("SysV IPC unavailable: %v", err)
		}
		t.Fatalf("probe semaphore: %v", err)
	}
	_ = sem.Close()
	if err := shm.RemoveSemaphore(path); err != nil {
		t.Fatalf("remove probe semaphore: %v", err)
	}
	return path
}
