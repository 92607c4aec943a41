// Package shm provides the two cross-process primitives of the transport: a
// fixed-size SysV shared memory Region and a counting Semaphore, both located
// through a rendezvous key derived from a filesystem path.
//
// Neither is destroyed on Close: the OS objects outlive the process so that
// producers and consumers can come and go independently. RemoveRegion and
// RemoveSemaphore exist for operators and tests.
//
// The Region is not locked. A consumer may copy while the
// producer is still writing, so torn frames are possible; the semaphore only
// orders freshness.
//
// Example usage:
//
//	region, err := shm.OpenRegion(ctx, shm.RegionOptions{
//	  Path: "/tmp/camera0",
//	  Size: shm.RegionSize(frameSize),
//	})
//	// ...
//	defer region.Close()
//	copy(region.View()[:frameSize], pixels)
package shm
