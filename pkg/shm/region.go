package shm

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/srediag/shmemdev/api"
	internalshm "github.com/srediag/shmemdev/internal/shm"
)

// SegmentStat is the kernel view of a segment.
type SegmentStat = internalshm.SegmentStat

// RegionOptions defines how a region is created or attached.
type RegionOptions struct {
	// Path is the rendezvous path; it must exist.
	Path string
	// Size is the number of usable bytes, normally RegionSize(frameSize).
	Size int
	// Tracer is optional.
	Tracer trace.Tracer
}

// Region is a shared segment mapped into this process.
type Region struct {
	path  string
	key   Key
	id    int
	size  int
	owned bool

	mu  sync.Mutex
	mem []byte
}

// OpenRegion attaches to the segment for opts.Path, creating it when it does
// not exist. An existing segment of at least opts.Size bytes is reused.
// ErrRegionCreate and ErrRegionAttach are final; the only retry is a lost
// create race with a peer.
func OpenRegion(ctx context.Context, opts RegionOptions) (r *Region, err error) {
	ctx, span := startSpan(ctx, opts.Tracer, "shm.OpenRegion", opts.Path)
	defer func() { endSpan(span, err) }()

	if opts.Size <= 0 {
		return nil, api.NewError(api.ErrConfiguration, "shm.OpenRegion", opts.Path,
			fmt.Errorf("invalid region size %d", opts.Size))
	}
	key, err := DeriveKey(opts.Path)
	if err != nil {
		return nil, err
	}
	id, owned, err := getSegment(ctx, opts.Path, key, opts.Size)
	if err != nil {
		return nil, err
	}
	m, err := internalshm.AttachSegment(id)
	if err != nil {
		return nil, api.NewError(api.ErrRegionAttach, "shm.OpenRegion", opts.Path, err)
	}
	if len(m) < opts.Size {
		_ = internalshm.DetachSegment(m)
		return nil, api.NewError(api.ErrRegionAttach, "shm.OpenRegion", opts.Path,
			fmt.Errorf("segment is %d bytes, want %d", len(m), opts.Size))
	}
	span.SetAttributes(
		attribute.String("shm.key", key.String()),
		attribute.Int("shm.size", opts.Size),
		attribute.Bool("shm.owned", owned),
	)
	return &Region{
		path:  opts.Path,
		key:   key,
		id:    id,
		size:  opts.Size,
		owned: owned,
		mem:   m,
	}, nil
}

// getSegment looks the segment up and falls back to an exclusive create. A
// peer creating it in between makes the create fail with EEXIST, in which
// case the lookup runs again.
func getSegment(ctx context.Context, path string, key Key, size int) (int, bool, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		id, err := internalshm.LookupSegment(int(key), size)
		if err == nil {
			return id, false, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return -1, false, api.NewError(api.ErrRegionCreate, "shm.OpenRegion", path, err)
		}
		if !canCreateSegment(ctx, size) {
			return -1, false, api.NewError(api.ErrRegionCreate, "shm.OpenRegion", path,
				fmt.Errorf("not enough memory left for %d bytes", size))
		}
		id, err = internalshm.CreateSegment(int(key), size)
		if err == nil {
			return id, true, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return -1, false, api.NewError(api.ErrRegionCreate, "shm.OpenRegion", path, err)
		}
		lastErr = err
	}
	return -1, false, api.NewError(api.ErrRegionCreate, "shm.OpenRegion", path, lastErr)
}

// canCreateSegment is a preflight check against the memory available to the
// host. When the host cannot be inspected it lets the kernel decide.
func canCreateSegment(ctx context.Context, size int) bool {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return true
	}
	return uint64(size) <= vm.Available
}

// View returns the usable bytes of the region. Pixel data occupies the
// front; the trailing ReservedMargin bytes are reserved. The slice is only
// valid until Close.
func (r *Region) View() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return nil
	}
	return r.mem[:r.size:r.size]
}

// Path returns the rendezvous path.
func (r *Region) Path() string { return r.path }

// Key returns the derived IPC key.
func (r *Region) Key() Key { return r.key }

// Size returns the number of usable bytes.
func (r *Region) Size() int { return r.size }

// Owned reports whether this instance created the segment.
func (r *Region) Owned() bool { return r.owned }

// Stat reads the current kernel view of the segment.
func (r *Region) Stat() (SegmentStat, error) {
	return internalshm.StatSegment(r.id)
}

// Close detaches the segment. The segment itself persists for other
// attachers. Close is idempotent.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mem == nil {
		return nil
	}
	err := internalshm.DetachSegment(r.mem)
	r.mem = nil
	if err != nil {
		return api.NewError(api.ErrRegionAttach, "shm.Close", r.path, err)
	}
	return nil
}

// RemoveRegion destroys the segment for path once every process has
// detached. It is never called by the transport itself.
func RemoveRegion(path string) error {
	key, err := DeriveKey(path)
	if err != nil {
		return err
	}
	id, err := internalshm.LookupSegment(int(key), 0)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return api.NewError(api.ErrRegionCreate, "shm.RemoveRegion", path, err)
	}
	if err := internalshm.RemoveSegment(id); err != nil {
		return api.NewError(api.ErrRegionCreate, "shm.RemoveRegion", path, err)
	}
	return nil
}
