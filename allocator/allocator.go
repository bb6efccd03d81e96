// Package allocator provides the pooled device-memory allocator backing
// kernel execution: page-granular allocations recycled through size buckets,
// with a release-and-retry path when the device runs out of memory.
package allocator

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// DefaultPageSize is the allocation granularity when none is configured.
const DefaultPageSize = 4096

// Buffer is one device allocation handed out by the allocator.
type Buffer struct {
	// Ptr is the driver's opaque handle for the allocation.
	Ptr any
	// DeviceID is the device the buffer lives on.
	DeviceID int
	// Size is the byte size actually reserved, rounded up to whole pages.
	Size uint64
}

// DeviceDriver is the raw device memory interface the pool sits on. The
// dtype hint lets drivers pick typed arenas; drivers are free to ignore it.
type DeviceDriver interface {
	Allocate(deviceID int, nbytes, alignment uint64, hint dtypes.DType) (any, error)
	Free(ptr any, deviceID int, nbytes uint64)
}

// Pooled recycles freed buffers through per-size free lists instead of
// returning them to the device. One instance serves one device. Safe for
// concurrent use.
type Pooled struct {
	driver   DeviceDriver
	deviceID int
	pageSize uint64

	mu   sync.Mutex
	pool map[uint64][]Buffer
	used uint64
}

// NewPooled builds a pooled allocator over driver for the given device. A
// zero pageSize selects DefaultPageSize.
func NewPooled(driver DeviceDriver, deviceID int, pageSize uint64) *Pooled {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return &Pooled{
		driver:   driver,
		deviceID: deviceID,
		pageSize: pageSize,
		pool:     make(map[uint64][]Buffer),
	}
}

// Alloc returns a buffer of at least nbytes, reusing a pooled buffer of the
// same rounded size when one is free. Page granularity satisfies any
// alignment up to the page size; larger alignments widen the rounding. On
// device exhaustion the whole pool is released back to the device and the
// allocation retried once.
func (a *Pooled) Alloc(nbytes, alignment uint64, hint dtypes.DType) (Buffer, error) {
	size := a.roundUp(nbytes, alignment)

	a.mu.Lock()
	if free := a.pool[size]; len(free) > 0 {
		buf := free[len(free)-1]
		a.pool[size] = free[:len(free)-1]
		a.mu.Unlock()
		return buf, nil
	}
	a.mu.Unlock()

	ptr, err := a.driver.Allocate(a.deviceID, size, alignment, hint)
	if err != nil {
		klog.Warningf("allocator: device %d allocation of %s failed, releasing pool and retrying: %v",
			a.deviceID, humanize.IBytes(size), err)
		a.ReleaseAll()
		ptr, err = a.driver.Allocate(a.deviceID, size, alignment, hint)
		if err != nil {
			return Buffer{}, errors.Wrapf(err, "allocating %s on device %d", humanize.IBytes(size), a.deviceID)
		}
	}

	a.mu.Lock()
	a.used += size
	a.mu.Unlock()
	return Buffer{Ptr: ptr, DeviceID: a.deviceID, Size: size}, nil
}

// Free returns the buffer to the pool for reuse. The device allocation is
// kept until ReleaseAll.
func (a *Pooled) Free(buf Buffer) {
	a.mu.Lock()
	a.pool[buf.Size] = append(a.pool[buf.Size], buf)
	a.mu.Unlock()
}

// ReleaseAll hands every pooled buffer back to the device. Buffers still in
// use stay valid.
func (a *Pooled) ReleaseAll() {
	a.mu.Lock()
	pool := a.pool
	a.pool = make(map[uint64][]Buffer)
	var released uint64
	for _, free := range pool {
		for _, buf := range free {
			released += buf.Size
		}
	}
	a.used -= released
	a.mu.Unlock()

	for _, free := range pool {
		for _, buf := range free {
			a.driver.Free(buf.Ptr, buf.DeviceID, buf.Size)
		}
	}
	if released > 0 {
		klog.V(1).Infof("allocator: released %s of pooled memory on device %d", humanize.IBytes(released), a.deviceID)
	}
}

// UsedBytes reports the device memory currently reserved, pooled buffers
// included.
func (a *Pooled) UsedBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

func (a *Pooled) roundUp(nbytes, alignment uint64) uint64 {
	granule := a.pageSize
	if alignment > granule {
		granule = alignment
	}
	if nbytes == 0 {
		return granule
	}
	return (nbytes + granule - 1) / granule * granule
}
