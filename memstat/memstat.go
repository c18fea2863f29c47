// Package memstat implements the accounting shim described by the driver's
// memory & handle registry component: every allocation the driver makes on
// the backend's behalf, or for its own bookkeeping structures, is tallied
// so that environment teardown can report leaks instead of silently
// dropping outstanding handles.
package memstat

import "sync"

// Origin distinguishes bytes requested through the backend's own allocator
// callbacks from bytes the driver allocates for its own structures.
type Origin int

const (
	OriginBackend Origin = iota
	OriginDriver
)

// Registry is the process-wide (or per-Environment) counter set. The zero
// value is ready to use; a real Environment holds exactly one Registry and
// threads every allocation through it while in threaded mode.
type Registry struct {
	mu sync.Mutex

	bytesBackend int64
	bytesDriver  int64

	handles   int64
	descs     int64
	objInsts  int64
}

// Alloc records size bytes of the given origin. It returns nothing;
// Realloc pairs it with Free to account for old-vs-new sizes.
func (r *Registry) Alloc(origin Origin, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if origin == OriginBackend {
		r.bytesBackend += size
	} else {
		r.bytesDriver += size
	}
}

// Free undoes a prior Alloc of the same origin and size.
func (r *Registry) Free(origin Origin, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if origin == OriginBackend {
		r.bytesBackend -= size
	} else {
		r.bytesDriver -= size
	}
}

// Realloc adjusts the counters for a resize from oldSize to newSize.
func (r *Registry) Realloc(origin Origin, oldSize, newSize int64) {
	r.Free(origin, oldSize)
	r.Alloc(origin, newSize)
}

// AllocHandle/AllocDescriptor/AllocObjInstance increment the corresponding
// counters; FreeHandle/FreeDescriptor/FreeObjInstance decrement them. They
// map directly onto the backend's nb_hndlp/nb_descp/nb_objinst counters.
func (r *Registry) AllocHandle()      { r.mu.Lock(); r.handles++; r.mu.Unlock() }
func (r *Registry) FreeHandle()       { r.mu.Lock(); r.handles--; r.mu.Unlock() }
func (r *Registry) AllocDescriptor()  { r.mu.Lock(); r.descs++; r.mu.Unlock() }
func (r *Registry) FreeDescriptor()   { r.mu.Lock(); r.descs--; r.mu.Unlock() }
func (r *Registry) AllocObjInstance() { r.mu.Lock(); r.objInsts++; r.mu.Unlock() }
func (r *Registry) FreeObjInstance()  { r.mu.Lock(); r.objInsts--; r.mu.Unlock() }

// AllocDescriptorBatch increments the descriptor counter by n in one call,
// mirroring the batch OCIDescriptorAlloc path for backends that support it.
func (r *Registry) AllocDescriptorBatch(n int) {
	r.mu.Lock()
	r.descs += int64(n)
	r.mu.Unlock()
}

// FreeDescriptorBatch is the batch counterpart of AllocDescriptorBatch.
func (r *Registry) FreeDescriptorBatch(n int) {
	r.mu.Lock()
	r.descs -= int64(n)
	r.mu.Unlock()
}

// Snapshot is a point-in-time copy of all counters, used by Leaks and by
// tests asserting balanced alloc/free pairs.
type Snapshot struct {
	BytesBackend   int64
	BytesDriver    int64
	Handles        int64
	Descriptors    int64
	ObjInstances   int64
}

// Snapshot returns the current counter values.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		BytesBackend: r.bytesBackend,
		BytesDriver:  r.bytesDriver,
		Handles:      r.handles,
		Descriptors:  r.descs,
		ObjInstances: r.objInsts,
	}
}

// Leak names one non-zero counter found at teardown.
type Leak struct {
	Counter string
	Value   int64
}

// Leaks reports every counter that is non-zero at teardown: the
// handle/descriptor/object counters and the two byte counters.
func (r *Registry) Leaks() []Leak {
	snap := r.Snapshot()
	var leaks []Leak
	if snap.Handles != 0 {
		leaks = append(leaks, Leak{"handles", snap.Handles})
	}
	if snap.Descriptors != 0 {
		leaks = append(leaks, Leak{"descriptors", snap.Descriptors})
	}
	if snap.ObjInstances != 0 {
		leaks = append(leaks, Leak{"objInstances", snap.ObjInstances})
	}
	if snap.BytesBackend != 0 {
		leaks = append(leaks, Leak{"bytesBackend", snap.BytesBackend})
	}
	if snap.BytesDriver != 0 {
		leaks = append(leaks, Leak{"bytesDriver", snap.BytesDriver})
	}
	return leaks
}
