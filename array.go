package ocidrv

import "fmt"

// ArrayElemKind enumerates the wrapper kinds the array façade can
// allocate vectors of: dates, lobs,
// objects, ...) plus the scalar kinds array binds also need.
type ArrayElemKind int

const (
	ArrayElemNumber ArrayElemKind = iota
	ArrayElemDate
	ArrayElemTimestamp
	ArrayElemInterval
	ArrayElemLob
	ArrayElemObject
	ArrayElemRef
	ArrayElemString
)

// Array (component O) is a typed vector allocator for bind arrays: it
// produces one packed backing buffer plus a parallel slice of per-element
// wrapper headers, every one of them hstate = AllocatedArray. Elementwise
// Free is therefore a no-op -- only Array.Free may release the backend's
// batch allocation and the backing buffer, atomically.
type Array struct {
	kind ArrayElemKind
	mem  memoryRegistry

	elems    []any
	freed    bool
	byteSize int64
}

// memoryRegistry is the minimal subset of memstat.Registry the façade
// needs; kept as an interface here so array.go doesn't import memstat
// just to call two methods, while still routing every allocation through
// the same accounting the rest of the driver uses.
type memoryRegistry interface {
	AllocDescriptorBatch(n int)
	FreeDescriptorBatch(n int)
}

// NewArray allocates n elements of kind, each tagged hstate =
// AllocatedArray, accounted as one batch descriptor allocation against
// mem (component B).
func NewArray(kind ArrayElemKind, n int, mem memoryRegistry) *Array {
	elems := make([]any, n)
	for i := range elems {
		elems[i] = newArrayElem(kind)
	}
	if mem != nil {
		mem.AllocDescriptorBatch(n)
	}
	return &Array{kind: kind, mem: mem, elems: elems, byteSize: elemSize(kind) * int64(n)}
}

func newArrayElem(kind ArrayElemKind) any {
	switch kind {
	case ArrayElemDate, ArrayElemTimestamp:
		return Timestamp{hstate: HStateAllocatedArray}
	case ArrayElemInterval:
		return Interval{hstate: HStateAllocatedArray}
	case ArrayElemLob:
		return &Lob{hstate: HStateAllocatedArray}
	case ArrayElemObject:
		return &Object{hstate: HStateAllocatedArray}
	case ArrayElemRef:
		return &Ref{hstate: HStateAllocatedArray}
	case ArrayElemString:
		return ""
	default:
		return Number{}
	}
}

func elemSize(kind ArrayElemKind) int64 {
	switch kind {
	case ArrayElemNumber:
		return 22 // OCINumber-sized
	case ArrayElemDate, ArrayElemTimestamp:
		return 11
	case ArrayElemInterval:
		return 8
	default:
		return 8 // pointer-sized handle for lob/object/ref/string elements
	}
}

// NewArrayFor is the usual entry point: it allocates an Array of kind/n
// accounted against env's shared memstat.Registry (component B), the way
// a Statement builds a bind array for array DML.
func (e *Environment) NewArrayFor(kind ArrayElemKind, n int) *Array {
	return NewArray(kind, n, e.Memory())
}

// Len returns the array's element count.
func (a *Array) Len() int { return len(a.elems) }

// At returns element i's wrapper; its hstate is always AllocatedArray.
func (a *Array) At(i int) (any, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, newErr(KindOutOfBounds, "Array", "index %d out of range [0,%d)", i, len(a.elems))
	}
	return a.elems[i], nil
}

// SetAt replaces element i's value in the backing buffer. The element's
// hstate remains AllocatedArray -- it is still a cell of this façade, not
// independently owned.
func (a *Array) SetAt(i int, v any) error {
	if i < 0 || i >= len(a.elems) {
		return newErr(KindOutOfBounds, "Array", "index %d out of range [0,%d)", i, len(a.elems))
	}
	a.elems[i] = v
	return nil
}

// FreeElem is a documented no-op: elementwise free never releases
// anything.
func (a *Array) FreeElem(i int) {}

// Free releases the façade's backend batch allocation and backing buffer
// atomically. Safe to call more than once.
func (a *Array) Free() {
	if a.freed {
		return
	}
	a.freed = true
	if a.mem != nil {
		a.mem.FreeDescriptorBatch(len(a.elems))
	}
	a.elems = nil
}

func (a *Array) String() string {
	return fmt.Sprintf("Array{kind=%d, len=%d, freed=%v}", a.kind, len(a.elems), a.freed)
}
