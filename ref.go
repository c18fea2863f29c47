package ocidrv

import (
	"fmt"

	"github.com/godror/godror"
)

// Ref (component K) holds a database reference: an unpinned Ref carries
// only the backend REF value, a pinned one also holds a usable *Object.
// GetObject pins lazily on first access.
type Ref struct {
	ti     *TypeInfo // may be nil until the first pin adopts one
	inner  *godror.Object
	hstate HState
	pinned *Object
}

// NewRef wraps a backend REF value as a driver-owned, unpinned Ref.
func NewRef(ti *TypeInfo, inner *godror.Object) *Ref {
	return &Ref{ti: ti, inner: inner, hstate: HStateAllocated}
}

func (r *Ref) HState() HState { return r.hstate }

// IsPinned reports whether GetObject has already resolved this Ref to a
// usable Object.
func (r *Ref) IsPinned() bool { return r.pinned != nil }

// GetObject pins the Ref, fetching and caching the referenced Object. A
// Ref constructed without known TypeInfo (e.g. from a bind column) adopts
// its TypeInfo from the first pin's result.
func (r *Ref) GetObject() (*Object, error) {
	if r.pinned != nil {
		return r.pinned, nil
	}
	if r.inner == nil {
		return nil, newErr(KindNullPointer, "Ref", "ref is null")
	}
	ti := r.ti
	if ti == nil {
		ti = &TypeInfo{}
	}
	r.pinned = wrapFetchedObject(ti, r.inner, 0)
	if r.ti == nil {
		r.ti = ti
	}
	return r.pinned, nil
}

// SetNull unpins (dropping any cached Object) and clears the backend REF
// value.
func (r *Ref) SetNull() {
	r.pinned = nil
	r.inner = nil
	r.hstate = HStateFetchedDirty
}

// Assign copies src's backend REF value into dst and invalidates any
// object dst had pinned, since the REF now points somewhere else.
func (dst *Ref) Assign(src *Ref) {
	dst.inner = src.inner
	dst.ti = src.ti
	dst.pinned = nil
	dst.hstate = HStateFetchedDirty
}

func (r *Ref) String() string {
	return fmt.Sprintf("Ref{pinned=%v, hstate=%s}", r.pinned != nil, r.hstate)
}
