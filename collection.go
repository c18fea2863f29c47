package ocidrv

import (
	"fmt"

	"github.com/godror/godror"
)

// Collection wraps a VARRAY or nested table (component K). GetAt returns a
// single shared element wrapper reused across calls -- the caller must
// not Close/free it independently -- only the Collection itself owns the backend collection
// handle.
type Collection struct {
	ti     *TypeInfo // CollElemType describes element kind
	inner  *godror.ObjectCollection
	hstate HState

	elem any // the single reused element wrapper GetAt/Iter hand back
}

func wrapFetchedCollection(ti *TypeInfo, inner *godror.ObjectCollection) *Collection {
	return &Collection{ti: ti, inner: inner, hstate: HStateFetchedClean}
}

// NewCollection allocates a driver-owned Collection of the VARRAY/nested
// table type ti.
func NewCollection(ti *TypeInfo, inner *godror.ObjectCollection) *Collection {
	return &Collection{ti: ti, inner: inner, hstate: HStateAllocated}
}

func (c *Collection) HState() HState        { return c.hstate }
func (c *Collection) GetTypeInfo() *TypeInfo { return c.ti }

// GetMax returns the VARRAY's declared bound, or 0 for an unbounded
// nested table.
func (c *Collection) GetMax() (int, error) {
	n, err := c.inner.MaxLen()
	if err != nil {
		return 0, wrapOracleErr("Collection", err)
	}
	return n, nil
}

// GetSize returns the collection's current element count, never
// exceeding GetMax(c) when GetMax is bounded.
func (c *Collection) GetSize() (int, error) {
	n, err := c.inner.Len()
	if err != nil {
		return 0, wrapOracleErr("Collection", err)
	}
	return n, nil
}

// GetAt returns element i (1-based, matching the backend's OCI collection
// indexing) as the Collection's single shared element wrapper, whose
// contents reflect the requested slot until the next GetAt/Iter call.
func (c *Collection) GetAt(i int) (any, error) {
	size, err := c.GetSize()
	if err != nil {
		return nil, err
	}
	if i < 1 || i > size {
		return nil, newErr(KindOutOfBounds, "Collection", "index %d out of range [1,%d]", i, size)
	}
	data, err := c.inner.GetItem(i - 1)
	if err != nil {
		return nil, wrapOracleErr("Collection", err)
	}
	c.elem = wrapElem(c.ti.CollElemType, data)
	return c.elem, nil
}

// SetAt overwrites element i (1-based) with elem.
func (c *Collection) SetAt(i int, elem any) error {
	size, err := c.GetSize()
	if err != nil {
		return err
	}
	if i < 1 || i > size {
		return newErr(KindOutOfBounds, "Collection", "index %d out of range [1,%d]", i, size)
	}
	if err := c.inner.SetItem(i-1, rawElemValue(elem)); err != nil {
		return wrapOracleErr("Collection", err)
	}
	c.hstate = HStateFetchedDirty
	return nil
}

// Append adds elem past the current last element; refused once GetSize
// equals a bounded GetMax.
func (c *Collection) Append(elem any) error {
	max, err := c.GetMax()
	if err != nil {
		return err
	}
	size, err := c.GetSize()
	if err != nil {
		return err
	}
	if max > 0 && size >= max {
		return newErr(KindOutOfBounds, "Collection", "collection at max size %d", max)
	}
	if err := c.inner.Append(rawElemValue(elem)); err != nil {
		return wrapOracleErr("Collection", err)
	}
	c.hstate = HStateFetchedDirty
	return nil
}

// Trim removes the n trailing elements; requires n <= GetSize (property
// law 5).
func (c *Collection) Trim(n int) error {
	size, err := c.GetSize()
	if err != nil {
		return err
	}
	if n < 0 || n > size {
		return newErr(KindOutOfBounds, "Collection", "cannot trim %d elements from a collection of size %d", n, size)
	}
	if err := c.inner.Trim(n); err != nil {
		return wrapOracleErr("Collection", err)
	}
	c.hstate = HStateFetchedDirty
	return nil
}

// wrapElem constructs the Go representation for one collection/iterator
// element; scalar kinds pass through, complex kinds build the matching
// value wrapper the way Object.buildChild does for attributes.
func wrapElem(elemTI *TypeInfo, data any) any {
	if obj, ok := data.(*godror.Object); ok {
		if elemTI == nil {
			elemTI = &TypeInfo{}
		}
		return wrapFetchedObject(elemTI, obj, 0)
	}
	return data
}

func rawElemValue(elem any) any {
	if o, ok := elem.(*Object); ok {
		return o.inner
	}
	return elem
}

func (c *Collection) String() string {
	size, _ := c.GetSize()
	return fmt.Sprintf("Collection{type=%s, size=%d}", c.ti.Name, size)
}

// Iter walks a Collection forward and backward with restartable cursor
// semantics (component K / design-notes "generators/iterators").
type Iter struct {
	coll *Collection
	pos  int // 0 before first Next, and again after Prev past the start
	size int
}

// NewIter creates an Iter positioned before the first element of coll.
func NewIter(coll *Collection) (*Iter, error) {
	size, err := coll.GetSize()
	if err != nil {
		return nil, err
	}
	return &Iter{coll: coll, pos: 0, size: size}, nil
}

// Next advances the iterator and returns the element at the new position,
// or (nil, false) once past the last element.
func (it *Iter) Next() (any, bool) {
	if it.pos >= it.size {
		return nil, false
	}
	it.pos++
	v, err := it.coll.GetAt(it.pos)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Prev moves the iterator backward and returns the element at the new
// position, or (nil, false) once before the first element.
func (it *Iter) Prev() (any, bool) {
	if it.pos <= 1 {
		it.pos = 0
		return nil, false
	}
	it.pos--
	v, err := it.coll.GetAt(it.pos)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Reset rewinds the iterator to before the first element.
func (it *Iter) Reset() { it.pos = 0 }
