package ocidrv

import (
	"fmt"

	"github.com/godror/godror"
)

// Object (component K) is a named-type value: a backend object handle
// plus an indicator array and a lazily built array of child attribute
// wrappers. baseIdx is the slot this object occupies inside an enclosing
// parent's indicator array (0 for a top-level object, such as one from
// NewObject or Ref.GetObject).
type Object struct {
	ti      *TypeInfo
	inner   *godror.Object
	hstate  HState
	baseIdx int

	// indicators[i] is true when attribute i is SQL NULL.
	indicators []bool
	// children[i] lazily holds the constructed wrapper for a complex
	// attribute (*Ref, *Object, *Collection);
	// nil until first accessed.
	children []any
}

// NewObject allocates a driver-owned (hstate = Allocated) Object of type
// ti, the Go-side equivalent of ObjectType.NewObject/OCIObjectNew.
func NewObject(ti *TypeInfo, inner *godror.Object) *Object {
	return &Object{
		ti:         ti,
		inner:      inner,
		hstate:     HStateAllocated,
		indicators: make([]bool, len(ti.Attrs)),
		children:   make([]any, len(ti.Attrs)),
	}
}

// wrapFetchedObject is used by Resultset/Define/Collection when an Object
// comes from a fetch or a collection element rather than driver
// allocation; its hstate starts FetchedClean.
func wrapFetchedObject(ti *TypeInfo, inner *godror.Object, baseIdx int) *Object {
	return &Object{
		ti:         ti,
		inner:      inner,
		hstate:     HStateFetchedClean,
		baseIdx:    baseIdx,
		indicators: make([]bool, len(ti.Attrs)),
		children:   make([]any, len(ti.Attrs)),
	}
}

func (o *Object) TypeInfo() *TypeInfo { return o.ti }
func (o *Object) HState() HState      { return o.hstate }

func (o *Object) attrIndex(name string) (int, error) {
	idx := o.ti.AttrIndex(name)
	if idx < 0 {
		return 0, newErr(KindAttrNotFound, "Object", "attribute %q not found on type %s", name, o.ti.Name)
	}
	return idx, nil
}

// IsNull reports whether attribute name is currently SQL NULL.
func (o *Object) IsNull(name string) (bool, error) {
	idx, err := o.attrIndex(name)
	if err != nil {
		return false, err
	}
	return o.indicators[idx], nil
}

// GetAttr resolves name case-insensitively and returns its scalar value;
// ref, sub-object and collection attributes are returned as their wrapper
// type, built on first access with hstate = FetchedClean and reused
// afterwards. LOB, date/timestamp and interval attributes are not
// materialised: GetAttr fails on them with KindDatatypeNotSupported.
func (o *Object) GetAttr(name string) (any, error) {
	idx, err := o.attrIndex(name)
	if err != nil {
		return nil, err
	}
	attr := o.ti.Attrs[idx]
	if o.indicators[idx] {
		return nil, nil
	}
	switch attr.Type {
	case TypeObject, TypeCollection, TypeRef, TypeClob, TypeBlob, TypeDate, TypeTimestamp, TypeTimestampTZ, TypeIntervalYM, TypeIntervalDS:
		if o.children[idx] != nil {
			return o.children[idx], nil
		}
		child, err := o.buildChild(idx, attr)
		if err != nil {
			return nil, err
		}
		o.children[idx] = child
		return child, nil
	default:
		data, err := o.inner.GetAttribute(attr.Name)
		if err != nil {
			return nil, wrapOracleErr("Object", err)
		}
		return data, nil
	}
}

// buildChild constructs the lazily-created wrapper for a complex
// attribute at idx; the actual backend fetch is delegated to the
// Object's inner godror.Object.
func (o *Object) buildChild(idx int, attr AttrInfo) (any, error) {
	switch attr.Type {
	case TypeObject:
		sub, err := o.inner.GetObjectAttribute(attr.Name)
		if err != nil {
			return nil, wrapOracleErr("Object", err)
		}
		subTI := attr.subTypeInfo()
		return wrapFetchedObject(subTI, sub, idx), nil
	case TypeCollection:
		sub, err := o.inner.GetCollectionAttribute(attr.Name)
		if err != nil {
			return nil, wrapOracleErr("Object", err)
		}
		return wrapFetchedCollection(attr.subTypeInfo(), sub), nil
	case TypeRef:
		return &Ref{hstate: HStateFetchedClean}, nil
	default:
		return nil, newErr(KindDatatypeNotSupported, "Object", "attribute %q kind not yet materialisable", attr.Name)
	}
}

// subTypeInfo resolves the AttrInfo's nested TypeInfo for UDT/collection
// attributes through LookupType, or returns a TypeInfo carrying only the
// type name (no attributes) when none is registered.
func (a AttrInfo) subTypeInfo() *TypeInfo {
	if ti, ok := LookupType(a.TypeName); ok {
		return ti
	}
	return &TypeInfo{Name: a.TypeName}
}

// SetAttr writes value into attribute name through the correct indicator
// slot, clearing the NULL flag and marking the Object FetchedDirty; a nil
// value sets the NULL flag and drops the cached child wrapper instead.
func (o *Object) SetAttr(name string, value any) error {
	idx, err := o.attrIndex(name)
	if err != nil {
		return err
	}
	if value == nil {
		o.indicators[idx] = true
		o.children[idx] = nil
		return o.inner.SetAttributeNull(o.ti.Attrs[idx].Name)
	}
	o.indicators[idx] = false
	if err := o.inner.SetAttribute(o.ti.Attrs[idx].Name, value); err != nil {
		return wrapOracleErr("Object", err)
	}
	o.hstate = HStateFetchedDirty
	return nil
}

// Assign copies src's attribute values into dst by value through the
// backend (OCIObjectCopy), then resets dst's children cache so the next
// GetAttr rebuilds fresh wrappers instead of returning src's stale ones:
// a post-assign mutation of dst must not be observed through src.
func (dst *Object) Assign(src *Object) error {
	if err := dst.inner.AssignFrom(src.inner); err != nil {
		return wrapOracleErr("Object", err)
	}
	copy(dst.indicators, src.indicators)
	for i := range dst.children {
		dst.children[i] = nil
	}
	dst.hstate = HStateFetchedDirty
	return nil
}

// GetSelfRef materialises a REF pointing at obj into ref, the Go
// equivalent of OCI_GetSelfRef.
func GetSelfRef(obj *Object, ref *Ref) error {
	inner, err := obj.inner.Ref()
	if err != nil {
		return wrapOracleErr("Object", err)
	}
	ref.inner = inner
	ref.ti = obj.ti
	ref.pinned = obj
	ref.hstate = HStateFetchedClean
	return nil
}

func (o *Object) String() string {
	return fmt.Sprintf("Object{type=%s, hstate=%s}", o.ti.Name, o.hstate)
}
