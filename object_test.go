package ocidrv

import "testing"

func testPersonType() *TypeInfo {
	return &TypeInfo{
		Name: "PERSON_T",
		Attrs: []AttrInfo{
			{Name: "ID", Type: TypeNumber},
			{Name: "NAME", Type: TypeVarchar},
			{Name: "BIO", Type: TypeClob},
		},
	}
}

func TestNewObjectInitializesIndicatorsAndChildren(t *testing.T) {
	ti := testPersonType()
	o := NewObject(ti, nil)

	if o.HState() != HStateAllocated {
		t.Fatalf("HState() = %v, want Allocated", o.HState())
	}
	if o.TypeInfo() != ti {
		t.Fatal("TypeInfo() should return the type passed to NewObject")
	}
	if len(o.indicators) != 3 || len(o.children) != 3 {
		t.Fatalf("indicators/children len = %d/%d, want 3/3", len(o.indicators), len(o.children))
	}
}

func TestWrapFetchedObjectHState(t *testing.T) {
	o := wrapFetchedObject(testPersonType(), nil, 2)
	if o.HState() != HStateFetchedClean {
		t.Fatalf("HState() = %v, want FetchedClean", o.HState())
	}
	if o.baseIdx != 2 {
		t.Fatalf("baseIdx = %d, want 2", o.baseIdx)
	}
}

func TestObjectAttrIndexNotFound(t *testing.T) {
	o := NewObject(testPersonType(), nil)
	if _, err := o.attrIndex("NOPE"); !IsKind(err, KindAttrNotFound) {
		t.Fatalf("expected KindAttrNotFound, got %v", err)
	}
}

func TestObjectIsNullBeforeAnySet(t *testing.T) {
	o := NewObject(testPersonType(), nil)
	null, err := o.IsNull("NAME")
	if err != nil {
		t.Fatalf("IsNull: %v", err)
	}
	if null {
		t.Fatal("a freshly allocated Object's attributes should start non-null")
	}
}

func TestObjectGetAttrShortCircuitsOnNullIndicator(t *testing.T) {
	o := NewObject(testPersonType(), nil)
	idx, err := o.attrIndex("BIO")
	if err != nil {
		t.Fatalf("attrIndex: %v", err)
	}
	o.indicators[idx] = true

	v, err := o.GetAttr("BIO")
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if v != nil {
		t.Fatalf("GetAttr on a null complex attribute = %v, want nil", v)
	}
}

func TestObjectGetAttrCaseInsensitive(t *testing.T) {
	o := NewObject(testPersonType(), nil)
	idx, _ := o.attrIndex("bio")
	if idx != 2 {
		t.Fatalf("attrIndex case-insensitive lookup = %d, want 2", idx)
	}
}

func TestAttrInfoSubTypeInfoFallsBackToBareName(t *testing.T) {
	a := AttrInfo{TypeName: "UNREGISTERED_T"}
	ti := a.subTypeInfo()
	if ti.Name != "UNREGISTERED_T" {
		t.Fatalf("subTypeInfo().Name = %q, want %q", ti.Name, "UNREGISTERED_T")
	}

	registered := &TypeInfo{Name: "ADDR_T"}
	RegisterType[any]("ADDR_T", registered)
	b := AttrInfo{TypeName: "ADDR_T"}
	if got := b.subTypeInfo(); got != registered {
		t.Fatalf("subTypeInfo() did not return the registered TypeInfo")
	}
}
