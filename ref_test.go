package ocidrv

import "testing"

func TestNewRefIsUnpinned(t *testing.T) {
	r := NewRef(&TypeInfo{Name: "PERSON_T"}, nil)
	if r.IsPinned() {
		t.Fatal("a freshly constructed Ref should not be pinned")
	}
	if r.HState() != HStateAllocated {
		t.Fatalf("HState() = %v, want Allocated", r.HState())
	}
}

func TestRefGetObjectOnNullRef(t *testing.T) {
	r := NewRef(&TypeInfo{}, nil)
	if _, err := r.GetObject(); !IsKind(err, KindNullPointer) {
		t.Fatalf("expected KindNullPointer, got %v", err)
	}
}

func TestRefSetNullClearsPinAndMarksDirty(t *testing.T) {
	r := &Ref{ti: &TypeInfo{}, pinned: &Object{}, hstate: HStateFetchedClean}
	r.SetNull()

	if r.IsPinned() {
		t.Fatal("SetNull should drop the cached pin")
	}
	if r.inner != nil {
		t.Fatal("SetNull should clear the backend REF value")
	}
	if r.hstate != HStateFetchedDirty {
		t.Fatalf("hstate = %v, want FetchedDirty", r.hstate)
	}
}

func TestRefAssignInvalidatesDestinationPin(t *testing.T) {
	srcTI := &TypeInfo{Name: "SRC_T"}
	dst := &Ref{ti: &TypeInfo{Name: "DST_T"}, pinned: &Object{}, hstate: HStateAllocated}
	src := &Ref{ti: srcTI, hstate: HStateFetchedClean}

	dst.Assign(src)

	if dst.IsPinned() {
		t.Fatal("Assign must invalidate the destination's cached pin")
	}
	if dst.ti != srcTI {
		t.Fatal("Assign should adopt the source's TypeInfo")
	}
	if dst.hstate != HStateFetchedDirty {
		t.Fatalf("hstate = %v, want FetchedDirty", dst.hstate)
	}
}
