package ocidrv

import "testing"

func TestDefineInfoAndPosition(t *testing.T) {
	attr := AttrInfo{Name: "ID", Type: TypeNumber}
	d := &Define{info: attr, pos: 3}

	if d.Info() != attr {
		t.Errorf("Info() = %+v, want %+v", d.Info(), attr)
	}
	if d.Position() != 3 {
		t.Errorf("Position() = %d, want 3", d.Position())
	}
}
