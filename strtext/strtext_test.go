package strtext

import "testing"

func TestConvertNarrowToWide4ZeroExtends(t *testing.T) {
	src := []byte{'A', 'B', 'C'}
	wide := Convert(src, WidthNarrow, Wide4)
	if len(wide) != 12 {
		t.Fatalf("expected 12 bytes (3 code units * 4), got %d", len(wide))
	}
	for i := 0; i < 3; i++ {
		if wide[i*4] != src[i] || wide[i*4+1] != 0 || wide[i*4+2] != 0 || wide[i*4+3] != 0 {
			t.Fatalf("code unit %d not zero-extended: %v", i, wide[i*4:i*4+4])
		}
	}
}

func TestConvertWide4ToWide2Truncates(t *testing.T) {
	src := []byte{0x41, 0x00, 0x00, 0x00, 0x42, 0x00, 0x00, 0x00}
	narrow := Convert(src, Wide4, Wide2)
	if len(narrow) != 4 {
		t.Fatalf("expected 4 bytes, got %d", len(narrow))
	}
	if narrow[0] != 0x41 || narrow[2] != 0x42 {
		t.Fatalf("unexpected truncation result: %v", narrow)
	}
}

func TestUTF8LenCountsCodePoints(t *testing.T) {
	s := []byte("héllo") // é is 2 bytes, 1 code point
	if got := UTF8Len(s); got != 5 {
		t.Fatalf("expected 5 code points, got %d", got)
	}
}

func TestDemoteWide2AttrDetectsNarrowBuffer(t *testing.T) {
	// A genuine wide-2 'A' is {0x41, 0x00}; a narrow "AB" misread as wide-2
	// has a nonzero second byte.
	if DemoteWide2Attr([]byte{0x41, 0x00}) {
		t.Fatalf("expected genuine wide-2 buffer not to be demoted")
	}
	if !DemoteWide2Attr([]byte{'A', 'B'}) {
		t.Fatalf("expected narrow-misread-as-wide buffer to be demoted")
	}
}
