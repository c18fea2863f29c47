package ocidrv

import (
	"testing"
	"time"
)

func TestTimestampFormatParseRoundTrip(t *testing.T) {
	layout := DefaultFormats().Timestamp
	ts := NewTimestamp(time.Date(2026, 3, 5, 14, 30, 9, 0, time.UTC))

	s := ts.Format(layout)
	got, err := ParseTimestamp(s, layout)
	if err != nil {
		t.Fatalf("ParseTimestamp(%q): %v", s, err)
	}
	if got.Format(layout) != s {
		t.Errorf("format(parse(s)) = %q, want %q", got.Format(layout), s)
	}
}

func TestTimestampFormatTokens(t *testing.T) {
	ts := NewTimestamp(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	got := ts.Format("YYYY-MM-DD HH24:MI:SS")
	want := "2026-01-02 03:04:05"
	if got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestTimestampHStateIsDriverOwned(t *testing.T) {
	ts := NewTimestamp(time.Now())
	if ts.HState() != HStateAllocated {
		t.Errorf("HState() = %v, want HStateAllocated", ts.HState())
	}
}

func TestNumberFormatParseRoundTrip(t *testing.T) {
	mask := DefaultFormats().Number
	n := NewNumber(1234.5)

	s := n.Format(mask)
	got, err := ParseNumber(s, mask)
	if err != nil {
		t.Fatalf("ParseNumber(%q): %v", s, err)
	}
	if got.Format(mask) != s {
		t.Errorf("format(parse(s)) = %q, want %q", got.Format(mask), s)
	}
}

func TestNumberInt64AndFloat64(t *testing.T) {
	n := NewNumber(42)
	i, err := n.Int64()
	if err != nil || i != 42 {
		t.Errorf("Int64() = %d, %v, want 42, nil", i, err)
	}
	f, err := n.Float64()
	if err != nil || f != 42 {
		t.Errorf("Float64() = %v, %v, want 42, nil", f, err)
	}
}

func TestNumberStringReturnsUnderlyingText(t *testing.T) {
	n := NewNumber(3.14)
	if got := n.String(); got != "3.14" {
		t.Errorf("String() = %q, want 3.14", got)
	}
}

func TestIntervalStringYearToMonth(t *testing.T) {
	iv := Interval{Months: 14}
	if got := iv.String(); got != "1-2" {
		t.Errorf("String() = %q, want 1-2", got)
	}
}

func TestIntervalStringDayToSecond(t *testing.T) {
	iv := Interval{Days: 2, Seconds: 3725, Nanos: 500000000}
	got := iv.String()
	want := "2 01:02:05.500000000"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestReplaceAllAndIndexOf(t *testing.T) {
	if got := replaceAll("YYYY-MM-DD", "MM", "01"); got != "YYYY-01-DD" {
		t.Errorf("replaceAll = %q", got)
	}
	if got := indexOf("abcdef", "cd"); got != 2 {
		t.Errorf("indexOf = %d, want 2", got)
	}
	if got := indexOf("abcdef", "zz"); got != -1 {
		t.Errorf("indexOf = %d, want -1", got)
	}
}
