package ocidrv

import (
	"testing"
	"time"

	"github.com/godror/godror"
)

func TestConvertBindValuePassesPlainScalarsThrough(t *testing.T) {
	if got := convertBindValue(TypeVarchar, "hello"); got != "hello" {
		t.Errorf("convertBindValue(string) = %v, want hello", got)
	}
	if got := convertBindValue(TypeInteger, 42); got != 42 {
		t.Errorf("convertBindValue(int) = %v, want 42", got)
	}
}

func TestConvertBindValueUnwrapsTimestamp(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := convertBindValue(TypeTimestamp, NewTimestamp(now))
	tm, ok := got.(time.Time)
	if !ok || !tm.Equal(now) {
		t.Errorf("convertBindValue(Timestamp) = %v, want %v", got, now)
	}
}

func TestConvertBindValueUnwrapsNumberAsFloat(t *testing.T) {
	got := convertBindValue(TypeNumber, NewNumber(3.5))
	f, ok := got.(float64)
	if !ok || f != 3.5 {
		t.Errorf("convertBindValue(Number) = %v, want 3.5", got)
	}
}

func TestConvertBindValueUnwrapsIntervalAsString(t *testing.T) {
	got := convertBindValue(TypeIntervalDS, Interval{Days: 1})
	s, ok := got.(string)
	if !ok || s != (Interval{Days: 1}).String() {
		t.Errorf("convertBindValue(Interval) = %v", got)
	}
}

func TestBindDirectionDefaultsToIn(t *testing.T) {
	b := &Bind{dtype: TypeVarchar, value: "x"}
	if b.Direction() != BindIn {
		t.Errorf("Direction() = %v, want BindIn", b.Direction())
	}
	if b.Value() != "x" {
		t.Errorf("Value() = %v, want x", b.Value())
	}
}

func TestBindSetDirectionOut(t *testing.T) {
	b := &Bind{dtype: TypeVarchar}
	b.SetDirection(BindOut, 64)
	if b.Direction() != BindOut {
		t.Errorf("Direction() = %v, want BindOut", b.Direction())
	}

	arg := b.arg()
	out, ok := arg.(godror.Out)
	if !ok {
		t.Fatalf("arg() = %T, want godror.Out", arg)
	}
	if out.In {
		t.Error("BindOut's godror.Out.In should be false")
	}
	if out.Size != 64 {
		t.Errorf("out.Size = %d, want 64", out.Size)
	}
}

func TestBindSetDirectionInOut(t *testing.T) {
	b := &Bind{dtype: TypeVarchar}
	b.SetDirection(BindInOut, 32)

	arg := b.arg()
	out, ok := arg.(godror.Out)
	if !ok {
		t.Fatalf("arg() = %T, want godror.Out", arg)
	}
	if !out.In {
		t.Error("BindInOut's godror.Out.In should be true")
	}
}

func TestBindArgForPlainInBind(t *testing.T) {
	b := &Bind{dtype: TypeInteger, value: 7}
	if got := b.arg(); got != 7 {
		t.Errorf("arg() = %v, want 7", got)
	}
}

func TestBindHStateIsAllocatedBindStmt(t *testing.T) {
	b := &Bind{}
	if b.HState() != HStateAllocatedBindStmt {
		t.Errorf("HState() = %v, want HStateAllocatedBindStmt", b.HState())
	}
}
