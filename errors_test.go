package ocidrv

import (
	"errors"
	"testing"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	if got := KindRebindBadDatatype.String(); got != "RebindBadDatatype" {
		t.Errorf("KindRebindBadDatatype.String() = %q, want RebindBadDatatype", got)
	}
	if got := Kind(999).String(); got != "Unknown" {
		t.Errorf("Kind(999).String() = %q, want Unknown", got)
	}
}

func TestNewErrFormatsMessage(t *testing.T) {
	err := newErr(KindOutOfBounds, "Resultset", "column %d out of range [0,%d)", 5, 3)
	if err.Kind != KindOutOfBounds || err.Source != "Resultset" {
		t.Errorf("got %+v", err)
	}
	want := "column 5 out of range [0,3)"
	if err.Message != want {
		t.Errorf("Message = %q, want %q", err.Message, want)
	}
}

func TestWrapOracleErrPassesThroughNil(t *testing.T) {
	if err := wrapOracleErr("Statement", nil); err != nil {
		t.Errorf("wrapOracleErr(nil) = %v, want nil", err)
	}
}

func TestWrapOracleErrPassesThroughExistingError(t *testing.T) {
	inner := newErr(KindColumnNotFound, "Resultset", "boom")
	got := wrapOracleErr("Statement", inner)
	if got != inner {
		t.Errorf("wrapOracleErr should pass an existing *Error through unchanged, got %+v", got)
	}
}

func TestWrapOracleErrWrapsGenericError(t *testing.T) {
	inner := errors.New("ORA-00001: unique constraint violated")
	got := wrapOracleErr("Statement", inner)
	if got.Kind != KindOracle || got.Source != "Statement" {
		t.Errorf("got %+v", got)
	}
	if !errors.Is(got, inner) {
		t.Error("wrapOracleErr should preserve the original error via Unwrap")
	}
}

func TestIsKind(t *testing.T) {
	err := newErr(KindBindArraySize, "Statement", "bad size")
	if !IsKind(err, KindBindArraySize) {
		t.Error("IsKind should match the wrapped Error's Kind")
	}
	if IsKind(err, KindOracle) {
		t.Error("IsKind should not match an unrelated Kind")
	}
	if IsKind(errors.New("plain"), KindOracle) {
		t.Error("IsKind should be false for a non-*Error")
	}
}

func TestNotAvailableNamesFeature(t *testing.T) {
	err := NotAvailable("scrollable-cursor")
	if err.Kind != KindNotAvailable {
		t.Errorf("Kind = %v, want KindNotAvailable", err.Kind)
	}
	if !errors.Is(err, err) {
		t.Fatal("sanity: err should equal itself")
	}
}

func TestErrorErrorStringIncludesSourceAndCode(t *testing.T) {
	err := &Error{Kind: KindOracle, Code: 1, Message: "boom", Source: "Connection"}
	got := err.Error()
	want := "ocidrv: Connection: boom (Oracle, code 1)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorErrorStringWithoutSource(t *testing.T) {
	err := &Error{Kind: KindOracle, Code: 2, Message: "boom"}
	got := err.Error()
	want := "ocidrv: boom (Oracle, code 2)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
