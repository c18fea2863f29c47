package ocidrv

import (
	"context"
	"testing"
)

func TestWithCallDepthCreatesOnFirstEntry(t *testing.T) {
	ctx, cd := withCallDepth(context.Background(), nil, false)
	if cd.depth != 1 {
		t.Errorf("depth = %d, want 1", cd.depth)
	}

	_, cd2 := withCallDepth(ctx, nil, false)
	if cd2 != cd {
		t.Fatal("withCallDepth should reuse the existing *callDepth from ctx")
	}
	if cd2.depth != 2 {
		t.Errorf("depth after nested entry = %d, want 2", cd2.depth)
	}
}

func TestCallDepthExitOnlyDispatchesAtZero(t *testing.T) {
	var got *Error
	_, cd := withCallDepth(context.Background(), func(e *Error) { got = e }, false)
	cd.enter() // depth 2

	e := newErr(KindOracle, "Statement", "boom")
	cd.record(e)
	cd.exit() // depth 1, should not dispatch yet
	if got != nil {
		t.Fatal("handler fired before call depth reached zero")
	}

	cd.exit() // depth 0, dispatches
	if got != e {
		t.Fatalf("got %v, want %v dispatched at depth zero", got, e)
	}
}

func TestCallDepthWarningSuppressedUnlessWarnOn(t *testing.T) {
	var got *Error
	_, cd := withCallDepth(context.Background(), func(e *Error) { got = e }, false)

	cd.record(&Error{Kind: KindWarning, Warning: true, Message: "watch out"})
	cd.exit()
	if got != nil {
		t.Fatal("warning should be suppressed when warnOn is false")
	}
}

func TestCallDepthWarningDispatchedWhenWarnOn(t *testing.T) {
	var got *Error
	_, cd := withCallDepth(context.Background(), func(e *Error) { got = e }, true)

	w := &Error{Kind: KindWarning, Warning: true, Message: "watch out"}
	cd.record(w)
	cd.exit()
	if got != w {
		t.Fatal("warning should be dispatched when warnOn is true")
	}
}

func TestCallDepthRecordReplacesPending(t *testing.T) {
	cd := &callDepth{depth: 1}
	first := newErr(KindOracle, "S", "first")
	second := newErr(KindOracle, "S", "second")

	cd.record(first)
	cd.record(second)
	if cd.pending != second {
		t.Error("record should replace the previously pending error")
	}
}

func TestCallDepthRecordNilIsNoop(t *testing.T) {
	cd := &callDepth{depth: 1, pending: newErr(KindOracle, "S", "keep me")}
	cd.record(nil)
	if cd.pending == nil {
		t.Error("record(nil) should not clear an existing pending error")
	}
}

func TestCallDepthExitWithNoPendingErrorDoesNotPanic(t *testing.T) {
	called := false
	cd := &callDepth{depth: 1, handler: func(*Error) { called = true }}
	cd.exit()
	if called {
		t.Error("handler should not fire when there is no pending error")
	}
}
