package ocidrv

import (
	"testing"
	"time"
)

func TestEnvironmentGateMemoryFormats(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	if e.Gate() == nil {
		t.Error("Gate() returned nil")
	}
	if e.Memory() == nil {
		t.Error("Memory() returned nil")
	}
	if e.Formats().Date != DefaultFormats().Date {
		t.Errorf("Formats() = %+v", e.Formats())
	}
}

func TestEnvironmentLogFallsBackToDefault(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()
	e.logger = nil

	if e.log() != defaultLogger {
		t.Error("log() should fall back to the package default logger when unset")
	}
}

func TestEnvironmentRegisterDeregisterConnection(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	c := &Connection{}
	e.registerConnection(c)
	if len(e.connections) != 1 || e.connections[0] != c {
		t.Fatalf("registerConnection did not add the connection: %v", e.connections)
	}
	e.deregisterConnection(c)
	if len(e.connections) != 0 {
		t.Fatalf("deregisterConnection did not remove the connection: %v", e.connections)
	}
}

func TestEnvironmentDispatchHAMatchesByServerID(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	matched := &Connection{serverIdentity: "scott@orcl"}
	other := &Connection{serverIdentity: "scott@other"}
	e.registerConnection(matched)
	e.registerConnection(other)

	var gotConn *Connection
	var gotKind HAEvent
	e.SetHAHandler(func(conn *Connection, source string, event HAEvent, at Timestamp) {
		gotConn = conn
		gotKind = event
		if source != "HA" {
			t.Errorf("source = %q, want HA", source)
		}
	})

	e.dispatchHA("scott@orcl", HAEventDown, NewTimestamp(time.Now()))
	if gotConn != matched {
		t.Errorf("dispatchHA invoked handler for %v, want %v", gotConn, matched)
	}
	if gotKind != HAEventDown {
		t.Errorf("event = %v, want HAEventDown", gotKind)
	}
}

func TestEnvironmentDispatchHANoHandlerIsNoop(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	e.registerConnection(&Connection{serverIdentity: "scott@orcl"})
	// Must not panic when no handler is registered.
	e.dispatchHA("scott@orcl", HAEventUp, NewTimestamp(time.Now()))
}

func TestEnvironmentCleanupIsIdempotent(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if errs := e.Cleanup(); len(errs) != 0 {
		t.Fatalf("first Cleanup returned errors: %v", errs)
	}
	if errs := e.Cleanup(); len(errs) != 0 {
		t.Fatalf("second Cleanup should be a no-op, got: %v", errs)
	}
}

func TestEnvironmentString(t *testing.T) {
	e, err := Initialize(ModeThreaded)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	got := e.String()
	if got == "" {
		t.Error("String() returned empty")
	}
}

func TestInitializeRejectsSecondCall(t *testing.T) {
	e1, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e1.Cleanup()

	e2, err := Initialize(ModeThreaded)
	if err == nil {
		t.Fatal("second Initialize should be rejected with an error")
	}
	if e2 != nil {
		t.Fatal("a second Initialize call must not return an Environment")
	}
}

func TestCurrentBeforeInitializeFails(t *testing.T) {
	if env != nil {
		t.Skip("another test already initialised the package-level environment")
	}
	if _, err := Current(); !IsKind(err, KindNotInitialized) {
		t.Fatalf("expected KindNotInitialized, got %v", err)
	}
}

func TestRegisterDeregisterSubscription(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	defer e.Cleanup()

	sub := &Subscription{name: "Q1"}
	e.registerSubscription("Q1", sub)
	if e.subscriptions["Q1"] != sub {
		t.Fatal("registerSubscription did not store the subscription")
	}

	e.deregisterSubscription("Q1")
	if _, ok := e.subscriptions["Q1"]; ok {
		t.Fatal("deregisterSubscription did not remove the subscription")
	}
}

func TestCleanupClosesRegisteredSubscriptions(t *testing.T) {
	e, err := Initialize(ModeDefault)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	sub, err := newSubscription(&Connection{env: e}, "Q1", 0, 0, func(Event) {})
	if err != nil {
		t.Fatalf("newSubscription: %v", err)
	}

	errs := e.Cleanup()
	if len(errs) != 0 {
		t.Fatalf("Cleanup returned errors: %v", errs)
	}
	if !sub.closed {
		t.Fatal("Cleanup should close every registered subscription")
	}
}
