package ocidrv

import (
	"fmt"
	"sync"

	"github.com/ocidrv/ocidrv/memstat"
	"github.com/ocidrv/ocidrv/symbols"
)

// EnvMode bit flags mirror the backend's Default/Threaded/Context/Events
// initialisation modes.
type EnvMode int

const (
	ModeDefault  EnvMode = 0
	ModeThreaded EnvMode = 1 << iota
	ModeContext
	ModeEvents
	ModeUTF16
)

// Environment is the process-wide singleton every other component hangs
// off of. Exactly one may be initialised per process for the library's
// lifetime; a second Initialize call is rejected.
type Environment struct {
	mu sync.Mutex

	mode    EnvMode
	charset symbols.RuntimeVersion
	gate    *symbols.Gate

	formats FormatDefaults
	memory  memstat.Registry

	connections   []*Connection
	pools         []*Pool
	subscriptions map[string]*Subscription // keyed by notification name, component N

	haHandler HAHandler
	logger    Logger

	closed bool
}

var (
	envOnce sync.Once
	env     *Environment
	envErr  error
)

// Initialize creates the single process-wide Environment. mode is a
// bitwise-or of EnvMode flags. Calling Initialize a second time returns
// the *Error for an already-initialised environment rather than
// silently succeeding or creating a second instance.
func Initialize(mode EnvMode, opts ...Option) (*Environment, error) {
	var initErr error
	created := false
	envOnce.Do(func() {
		cfg := defaultConfig()
		for _, o := range opts {
			o(&cfg)
		}

		gate, gerr := symbols.Detect(symbols.ImportStatic, "")
		if gerr != nil {
			initErr = gerr
			return
		}

		e := &Environment{
			mode:          mode,
			gate:          gate,
			formats:       cfg.Formats,
			subscriptions: make(map[string]*Subscription),
			logger:        cfg.Logger,
		}
		if e.logger == nil {
			e.logger = defaultLogger
		}
		env = e
		created = true
	})
	if initErr != nil {
		envErr = initErr
		return nil, newErr(KindLoadingSharedLib, "Environment", "initialize: %v", initErr)
	}
	if env == nil {
		return nil, newErr(KindNotInitialized, "Environment", "environment already failed to initialize")
	}
	if !created {
		return nil, newErr(KindArgInvalidValue, "Environment", "environment is already initialized")
	}
	return env, nil
}

// Current returns the process environment, or a NotInitialized *Error if
// Initialize has not been called yet.
func Current() (*Environment, error) {
	if env == nil {
		return nil, newErr(KindNotInitialized, "Environment", "ocidrv.Initialize was not called")
	}
	return env, nil
}

// Gate exposes the detected feature gate (component A) so Statement,
// Resultset and friends can refuse operations the backend can't support.
func (e *Environment) Gate() *symbols.Gate { return e.gate }

// Memory exposes the shared accounting registry (component B).
func (e *Environment) Memory() *memstat.Registry { return &e.memory }

// Formats returns the environment-wide default format strings; a
// Connection may override them per-connection.
func (e *Environment) Formats() FormatDefaults { return e.formats }

// HAHandler is invoked on a high-availability event: the backend delivers
// an event carrying a server handle, the Environment walks its connection
// list for matches and calls the handler once per matching Connection.
type HAHandler func(conn *Connection, source string, event HAEvent, at Timestamp)

// HAEvent enumerates the kinds of high-availability notifications the
// backend can deliver.
type HAEvent int

const (
	HAEventDown HAEvent = iota
	HAEventUp
	HAEventUnknown
)

// SetHAHandler registers the process-wide HA callback.
func (e *Environment) SetHAHandler(h HAHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.haHandler = h
}

// dispatchHA is called by the connection layer when the backend reports a
// server-handle HA event; it walks the registered connections for a
// matching server identity and invokes the handler for each match.
func (e *Environment) dispatchHA(serverID string, kind HAEvent, at Timestamp) {
	e.mu.Lock()
	handler := e.haHandler
	conns := append([]*Connection(nil), e.connections...)
	e.mu.Unlock()

	if handler == nil {
		return
	}
	for _, c := range conns {
		if c.serverID() == serverID {
			handler(c, "HA", kind, at)
		}
	}
}

func (e *Environment) registerConnection(c *Connection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.connections = append(e.connections, c)
}

func (e *Environment) deregisterConnection(c *Connection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, cc := range e.connections {
		if cc == c {
			e.connections = append(e.connections[:i], e.connections[i+1:]...)
			break
		}
	}
}

func (e *Environment) registerPool(p *Pool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pools = append(e.pools, p)
}

// registerSubscription and deregisterSubscription maintain the
// Environment's subscription registry (component F's list of
// subscriptions, populated by component N).
func (e *Environment) registerSubscription(name string, s *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subscriptions != nil {
		e.subscriptions[name] = s
	}
}

func (e *Environment) deregisterSubscription(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.subscriptions, name)
}

// Cleanup tears down the environment: every registered connection and
// pool is closed, then any non-zero memory/handle counter is reported as
// a leak, but cleanup proceeds regardless.
func (e *Environment) Cleanup() []error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	conns := e.connections
	pools := e.pools
	subs := e.subscriptions
	e.connections = nil
	e.pools = nil
	e.subscriptions = nil
	e.mu.Unlock()

	var errs []error
	for _, sub := range subs {
		if err := sub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, p := range pools {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range conns {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	for _, leak := range e.memory.Leaks() {
		kind := KindUnfreedData
		if leak.Counter == "bytesBackend" || leak.Counter == "bytesDriver" {
			kind = KindUnfreedBytes
		}
		errs = append(errs, newErr(kind, "Environment", "teardown: %s leaked %d", leak.Counter, leak.Value))
	}

	// Allow a future Initialize in the same process (mainly for tests);
	// production code calls Cleanup exactly once.
	envOnce = sync.Once{}
	env = nil
	return errs
}

func (e *Environment) log() Logger {
	if e.logger == nil {
		return defaultLogger
	}
	return e.logger
}

func (e *Environment) String() string {
	return fmt.Sprintf("Environment{mode=%d, version=%s}", e.mode, e.gate.Version)
}
