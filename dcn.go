package ocidrv

import (
	"fmt"
	"sync"
	"time"
)

// EventType distinguishes the kinds of database-change notifications a
// Subscription delivers: object change, query change, database startup
// or shutdown. Which shapes a callback receives is set by Interests.
type EventType int

const (
	EventObjectChange EventType = iota
	EventQueryChange
	EventStartup
	EventShutdown
	EventUnknown
)

// Opcode mirrors the row-level DML kind a row-change event reports.
type Opcode int

const (
	OpInsert Opcode = 1 << iota
	OpUpdate
	OpDelete
	OpAlter
	OpDrop
)

// Event is the scratch carrier reused by a Subscription on every
// callback: reset before each delivery rather than reallocated.
type Event struct {
	Type       EventType
	DBName     string
	ObjectName string
	RowID      string
	Op         Opcode
}

func (e *Event) reset() {
	*e = Event{}
}

// Interests configures which event shapes a Subscription's callback cares
// about -- events outside these interests are dropped at delivery time.
type Interests struct {
	Objects   bool
	Rows      bool
	Databases bool
}

// TableChange is one entry of an object-change event's table-changes
// collection.
type TableChange struct {
	TableName string
	RowIDs    []string
	Op        Opcode
}

// Subscription (component N) owns one DCN registration and the scratch
// Event buffer its callback reuses. It is also the type AQ's
// Dequeue.Subscribe registers against, since both ride the same backend
// notification mechanism.
type Subscription struct {
	mu sync.Mutex

	conn      *Connection
	name      string // "[schema.]queue[:consumer]" for AQ, or a query name for CQN
	port      int
	timeout   time.Duration
	interests Interests

	cb    func(Event)
	event Event

	closed bool
}

// newSubscription records name in the Environment's subscription
// registry (no backend registration is made) and installs cb as the
// delivery callback. It is shared by Dequeue.Subscribe (AQ) and
// RegisterCQN (plain DCN) since both produce a Subscription.
func newSubscription(conn *Connection, name string, port int, timeout time.Duration, cb func(Event)) (*Subscription, error) {
	if cb == nil {
		return nil, newErr(KindNullPointer, "Subscription", "callback must not be nil")
	}
	if err := conn.env.Gate().Require(requireNotifications); err != nil {
		return nil, NotAvailable(requireNotifications)
	}
	s := &Subscription{conn: conn, name: name, port: port, timeout: timeout, cb: cb}
	conn.env.registerSubscription(name, s)
	conn.env.log().Info("subscription registered", "name", name)
	return s, nil
}

const requireNotifications = "notifications"

// RegisterCQN registers a Continuous Query Notification subscription on
// query, delivering matching object/row-change events to cb per
// interests.
func RegisterCQN(conn *Connection, query string, port int, timeout time.Duration, interests Interests, cb func(Event)) (*Subscription, error) {
	sub, err := newSubscription(conn, query, port, timeout, cb)
	if err != nil {
		return nil, err
	}
	sub.interests = interests
	return sub, nil
}

// deliver is invoked by the backend (or, in tests, directly) with a raw
// notification descriptor already decomposed into type/database/object
// change data; it resets the scratch event, classifies it against the
// subscription's interests, and -- for object-change events -- fans out
// one event per row-change (if row interest is set) or one event per
// table (otherwise).
func (s *Subscription) deliver(typ EventType, dbName string, tables []TableChange) {
	s.mu.Lock()
	cb := s.cb
	interests := s.interests
	s.mu.Unlock()
	if cb == nil {
		return
	}

	s.event.reset()
	s.event.Type = typ
	s.event.DBName = dbName

	switch typ {
	case EventObjectChange:
		if !interests.Objects && !interests.Rows {
			return
		}
		for _, t := range tables {
			if interests.Rows && len(t.RowIDs) > 0 {
				for _, rid := range t.RowIDs {
					ev := s.event
					ev.ObjectName = t.TableName
					ev.RowID = rid
					ev.Op = t.Op
					cb(ev)
				}
				continue
			}
			ev := s.event
			ev.ObjectName = t.TableName
			ev.Op = t.Op
			cb(ev)
		}
	default:
		if interests.Databases || (!interests.Objects && !interests.Rows) {
			cb(s.event)
		}
	}
}

// Close unregisters the subscription.
func (s *Subscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.conn.env.deregisterSubscription(s.name)
	return nil
}

func (s *Subscription) String() string {
	return fmt.Sprintf("Subscription{name=%s}", s.name)
}
