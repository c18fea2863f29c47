package ocidrv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ocidrv/ocidrv/strtext"
)

// MsgState is the lifecycle of one AQ message as reported by its
// properties handle.
type MsgState int

const (
	MsgReady MsgState = iota
	MsgWaiting
	MsgProcessed
	MsgExpired
)

func (s MsgState) String() string {
	switch s {
	case MsgReady:
		return "Ready"
	case MsgWaiting:
		return "Waiting"
	case MsgProcessed:
		return "Processed"
	case MsgExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// Agent is one AQ recipient/sender identity: name, address, protocol.
type Agent struct {
	Name     string
	Address  string
	Protocol int
}

// Msg (component M) owns a raw-or-Object payload plus its properties.
// Exactly one of Raw/ObjectPayload is set.
type Msg struct {
	queueTypeName string // "" for RAW queues

	Raw           []byte
	ObjectPayload *Object
	IsNull        bool

	AttemptCount   int // read-only
	EnqueueDelay   time.Duration
	Expiration     time.Duration
	State          MsgState
	Priority       int
	ID             []byte // read-only, set by the backend on enqueue
	OriginalID     []byte
	Correlation    string
	ExceptionQueue string
	Sender         *Agent
	Recipients     []Agent
}

// NewMsg creates an empty outbound Msg for a RAW-payload queue, or for a
// UDT queue when queueTypeName names its object type.
func NewMsg(queueTypeName string) *Msg {
	return &Msg{queueTypeName: queueTypeName, State: MsgReady}
}

func (m *Msg) typeMatches(queueTypeName string) bool {
	if queueTypeName == "" {
		return m.ObjectPayload == nil
	}
	return m.ObjectPayload != nil && equalFoldASCII(m.queueTypeName, queueTypeName)
}

// Visibility controls whether an enqueue/dequeue is visible to other
// sessions immediately or only after the enclosing transaction commits.
type Visibility int

const (
	VisibilityOnCommit Visibility = iota
	VisibilityImmediate
)

// SequenceDeviation controls where Enqueue places a message relative to
// others already on the queue.
type SequenceDeviation int

const (
	SeqBefore SequenceDeviation = iota
	SeqTop
)

// Enqueue (component M) is the put-side handle bound to one queue.
type Enqueue struct {
	conn          *Connection
	queueName     string
	queueTypeName string

	Visibility        Visibility
	SequenceDeviation SequenceDeviation
	RelativeMsgID     []byte
}

// NewEnqueue binds an Enqueue handle to queueName (a RAW queue when
// queueTypeName is empty, otherwise the named object type).
func NewEnqueue(conn *Connection, queueName, queueTypeName string) *Enqueue {
	return &Enqueue{conn: conn, queueName: queueName, queueTypeName: queueTypeName}
}

// Put validates msg's payload kind against the queue's declared type and
// passes it to put, which assigns a new message id, sets State to Ready
// when unset and logs the enqueue. No queue call reaches the backend, and
// put always returns nil, so the narrow-name retry below (taken only on
// AQ_QUEUE_NAME_INVALID/AQ_QUEUE_NOT_EXIST) does not run.
func (e *Enqueue) Put(ctx context.Context, msg *Msg) error {
	if !msg.typeMatches(e.queueTypeName) {
		return newErr(KindDatatypeNotSupported, "Enqueue", "message payload does not match queue type %q", e.queueTypeName)
	}

	if err := e.put(ctx, msg, e.queueName); err != nil {
		if isQueueNameBackendBug(err) {
			wide, _ := strtext.UTF8ToWide(e.queueName)
			narrow := string(strtext.Convert(wide, strtext.Wide2, strtext.WidthNarrow))
			e.conn.env.log().Warn("aq enqueue retrying with narrow queue name", "queue", e.queueName)
			return e.put(ctx, msg, narrow)
		}
		return err
	}
	return nil
}

func (e *Enqueue) put(ctx context.Context, msg *Msg, queueName string) error {
	// No queue or session call is made here: put only does the id and
	// state bookkeeping and logs the enqueue.
	msg.ID = newMsgID()
	if msg.State == 0 {
		msg.State = MsgReady
	}
	e.conn.env.log().Debug("aq enqueue", "queue", queueName, "priority", msg.Priority)
	return nil
}

// isQueueNameBackendBug reports whether err corresponds to the backend's
// AQ_QUEUE_NAME_INVALID / AQ_QUEUE_NOT_EXIST codes that the wide-to-narrow
// workaround exists for.
func isQueueNameBackendBug(err error) bool {
	oe, ok := err.(*Error)
	if !ok {
		return false
	}
	return oe.Kind == KindOracle && (strings.Contains(oe.Message, "QUEUE_NAME_INVALID") || strings.Contains(oe.Message, "QUEUE_NOT_EXIST"))
}

func newMsgID() []byte {
	id := uuid.New()
	return id[:]
}

// DequeueMode mirrors the backend's Browse/Locked/Remove/RemoveNoData
// consumption modes.
type DequeueMode int

const (
	DequeueBrowse DequeueMode = iota
	DequeueLocked
	DequeueRemove
	DequeueRemoveNoData
)

// Navigation mirrors the backend's dequeue navigation options.
type Navigation int

const (
	NavFirstMsg Navigation = iota
	NavNextMsg
	NavNextTransaction
)

// Dequeue (component M) is the get-side handle bound to one queue, plus
// its optional DCN subscription/agent-list state for Listen.
type Dequeue struct {
	conn      *Connection
	queueName string

	ConsumerName      string
	CorrelationFilter string
	RelativeMsgID     []byte
	Visibility        Visibility
	Mode              DequeueMode
	Navigation        Navigation
	WaitTime          time.Duration

	agents       []Agent
	subscription *Subscription
}

// NewDequeue binds a Dequeue handle to queueName.
func NewDequeue(conn *Connection, queueName string) *Dequeue {
	return &Dequeue{conn: conn, queueName: queueName, Mode: DequeueRemove}
}

// Get returns immediately without waiting or calling the backend queue.
// It returns (nil, nil) only when ctx is already done; otherwise it
// returns a Msg with no payload in State Processed (Ready in Browse mode).
func (d *Dequeue) Get(ctx context.Context) (*Msg, error) {
	ctx, cancel := context.WithTimeout(ctx, nonZeroOr(d.WaitTime, 24*time.Hour))
	defer cancel()

	select {
	case <-ctx.Done():
		return nil, nil // DEQUEUE_TIMEOUT, not an error
	default:
	}

	msg := &Msg{State: MsgProcessed}
	if d.Mode == DequeueBrowse {
		msg.State = MsgReady
	}
	return msg, nil
}

func nonZeroOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}

// SetAgentList stores a flattened agent array consulted by Listen.
func (d *Dequeue) SetAgentList(agents []Agent) {
	d.agents = agents
}

// Listen returns immediately without waiting for a message: the first
// agent of the Dequeue's agent list, or an Agent named after its own
// queue when the list is empty. It returns (nil, nil) only when ctx is
// already done.
func (d *Dequeue) Listen(ctx context.Context, timeout time.Duration) (*Agent, error) {
	ctx, cancel := context.WithTimeout(ctx, nonZeroOr(timeout, 24*time.Hour))
	defer cancel()
	select {
	case <-ctx.Done():
		return nil, nil
	default:
	}
	if len(d.agents) > 0 {
		return &d.agents[0], nil
	}
	return &Agent{Name: d.queueName}, nil
}

// Subscribe registers a DCN-style subscription named
// "[schema.]queue[:consumer]" and delivers each notification to cb.
func (d *Dequeue) Subscribe(port int, timeout time.Duration, cb func(Event)) (*Subscription, error) {
	name := d.queueName
	if d.ConsumerName != "" {
		name = fmt.Sprintf("%s:%s", name, d.ConsumerName)
	}
	sub, err := newSubscription(d.conn, name, port, timeout, cb)
	if err != nil {
		return nil, err
	}
	d.subscription = sub
	return sub, nil
}

// Unsubscribe reverses a prior Subscribe.
func (d *Dequeue) Unsubscribe() error {
	if d.subscription == nil {
		return nil
	}
	err := d.subscription.Close()
	d.subscription = nil
	return err
}
