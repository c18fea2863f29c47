package ocidrv

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// StmtState is the Statement state machine: Allocated right after
// preparation, Executed once Execute has run, Fetched once Query has
// opened a cursor, Closed once released.
type StmtState int

const (
	StmtStateAllocated StmtState = iota
	StmtStateExecuted
	StmtStateFetched
	StmtStateClosed
)

func (s StmtState) String() string {
	switch s {
	case StmtStateAllocated:
		return "Allocated"
	case StmtStateExecuted:
		return "Executed"
	case StmtStateFetched:
		return "Fetched"
	case StmtStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// StmtType classifies the prepared text by its leading keyword; Query
// accepts only StmtTypeSelect.
type StmtType int

const (
	StmtTypeUnknown StmtType = iota
	StmtTypeSelect
	StmtTypeUpdate
	StmtTypeDelete
	StmtTypeInsert
	StmtTypeBegin // PL/SQL block
	StmtTypeDeclare
)

// Statement (component I) is a prepared SQL or PL/SQL text bound to a
// Connection (or, inside a Transaction, to that Transaction's *sql.Tx).
// It owns its Bind and Define slots and the Resultset produced by its
// last Query.
type Statement struct {
	mu sync.Mutex

	conn *Connection
	txn  *Transaction
	stmt *sql.Stmt

	sqlText string
	kind    StmtType
	state   StmtState

	binds      map[string]*Bind
	bindOrder  []string
	arraySize  int // set by BindArray; not read by Execute
	scrollable bool

	rs *Resultset

	closed bool
}

func classifyStmt(sqlText string) StmtType {
	t := trimLeadingSpace(sqlText)
	switch {
	case hasPrefixFold(t, "select") || hasPrefixFold(t, "with"):
		return StmtTypeSelect
	case hasPrefixFold(t, "insert"):
		return StmtTypeInsert
	case hasPrefixFold(t, "update"):
		return StmtTypeUpdate
	case hasPrefixFold(t, "delete"):
		return StmtTypeDelete
	case hasPrefixFold(t, "begin"):
		return StmtTypeBegin
	case hasPrefixFold(t, "declare"):
		return StmtTypeDeclare
	default:
		return StmtTypeUnknown
	}
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	return s[i:]
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return equalFoldASCII(s[:len(prefix)], prefix)
}

func newStatement(ctx context.Context, c *Connection, sqlText string) (*Statement, error) {
	stmt, err := c.db.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, wrapOracleErr("Statement", err)
	}
	s := &Statement{
		conn:    c,
		stmt:    stmt,
		sqlText: sqlText,
		kind:    classifyStmt(sqlText),
		state:   StmtStateAllocated,
		binds:   make(map[string]*Bind),
	}
	c.registerStatement(s)
	return s, nil
}

func newStatementTx(ctx context.Context, c *Connection, t *Transaction, sqlText string) (*Statement, error) {
	stmt, err := t.tx.PrepareContext(ctx, sqlText)
	if err != nil {
		return nil, wrapOracleErr("Statement", err)
	}
	s := &Statement{
		conn:    c,
		txn:     t,
		stmt:    stmt,
		sqlText: sqlText,
		kind:    classifyStmt(sqlText),
		state:   StmtStateAllocated,
		binds:   make(map[string]*Bind),
	}
	c.registerStatement(s)
	return s, nil
}

// Kind reports how the prepared text was classified.
func (s *Statement) Kind() StmtType { return s.kind }

// State reports the statement's current lifecycle state.
func (s *Statement) State() StmtState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetScrollable marks the statement's cursor as scrollable, gating
// Resultset.Seek; requires the backend's scrollable-cursor feature.
func (s *Statement) SetScrollable(scrollable bool) error {
	if scrollable {
		if err := s.conn.env.Gate().Require(requireScrollable); err != nil {
			return NotAvailable(requireScrollable)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrollable = scrollable
	return nil
}

const requireScrollable = "scrollable-cursor"

// Bind registers (or, on a later call with the same name, rebinds) a named
// bind variable. Rebinding to an incompatible datatype is rejected with
// KindRebindBadDatatype: bind reuse must keep its original datatype
// family.
func (s *Statement) Bind(name string, dt DataType, value any) (*Bind, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StmtStateClosed {
		return nil, newErr(KindStatementState, "Statement", "statement is closed")
	}
	if existing, ok := s.binds[name]; ok {
		if existing.dtype != dt {
			return nil, newErr(KindRebindBadDatatype, "Statement", "bind %q was %s, cannot rebind as %s", name, existing.dtype, dt)
		}
		existing.value = value
		return existing, nil
	}
	b := &Bind{name: name, dtype: dt, value: value, stmt: s}
	s.binds[name] = b
	s.bindOrder = append(s.bindOrder, name)
	return b, nil
}

// BindArray records n as the statement's array size; it must be called
// before any Bind. Execute does not use the recorded size: bound values
// are passed to the driver as given, and their lengths are not checked
// against n.
func (s *Statement) BindArray(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		return newErr(KindBindArraySize, "Statement", "array size must be >= 1, got %d", n)
	}
	if len(s.binds) > 0 {
		return newErr(KindBindAlreadyUsed, "Statement", "BindArray must be called before any Bind")
	}
	s.arraySize = n
	return nil
}

func (s *Statement) orderedArgs() []any {
	args := make([]any, 0, len(s.bindOrder))
	for _, name := range s.bindOrder {
		args = append(args, s.binds[name].arg())
	}
	return args
}

// Execute runs the statement for its side effects (INSERT/UPDATE/DELETE,
// DDL, or a PL/SQL block) and returns the driver-reported affected-row
// count.
func (s *Statement) Execute(ctx context.Context) (int64, error) {
	s.mu.Lock()
	if s.state == StmtStateClosed {
		s.mu.Unlock()
		return 0, newErr(KindStatementState, "Statement", "statement is closed")
	}
	args := s.orderedArgs()
	s.mu.Unlock()

	res, err := s.stmt.ExecContext(ctx, args...)
	if err != nil {
		return 0, wrapOracleErr("Statement", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapOracleErr("Statement", err)
	}

	s.mu.Lock()
	s.state = StmtStateExecuted
	s.mu.Unlock()
	return n, nil
}

// Query runs the statement as a SELECT and returns its Resultset
// (component I/E). Calling Query on a statement whose Kind is not
// StmtTypeSelect is rejected.
func (s *Statement) Query(ctx context.Context) (*Resultset, error) {
	s.mu.Lock()
	if s.state == StmtStateClosed {
		s.mu.Unlock()
		return nil, newErr(KindStatementState, "Statement", "statement is closed")
	}
	if s.kind != StmtTypeSelect {
		s.mu.Unlock()
		return nil, newErr(KindStatementState, "Statement", "Query requires a SELECT statement, got kind %d", s.kind)
	}
	args := s.orderedArgs()
	s.mu.Unlock()

	rows, err := s.stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, wrapOracleErr("Statement", err)
	}
	rs, err := newResultset(s, rows)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.state = StmtStateFetched
	s.rs = rs
	s.mu.Unlock()
	return rs, nil
}

// Close releases the Resultset (if any) and the prepared handle.
func (s *Statement) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.state = StmtStateClosed
	rs := s.rs
	s.rs = nil
	s.mu.Unlock()

	if rs != nil {
		_ = rs.Close()
	}
	s.conn.deregisterStatement(s)
	if err := s.stmt.Close(); err != nil {
		return wrapOracleErr("Statement", err)
	}
	return nil
}

func (s *Statement) String() string {
	return fmt.Sprintf("Statement{kind=%v, state=%s}", s.kind, s.State())
}
