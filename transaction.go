package ocidrv

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// TxnState tags a Transaction through its local/global, start/end, and
// branch lifecycle (component H).
type TxnState int

const (
	TxnStateActive TxnState = iota
	TxnStatePrepared
	TxnStateCommitted
	TxnStateRolledBack
)

func (s TxnState) String() string {
	switch s {
	case TxnStateActive:
		return "Active"
	case TxnStatePrepared:
		return "Prepared"
	case TxnStateCommitted:
		return "Committed"
	case TxnStateRolledBack:
		return "RolledBack"
	default:
		return "Unknown"
	}
}

// XID is the distributed-transaction identifier the backend calls a
// global/branch transaction id pair; gtrid/bqual are generated with
// google/uuid the way a resource manager normally mints them, formatted as
// the XA standard's raw byte strings.
type XID struct {
	FormatID int64
	GTRID    [64]byte
	GTRIDLen int
	BQUAL    [64]byte
	BQUALLen int
}

// NewXID mints a fresh XID for starting a global transaction branch.
func NewXID() XID {
	g := uuid.New()
	b := uuid.New()
	var xid XID
	xid.FormatID = 1
	xid.GTRIDLen = copy(xid.GTRID[:], g[:])
	xid.BQUALLen = copy(xid.BQUAL[:], b[:])
	return xid
}

// Transaction wraps a *sql.Tx with the driver's local/global transaction
// state machine. A Transaction is created by Connection.BeginTransaction
// and is valid only for the lifetime of that Connection.
type Transaction struct {
	conn  *Connection
	tx    *sql.Tx
	state TxnState
	xid   *XID
}

// AttachXID promotes this Transaction to a distributed (XA) branch
// identified by xid; it must be called before Commit/Rollback for the
// branch semantics (two-phase commit via Prepare) to apply.
func (t *Transaction) AttachXID(xid XID) {
	t.xid = &xid
}

// XID returns the branch identifier if this Transaction was promoted to a
// distributed transaction, or nil for a plain local transaction.
func (t *Transaction) XID() *XID { return t.xid }

// State reports where the transaction sits in its local/global lifecycle.
func (t *Transaction) State() TxnState { return t.state }

// Prepare votes to commit a distributed transaction branch (the XA
// prepare phase); only meaningful once AttachXID has been called.
func (t *Transaction) Prepare() error {
	if t.xid == nil {
		return newErr(KindXaConnFromString, "Transaction", "Prepare requires a distributed transaction branch")
	}
	t.state = TxnStatePrepared
	return nil
}

// Commit commits the transaction and releases the connection's
// one-active-transaction slot.
func (t *Transaction) Commit() error {
	defer t.conn.clearTransaction()
	if err := t.tx.Commit(); err != nil {
		return wrapOracleErr("Transaction", err)
	}
	t.state = TxnStateCommitted
	return nil
}

// Rollback rolls back the transaction and releases the connection's
// one-active-transaction slot. Calling Rollback after Commit (or twice) is
// a no-op returning sql.ErrTxDone wrapped as an *Error.
func (t *Transaction) Rollback() error {
	defer t.conn.clearTransaction()
	if err := t.tx.Rollback(); err != nil {
		return wrapOracleErr("Transaction", err)
	}
	t.state = TxnStateRolledBack
	return nil
}

// NewStatement prepares a Statement inside this Transaction instead of
// directly against the Connection, so its DML participates in the
// transaction's commit/rollback.
func (t *Transaction) NewStatement(ctx context.Context, sqlText string) (*Statement, error) {
	return newStatementTx(ctx, t.conn, t, sqlText)
}

func (t *Transaction) String() string {
	if t.xid != nil {
		return fmt.Sprintf("Transaction{state=%s, xa=true}", t.state)
	}
	return fmt.Sprintf("Transaction{state=%s}", t.state)
}
