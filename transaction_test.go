package ocidrv

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestTxnStateString(t *testing.T) {
	cases := map[TxnState]string{
		TxnStateActive:     "Active",
		TxnStatePrepared:   "Prepared",
		TxnStateCommitted:  "Committed",
		TxnStateRolledBack: "RolledBack",
		TxnState(42):       "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("TxnState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestNewXIDMintsDistinctBranches(t *testing.T) {
	a := NewXID()
	b := NewXID()

	if a.FormatID != 1 {
		t.Errorf("FormatID = %d, want 1", a.FormatID)
	}
	if a.GTRIDLen == 0 || a.BQUALLen == 0 {
		t.Error("GTRID/BQUAL should be populated")
	}
	if a.GTRID == b.GTRID {
		t.Error("two NewXID calls minted the same GTRID")
	}
}

func TestTransactionAttachXIDAndPrepare(t *testing.T) {
	tx := &Transaction{}

	if err := tx.Prepare(); err == nil {
		t.Fatal("Prepare without AttachXID should fail")
	}

	xid := NewXID()
	tx.AttachXID(xid)
	if got := tx.XID(); got == nil || got.GTRID != xid.GTRID {
		t.Errorf("XID() = %v, want %v", got, xid)
	}
	if err := tx.Prepare(); err != nil {
		t.Fatalf("Prepare after AttachXID: %v", err)
	}
	if tx.State() != TxnStatePrepared {
		t.Errorf("State() = %v, want Prepared", tx.State())
	}
}

func TestTransactionString(t *testing.T) {
	tx := &Transaction{}
	if got := tx.String(); got != "Transaction{state=Active}" {
		t.Errorf("String() = %q, want Transaction{state=Active}", got)
	}
	tx.AttachXID(NewXID())
	if got := tx.String(); got != "Transaction{state=Active, xa=true}" {
		t.Errorf("String() with XID = %q, want xa=true variant", got)
	}
}

func newTestTransaction(t *testing.T) (*Transaction, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectBegin()
	sqlTx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	conn := &Connection{}
	tx := &Transaction{conn: conn, tx: sqlTx}
	conn.txn = tx
	return tx, mock, func() { db.Close() }
}

func TestTransactionCommitClearsConnectionSlot(t *testing.T) {
	tx, mock, done := newTestTransaction(t)
	defer done()
	mock.ExpectCommit()

	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if tx.State() != TxnStateCommitted {
		t.Errorf("State() = %v, want Committed", tx.State())
	}
	if tx.conn.txn != nil {
		t.Error("Commit did not clear the connection's active-transaction slot")
	}
}

func TestTransactionRollbackClearsConnectionSlot(t *testing.T) {
	tx, mock, done := newTestTransaction(t)
	defer done()
	mock.ExpectRollback()

	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if tx.State() != TxnStateRolledBack {
		t.Errorf("State() = %v, want RolledBack", tx.State())
	}
	if tx.conn.txn != nil {
		t.Error("Rollback did not clear the connection's active-transaction slot")
	}
}
