package ocidrv

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestClassifyStmt(t *testing.T) {
	cases := []struct {
		sql  string
		want StmtType
	}{
		{"SELECT 1 FROM DUAL", StmtTypeSelect},
		{"  select 1 from dual", StmtTypeSelect},
		{"WITH q AS (SELECT 1 FROM DUAL) SELECT * FROM q", StmtTypeSelect},
		{"INSERT INTO T VALUES (1)", StmtTypeInsert},
		{"UPDATE T SET A = 1", StmtTypeUpdate},
		{"DELETE FROM T", StmtTypeDelete},
		{"BEGIN NULL; END;", StmtTypeBegin},
		{"DECLARE x NUMBER; BEGIN NULL; END;", StmtTypeDeclare},
		{"CREATE TABLE T (A NUMBER)", StmtTypeUnknown},
	}
	for _, c := range cases {
		if got := classifyStmt(c.sql); got != c.want {
			t.Errorf("classifyStmt(%q) = %v, want %v", c.sql, got, c.want)
		}
	}
}

func TestStmtStateString(t *testing.T) {
	cases := map[StmtState]string{
		StmtStateAllocated: "Allocated",
		StmtStateExecuted:  "Executed",
		StmtStateFetched:   "Fetched",
		StmtStateClosed:    "Closed",
		StmtState(99):      "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("StmtState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func newTestStatement(t *testing.T) (*Statement, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	mock.ExpectPrepare("SELECT 1 FROM DUAL")
	stmt, err := db.PrepareContext(context.Background(), "SELECT 1 FROM DUAL")
	if err != nil {
		t.Fatalf("PrepareContext: %v", err)
	}
	s := &Statement{
		conn:    &Connection{statements: make(map[*Statement]struct{})},
		stmt:    stmt,
		sqlText: "SELECT 1 FROM DUAL",
		kind:    StmtTypeSelect,
		state:   StmtStateAllocated,
		binds:   make(map[string]*Bind),
	}
	return s, mock, func() { db.Close() }
}

func TestStatementBindRegistersAndRebinds(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	b, err := s.Bind(":id", TypeNumber, 1)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if b.Direction() != BindIn {
		t.Errorf("Direction() = %v, want BindIn", b.Direction())
	}

	b2, err := s.Bind(":id", TypeNumber, 2)
	if err != nil {
		t.Fatalf("rebind: %v", err)
	}
	if b2 != b {
		t.Error("rebind with same name/type should return the existing Bind")
	}
	if b2.Value() != 2 {
		t.Errorf("Value() = %v, want 2", b2.Value())
	}
}

func TestStatementRebindBadDatatypeFails(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	if _, err := s.Bind(":id", TypeNumber, 1); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	_, err := s.Bind(":id", TypeVarchar, "x")
	if err == nil {
		t.Fatal("expected RebindBadDatatype error")
	}
	oe, ok := err.(*Error)
	if !ok || oe.Kind != KindRebindBadDatatype {
		t.Errorf("got %#v, want KindRebindBadDatatype", err)
	}
}

func TestStatementBindOnClosedFails(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()
	s.state = StmtStateClosed

	_, err := s.Bind(":id", TypeNumber, 1)
	if err == nil {
		t.Fatal("expected error binding on closed statement")
	}
	oe, ok := err.(*Error)
	if !ok || oe.Kind != KindStatementState {
		t.Errorf("got %#v, want KindStatementState", err)
	}
}

func TestStatementBindArrayMustPrecedeBind(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	if _, err := s.Bind(":id", TypeNumber, 1); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := s.BindArray(3); err == nil {
		t.Fatal("expected BindAlreadyUsed error")
	}
}

func TestStatementBindArrayRejectsZero(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	if err := s.BindArray(0); err == nil {
		t.Fatal("expected BindArraySize error")
	}
}

func TestStatementBindArraySetsSize(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	if err := s.BindArray(3); err != nil {
		t.Fatalf("BindArray: %v", err)
	}
	if s.arraySize != 3 {
		t.Errorf("arraySize = %d, want 3", s.arraySize)
	}
}

func TestStatementStringReportsKindAndState(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()
	got := s.String()
	want := "Statement{kind=1, state=Allocated}"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStatementExecuteTransitionsToExecuted(t *testing.T) {
	s, mock, done := newTestStatement(t)
	defer done()

	mock.ExpectExec("SELECT 1 FROM DUAL").WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := s.Execute(context.Background())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n != 1 {
		t.Errorf("Execute rows affected = %d, want 1", n)
	}
	if s.State() != StmtStateExecuted {
		t.Errorf("State() = %v, want Executed", s.State())
	}
}

func TestStatementExecuteOnClosedFails(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()
	s.state = StmtStateClosed

	if _, err := s.Execute(context.Background()); err == nil {
		t.Fatal("expected error executing closed statement")
	}
}

func TestStatementCloseIsIdempotent(t *testing.T) {
	s, _, done := newTestStatement(t)
	defer done()

	if err := s.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if s.State() != StmtStateClosed {
		t.Errorf("State() = %v, want Closed", s.State())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close should be a no-op: %v", err)
	}
}
