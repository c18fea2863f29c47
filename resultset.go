package ocidrv

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

func asTime(v any) (time.Time, bool) {
	t, ok := v.(time.Time)
	return t, ok
}

// Resultset (component I/E) wraps a *sql.Rows cursor together with the
// TypeInfo derived from its column list. Get* accessors coerce the
// driver's scanned value into the requested Go representation the way the
// backend's per-datatype Get calls do, rather than requiring callers to
// know the exact database/sql scan type up front.
type Resultset struct {
	stmt    *Statement
	rows    *sql.Rows
	ti      *TypeInfo
	defines []*Define

	current map[string]any
	rowIdx  int
	history []map[string]any // only retained when the statement is scrollable

	closed bool
}

func newResultset(s *Statement, rows *sql.Rows) (*Resultset, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		_ = rows.Close()
		return nil, wrapOracleErr("Resultset", err)
	}

	ti := &TypeInfo{}
	defines := make([]*Define, len(cols))
	for i, c := range cols {
		nullable, _ := c.Nullable()
		length, hasLength := c.Length()
		prec, scale, hasPrec := c.DecimalSize()
		attr := AttrInfo{
			Name:     c.Name(),
			Type:     mapDatabaseTypeName(c.DatabaseTypeName()),
			Nullable: nullable,
		}
		if hasLength {
			attr.Size = int(length)
		}
		if hasPrec {
			attr.Precision = int(prec)
			attr.Scale = int(scale)
		}
		ti.Attrs = append(ti.Attrs, attr)
		defines[i] = &Define{info: attr, pos: i}
	}

	return &Resultset{stmt: s, rows: rows, ti: ti, defines: defines, rowIdx: -1}, nil
}

func mapDatabaseTypeName(name string) DataType {
	switch strings.ToUpper(name) {
	case "VARCHAR2", "VARCHAR":
		return TypeVarchar
	case "CHAR", "NCHAR":
		return TypeChar
	case "NUMBER":
		return TypeNumber
	case "BINARY_FLOAT":
		return TypeFloat
	case "BINARY_DOUBLE":
		return TypeFloat
	case "DATE":
		return TypeDate
	case "TIMESTAMP":
		return TypeTimestamp
	case "TIMESTAMP WITH TIME ZONE", "TIMESTAMP WITH LOCAL TIME ZONE":
		return TypeTimestampTZ
	case "RAW":
		return TypeRaw
	case "LONG RAW":
		return TypeLongRaw
	case "LONG":
		return TypeLong
	case "CLOB", "NCLOB":
		return TypeClob
	case "BLOB":
		return TypeBlob
	case "BFILE":
		return TypeBFile
	case "ROWID":
		return TypeRowid
	case "CURSOR", "REF CURSOR":
		return TypeCursor
	default:
		return TypeUnknown
	}
}

// TypeInfo returns the resultset's column TypeInfo.
func (r *Resultset) TypeInfo() *TypeInfo { return r.ti }

// Defines returns the resultset's per-column Define descriptors.
func (r *Resultset) Defines() []*Define { return r.defines }

// Next advances to the next row, returning false at end-of-cursor (not an
// error, matching the backend's distinction between "no more rows" and a
// genuine fetch failure).
func (r *Resultset) Next() bool {
	if r.closed {
		return false
	}
	if !r.rows.Next() {
		return false
	}
	row, err := r.scanCurrent()
	if err != nil {
		return false
	}
	r.current = row
	r.rowIdx++
	if r.stmt.scrollable {
		r.history = append(r.history, row)
	}
	return true
}

func (r *Resultset) scanCurrent() (map[string]any, error) {
	cols := r.ti.Attrs
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, wrapOracleErr("Resultset", err)
	}
	row := make(map[string]any, len(cols))
	for i, c := range cols {
		row[strings.ToUpper(c.Name)] = values[i]
	}
	return row, nil
}

// Seek moves a scrollable cursor to the 0-based row n, replaying previously
// fetched rows from history (true scrollable re-fetch requires the
// backend's scrollable-cursor feature, which SetScrollable already gated).
func (r *Resultset) Seek(n int) error {
	if !r.stmt.scrollable {
		return newErr(KindStatementNotScrollable, "Resultset", "statement was not opened with SetScrollable(true)")
	}
	if n < 0 || n >= len(r.history) {
		return newErr(KindOutOfBounds, "Resultset", "row %d out of range [0,%d)", n, len(r.history))
	}
	r.current = r.history[n]
	r.rowIdx = n
	return nil
}

// RowIndex returns the 0-based index of the row Next last landed on, or -1
// before the first Next call.
func (r *Resultset) RowIndex() int { return r.rowIdx }

func (r *Resultset) columnOrErr(name string) (any, error) {
	v, ok := r.current[strings.ToUpper(name)]
	if !ok {
		return nil, newErr(KindColumnNotFound, "Resultset", "column %q not found", name)
	}
	return v, nil
}

// GetString returns column name as a string, converting non-string scan
// values with fmt.Sprint.
func (r *Resultset) GetString(name string) (string, error) {
	v, err := r.columnOrErr(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return fmt.Sprint(s), nil
	}
}

// GetNumber returns column name as a Number.
func (r *Resultset) GetNumber(name string) (Number, error) {
	v, err := r.columnOrErr(name)
	if err != nil {
		return Number{}, err
	}
	switch n := v.(type) {
	case float64:
		return NewNumber(n), nil
	case int64:
		return NewNumber(float64(n)), nil
	case nil:
		return Number{}, nil
	default:
		return Number{}, newErr(KindDatatypeNotSupported, "Resultset", "column %q is not numeric", name)
	}
}

// GetInt64 returns column name coerced to int64.
func (r *Resultset) GetInt64(name string) (int64, error) {
	n, err := r.GetNumber(name)
	if err != nil {
		return 0, err
	}
	return n.Int64()
}

// GetTimestamp returns column name as a Timestamp.
func (r *Resultset) GetTimestamp(name string) (Timestamp, error) {
	v, err := r.columnOrErr(name)
	if err != nil {
		return Timestamp{}, err
	}
	t, ok := asTime(v)
	if !ok {
		return Timestamp{}, newErr(KindDatatypeNotSupported, "Resultset", "column %q is not a date/timestamp", name)
	}
	return NewTimestamp(t), nil
}

// IsNull reports whether column name's last-fetched value was SQL NULL.
func (r *Resultset) IsNull(name string) (bool, error) {
	v, err := r.columnOrErr(name)
	if err != nil {
		return false, err
	}
	return v == nil, nil
}

// Row returns the raw column-name -> value map for the current row, for
// callers that want to decode it into their own struct.
func (r *Resultset) Row() map[string]any {
	return r.current
}

// Close releases the underlying cursor. Safe to call more than once.
func (r *Resultset) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.rows.Close(); err != nil {
		return wrapOracleErr("Resultset", err)
	}
	return nil
}
