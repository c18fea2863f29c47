package ocidrv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Executor is the common surface Connection and Transaction both expose
// for the row-mapping convenience layer (Exec/QueryAll/QueryRowMap/...).
// It sits beside, not instead of, the explicit Statement/Bind/Resultset
// path: this layer is for callers who want database/sql-style ergonomics
// without manually walking Statement/Bind/Define.
type Executor interface {
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryAll(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	QueryRowMap(ctx context.Context, query string, args ...any) (map[string]any, error)
	GetInto(ctx context.Context, query string, args []any, dest ...any) error
	QueryDo(ctx context.Context, query string, args []any, scan func(rows *sql.Rows) error) error
}

func execQuery(ctx context.Context, db sqlExecer, timeout time.Duration, logger Logger, query string, args ...any) (sql.Result, error) {
	ctx, cancel := withOpTimeout(ctx, timeout)
	defer cancel()
	logger.Debug("executing statement", "sql", query, "args", maskArgsForLog(ctx, args))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("statement failed", "sql", query, "error", err)
		return nil, wrapOracleErr("Executor", err)
	}
	return res, nil
}

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryAll(ctx context.Context, db sqlExecer, timeout time.Duration, logger Logger, query string, args ...any) ([]map[string]any, error) {
	ctx, cancel := withOpTimeout(ctx, timeout)
	defer cancel()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	defer rows.Close()
	return scanRowsUpper(rows)
}

func queryRowMap(ctx context.Context, db sqlExecer, timeout time.Duration, query string, args ...any) (map[string]any, error) {
	ctx, cancel := withOpTimeout(ctx, timeout)
	defer cancel()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, wrapOracleErr("Executor", err)
		}
		return nil, ErrNotFound
	}
	row, err := scanRowUpper(rows)
	if err != nil {
		return nil, err
	}
	if rows.Next() {
		return nil, newErr(KindItemNotFound, "Executor", "query returned more than one row")
	}
	return row, nil
}

func getInto(ctx context.Context, db sqlExecer, timeout time.Duration, query string, args []any, dest ...any) error {
	ctx, cancel := withOpTimeout(ctx, timeout)
	defer cancel()
	err := db.QueryRowContext(ctx, query, args...).Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return wrapOracleErr("Executor", err)
	}
	return nil
}

func queryDo(ctx context.Context, db sqlExecer, timeout time.Duration, query string, args []any, scan func(rows *sql.Rows) error) error {
	ctx, cancel := withOpTimeout(ctx, timeout)
	defer cancel()
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return wrapOracleErr("Executor", err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func scanRowsUpper(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	var out []map[string]any
	for rows.Next() {
		row, err := scanRowUpperCols(rows, cols)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	return out, nil
}

func scanRowUpper(rows *sql.Rows) (map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	return scanRowUpperCols(rows, cols)
}

func scanRowUpperCols(rows *sql.Rows, cols []string) (map[string]any, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, wrapOracleErr("Executor", err)
	}
	row := make(map[string]any, len(cols))
	for i, c := range cols {
		v := values[i]
		if b, ok := v.([]byte); ok {
			v = string(b)
		}
		row[strings.ToUpper(c)] = v
	}
	return row, nil
}

// Exec executes a query with no expected result rows.
func (c *Connection) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return execQuery(ctx, c.db, c.cfg.OpTimeout, c.env.log(), query, args...)
}

// QueryAll runs query and returns every row as an upper-cased column map.
func (c *Connection) QueryAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return queryAll(ctx, c.db, c.cfg.OpTimeout, c.env.log(), query, args...)
}

// QueryRowMap runs query and returns its single row as an upper-cased
// column map, or ErrNotFound.
func (c *Connection) QueryRowMap(ctx context.Context, query string, args ...any) (map[string]any, error) {
	return queryRowMap(ctx, c.db, c.cfg.OpTimeout, query, args...)
}

// GetInto scans a single row directly into dest.
func (c *Connection) GetInto(ctx context.Context, query string, args []any, dest ...any) error {
	return getInto(ctx, c.db, c.cfg.OpTimeout, query, args, dest...)
}

// QueryDo streams every row of query through scan.
func (c *Connection) QueryDo(ctx context.Context, query string, args []any, scan func(rows *sql.Rows) error) error {
	return queryDo(ctx, c.db, c.cfg.OpTimeout, query, args, scan)
}

// Exec executes a query within the transaction.
func (t *Transaction) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return execQuery(ctx, t.tx, t.conn.cfg.OpTimeout, t.conn.env.log(), query, args...)
}

// QueryAll runs query within the transaction and returns every row.
func (t *Transaction) QueryAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	return queryAll(ctx, t.tx, t.conn.cfg.OpTimeout, t.conn.env.log(), query, args...)
}

// QueryRowMap runs query within the transaction and returns its single row.
func (t *Transaction) QueryRowMap(ctx context.Context, query string, args ...any) (map[string]any, error) {
	return queryRowMap(ctx, t.tx, t.conn.cfg.OpTimeout, query, args...)
}

// GetInto scans a single row within the transaction directly into dest.
func (t *Transaction) GetInto(ctx context.Context, query string, args []any, dest ...any) error {
	return getInto(ctx, t.tx, t.conn.cfg.OpTimeout, query, args, dest...)
}

// QueryDo streams every row of query within the transaction through scan.
func (t *Transaction) QueryDo(ctx context.Context, query string, args []any, scan func(rows *sql.Rows) error) error {
	return queryDo(ctx, t.tx, t.conn.cfg.OpTimeout, query, args, scan)
}
