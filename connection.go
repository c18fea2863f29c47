package ocidrv

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/godror/godror"
)

// ConnState tags where a Connection sits in the Allocated -> Attached ->
// Logged lifecycle (component G). Attach happens implicitly when the
// underlying *sql.DB dials; Logged happens once a session is actually
// authenticated against it.
type ConnState int

const (
	ConnStateAllocated ConnState = iota
	ConnStateAttached
	ConnStateLogged
	ConnStateClosed
)

func (s ConnState) String() string {
	switch s {
	case ConnStateAllocated:
		return "Allocated"
	case ConnStateAttached:
		return "Attached"
	case ConnStateLogged:
		return "Logged"
	case ConnStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Connection wraps one logical Oracle session. It is a thin façade over a
// *sql.DB opened with the godror driver: godror already owns the physical
// OCI session pooling underneath, so Connection's job is to carry the
// object model's state machine, format defaults, outstanding-statement
// bookkeeping and HA identity on top of it.
type Connection struct {
	mu sync.Mutex

	env   *Environment
	db    *sql.DB
	owner *Pool // nil unless checked out of a Pool

	state   ConnState
	cfg     Config
	formats FormatDefaults

	serverIdentity string
	txn            *Transaction
	statements     map[*Statement]struct{}

	closed bool
}

// OpenConnection dials a standalone (non-pooled) Connection against dsn
// using cfg/opts, and registers it with e for HA dispatch and teardown.
func (e *Environment) OpenConnection(ctx context.Context, dsn string, opts ...Option) (*Connection, error) {
	cfg := e.baseConfig()
	cfg.DSN = dsn
	for _, o := range opts {
		o(&cfg)
	}
	return e.openConnectionWithConfig(ctx, cfg, nil)
}

func (e *Environment) baseConfig() Config {
	c := defaultConfig()
	c.Formats = e.Formats()
	c.Logger = e.log()
	return c
}

func (e *Environment) openConnectionWithConfig(ctx context.Context, cfg Config, owner *Pool) (*Connection, error) {
	connector := godror.ConnectionParams{
		CommonParams: godror.CommonParams{
			Username:      cfg.Username,
			ConnectString: cfg.DSN,
			Password:      godror.NewPassword(cfg.Password),
		},
	}
	switch cfg.AuthMode {
	case AuthSysDBA:
		connector.IsSysDBA = true
	case AuthSysOper:
		connector.IsSysOper = true
	case AuthSysASM:
		connector.IsSysASM = true
	case AuthPreliminary:
		connector.IsPrelim = true
	}

	db := sql.OpenDB(godror.NewConnector(connector))
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := withOpTimeout(ctx, cfg.OpTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, wrapOracleErr("Connection", err)
	}

	c := &Connection{
		env:        e,
		db:         db,
		owner:      owner,
		state:      ConnStateLogged,
		cfg:        cfg,
		formats:    cfg.Formats,
		statements: make(map[*Statement]struct{}),
	}
	c.serverIdentity = fmt.Sprintf("%s@%s", cfg.Username, cfg.DSN)
	e.registerConnection(c)
	e.log().Info("connection opened", "dsn", maskDSN(cfg.DSN), "user", cfg.Username)
	return c, nil
}

func withOpTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, has := ctx.Deadline(); has {
		return ctx, func() {}
	}
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

func maskDSN(dsn string) string {
	// Never log credentials embedded in a connect string.
	return "<redacted>"
}

func (c *Connection) serverID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverIdentity
}

// State reports the connection's current lifecycle state.
func (c *Connection) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Formats returns the connection's effective (possibly overridden) default
// format strings.
func (c *Connection) Formats() FormatDefaults { return c.formats }

// SetFormats overrides the connection's default format strings.
func (c *Connection) SetFormats(f FormatDefaults) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formats = f
}

// Ping verifies the session is still reachable.
func (c *Connection) Ping(ctx context.Context) error {
	ctx, cancel := withOpTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := c.db.PingContext(ctx); err != nil {
		return wrapOracleErr("Connection", err)
	}
	return nil
}

// BeginTransaction starts a Transaction (component H) bound to this
// Connection. Only one Transaction may be active per Connection at a time,
// matching the backend's single implicit-transaction-per-session model.
func (c *Connection) BeginTransaction(ctx context.Context, opts *sql.TxOptions) (*Transaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.txn != nil {
		return nil, newErr(KindStatementState, "Connection", "a transaction is already active on this connection")
	}
	tx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, wrapOracleErr("Connection", err)
	}
	t := &Transaction{conn: c, tx: tx}
	c.txn = t
	return t, nil
}

// clearTransaction is called by Transaction.Commit/Rollback to release the
// one-active-transaction slot.
func (c *Connection) clearTransaction() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txn = nil
}

func (c *Connection) registerStatement(s *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements[s] = struct{}{}
}

func (c *Connection) deregisterStatement(s *Statement) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.statements, s)
}

// Close releases every outstanding Statement, rolls back any open
// Transaction, and closes the underlying session. It is safe to call more
// than once.
func (c *Connection) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.state = ConnStateClosed
	stmts := make([]*Statement, 0, len(c.statements))
	for s := range c.statements {
		stmts = append(stmts, s)
	}
	txn := c.txn
	c.txn = nil
	c.mu.Unlock()

	for _, s := range stmts {
		_ = s.Close()
	}
	if txn != nil {
		_ = txn.Rollback()
	}

	if c.owner != nil {
		c.owner.mu.Lock()
		poolClosed := c.owner.closed
		c.owner.mu.Unlock()
		if !poolClosed {
			// Back to the idle list: reopen c so the next Acquire hands
			// out a usable Connection whose Close releases it again.
			c.mu.Lock()
			c.closed = false
			c.state = ConnStateLogged
			c.mu.Unlock()
			c.owner.release(c)
			return nil
		}
		c.owner.release(c)
	}

	c.env.deregisterConnection(c)
	if err := c.db.Close(); err != nil {
		return wrapOracleErr("Connection", err)
	}
	return nil
}

// NewStatement prepares a Statement (component I) against this Connection.
func (c *Connection) NewStatement(ctx context.Context, sqlText string) (*Statement, error) {
	return newStatement(ctx, c, sqlText)
}

func (c *Connection) String() string {
	return fmt.Sprintf("Connection{state=%s, server=%s}", c.State(), c.serverID())
}
