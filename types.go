package ocidrv

import "time"

// HState tags the lifecycle of every value wrapper (Lob, Date, Timestamp,
// Object, Collection, Ref, array element, ...), disambiguating who owns
// the underlying backend resource and therefore whether Free/Close may
// release it.
type HState int

const (
	// HStateAllocated means the driver created this handle and owns it
	// outright; Free releases the backend resource.
	HStateAllocated HState = iota
	// HStateFetchedClean means the value was populated by a fetch and has
	// not been mutated since; Free must not release the backend resource
	// because the driver did not create it.
	HStateFetchedClean
	// HStateFetchedDirty is HStateFetchedClean after a mutation -- still
	// not driver-owned, but no longer a faithful copy of the last fetch.
	HStateFetchedDirty
	// HStateAllocatedArray marks one element of a backend-allocated
	// descriptor array; elementwise Free is a no-op, only the owning
	// array façade may release the batch.
	HStateAllocatedArray
	// HStateAllocatedBindStmt marks a handle allocated to serve a single
	// bind on a statement; its lifetime is tied to the statement, not to
	// the caller.
	HStateAllocatedBindStmt
)

func (s HState) String() string {
	switch s {
	case HStateAllocated:
		return "Allocated"
	case HStateFetchedClean:
		return "FetchedClean"
	case HStateFetchedDirty:
		return "FetchedDirty"
	case HStateAllocatedArray:
		return "AllocatedArray"
	case HStateAllocatedBindStmt:
		return "AllocatedBindStmt"
	default:
		return "Unknown"
	}
}

// FormatDefaults holds the six per-connection (overridable) default format
// strings, initialised from the package-level global defaults.
type FormatDefaults struct {
	Date          string
	Timestamp     string
	TimestampTZ   string
	Number        string
	BinaryDouble  string
	BinaryFloat   string
}

// DefaultFormats returns the library-wide default format strings.
func DefaultFormats() FormatDefaults {
	return FormatDefaults{
		Date:         "YYYY-MM-DD HH24:MI:SS",
		Timestamp:    "YYYY-MM-DD HH24:MI:SS.FF",
		TimestampTZ:  "YYYY-MM-DD HH24:MI:SS.FF TZR",
		Number:       "FM99999999999999999999999999999999999990.999999999999999999999999",
		BinaryDouble: "%lf",
		BinaryFloat:  "%f",
	}
}

// Config configures a Connection (or the Connections a Pool creates).
type Config struct {
	Logger Logger
	DSN    string

	Username string
	Password string
	// AuthMode is one of the AuthXxx constants (default, SYSDBA, SYSOPER,
	// SYSASM, preliminary).
	AuthMode AuthMode

	ConnMaxLifetime time.Duration
	OpTimeout       time.Duration

	Formats FormatDefaults

	LogQueries bool
	LogArgs    bool
}

// AuthMode mirrors the logon modes the connection/pool component supports.
type AuthMode int

const (
	AuthDefault AuthMode = iota
	AuthSysDBA
	AuthSysOper
	AuthSysASM
	AuthPreliminary
)

// Option configures a Config. Used with Environment.OpenConnection and
// Environment.NewPool.
type Option func(*Config)

func WithLogger(l Logger) Option { return func(c *Config) { c.Logger = l } }
func WithAuthMode(m AuthMode) Option {
	return func(c *Config) { c.AuthMode = m }
}
func WithOpTimeout(d time.Duration) Option { return func(c *Config) { c.OpTimeout = d } }
func WithConnMaxLifetime(d time.Duration) Option {
	return func(c *Config) { c.ConnMaxLifetime = d }
}
func WithLogQueries(v bool) Option { return func(c *Config) { c.LogQueries = v } }
func WithFormats(f FormatDefaults) Option {
	return func(c *Config) { c.Formats = f }
}

func defaultConfig() Config {
	return Config{
		ConnMaxLifetime: 30 * time.Minute,
		OpTimeout:       5 * time.Second,
		Formats:         DefaultFormats(),
		LogQueries:      true,
	}
}

