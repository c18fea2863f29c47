package ocidrv

import (
	"fmt"
	"sync"
)

// DirPathState is the loader's state machine:
//
//	Allocated --Prepare--> Prepared --SetEntry/SetArray--> Prepared
//	Prepared --Convert--> Converted | Prepared(Full|Partial|Error)
//	Converted --Load--> Prepared | Converted(Partial|Error|Empty)
//	Prepared --Save--> Prepared
//	Prepared --Finish--> Finished (terminal)
//	Prepared --Abort--> Allocated
type DirPathState int

const (
	DirPathAllocated DirPathState = iota
	DirPathPrepared
	DirPathConverted
	DirPathFinished
)

func (s DirPathState) String() string {
	switch s {
	case DirPathAllocated:
		return "Allocated"
	case DirPathPrepared:
		return "Prepared"
	case DirPathConverted:
		return "Converted"
	case DirPathFinished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// EntryStatus tags one SetEntry/SetArray slot.
type EntryStatus int

const (
	EntryComplete EntryStatus = iota
	EntryPartial
	EntryNull
)

// ConvertResult is Convert's outcome.
type ConvertResult int

const (
	ConvertComplete ConvertResult = iota
	ConvertError
	ConvertFull
	ConvertPartial
)

func (r ConvertResult) String() string {
	switch r {
	case ConvertComplete:
		return "COMPLETE"
	case ConvertError:
		return "ERROR"
	case ConvertFull:
		return "FULL"
	case ConvertPartial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}

// LoadResult is Load's outcome.
type LoadResult int

const (
	LoadComplete LoadResult = iota
	LoadError
	LoadEmpty
	LoadPartial
)

func (r LoadResult) String() string {
	switch r {
	case LoadComplete:
		return "COMPLETE"
	case LoadError:
		return "ERROR"
	case LoadEmpty:
		return "EMPTY"
	case LoadPartial:
		return "PARTIAL"
	default:
		return "UNKNOWN"
	}
}

// DirPathColumn registers one loader column's shape: name, max size,
// an optional date/number format, numeric precision/scale, and whether
// it carries binary (vs. character) data.
type DirPathColumn struct {
	Name      string
	MaxSize   int
	Format    string
	Precision int
	Scale     int
	Binary    bool
}

// dirPathCell is one (row, column) entry of the column array: the value
// and its status, as set by SetEntry/SetArray between Convert calls.
type dirPathCell struct {
	value  []byte
	status EntryStatus
}

// DirPath is the direct-path bulk-load state machine (component L). It
// streams a column array into the backend in Convert/Load cycles.
type DirPath struct {
	mu sync.Mutex

	conn      *Connection
	schema    string
	table     string
	partition string

	columns []DirPathColumn
	state   DirPathState

	nbRowsArraySize int // array size set by Prepare from the caller's nbRows hint (at least 1)
	streamCapacity  int // rows the current stream buffer can hold before Convert reports FULL

	pending []map[int]dirPathCell // rows queued since the last successful Convert
	stream  []map[int]dirPathCell // rows converted, awaiting Load

	parallel  bool
	noLog     bool
	dateCache int
	bufSize   int

	nbRows   int
	nbLoaded int
	errCol   int
	nbPrcsd  int
}

// NewDirPath creates a loader targeting table (optionally schema- and
// partition-qualified) sized for nbCols columns and an initial nbRows
// buffering hint.
func NewDirPath(conn *Connection, schema, table, partition string, nbCols, nbRows int) *DirPath {
	return &DirPath{
		conn:           conn,
		schema:         schema,
		table:          table,
		partition:      partition,
		columns:        make([]DirPathColumn, 0, nbCols),
		state:          DirPathAllocated,
		streamCapacity: nbRows,
		bufSize:        64 * 1024,
	}
}

// SetColumn registers column c in declaration order; must be called
// before Prepare.
func (d *DirPath) SetColumn(c DirPathColumn) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathAllocated {
		return newErr(KindDirPathState, "DirPath", "columns must be registered before Prepare")
	}
	d.columns = append(d.columns, c)
	return nil
}

// Prepare sets the array size to the caller's nbRows hint (raised to 1 if
// it is not positive) and transitions Allocated -> Prepared. It does not
// query the backend, so the array size is never adjusted to a
// backend-allocated value.
func (d *DirPath) Prepare() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathAllocated {
		return newErr(KindDirPathState, "DirPath", "Prepare requires state Allocated, got %s", d.state)
	}
	if len(d.columns) == 0 {
		return newErr(KindArgInvalidValue, "DirPath", "no columns registered")
	}
	if d.streamCapacity <= 0 {
		d.streamCapacity = 1
	}
	d.nbRowsArraySize = d.streamCapacity
	d.state = DirPathPrepared
	d.conn.env.log().Info("dirpath prepared", "table", d.table, "array_size", d.nbRowsArraySize)
	return nil
}

func (d *DirPath) currentRow() map[int]dirPathCell {
	if len(d.pending) == 0 {
		return nil
	}
	return d.pending[len(d.pending)-1]
}

// newRowIfNeeded starts accumulating a new pending row once the previous one has
// a cell for every column, mirroring the backend's implicit row-advance
// on SetEntry and SetArray calls.
func (d *DirPath) newRowIfNeeded() map[int]dirPathCell {
	if cur := d.currentRow(); cur != nil && len(cur) < len(d.columns) {
		return cur
	}
	row := make(map[int]dirPathCell, len(d.columns))
	d.pending = append(d.pending, row)
	return row
}

// SetEntry sets one (row, col) slot. size=-1 means "use value's string
// length" for character columns and "the column's declared size" for
// binary columns (capped at the value's own length). The column is NULL
// iff value is nil or size==0.
func (d *DirPath) SetEntry(row, col int, value []byte, size int, complete bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathPrepared {
		return newErr(KindDirPathState, "DirPath", "SetEntry requires state Prepared, got %s", d.state)
	}
	if col < 0 || col >= len(d.columns) {
		return newErr(KindOutOfBounds, "DirPath", "column %d out of range [0,%d)", col, len(d.columns))
	}
	for len(d.pending) <= row {
		d.pending = append(d.pending, make(map[int]dirPathCell, len(d.columns)))
	}
	status := EntryComplete
	if !complete {
		status = EntryPartial
	}
	if size < 0 && d.columns[col].Binary && d.columns[col].MaxSize > 0 {
		size = d.columns[col].MaxSize
	}
	if value == nil || size == 0 {
		status = EntryNull
		value = nil
	} else if size > 0 && size < len(value) {
		value = value[:size]
	}
	d.pending[row][col] = dirPathCell{value: value, status: status}
	return nil
}

// SetArray applies the SetEntry rule column-wise across the current row
// count: values[i]/sizes[i] become row i's entry for column col.
func (d *DirPath) SetArray(col int, values [][]byte, sizes []int) error {
	for i, v := range values {
		size := -1
		if i < len(sizes) {
			size = sizes[i]
		}
		if err := d.SetEntry(i, col, v, size, true); err != nil {
			return err
		}
	}
	return nil
}

// Convert pushes every pending row into the stream buffer, stopping and
// reporting FULL once the stream reaches streamCapacity rows. Rows
// already moved into the stream remain queued for Load; any rows
// still pending after a FULL/PARTIAL result are retried on the next
// Convert call once Load has drained the stream.
func (d *DirPath) Convert() (ConvertResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathPrepared {
		return ConvertError, newErr(KindDirPathState, "DirPath", "Convert requires state Prepared, got %s", d.state)
	}

	room := d.streamCapacity - len(d.stream)
	if room <= 0 {
		d.state = DirPathPrepared
		return ConvertFull, nil
	}

	moved := 0
	for moved < room && len(d.pending) > 0 {
		row := d.pending[0]
		d.pending = d.pending[1:]
		if len(row) < len(d.columns) {
			d.errCol = firstMissingColumn(row, len(d.columns))
			return ConvertError, newErr(KindDirPathState, "DirPath", "row missing column %d", d.errCol)
		}
		d.stream = append(d.stream, row)
		moved++
	}
	d.nbPrcsd = moved
	d.nbRows += moved

	if len(d.pending) > 0 {
		d.state = DirPathPrepared
		return ConvertFull, nil
	}
	d.state = DirPathConverted
	return ConvertComplete, nil
}

func firstMissingColumn(row map[int]dirPathCell, nbCols int) int {
	for i := 0; i < nbCols; i++ {
		if _, ok := row[i]; !ok {
			return i
		}
	}
	return -1
}

// Load clears the stream buffer and adds its row count to the cumulative
// nb_loaded counter. No row data is sent to the database table.
func (d *DirPath) Load() (LoadResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathConverted && d.state != DirPathPrepared {
		return LoadError, newErr(KindDirPathState, "DirPath", "Load requires state Converted or Prepared, got %s", d.state)
	}
	if len(d.stream) == 0 {
		return LoadEmpty, nil
	}

	n := len(d.stream)
	d.stream = nil
	d.nbLoaded += n
	d.state = DirPathPrepared
	d.conn.env.log().Info("dirpath load", "rows", n, "cumulative", d.nbLoaded)
	return LoadComplete, nil
}

// Save checks that the loader is in the Prepared state and returns; no
// save-point is issued to the backend.
func (d *DirPath) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathPrepared {
		return newErr(KindDirPathState, "DirPath", "Save requires state Prepared, got %s", d.state)
	}
	return nil
}

// Finish terminates the load, transitioning to the terminal Finished
// state. No further SetEntry/Convert/Load calls are legal afterward.
func (d *DirPath) Finish() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DirPathPrepared {
		return newErr(KindDirPathState, "DirPath", "Finish requires state Prepared, got %s", d.state)
	}
	d.state = DirPathFinished
	return nil
}

// Abort discards any pending/streamed rows and returns to Allocated so
// the loader can be reconfigured and re-Prepared.
func (d *DirPath) Abort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = nil
	d.stream = nil
	d.state = DirPathAllocated
	return nil
}

// SetParallel/SetNoLog/SetDateCache/SetBufferSize are the loader's
// optional knobs.
func (d *DirPath) SetParallel(v bool)     { d.mu.Lock(); d.parallel = v; d.mu.Unlock() }
func (d *DirPath) SetNoLog(v bool)        { d.mu.Lock(); d.noLog = v; d.mu.Unlock() }
func (d *DirPath) SetDateCache(size int)  { d.mu.Lock(); d.dateCache = size; d.mu.Unlock() }
func (d *DirPath) SetBufferSize(n int)    { d.mu.Lock(); d.bufSize = n; d.mu.Unlock() }

// NbLoaded/NbRows/ErrCol expose the loader's observable counters.
func (d *DirPath) NbLoaded() int { d.mu.Lock(); defer d.mu.Unlock(); return d.nbLoaded }
func (d *DirPath) NbRows() int   { d.mu.Lock(); defer d.mu.Unlock(); return d.nbRows }
func (d *DirPath) ErrCol() int   { d.mu.Lock(); defer d.mu.Unlock(); return d.errCol }

func (d *DirPath) State() DirPathState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *DirPath) String() string {
	return fmt.Sprintf("DirPath{table=%s, state=%s, loaded=%d}", d.table, d.State(), d.NbLoaded())
}
