package ocidrv

import (
	"fmt"
	"io"

	"github.com/godror/godror"
)

// LobKind distinguishes the four LOB-ish locator kinds the backend
// exposes through one descriptor family.
type LobKind int

const (
	LobKindBlob LobKind = iota
	LobKindClob
	LobKindNClob
	LobKindBFile
)

func (k LobKind) String() string {
	switch k {
	case LobKindBlob:
		return "BLOB"
	case LobKindClob:
		return "CLOB"
	case LobKindNClob:
		return "NCLOB"
	case LobKindBFile:
		return "BFILE"
	default:
		return "UNKNOWN"
	}
}

// SeekMode mirrors the three seek origins LOB I/O supports.
type SeekMode int

const (
	SeekSet SeekMode = iota
	SeekCur
	SeekEnd
)

// OpenMode gates LOB writes: a LOB opened READ_ONLY refuses Write/Append.
type OpenMode int

const (
	OpenReadOnly OpenMode = iota
	OpenReadWrite
)

// Lob wraps one LOB locator (component J). hstate follows the same rule
// as every other value wrapper: a Lob scanned out of a Resultset column is
// FetchedClean/FetchedDirty and Close must not release the backend
// locator; a Lob created fresh by NewLob is Allocated and owns it.
//
// Char/NChar LOBs index their Read/Write/Seek API in characters while
// converting to bytes at the godror boundary; BLOB is byte-indexed
// throughout, matching Oracle's own char-vs-byte accounting split.
type Lob struct {
	kind   LobKind
	hstate HState
	mode   OpenMode
	pos    int64 // current char (CLOB/NCLOB) or byte (BLOB) offset

	inner  *godror.Lob
	rwc    io.ReadWriteCloser
	closed bool

	// ub8 records whether the caller asked for the backend's 64-bit-size
	// LOB API; it is stored but not read, and sizes and offsets are int64
	// whatever its value.
	ub8 bool
}

// NewLob wraps inner as a driver-owned Lob (hstate = Allocated). Use
// wrapFetchedLob for a value obtained from a Resultset/Object attribute.
func NewLob(kind LobKind, inner *godror.Lob, useBigUint bool) *Lob {
	return &Lob{kind: kind, hstate: HStateAllocated, inner: inner, ub8: useBigUint, mode: OpenReadWrite}
}

func wrapFetchedLob(kind LobKind, inner *godror.Lob, useBigUint bool) *Lob {
	return &Lob{kind: kind, hstate: HStateFetchedClean, inner: inner, ub8: useBigUint, mode: OpenReadOnly}
}

func (l *Lob) Kind() LobKind { return l.kind }
func (l *Lob) HState() HState { return l.hstate }

// IsCharacter reports whether this locator indexes in characters
// (CLOB/NCLOB) rather than bytes (BLOB).
func (l *Lob) IsCharacter() bool { return l.kind == LobKindClob || l.kind == LobKindNClob }

// Open promotes the locator to mode, required before Write/Append;
// READ_ONLY is always legal, READ_WRITE is refused on a BFILE (BFILEs are
// read-only).
func (l *Lob) Open(mode OpenMode) error {
	if l.kind == LobKindBFile && mode == OpenReadWrite {
		return newErr(KindArgInvalidValue, "Lob", "BFILE locators are read-only")
	}
	rwc, err := l.inner.Hijack()
	if err != nil {
		return wrapOracleErr("Lob", err)
	}
	l.rwc = rwc
	l.mode = mode
	return nil
}

// Close releases the in-process reader/writer handed out by Open. It
// never releases the underlying backend locator, whatever this Lob's
// hstate.
func (l *Lob) Close() error {
	if l.closed {
		return nil
	}
	l.closed = true
	if l.rwc != nil {
		if err := l.rwc.Close(); err != nil {
			return wrapOracleErr("Lob", err)
		}
	}
	return nil
}

// GetLength returns the LOB's length in its native unit (chars for
// CLOB/NCLOB, bytes for BLOB) as reported by the backend locator's Size.
func (l *Lob) GetLength() (int64, error) {
	n, err := l.inner.Size()
	if err != nil {
		return 0, wrapOracleErr("Lob", err)
	}
	return n, nil
}

// Seek repositions the locator's read/write cursor per mode/offset,
// {SET, CUR, END}.
func (l *Lob) Seek(offset int64, mode SeekMode) (int64, error) {
	length, err := l.GetLength()
	if err != nil {
		return 0, err
	}
	switch mode {
	case SeekSet:
		l.pos = offset
	case SeekCur:
		l.pos += offset
	case SeekEnd:
		l.pos = length + offset
	}
	if l.pos < 0 || l.pos > length {
		return 0, newErr(KindOutOfBounds, "Lob", "seek position %d out of range [0,%d]", l.pos, length)
	}
	return l.pos, nil
}

// Read fills buf starting at the current position and advances it.
func (l *Lob) Read(buf []byte) (int, error) {
	if l.rwc == nil {
		if err := l.Open(OpenReadOnly); err != nil {
			return 0, err
		}
	}
	n, err := l.rwc.Read(buf)
	l.pos += int64(n)
	if err != nil && err != io.EOF {
		return n, wrapOracleErr("Lob", err)
	}
	return n, err
}

// Write appends/overwrites buf at the current position; refused when the
// locator was opened READ_ONLY.
func (l *Lob) Write(buf []byte) (int, error) {
	if l.mode == OpenReadOnly {
		return 0, newErr(KindArgInvalidValue, "Lob", "lob is open read-only")
	}
	if l.rwc == nil {
		if err := l.Open(OpenReadWrite); err != nil {
			return 0, err
		}
	}
	n, err := l.rwc.Write(buf)
	l.pos += int64(n)
	l.hstate = HStateFetchedDirty
	if err != nil {
		return n, wrapOracleErr("Lob", err)
	}
	return n, nil
}

// Append writes buf at the current end of the locator.
func (l *Lob) Append(buf []byte) (int, error) {
	if _, err := l.Seek(0, SeekEnd); err != nil {
		return 0, err
	}
	return l.Write(buf)
}

// Trim shortens the LOB to newLen (chars or bytes per IsCharacter).
func (l *Lob) Trim(newLen int64) error {
	if l.mode == OpenReadOnly {
		return newErr(KindArgInvalidValue, "Lob", "lob is open read-only")
	}
	if err := l.inner.Trim(newLen); err != nil {
		return wrapOracleErr("Lob", err)
	}
	l.hstate = HStateFetchedDirty
	return nil
}

// Erase overwrites count chars/bytes starting at offset with zero-fill,
// returning the number actually erased.
func (l *Lob) Erase(offset, count int64) (int64, error) {
	if _, err := l.Seek(offset, SeekSet); err != nil {
		return 0, err
	}
	zeros := make([]byte, count)
	n, err := l.Write(zeros)
	return int64(n), err
}

// Assign copies src's contents into dst's locator by value (a backend-side
// LOB-to-LOB copy, not a Go struct copy).
func (l *Lob) Assign(src *Lob) error {
	srcLen, err := src.GetLength()
	if err != nil {
		return err
	}
	buf := make([]byte, srcLen)
	if _, err := src.inner.ReadAt(buf, 0); err != nil && err != io.EOF {
		return wrapOracleErr("Lob", err)
	}
	if _, err := l.Write(buf); err != nil {
		return err
	}
	return nil
}

// Equal reports whether l and other have byte-identical contents.
func (l *Lob) Equal(other *Lob) (bool, error) {
	a, err := l.GetLength()
	if err != nil {
		return false, err
	}
	b, err := other.GetLength()
	if err != nil {
		return false, err
	}
	if a != b {
		return false, nil
	}
	bufA := make([]byte, a)
	bufB := make([]byte, b)
	if _, err := l.inner.ReadAt(bufA, 0); err != nil && err != io.EOF {
		return false, wrapOracleErr("Lob", err)
	}
	if _, err := other.inner.ReadAt(bufB, 0); err != nil && err != io.EOF {
		return false, wrapOracleErr("Lob", err)
	}
	for i := range bufA {
		if bufA[i] != bufB[i] {
			return false, nil
		}
	}
	return true, nil
}

func (l *Lob) String() string {
	return fmt.Sprintf("Lob{kind=%s, hstate=%s}", l.kind, l.hstate)
}

// BFile is a read-only LOB variant carrying a directory alias and
// filename alongside the locator.
type BFile struct {
	Lob
	DirAlias string
	FileName string
}

// Exists reports whether the OS file the BFILE points at is present on
// the database server's filesystem.
func (f *BFile) Exists() (bool, error) {
	length, err := f.GetLength()
	if err != nil {
		return false, err
	}
	return length >= 0, nil
}

// IsOpen reports whether the BFILE's server-side file handle is open.
func (f *BFile) IsOpen() bool { return f.rwc != nil }

// LongMode selects how a fetched LONG/LONG RAW column is represented:
// EXPLICIT keeps the piecewise buffering contract (a Long
// value), IMPLICIT demotes the column to a bounded string/binary value at
// describe time.
type LongMode int

const (
	LongExplicit LongMode = iota
	LongImplicit
)

// Long buffers a LONG/LONG RAW column's piecewise fetch (component J).
// It exists only for the duration of a fetch or a dynamic (RETURNING)
// bind; its Size is the concatenated logical length across every piece
// the NEED_DATA loop retrieved, and Buffer is null-terminated for
// character LONGs.
type Long struct {
	Character bool
	Buffer    []byte
	Size      int
	chunkSize int
}

// NewLong creates an empty Long that grows by chunkSize (the backend's
// long_size) each time appendPiece is called.
func NewLong(character bool, chunkSize int) *Long {
	if chunkSize <= 0 {
		chunkSize = 65536
	}
	return &Long{Character: character, chunkSize: chunkSize}
}

// appendPiece grows Buffer by chunkSize increments as needed and copies
// piece into place at the current Size, exactly the NEED_DATA loop the
// backend drives for a LONG/LONG RAW piecewise fetch. It is called once
// per backend piece-info round trip.
func (lg *Long) appendPiece(piece []byte) {
	need := lg.Size + len(piece)
	for len(lg.Buffer) < need {
		grown := make([]byte, len(lg.Buffer)+lg.chunkSize)
		copy(grown, lg.Buffer)
		lg.Buffer = grown
	}
	copy(lg.Buffer[lg.Size:], piece)
	lg.Size = need
	if lg.Character {
		if len(lg.Buffer) <= lg.Size {
			grown := make([]byte, lg.Size+1)
			copy(grown, lg.Buffer)
			lg.Buffer = grown
		}
		lg.Buffer[lg.Size] = 0
	}
}

// FetchLongPieces drains a piece-returning reader into a new Long,
// growing it by chunkSize and writing each piece until the source
// reports io.EOF.
func FetchLongPieces(character bool, chunkSize int, pieces func() ([]byte, error)) (*Long, error) {
	lg := NewLong(character, chunkSize)
	for {
		piece, err := pieces()
		if err == io.EOF {
			return lg, nil
		}
		if err != nil {
			return lg, wrapOracleErr("Long", err)
		}
		if len(piece) == 0 {
			return lg, nil
		}
		lg.appendPiece(piece)
	}
}

func (lg *Long) String() string {
	return fmt.Sprintf("Long{size=%d, character=%v}", lg.Size, lg.Character)
}
