package ocidrv

import (
	"database/sql/driver"

	"github.com/godror/godror"
)

// BindDirection mirrors the backend's IN/OUT/IN-OUT bind directions; it
// drives whether Statement.Execute must read the value back out of the
// driver-level out-parameter after the round trip.
type BindDirection int

const (
	BindIn BindDirection = iota
	BindOut
	BindInOut
)

// Bind is one named (or, for anonymous PL/SQL blocks, positional) bind
// variable slot on a Statement. Its hstate is always HStateAllocatedBindStmt:
// a bind's lifetime never outlives the Statement that owns it.
type Bind struct {
	stmt  *Statement
	name  string
	dtype DataType
	dir   BindDirection
	value any

	maxSize int // for TypeVarchar/TypeRaw OUT binds, the allocated buffer size
}

func (b *Bind) HState() HState { return HStateAllocatedBindStmt }

// Direction reports the bind's IN/OUT/IN-OUT direction.
func (b *Bind) Direction() BindDirection { return b.dir }

// SetDirection marks this bind as an OUT or IN-OUT parameter; maxSize
// bounds the OUT buffer for variable-length types the way the backend's
// BindByName size argument does.
func (b *Bind) SetDirection(dir BindDirection, maxSize int) {
	b.dir = dir
	b.maxSize = maxSize
}

// arg converts the bind's current value into the driver.Value godror
// expects, wrapping OUT/IN-OUT binds in godror.Out so ExecContext
// populates them after the round trip.
func (b *Bind) arg() any {
	switch b.dir {
	case BindOut, BindInOut:
		return godror.Out{Dest: &b.value, In: b.dir == BindInOut, Size: b.maxSize}
	default:
		return convertBindValue(b.dtype, b.value)
	}
}

// Value returns the bind's current value -- for an OUT/IN-OUT bind, this
// is only meaningful after Statement.Execute has run.
func (b *Bind) Value() any { return b.value }

// convertBindValue adapts a value wrapper (Timestamp, Number, Interval) to
// whatever driver.Valuer the godror driver expects; plain Go scalars pass
// through untouched.
func convertBindValue(dt DataType, v any) any {
	switch val := v.(type) {
	case Timestamp:
		return val.Time()
	case Number:
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case Interval:
		return val.String()
	case driver.Valuer:
		return val
	default:
		return v
	}
}
