package ocidrv

import "fmt"

// DataType enumerates the column/attribute datatypes the driver
// distinguishes, collapsing the backend's internal OCI type codes onto the
// set TypeInfo and Bind/Define actually need to behave differently for.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeVarchar
	TypeChar
	TypeNumber
	TypeInteger
	TypeFloat
	TypeDate
	TypeTimestamp
	TypeTimestampTZ
	TypeIntervalYM
	TypeIntervalDS
	TypeRaw
	TypeLongRaw
	TypeLong
	TypeClob
	TypeBlob
	TypeBFile
	TypeRowid
	TypeCursor
	TypeBoolean
	TypeObject
	TypeCollection
	TypeRef
	TypeXML
	TypeJSON
)

func (d DataType) String() string {
	names := map[DataType]string{
		TypeVarchar: "VARCHAR2", TypeChar: "CHAR", TypeNumber: "NUMBER",
		TypeInteger: "INTEGER", TypeFloat: "FLOAT", TypeDate: "DATE",
		TypeTimestamp: "TIMESTAMP", TypeTimestampTZ: "TIMESTAMP WITH TIME ZONE",
		TypeIntervalYM: "INTERVAL YEAR TO MONTH", TypeIntervalDS: "INTERVAL DAY TO SECOND",
		TypeRaw: "RAW", TypeLongRaw: "LONG RAW", TypeLong: "LONG",
		TypeClob: "CLOB", TypeBlob: "BLOB", TypeBFile: "BFILE",
		TypeRowid: "ROWID", TypeCursor: "CURSOR", TypeBoolean: "PL/SQL BOOLEAN",
		TypeObject: "OBJECT", TypeCollection: "COLLECTION", TypeRef: "REF",
		TypeXML: "XMLTYPE", TypeJSON: "JSON",
	}
	if n, ok := names[d]; ok {
		return n
	}
	return "UNKNOWN"
}

// AttrInfo describes one column of a resultset or one attribute of a
// user-defined type.
type AttrInfo struct {
	Name      string
	Type      DataType
	Size      int
	Precision int
	Scale     int
	Nullable  bool

	// SchemaName/TypeName identify the owning UDT for TypeObject,
	// TypeCollection and TypeRef attributes.
	SchemaName string
	TypeName   string
}

// TypeInfo (component E) describes either a SQL resultset's column list or
// a registered object type's attribute list, and is the thing Bind/Define
// consult to pick a compatible conversion path and to refuse an
// incompatible rebind (KindRebindBadDatatype).
type TypeInfo struct {
	Name  string // table/view/type name, or "" for an anonymous resultset
	Attrs []AttrInfo

	// CollElemType is set only when this TypeInfo describes a collection
	// (VARRAY/nested table) type; it names the element type.
	CollElemType *TypeInfo
}

// AttrByName looks up an attribute case-insensitively (Oracle identifiers
// are effectively case-insensitive unless quoted).
func (ti *TypeInfo) AttrByName(name string) (AttrInfo, bool) {
	for _, a := range ti.Attrs {
		if equalFoldASCII(a.Name, name) {
			return a, true
		}
	}
	return AttrInfo{}, false
}

// AttrIndex is the index-returning counterpart of AttrByName, used by
// Object attribute lookup; it returns -1 when name is not found.
func (ti *TypeInfo) AttrIndex(name string) int {
	for i, a := range ti.Attrs {
		if equalFoldASCII(a.Name, name) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func (ti *TypeInfo) String() string {
	return fmt.Sprintf("TypeInfo{name=%s, attrs=%d}", ti.Name, len(ti.Attrs))
}

// typeRegistry is the process-wide map from registered Go struct type to
// its resolved Oracle UDT TypeInfo, populated by RegisterType.
var typeRegistry = struct {
	entries map[string]*TypeInfo
}{entries: make(map[string]*TypeInfo)}

// RegisterType records ti under oracleTypeName, where LookupType (and so
// Object/Collection sub-type resolution) finds it. The type parameter T
// is not used: nothing is deserialized into T.
func RegisterType[T any](oracleTypeName string, ti *TypeInfo) {
	typeRegistry.entries[oracleTypeName] = ti
}

// LookupType retrieves a previously-registered TypeInfo by Oracle type
// name.
func LookupType(oracleTypeName string) (*TypeInfo, bool) {
	ti, ok := typeRegistry.entries[oracleTypeName]
	return ti, ok
}
