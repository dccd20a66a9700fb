package typesystem

// WellKnownType names a type the type system itself depends on.
type WellKnownType int

const (
	WellKnownVoid WellKnownType = iota
	WellKnownBoolean
	WellKnownChar
	WellKnownSByte
	WellKnownByte
	WellKnownInt16
	WellKnownUInt16
	WellKnownInt32
	WellKnownUInt32
	WellKnownInt64
	WellKnownUInt64
	WellKnownIntPtr
	WellKnownUIntPtr
	WellKnownSingle
	WellKnownDouble
	WellKnownValueType
	WellKnownEnum
	WellKnownNullable
	WellKnownObject
	WellKnownString
	WellKnownArray

	wellKnownCount
)

var wellKnownNames = [wellKnownCount]string{
	"Void",
	"Boolean",
	"Char",
	"SByte",
	"Byte",
	"Int16",
	"UInt16",
	"Int32",
	"UInt32",
	"Int64",
	"UInt64",
	"IntPtr",
	"UIntPtr",
	"Single",
	"Double",
	"ValueType",
	"Enum",
	"Nullable`1",
	"Object",
	"String",
	"Array",
}

// Name returns the type's name within the System namespace.
func (wk WellKnownType) Name() string {
	if wk >= 0 && wk < wellKnownCount {
		return wellKnownNames[wk]
	}
	return ""
}
