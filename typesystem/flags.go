package typesystem

// TypeFlags packs a type's category with lazily computed properties. Each
// property group has a Computed bit that is set once the group is known.
type TypeFlags uint32

// Categories. Values below CategoryClass other than CategoryUnknown and
// CategoryVoid are value types.
const (
	CategoryUnknown TypeFlags = iota
	CategoryVoid
	CategoryBoolean
	CategoryChar
	CategorySByte
	CategoryByte
	CategoryInt16
	CategoryUInt16
	CategoryInt32
	CategoryUInt32
	CategoryInt64
	CategoryUInt64
	CategoryIntPtr
	CategoryUIntPtr
	CategorySingle
	CategoryDouble
	CategoryValueType
	CategoryEnum
	CategoryNullable
	CategoryClass
	CategoryInterface
	CategoryArray
	CategorySzArray
	CategoryByRef
	CategoryPointer
	CategoryGenericParameter
	CategorySignatureTypeVariable
	CategorySignatureMethodVariable
)

const (
	CategoryMask TypeFlags = 0x3F

	CategoryComputed TypeFlags = 0x40

	ContainsSignatureVariables         TypeFlags = 0x100
	ContainsSignatureVariablesComputed TypeFlags = 0x200

	CanonicalSpecificSubtype  TypeFlags = 0x1000
	CanonicalUniversalSubtype TypeFlags = 0x2000
	CanonicalSubtypeComputed  TypeFlags = 0x4000
)

var categoryNames = [...]string{
	CategoryUnknown:                 "Unknown",
	CategoryVoid:                    "Void",
	CategoryBoolean:                 "Boolean",
	CategoryChar:                    "Char",
	CategorySByte:                   "SByte",
	CategoryByte:                    "Byte",
	CategoryInt16:                   "Int16",
	CategoryUInt16:                  "UInt16",
	CategoryInt32:                   "Int32",
	CategoryUInt32:                  "UInt32",
	CategoryInt64:                   "Int64",
	CategoryUInt64:                  "UInt64",
	CategoryIntPtr:                  "IntPtr",
	CategoryUIntPtr:                 "UIntPtr",
	CategorySingle:                  "Single",
	CategoryDouble:                  "Double",
	CategoryValueType:               "ValueType",
	CategoryEnum:                    "Enum",
	CategoryNullable:                "Nullable",
	CategoryClass:                   "Class",
	CategoryInterface:               "Interface",
	CategoryArray:                   "Array",
	CategorySzArray:                 "SzArray",
	CategoryByRef:                   "ByRef",
	CategoryPointer:                 "Pointer",
	CategoryGenericParameter:        "GenericParameter",
	CategorySignatureTypeVariable:   "SignatureTypeVariable",
	CategorySignatureMethodVariable: "SignatureMethodVariable",
}

// CategoryName returns the name of the category bits of f.
func (f TypeFlags) CategoryName() string {
	c := f & CategoryMask
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "Unknown"
}

// IsValueTypeCategory reports whether c is a primitive, struct, enum or
// nullable category.
func IsValueTypeCategory(c TypeFlags) bool {
	c &= CategoryMask
	return c > CategoryVoid && c < CategoryClass
}

// IsPrimitiveCategory reports whether c is one of the built-in numeric,
// boolean or character categories.
func IsPrimitiveCategory(c TypeFlags) bool {
	c &= CategoryMask
	return c >= CategoryBoolean && c <= CategoryDouble
}

// primitiveCategories maps System type names to their categories.
var primitiveCategories = map[string]TypeFlags{
	"Void":    CategoryVoid,
	"Boolean": CategoryBoolean,
	"Char":    CategoryChar,
	"SByte":   CategorySByte,
	"Byte":    CategoryByte,
	"Int16":   CategoryInt16,
	"UInt16":  CategoryUInt16,
	"Int32":   CategoryInt32,
	"UInt32":  CategoryUInt32,
	"Int64":   CategoryInt64,
	"UInt64":  CategoryUInt64,
	"IntPtr":  CategoryIntPtr,
	"UIntPtr": CategoryUIntPtr,
	"Single":  CategorySingle,
	"Double":  CategoryDouble,
}
