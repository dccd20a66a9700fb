package metadata

// TypeAttributes mirrors the ECMA-335 TypeDef flags.
type TypeAttributes uint32

const (
	TypeAttributeVisibilityMask    TypeAttributes = 0x00000007
	TypeAttributePublic            TypeAttributes = 0x00000001
	TypeAttributeNestedPublic      TypeAttributes = 0x00000002
	TypeAttributeLayoutMask        TypeAttributes = 0x00000018
	TypeAttributeSequentialLayout  TypeAttributes = 0x00000008
	TypeAttributeExplicitLayout    TypeAttributes = 0x00000010
	TypeAttributeInterface         TypeAttributes = 0x00000020
	TypeAttributeAbstract          TypeAttributes = 0x00000080
	TypeAttributeSealed            TypeAttributes = 0x00000100
	TypeAttributeSpecialName       TypeAttributes = 0x00000400
	TypeAttributeBeforeFieldInit   TypeAttributes = 0x00100000
	TypeAttributeRTSpecialName     TypeAttributes = 0x00000800
	TypeAttributeHasSecurity       TypeAttributes = 0x00040000
	TypeAttributeSerializable      TypeAttributes = 0x00002000
	TypeAttributeWindowsRuntime    TypeAttributes = 0x00004000
	TypeAttributeStringFormatMask  TypeAttributes = 0x00030000
	TypeAttributeCustomFormatClass TypeAttributes = 0x00030000
)

// IsInterface reports whether the interface bit is set.
func (a TypeAttributes) IsInterface() bool { return a&TypeAttributeInterface != 0 }

// MethodAttributes mirrors the ECMA-335 MethodDef flags.
type MethodAttributes uint32

const (
	MethodAttributeMemberAccessMask MethodAttributes = 0x0007
	MethodAttributePrivate          MethodAttributes = 0x0001
	MethodAttributePublic           MethodAttributes = 0x0006
	MethodAttributeStatic           MethodAttributes = 0x0010
	MethodAttributeFinal            MethodAttributes = 0x0020
	MethodAttributeVirtual          MethodAttributes = 0x0040
	MethodAttributeHideBySig        MethodAttributes = 0x0080
	MethodAttributeNewSlot          MethodAttributes = 0x0100
	MethodAttributeAbstract         MethodAttributes = 0x0400
	MethodAttributeSpecialName      MethodAttributes = 0x0800
	MethodAttributeRTSpecialName    MethodAttributes = 0x1000
)

// MethodImplAttributes mirrors the ECMA-335 MethodImpl flags.
type MethodImplAttributes uint32

const (
	MethodImplIL                 MethodImplAttributes = 0x0000
	MethodImplNative             MethodImplAttributes = 0x0001
	MethodImplRuntime            MethodImplAttributes = 0x0003
	MethodImplNoInlining         MethodImplAttributes = 0x0008
	MethodImplInternalCall       MethodImplAttributes = 0x1000
	MethodImplAggressiveInlining MethodImplAttributes = 0x0100
	MethodImplSynchronized       MethodImplAttributes = 0x0020
	MethodImplPreserveSig        MethodImplAttributes = 0x0080
	MethodImplNoOptimization     MethodImplAttributes = 0x0040
)

// FieldAttributes mirrors the ECMA-335 Field flags.
type FieldAttributes uint32

const (
	FieldAttributeFieldAccessMask FieldAttributes = 0x0007
	FieldAttributePrivate         FieldAttributes = 0x0001
	FieldAttributePublic          FieldAttributes = 0x0006
	FieldAttributeStatic          FieldAttributes = 0x0010
	FieldAttributeInitOnly        FieldAttributes = 0x0020
	FieldAttributeLiteral         FieldAttributes = 0x0040
	FieldAttributeHasFieldRVA     FieldAttributes = 0x0100
)

// SignatureCallingConvention holds the calling convention byte of a method signature.
type SignatureCallingConvention uint32

const (
	CallingConventionDefault      SignatureCallingConvention = 0x00
	CallingConventionVarArgs      SignatureCallingConvention = 0x05
	CallingConventionGeneric      SignatureCallingConvention = 0x10
	CallingConventionHasThis      SignatureCallingConvention = 0x20
	CallingConventionExplicitThis SignatureCallingConvention = 0x40
)

// GenericParameterKind tells whether a parameter belongs to a type or a method.
type GenericParameterKind uint8

const (
	GenericParameterKindType GenericParameterKind = iota
	GenericParameterKindMethod
)

// GenericParameterAttributes holds variance and constraint flags.
type GenericParameterAttributes uint16

const (
	GenericParameterCovariant                      GenericParameterAttributes = 0x0001
	GenericParameterContravariant                  GenericParameterAttributes = 0x0002
	GenericParameterReferenceTypeConstraint        GenericParameterAttributes = 0x0004
	GenericParameterNotNullableValueTypeConstraint GenericParameterAttributes = 0x0008
	GenericParameterDefaultConstructorConstraint   GenericParameterAttributes = 0x0010
)

// AssemblyFlags holds scope-level flags.
type AssemblyFlags uint32

const (
	AssemblyFlagPublicKey    AssemblyFlags = 0x0001
	AssemblyFlagRetargetable AssemblyFlags = 0x0100
)

// AssemblyHashAlgorithm identifies the hash used for the scope's public key token.
type AssemblyHashAlgorithm uint32

const (
	AssemblyHashNone AssemblyHashAlgorithm = 0
	AssemblyHashMD5  AssemblyHashAlgorithm = 0x8003
	AssemblyHashSHA1 AssemblyHashAlgorithm = 0x8004
)
