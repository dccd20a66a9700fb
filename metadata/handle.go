package metadata

import (
	"fmt"

	"github.com/wippyai/nativeformat/errors"
)

// HandleType is the record kind stored in the high byte of a Handle.
type HandleType uint8

const (
	HandleTypeNull HandleType = iota
	HandleTypeScopeDefinition
	HandleTypeScopeReference
	HandleTypeNamespaceDefinition
	HandleTypeNamespaceReference
	HandleTypeTypeDefinition
	HandleTypeTypeReference
	HandleTypeTypeSpecification
	HandleTypeTypeInstantiationSignature
	HandleTypeSZArraySignature
	HandleTypeArraySignature
	HandleTypeByReferenceSignature
	HandleTypePointerSignature
	HandleTypeTypeVariableSignature
	HandleTypeMethodTypeVariableSignature
	HandleTypeGenericParameter
	HandleTypeMethod
	HandleTypeMethodSignature
	HandleTypeMethodInstantiation
	HandleTypeField
	HandleTypeFieldSignature
	HandleTypeConstantStringValue
	HandleTypeMemberReference

	handleTypeCount
)

var handleTypeNames = [handleTypeCount]string{
	"Null",
	"ScopeDefinition",
	"ScopeReference",
	"NamespaceDefinition",
	"NamespaceReference",
	"TypeDefinition",
	"TypeReference",
	"TypeSpecification",
	"TypeInstantiationSignature",
	"SZArraySignature",
	"ArraySignature",
	"ByReferenceSignature",
	"PointerSignature",
	"TypeVariableSignature",
	"MethodTypeVariableSignature",
	"GenericParameter",
	"Method",
	"MethodSignature",
	"MethodInstantiation",
	"Field",
	"FieldSignature",
	"ConstantStringValue",
	"MemberReference",
}

func (t HandleType) String() string {
	if t < handleTypeCount {
		return handleTypeNames[t]
	}
	return fmt.Sprintf("HandleType(%d)", uint8(t))
}

// Valid reports whether t names a known record kind.
func (t HandleType) Valid() bool {
	return t < handleTypeCount
}

// IsType reports whether a handle of this kind can stand for a type in a
// signature (BaseType, generic arguments, parameter types).
func (t HandleType) IsType() bool {
	switch t {
	case HandleTypeTypeDefinition, HandleTypeTypeReference, HandleTypeTypeSpecification,
		HandleTypeTypeInstantiationSignature, HandleTypeSZArraySignature, HandleTypeArraySignature,
		HandleTypeByReferenceSignature, HandleTypePointerSignature,
		HandleTypeTypeVariableSignature, HandleTypeMethodTypeVariableSignature:
		return true
	}
	return false
}

const (
	handleTypeShift = 24
	// MaxOffset is the largest offset a Handle can address.
	MaxOffset       = 1<<handleTypeShift - 1
)

// Handle packs a HandleType tag (bits 31..24) and a blob offset (bits 23..0).
// The zero Handle is null for every record kind.
type Handle uint32

// NewHandle packs t and offset into a Handle.
func NewHandle(t HandleType, offset uint32) (Handle, error) {
	if offset > MaxOffset {
		return 0, errors.Overflow(errors.PhaseEncode, nil, offset, "handle offset")
	}
	if !t.Valid() {
		return 0, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("unknown handle type %d", t))
	}
	return Handle(uint32(t)<<handleTypeShift | offset), nil
}

// HandleType returns the tag.
func (h Handle) HandleType() HandleType {
	return HandleType(h >> handleTypeShift)
}

// Offset returns the low 24 bits.
func (h Handle) Offset() int {
	return int(h & MaxOffset)
}

// IsNil reports whether h is the null handle.
func (h Handle) IsNil() bool {
	return h == 0
}

func (h Handle) String() string {
	if h == 0 {
		return "Null"
	}
	return fmt.Sprintf("%s@%#x", h.HandleType(), h.Offset())
}

// TypedHandle is implemented by every record-specific handle type.
type TypedHandle interface {
	~uint32
	Kind() HandleType
}

// As converts a raw handle to a typed handle, failing when the tag names a
// different record kind. Null-tagged values pass unchanged.
func As[T TypedHandle](h Handle) (T, error) {
	var zero T
	if err := validate(h, zero.Kind()); err != nil {
		return zero, err
	}
	return T(h), nil
}

// Validate checks that a typed handle carries its own tag.
func Validate[T TypedHandle](h T) error {
	return validate(Handle(h), h.Kind())
}

func validate(h Handle, want HandleType) error {
	got := h.HandleType()
	if got == HandleTypeNull || got == want {
		return nil
	}
	return errors.TagMismatch(want.String(), got.String(), uint32(h))
}

// Record-specific handles.

type (
	ScopeDefinitionHandle             Handle
	ScopeReferenceHandle              Handle
	NamespaceDefinitionHandle         Handle
	NamespaceReferenceHandle          Handle
	TypeDefinitionHandle              Handle
	TypeReferenceHandle               Handle
	TypeSpecificationHandle           Handle
	TypeInstantiationSignatureHandle  Handle
	SZArraySignatureHandle            Handle
	ArraySignatureHandle              Handle
	ByReferenceSignatureHandle        Handle
	PointerSignatureHandle            Handle
	TypeVariableSignatureHandle       Handle
	MethodTypeVariableSignatureHandle Handle
	GenericParameterHandle            Handle
	MethodHandle                      Handle
	MethodSignatureHandle             Handle
	MethodInstantiationHandle         Handle
	FieldHandle                       Handle
	FieldSignatureHandle              Handle
	ConstantStringValueHandle         Handle
	MemberReferenceHandle             Handle
)

func (ScopeDefinitionHandle) Kind() HandleType      { return HandleTypeScopeDefinition }
func (ScopeReferenceHandle) Kind() HandleType       { return HandleTypeScopeReference }
func (NamespaceDefinitionHandle) Kind() HandleType  { return HandleTypeNamespaceDefinition }
func (NamespaceReferenceHandle) Kind() HandleType   { return HandleTypeNamespaceReference }
func (TypeDefinitionHandle) Kind() HandleType       { return HandleTypeTypeDefinition }
func (TypeReferenceHandle) Kind() HandleType        { return HandleTypeTypeReference }
func (TypeSpecificationHandle) Kind() HandleType    { return HandleTypeTypeSpecification }
func (SZArraySignatureHandle) Kind() HandleType     { return HandleTypeSZArraySignature }
func (ArraySignatureHandle) Kind() HandleType       { return HandleTypeArraySignature }
func (ByReferenceSignatureHandle) Kind() HandleType { return HandleTypeByReferenceSignature }
func (PointerSignatureHandle) Kind() HandleType     { return HandleTypePointerSignature }
func (TypeVariableSignatureHandle) Kind() HandleType {
	return HandleTypeTypeVariableSignature
}
func (MethodTypeVariableSignatureHandle) Kind() HandleType {
	return HandleTypeMethodTypeVariableSignature
}
func (TypeInstantiationSignatureHandle) Kind() HandleType {
	return HandleTypeTypeInstantiationSignature
}
func (GenericParameterHandle) Kind() HandleType    { return HandleTypeGenericParameter }
func (MethodHandle) Kind() HandleType              { return HandleTypeMethod }
func (MethodSignatureHandle) Kind() HandleType     { return HandleTypeMethodSignature }
func (MethodInstantiationHandle) Kind() HandleType { return HandleTypeMethodInstantiation }
func (FieldHandle) Kind() HandleType               { return HandleTypeField }
func (FieldSignatureHandle) Kind() HandleType      { return HandleTypeFieldSignature }
func (ConstantStringValueHandle) Kind() HandleType { return HandleTypeConstantStringValue }
func (MemberReferenceHandle) Kind() HandleType     { return HandleTypeMemberReference }

func (h ScopeDefinitionHandle) IsNil() bool     { return h == 0 }
func (h NamespaceDefinitionHandle) IsNil() bool { return h == 0 }
func (h TypeDefinitionHandle) IsNil() bool      { return h == 0 }
func (h MethodHandle) IsNil() bool              { return h == 0 }
func (h ConstantStringValueHandle) IsNil() bool { return h == 0 }
