package writer

import (
	"github.com/wippyai/nativeformat/metadata"
)

// Record is a writer-side metadata record. Records are mutable and compared
// by identity until Write merges structurally equal ones.
type Record interface {
	HandleType() metadata.HandleType
	visit(s sink)
}

// sink receives the fields of a record in blob order.
type sink interface {
	u8(v uint8)
	u16(v uint16)
	u32(v uint32)
	blob(b []byte)
	str(s string)
	ref(r Record)
	typeRef(r Record)
	count(n int)
}

func refs[T Record](s sink, xs []T) {
	s.count(len(xs))
	for _, x := range xs {
		s.ref(x)
	}
}

func typeRefs(s sink, xs []Record) {
	s.count(len(xs))
	for _, x := range xs {
		s.typeRef(x)
	}
}

// ScopeDefinition is an assembly or module. It is a root of the blob.
type ScopeDefinition struct {
	PublicKey               []byte
	RootNamespaceDefinition *NamespaceDefinition
	EntryPoint              *Method
	Name                    string
	Culture                 string
	Flags                   metadata.AssemblyFlags
	HashAlgorithm           metadata.AssemblyHashAlgorithm
	MajorVersion            uint16
	MinorVersion            uint16
	BuildNumber             uint16
	RevisionNumber          uint16
}

func (*ScopeDefinition) HandleType() metadata.HandleType { return metadata.HandleTypeScopeDefinition }

func (r *ScopeDefinition) visit(s sink) {
	s.u32(uint32(r.Flags))
	s.str(r.Name)
	s.u32(uint32(r.HashAlgorithm))
	s.u16(r.MajorVersion)
	s.u16(r.MinorVersion)
	s.u16(r.BuildNumber)
	s.u16(r.RevisionNumber)
	s.blob(r.PublicKey)
	s.str(r.Culture)
	s.ref(r.RootNamespaceDefinition)
	s.ref(r.EntryPoint)
}

// ScopeReference names another scope.
type ScopeReference struct {
	PublicKeyOrToken []byte
	Name             string
	Culture          string
	Flags            metadata.AssemblyFlags
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
}

func (*ScopeReference) HandleType() metadata.HandleType { return metadata.HandleTypeScopeReference }

func (r *ScopeReference) visit(s sink) {
	s.u32(uint32(r.Flags))
	s.str(r.Name)
	s.u16(r.MajorVersion)
	s.u16(r.MinorVersion)
	s.u16(r.BuildNumber)
	s.u16(r.RevisionNumber)
	s.blob(r.PublicKeyOrToken)
	s.str(r.Culture)
}

// NamespaceDefinition groups types. The root namespace has an empty name.
type NamespaceDefinition struct {
	ParentScopeOrNamespace Record
	TypeDefinitions        []*TypeDefinition
	NamespaceDefinitions   []*NamespaceDefinition
	Name                   string
}

func (*NamespaceDefinition) HandleType() metadata.HandleType {
	return metadata.HandleTypeNamespaceDefinition
}

func (r *NamespaceDefinition) visit(s sink) {
	s.ref(r.ParentScopeOrNamespace)
	s.str(r.Name)
	refs(s, r.TypeDefinitions)
	refs(s, r.NamespaceDefinitions)
}

// NamespaceReference names a namespace of a referenced scope.
type NamespaceReference struct {
	ParentScopeOrNamespace Record
	Name                   string
}

func (*NamespaceReference) HandleType() metadata.HandleType {
	return metadata.HandleTypeNamespaceReference
}

func (r *NamespaceReference) visit(s sink) {
	s.ref(r.ParentScopeOrNamespace)
	s.str(r.Name)
}

// TypeDefinition is a named type.
type TypeDefinition struct {
	BaseType            Record
	NamespaceDefinition *NamespaceDefinition
	EnclosingType       *TypeDefinition
	NestedTypes         []*TypeDefinition
	Methods             []*Method
	Fields              []*Field
	Interfaces          []Record
	GenericParameters   []*GenericParameter
	Name                string
	Flags               metadata.TypeAttributes
	Size                uint32
	PackingSize         uint16
}

func (*TypeDefinition) HandleType() metadata.HandleType { return metadata.HandleTypeTypeDefinition }

func (r *TypeDefinition) visit(s sink) {
	s.u32(uint32(r.Flags))
	s.typeRef(r.BaseType)
	s.ref(r.NamespaceDefinition)
	s.str(r.Name)
	s.u32(r.Size)
	s.u16(r.PackingSize)
	s.ref(r.EnclosingType)
	refs(s, r.NestedTypes)
	refs(s, r.Methods)
	refs(s, r.Fields)
	typeRefs(s, r.Interfaces)
	refs(s, r.GenericParameters)
}

// TypeReference names a type in another scope.
type TypeReference struct {
	ParentNamespaceOrType Record
	TypeName              string
}

func (*TypeReference) HandleType() metadata.HandleType { return metadata.HandleTypeTypeReference }

func (r *TypeReference) visit(s sink) {
	s.ref(r.ParentNamespaceOrType)
	s.str(r.TypeName)
}

// TypeSpecification wraps a type signature.
type TypeSpecification struct {
	Signature Record
}

func (*TypeSpecification) HandleType() metadata.HandleType {
	return metadata.HandleTypeTypeSpecification
}

func (r *TypeSpecification) visit(s sink) {
	s.typeRef(r.Signature)
}

// TypeInstantiationSignature applies type arguments to a generic type.
type TypeInstantiationSignature struct {
	GenericType          Record
	GenericTypeArguments []Record
}

func (*TypeInstantiationSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeTypeInstantiationSignature
}

func (r *TypeInstantiationSignature) visit(s sink) {
	s.typeRef(r.GenericType)
	typeRefs(s, r.GenericTypeArguments)
}

// SZArraySignature is a single-dimensional zero-based array.
type SZArraySignature struct {
	ElementType Record
}

func (*SZArraySignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeSZArraySignature
}

func (r *SZArraySignature) visit(s sink) {
	s.typeRef(r.ElementType)
}

// ArraySignature is a multi-dimensional array.
type ArraySignature struct {
	ElementType Record
	Rank        uint32
}

func (*ArraySignature) HandleType() metadata.HandleType { return metadata.HandleTypeArraySignature }

func (r *ArraySignature) visit(s sink) {
	s.typeRef(r.ElementType)
	s.u32(r.Rank)
}

// ByReferenceSignature is a managed reference.
type ByReferenceSignature struct {
	Type Record
}

func (*ByReferenceSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeByReferenceSignature
}

func (r *ByReferenceSignature) visit(s sink) {
	s.typeRef(r.Type)
}

// PointerSignature is an unmanaged pointer.
type PointerSignature struct {
	Type Record
}

func (*PointerSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypePointerSignature
}

func (r *PointerSignature) visit(s sink) {
	s.typeRef(r.Type)
}

// TypeVariableSignature is !Number.
type TypeVariableSignature struct {
	Number uint32
}

func (*TypeVariableSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeTypeVariableSignature
}

func (r *TypeVariableSignature) visit(s sink) {
	s.u32(r.Number)
}

// MethodTypeVariableSignature is !!Number.
type MethodTypeVariableSignature struct {
	Number uint32
}

func (*MethodTypeVariableSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeMethodTypeVariableSignature
}

func (r *MethodTypeVariableSignature) visit(s sink) {
	s.u32(r.Number)
}

// GenericParameter declares one generic parameter.
type GenericParameter struct {
	Name   string
	Number uint16
	Flags  metadata.GenericParameterAttributes
	Kind   metadata.GenericParameterKind
}

func (*GenericParameter) HandleType() metadata.HandleType {
	return metadata.HandleTypeGenericParameter
}

func (r *GenericParameter) visit(s sink) {
	s.u16(r.Number)
	s.u16(uint16(r.Flags))
	s.u8(uint8(r.Kind))
	s.str(r.Name)
}

// Method declares a method.
type Method struct {
	Signature         *MethodSignature
	GenericParameters []*GenericParameter
	Name              string
	Flags             metadata.MethodAttributes
	ImplFlags         metadata.MethodImplAttributes
}

func (*Method) HandleType() metadata.HandleType { return metadata.HandleTypeMethod }

func (r *Method) visit(s sink) {
	s.u32(uint32(r.Flags))
	s.u32(uint32(r.ImplFlags))
	s.str(r.Name)
	s.ref(r.Signature)
	refs(s, r.GenericParameters)
}

// MethodSignature is the calling convention, return type and parameter types.
type MethodSignature struct {
	ReturnType            Record
	Parameters            []Record
	CallingConvention     metadata.SignatureCallingConvention
	GenericParameterCount uint32
}

func (*MethodSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeMethodSignature
}

func (r *MethodSignature) visit(s sink) {
	s.u32(uint32(r.CallingConvention))
	s.u32(r.GenericParameterCount)
	s.typeRef(r.ReturnType)
	typeRefs(s, r.Parameters)
}

// MethodInstantiation applies type arguments to a generic method.
type MethodInstantiation struct {
	Method               Record
	GenericTypeArguments []Record
}

func (*MethodInstantiation) HandleType() metadata.HandleType {
	return metadata.HandleTypeMethodInstantiation
}

func (r *MethodInstantiation) visit(s sink) {
	s.ref(r.Method)
	typeRefs(s, r.GenericTypeArguments)
}

// MemberReference names a method on a referenced type.
type MemberReference struct {
	Parent    Record
	Signature Record
	Name      string
}

func (*MemberReference) HandleType() metadata.HandleType {
	return metadata.HandleTypeMemberReference
}

func (r *MemberReference) visit(s sink) {
	s.typeRef(r.Parent)
	s.str(r.Name)
	s.ref(r.Signature)
}

// Field declares a field.
type Field struct {
	Signature *FieldSignature
	Name      string
	Flags     metadata.FieldAttributes
}

func (*Field) HandleType() metadata.HandleType { return metadata.HandleTypeField }

func (r *Field) visit(s sink) {
	s.u32(uint32(r.Flags))
	s.str(r.Name)
	s.ref(r.Signature)
}

// FieldSignature is the type of a field.
type FieldSignature struct {
	Type Record
}

func (*FieldSignature) HandleType() metadata.HandleType {
	return metadata.HandleTypeFieldSignature
}

func (r *FieldSignature) visit(s sink) {
	s.typeRef(r.Type)
}

// ConstantStringValue is a string record. String-typed fields of other
// records produce these implicitly.
type ConstantStringValue struct {
	Value string
}

func (*ConstantStringValue) HandleType() metadata.HandleType {
	return metadata.HandleTypeConstantStringValue
}

func (r *ConstantStringValue) visit(s sink) {
	s.blob([]byte(r.Value))
}
