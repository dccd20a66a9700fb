package metadata

// Records are decoded by value. Fields appear in blob order; the handle a
// record was read from is not persisted and is filled in after decoding.

// ScopeDefinition describes an assembly or module.
type ScopeDefinition struct {
	PublicKey               []byte
	Flags                   AssemblyFlags
	Name                    ConstantStringValueHandle
	HashAlgorithm           AssemblyHashAlgorithm
	MajorVersion            uint16
	MinorVersion            uint16
	BuildNumber             uint16
	RevisionNumber          uint16
	Culture                 ConstantStringValueHandle
	RootNamespaceDefinition NamespaceDefinitionHandle
	EntryPoint              MethodHandle
	handle                  ScopeDefinitionHandle
}

// Handle returns the handle this record was decoded from.
func (r ScopeDefinition) Handle() ScopeDefinitionHandle { return r.handle }

// ScopeReference names another scope.
type ScopeReference struct {
	PublicKeyOrToken []byte
	Flags            AssemblyFlags
	Name             ConstantStringValueHandle
	MajorVersion     uint16
	MinorVersion     uint16
	BuildNumber      uint16
	RevisionNumber   uint16
	Culture          ConstantStringValueHandle
	handle           ScopeReferenceHandle
}

func (r ScopeReference) Handle() ScopeReferenceHandle { return r.handle }

// NamespaceDefinition groups the types and child namespaces of a scope.
type NamespaceDefinition struct {
	TypeDefinitions        []TypeDefinitionHandle
	NamespaceDefinitions   []NamespaceDefinitionHandle
	ParentScopeOrNamespace Handle
	Name                   ConstantStringValueHandle
	handle                 NamespaceDefinitionHandle
}

func (r NamespaceDefinition) Handle() NamespaceDefinitionHandle { return r.handle }

// NamespaceReference names a namespace inside a ScopeReference or another NamespaceReference.
type NamespaceReference struct {
	ParentScopeOrNamespace Handle
	Name                   ConstantStringValueHandle
	handle                 NamespaceReferenceHandle
}

func (r NamespaceReference) Handle() NamespaceReferenceHandle { return r.handle }

// TypeDefinition is a named type defined in this blob.
type TypeDefinition struct {
	NestedTypes         []TypeDefinitionHandle
	Methods             []MethodHandle
	Fields              []FieldHandle
	Interfaces          []Handle
	GenericParameters   []GenericParameterHandle
	Flags               TypeAttributes
	BaseType            Handle
	NamespaceDefinition NamespaceDefinitionHandle
	Name                ConstantStringValueHandle
	Size                uint32
	PackingSize         uint16
	EnclosingType       TypeDefinitionHandle
	handle              TypeDefinitionHandle
}

func (r TypeDefinition) Handle() TypeDefinitionHandle { return r.handle }

// TypeReference names a type by namespace (or enclosing type) and name.
type TypeReference struct {
	ParentNamespaceOrType Handle
	TypeName              ConstantStringValueHandle
	handle                TypeReferenceHandle
}

func (r TypeReference) Handle() TypeReferenceHandle { return r.handle }

// TypeSpecification wraps a type signature.
type TypeSpecification struct {
	Signature Handle
	handle    TypeSpecificationHandle
}

func (r TypeSpecification) Handle() TypeSpecificationHandle { return r.handle }

// TypeInstantiationSignature applies type arguments to a generic type.
type TypeInstantiationSignature struct {
	GenericTypeArguments []Handle
	GenericType          Handle
	handle               TypeInstantiationSignatureHandle
}

func (r TypeInstantiationSignature) Handle() TypeInstantiationSignatureHandle { return r.handle }

// SZArraySignature is a single-dimensional zero-based array.
type SZArraySignature struct {
	ElementType Handle
	handle      SZArraySignatureHandle
}

func (r SZArraySignature) Handle() SZArraySignatureHandle { return r.handle }

// ArraySignature is a multi-dimensional array.
type ArraySignature struct {
	ElementType Handle
	Rank        uint32
	handle      ArraySignatureHandle
}

func (r ArraySignature) Handle() ArraySignatureHandle { return r.handle }

// ByReferenceSignature is a managed reference.
type ByReferenceSignature struct {
	Type   Handle
	handle ByReferenceSignatureHandle
}

func (r ByReferenceSignature) Handle() ByReferenceSignatureHandle { return r.handle }

// PointerSignature is an unmanaged pointer.
type PointerSignature struct {
	Type   Handle
	handle PointerSignatureHandle
}

func (r PointerSignature) Handle() PointerSignatureHandle { return r.handle }

// TypeVariableSignature refers to a generic parameter of the enclosing type.
type TypeVariableSignature struct {
	Number uint32
	handle TypeVariableSignatureHandle
}

func (r TypeVariableSignature) Handle() TypeVariableSignatureHandle { return r.handle }

// MethodTypeVariableSignature refers to a generic parameter of the enclosing method.
type MethodTypeVariableSignature struct {
	Number uint32
	handle MethodTypeVariableSignatureHandle
}

func (r MethodTypeVariableSignature) Handle() MethodTypeVariableSignatureHandle { return r.handle }

// GenericParameter declares one generic parameter.
type GenericParameter struct {
	Number uint16
	Flags  GenericParameterAttributes
	Kind   GenericParameterKind
	Name   ConstantStringValueHandle
	handle GenericParameterHandle
}

func (r GenericParameter) Handle() GenericParameterHandle { return r.handle }

// Method declares a method. It carries no pointer to its owning type, so
// identical declarations on different types share one record.
type Method struct {
	GenericParameters []GenericParameterHandle
	Flags             MethodAttributes
	ImplFlags         MethodImplAttributes
	Name              ConstantStringValueHandle
	Signature         MethodSignatureHandle
	handle            MethodHandle
}

func (r Method) Handle() MethodHandle { return r.handle }

// MethodSignature is the calling convention, return type and parameter types.
type MethodSignature struct {
	Parameters            []Handle
	CallingConvention     SignatureCallingConvention
	GenericParameterCount uint32
	ReturnType            Handle
	handle                MethodSignatureHandle
}

func (r MethodSignature) Handle() MethodSignatureHandle { return r.handle }

// MethodInstantiation applies type arguments to a generic method.
type MethodInstantiation struct {
	GenericTypeArguments []Handle
	Method               Handle
	handle               MethodInstantiationHandle
}

func (r MethodInstantiation) Handle() MethodInstantiationHandle { return r.handle }

// MemberReference names a method on a type outside the current definition set.
type MemberReference struct {
	Parent    Handle
	Name      ConstantStringValueHandle
	Signature Handle
	handle    MemberReferenceHandle
}

func (r MemberReference) Handle() MemberReferenceHandle { return r.handle }

// Field declares a field.
type Field struct {
	Flags     FieldAttributes
	Name      ConstantStringValueHandle
	Signature FieldSignatureHandle
	handle    FieldHandle
}

func (r Field) Handle() FieldHandle { return r.handle }

// FieldSignature is the type of a field.
type FieldSignature struct {
	Type   Handle
	handle FieldSignatureHandle
}

func (r FieldSignature) Handle() FieldSignatureHandle { return r.handle }

// ConstantStringValue is a length-prefixed UTF-8 string.
type ConstantStringValue struct {
	Value  string
	handle ConstantStringValueHandle
}

func (r ConstantStringValue) Handle() ConstantStringValueHandle { return r.handle }
